package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/store"
	"github.com/matheus3301/livechat/internal/tui/ui"
	"github.com/rivo/tview"
)

// PeopleSection is the list a row of the people page belongs to.
type PeopleSection string

const (
	SectionRequests  PeopleSection = "Friend requests"
	SectionSuggested PeopleSection = "People you may know"
	SectionBlocked   PeopleSection = "Blocked"
)

type person struct {
	section PeopleSection
	user    store.User
}

// PeopleView lists incoming friend requests, suggestions and blocked users.
type PeopleView struct {
	*tview.Table
	theme *ui.Theme
	rows  []person // index i is table row i, nil users are headers
}

func NewPeopleView(theme *ui.Theme) *PeopleView {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" People ")
	table.SetTitleColor(theme.TitleColor)

	return &PeopleView{Table: table, theme: theme}
}

func (pv *PeopleView) Name() string { return "People" }

func (pv *PeopleView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "a", Description: "Accept"},
		{Key: "x", Description: "Decline"},
		{Key: "f", Description: "Friend request"},
		{Key: "b", Description: "Block"},
		{Key: "u", Description: "Unblock"},
		{Key: "Enter", Description: "Profile"},
	}
}

func (pv *PeopleView) Render(snap chat.Snapshot) {
	selected, _ := pv.Selected()
	pv.Clear()
	pv.rows = pv.rows[:0]

	pv.section(snap, SectionRequests, snap.FriendRequests(), "wants to be your friend")
	pv.section(snap, SectionSuggested, snap.PeopleYouMayKnow(), "")
	pv.section(snap, SectionBlocked, snap.BlockedUsers(), "")

	for i, p := range pv.rows {
		if p.user.ID != "" && p.user.ID == selected.ID {
			pv.Select(i, 0)
			return
		}
	}
	pv.selectFirst()
}

func (pv *PeopleView) section(snap chat.Snapshot, s PeopleSection, users []store.User, note string) {
	row := len(pv.rows)
	pv.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf(" %s (%d)", s, len(users))).
		SetSelectable(false).
		SetExpansion(1).
		SetTextColor(pv.theme.TableHeaderFg).
		SetBackgroundColor(pv.theme.TableHeaderBg).
		SetAttributes(tcell.AttrBold))
	pv.SetCell(row, 1, tview.NewTableCell("").
		SetSelectable(false).
		SetBackgroundColor(pv.theme.TableHeaderBg))
	pv.rows = append(pv.rows, person{section: s})

	for _, u := range users {
		row := len(pv.rows)
		extra := note
		if s == SectionSuggested && snap.RequestSent(u.ID) {
			extra = "request sent"
		}
		pv.SetCell(row, 0, tview.NewTableCell("   "+oneLine(u.Name, 32)).SetExpansion(1).SetTextColor(pv.theme.FgColor))
		pv.SetCell(row, 1, tview.NewTableCell(extra+" ").SetAlign(tview.AlignRight).SetTextColor(pv.theme.SystemColor))
		pv.rows = append(pv.rows, person{section: s, user: u})
	}
}

func (pv *PeopleView) selectFirst() {
	for i, p := range pv.rows {
		if p.user.ID != "" {
			pv.Select(i, 0)
			return
		}
	}
}

// Selected returns the user under the cursor and the section it is in.
func (pv *PeopleView) Selected() (store.User, PeopleSection) {
	row, _ := pv.GetSelection()
	if row < 0 || row >= len(pv.rows) {
		return store.User{}, ""
	}
	return pv.rows[row].user, pv.rows[row].section
}
