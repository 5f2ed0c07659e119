package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/store"
	"github.com/matheus3301/livechat/internal/tui/ui"
	"github.com/rivo/tview"
)

// SearchMode selects what the search page looks through.
type SearchMode int

const (
	// SearchInChat searches the messages of one chat.
	SearchInChat SearchMode = iota
	// SearchPeople searches users by name.
	SearchPeople
)

// SearchView searches the active chat's messages, or users by name.
type SearchView struct {
	*tview.Flex
	theme   *ui.Theme
	input   *tview.InputField
	history *tview.TextView
	results *tview.Table

	mode   SearchMode
	chatID string
	query  string
	msgs   []store.Message
	users  []store.User

	onQuery func(query string)
}

func NewSearchView(theme *ui.Theme) *SearchView {
	input := tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(0)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	history := tview.NewTextView().
		SetDynamicColors(true)
	history.SetBackgroundColor(theme.BgColor)
	history.SetTextColor(theme.SystemColor)

	results := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	results.SetBorder(true)
	results.SetBorderColor(theme.BorderColor)
	results.SetBackgroundColor(theme.BgColor)
	results.SetTitle(" Results ")
	results.SetTitleColor(theme.TitleColor)
	results.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, true).
		AddItem(history, 1, 0, false).
		AddItem(results, 0, 1, false)

	sv := &SearchView{
		Flex:    flex,
		theme:   theme,
		input:   input,
		history: history,
		results: results,
	}
	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		sv.query = strings.TrimSpace(input.GetText())
		if sv.onQuery != nil {
			sv.onQuery(sv.query)
		}
	})
	return sv
}

func (sv *SearchView) Name() string {
	if sv.mode == SearchPeople {
		return "Find people"
	}
	return "Search"
}

func (sv *SearchView) Hints() []ui.MenuHint {
	if sv.mode == SearchPeople {
		return []ui.MenuHint{
			{Key: "Enter", Description: "Search/Profile"},
			{Key: "f", Description: "Friend request"},
			{Key: "Tab", Description: "Input/Results"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []ui.MenuHint{
		{Key: "Enter", Description: "Search"},
		{Key: "Tab", Description: "Input/Results"},
		{Key: "Ctrl-X", Description: "Clear history"},
		{Key: "Esc", Description: "Back"},
	}
}

// Reset switches the page to mode, clearing the query. chatID is the chat
// searched in SearchInChat mode.
func (sv *SearchView) Reset(mode SearchMode, chatID string) {
	sv.mode = mode
	sv.chatID = chatID
	sv.query = ""
	sv.input.SetText("")
}

// SetQuery fills the input with q and runs it.
func (sv *SearchView) SetQuery(q string) {
	sv.input.SetText(q)
	sv.query = strings.TrimSpace(q)
	if sv.onQuery != nil {
		sv.onQuery(sv.query)
	}
}

// SetOnQuery sets the callback for Enter in the input.
func (sv *SearchView) SetOnQuery(fn func(query string)) { sv.onQuery = fn }

func (sv *SearchView) Mode() SearchMode { return sv.mode }

func (sv *SearchView) ChatID() string { return sv.chatID }

// Render runs the current query against snap.
func (sv *SearchView) Render(snap chat.Snapshot) {
	sv.history.Clear()
	sv.results.Clear()

	if sv.mode == SearchPeople {
		sv.users = snap.SearchUsers(sv.query)
		sv.renderUsers(snap)
		return
	}

	if terms := snap.SearchHistoryFor(sv.chatID); len(terms) > 0 {
		quoted := make([]string, len(terms))
		for i, t := range terms {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		_, _ = fmt.Fprint(sv.history, " Recent: "+oneLine(strings.Join(quoted, "  "), 200))
	}
	sv.msgs = snap.SearchMessages(sv.chatID, sv.query)
	sv.renderMessages(snap)
}

func (sv *SearchView) header(cols ...string) {
	for col, h := range cols {
		sv.results.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(sv.theme.TableHeaderFg).
			SetBackgroundColor(sv.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}
}

func (sv *SearchView) renderMessages(snap chat.Snapshot) {
	sv.header(" FROM", " MESSAGE", " TIME")
	for i, m := range sv.msgs {
		row := i + 1
		sv.results.SetCell(row, 0, tview.NewTableCell(" "+oneLine(senderName(m.SenderID, snap), 20)).SetTextColor(sv.theme.CounterColor))
		sv.results.SetCell(row, 1, tview.NewTableCell(" "+oneLine(m.Text, 120)).SetExpansion(1).SetTextColor(sv.theme.FgColor))
		sv.results.SetCell(row, 2, tview.NewTableCell(" "+formatTimestamp(m.Timestamp, snap.Now)).SetTextColor(sv.theme.FgColor))
	}
	sv.results.SetTitle(fmt.Sprintf(" Results (%d) ", len(sv.msgs)))
}

func (sv *SearchView) renderUsers(snap chat.Snapshot) {
	sv.header(" NAME", " ABOUT", " ")
	for i, u := range sv.users {
		row := i + 1
		relation := ""
		switch {
		case slices.Contains(snap.Me.FriendIDs, u.ID):
			relation = "friend"
		case snap.RequestSent(u.ID):
			relation = "requested"
		}
		sv.results.SetCell(row, 0, tview.NewTableCell(" "+oneLine(u.Name, 32)).SetTextColor(sv.theme.FgColor))
		sv.results.SetCell(row, 1, tview.NewTableCell(" "+oneLine(u.StatusMessage, 80)).SetExpansion(1).SetTextColor(sv.theme.FgColor))
		sv.results.SetCell(row, 2, tview.NewTableCell(" "+relation).SetTextColor(sv.theme.SystemColor))
	}
	sv.results.SetTitle(fmt.Sprintf(" People (%d) ", len(sv.users)))
}

// SelectedUserID is the user under the cursor in SearchPeople mode.
func (sv *SearchView) SelectedUserID() string {
	row, _ := sv.results.GetSelection()
	if sv.mode != SearchPeople || row < 1 || row > len(sv.users) {
		return ""
	}
	return sv.users[row-1].ID
}

func (sv *SearchView) Input() *tview.InputField { return sv.input }

func (sv *SearchView) Results() *tview.Table { return sv.results }
