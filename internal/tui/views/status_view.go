package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/store"
	"github.com/matheus3301/livechat/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusView shows the status feed and, once a user is opened, steps
// through that user's statuses.
type StatusView struct {
	*tview.Flex
	theme  *ui.Theme
	feed   *tview.Table
	viewer *tview.TextView

	groups  []chat.StatusGroup
	current []store.Status
	userID  string
	idx     int
}

func NewStatusView(theme *ui.Theme) *StatusView {
	feed := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	feed.SetBorder(true)
	feed.SetBorderColor(theme.BorderColor)
	feed.SetBackgroundColor(theme.BgColor)
	feed.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	feed.SetTitle(" Statuses ")
	feed.SetTitleColor(theme.TitleColor)

	viewer := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	viewer.SetBorder(true)
	viewer.SetBorderColor(theme.BorderColor)
	viewer.SetBackgroundColor(theme.BgColor)
	viewer.SetTextColor(theme.FgColor)
	viewer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		AddItem(feed, 0, 1, true).
		AddItem(viewer, 0, 2, false)

	return &StatusView{
		Flex:   flex,
		theme:  theme,
		feed:   feed,
		viewer: viewer,
	}
}

func (sv *StatusView) Name() string { return "Statuses" }

func (sv *StatusView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "View"},
		{Key: "n", Description: "Next"},
		{Key: "b", Description: "Previous"},
		{Key: "Esc", Description: "Back"},
	}
}

func (sv *StatusView) Render(snap chat.Snapshot) {
	selected := sv.SelectedUserID()
	sv.groups = snap.StatusFeed()

	sv.feed.Clear()
	for i, g := range sv.groups {
		name := g.User.Name
		if g.User.ID == snap.Me.ID {
			name = "My status"
		}
		color := sv.theme.FgColor
		if g.Unviewed > 0 {
			color = sv.theme.UnreadColor
		}
		count := fmt.Sprintf("%d", len(g.Statuses))
		if g.Unviewed > 0 {
			count = fmt.Sprintf("%d new", g.Unviewed)
		}
		sv.feed.SetCell(i, 0, tview.NewTableCell(" "+oneLine(name, 32)).SetExpansion(1).SetTextColor(color))
		sv.feed.SetCell(i, 1, tview.NewTableCell(count+" ").SetAlign(tview.AlignRight).SetTextColor(sv.theme.SystemColor))
		if g.User.ID == selected {
			sv.feed.Select(i, 0)
		}
	}

	sv.current = nil
	sv.userID = ""
	if u := snap.ActiveStatusUser; u != nil {
		sv.userID = u.ID
		for _, g := range sv.groups {
			if g.User.ID == u.ID {
				sv.current = g.Statuses
			}
		}
	}
	sv.idx = min(sv.idx, max(len(sv.current)-1, 0))
	sv.renderViewer(snap)
}

func (sv *StatusView) renderViewer(snap chat.Snapshot) {
	sv.viewer.Clear()
	if len(sv.current) == 0 {
		sv.viewer.SetTitle(" ")
		_, _ = fmt.Fprint(sv.viewer, "\n  Select a contact and press Enter.\n  Post your own with :status <file>.")
		return
	}

	st := sv.current[sv.idx]
	sv.viewer.SetTitle(fmt.Sprintf(" %s %d/%d ", clean(senderName(st.UserID, snap)), sv.idx+1, len(sv.current)))

	// Progress bar, one segment per status.
	var bar strings.Builder
	for i := range sv.current {
		if i <= sv.idx {
			bar.WriteString("━━━ ")
		} else {
			bar.WriteString("─── ")
		}
	}
	_, _ = fmt.Fprintf(sv.viewer, "\n [%s]%s[-]\n\n", ui.Tag(sv.theme.OnlineColor), bar.String())
	_, _ = fmt.Fprintf(sv.viewer, " [::b]%s[::-] posted %s\n", st.Type, formatTimestamp(st.Timestamp, snap.Now))

	if st.UserID == snap.Me.ID {
		_, _ = fmt.Fprintf(sv.viewer, " seen by %d\n", len(st.ViewedBy)-1)
	}

	switch {
	case strings.HasPrefix(st.URL, "data:"):
		mimeType, _, _ := strings.Cut(strings.TrimPrefix(st.URL, "data:"), ";")
		_, _ = fmt.Fprintf(sv.viewer, " %s, %d bytes encoded\n", clean(mimeType), len(st.URL))
	default:
		_, _ = fmt.Fprintf(sv.viewer, " %s\n", clean(st.URL))
		if qr, err := renderQR(st.URL); err == nil {
			_, _ = fmt.Fprintf(sv.viewer, "\n%s", tview.Escape(qr))
		}
	}
	if st.UserID != snap.Me.ID {
		_, _ = fmt.Fprint(sv.viewer, "\n [::d]:reply <text> answers in your chat[::-]\n")
	}
}

// SelectedUserID is the feed entry under the cursor.
func (sv *StatusView) SelectedUserID() string {
	row, _ := sv.feed.GetSelection()
	if row < 0 || row >= len(sv.groups) {
		return ""
	}
	return sv.groups[row].User.ID
}

// SetOnOpen sets the callback for Enter on a feed entry.
func (sv *StatusView) SetOnOpen(fn func(userID string)) {
	sv.feed.SetSelectedFunc(func(int, int) {
		if id := sv.SelectedUserID(); id != "" {
			fn(id)
		}
	})
}

// Open starts viewing from the first status.
func (sv *StatusView) Open() { sv.idx = 0 }

// Step moves to the next or previous status of the open user and returns
// its id, or "" at either end.
func (sv *StatusView) Step(delta int) string {
	next := sv.idx + delta
	if next < 0 || next >= len(sv.current) {
		return ""
	}
	sv.idx = next
	return sv.current[next].ID
}

// CurrentStatus is the status being viewed, if any.
func (sv *StatusView) CurrentStatus() (store.Status, bool) {
	if len(sv.current) == 0 {
		return store.Status{}, false
	}
	return sv.current[sv.idx], true
}

// Viewing is the user whose statuses are open, or "".
func (sv *StatusView) Viewing() string { return sv.userID }
