package views

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/tui/ui"
	"github.com/rivo/tview"
)

// conversation is one row of the list.
type conversation struct {
	id       string
	name     string
	isGroup  bool
	pinned   bool
	online   bool
	unread   int
	typing   string
	lastText string
	lastAt   int64
}

// ConversationList lists friends then groups, pinned first within each.
type ConversationList struct {
	*tview.Table
	theme  *ui.Theme
	rows   []conversation
	filter string
	now    time.Time
}

func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Chats ")
	table.SetTitleColor(theme.TitleColor)

	return &ConversationList{
		Table: table,
		theme: theme,
	}
}

func (cl *ConversationList) Name() string { return "Chats" }

func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "p", Description: "Pin/Unpin"},
		{Key: "d", Description: "Details"},
		{Key: "/", Description: "Filter"},
	}
}

// Render rebuilds the rows from snap, keeping the cursor on the same chat.
func (cl *ConversationList) Render(snap chat.Snapshot) {
	selected := cl.SelectedID()
	cl.now = snap.Now

	cl.rows = cl.rows[:0]
	for _, u := range snap.Friends() {
		cl.rows = append(cl.rows, cl.row(snap, chat.Direct{User: u}, u.LastSeen.IsOnline()))
	}
	for _, g := range snap.MyGroups() {
		cl.rows = append(cl.rows, cl.row(snap, chat.GroupChat{Group: g}, false))
	}
	cl.render()

	if i := slices.IndexFunc(cl.visible(), func(c conversation) bool { return c.id == selected }); i >= 0 {
		cl.Select(i+1, 0)
	}
}

func (cl *ConversationList) row(snap chat.Snapshot, t chat.Target, online bool) conversation {
	_, isGroup := t.(chat.GroupChat)
	c := conversation{
		id:      t.ID(),
		name:    t.Name(),
		isGroup: isGroup,
		pinned:  slices.Contains(snap.Me.PinnedChatIDs, t.ID()),
		online:  online,
		unread:  snap.UnreadCount(t),
		typing:  snap.Typing[snap.ChatID(t)],
	}
	if msgs := snap.Messages(t); len(msgs) > 0 {
		last := msgs[len(msgs)-1]
		c.lastText = preview(last, snap)
		c.lastAt = last.Timestamp
	}
	return c
}

// SetFilter narrows the list to names containing filter.
func (cl *ConversationList) SetFilter(filter string) {
	cl.filter = filter
	cl.render()
}

func (cl *ConversationList) visible() []conversation {
	if cl.filter == "" {
		return cl.rows
	}
	var out []conversation
	for _, c := range cl.rows {
		if strings.Contains(strings.ToLower(c.name), strings.ToLower(cl.filter)) {
			out = append(out, c)
		}
	}
	return out
}

func (cl *ConversationList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" TYPE", 0},
	}
	for col, h := range headers {
		cl.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	rows := cl.visible()
	for i, c := range rows {
		row := i + 1

		name := c.name
		if c.pinned {
			name = "^ " + name
		}
		if c.unread > 0 {
			name = fmt.Sprintf("(%d) %s", c.unread, name)
		}
		nameColor := cl.theme.FgColor
		switch {
		case c.unread > 0:
			nameColor = cl.theme.UnreadColor
		case c.online:
			nameColor = cl.theme.OnlineColor
		}

		last := oneLine(c.lastText, 60)
		lastColor := cl.theme.FgColor
		if c.typing != "" {
			last = "typing..."
			if c.isGroup {
				last = oneLine(c.typing, 20) + " is typing..."
			}
			lastColor = cl.theme.TypingColor
		}

		kind := "DM"
		if c.isGroup {
			kind = "GROUP"
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+oneLine(name, 40)).SetExpansion(1).SetTextColor(nameColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+last).SetExpansion(2).SetTextColor(lastColor))
		cl.SetCell(row, 2, tview.NewTableCell(formatTimestamp(c.lastAt, cl.now)).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
		cl.SetCell(row, 3, tview.NewTableCell(" "+kind).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Chats (%d/%d) filter: %s ", len(rows), len(cl.rows), tview.Escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" Chats (%d) ", len(cl.rows)))
	}
}

// SelectedID returns the user or group id under the cursor.
func (cl *ConversationList) SelectedID() string {
	row, _ := cl.GetSelection()
	rows := cl.visible()
	if row < 1 || row > len(rows) {
		return ""
	}
	return rows[row-1].id
}

// IDByIndex returns the id of the nth visible row, 1-based.
func (cl *ConversationList) IDByIndex(n int) string {
	rows := cl.visible()
	if n < 1 || n > len(rows) {
		return ""
	}
	return rows[n-1].id
}
