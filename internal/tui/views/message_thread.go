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

// MessageThread shows the active chat: its log, a line for typing, reply
// and call state, and the composer.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	info     *tview.TextView
	composer *tview.InputField
	chatName string

	onSend    func(text string)
	onChanged func(text string)
}

func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	info := tview.NewTextView().
		SetDynamicColors(true)
	info.SetBackgroundColor(theme.BgColor)
	info.SetTextColor(theme.TypingColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(info, 1, 0, false).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		info:     info,
		composer: composer,
	}

	composer.SetChangedFunc(func(text string) {
		if mt.onChanged != nil {
			mt.onChanged(text)
		}
	})
	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && mt.onSend != nil {
			if text := composer.GetText(); strings.TrimSpace(text) != "" {
				mt.onSend(text)
			}
		}
	})

	return mt
}

func (mt *MessageThread) Name() string {
	if mt.chatName != "" {
		return mt.chatName
	}
	return "Messages"
}

func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "r", Description: "Reply to last"},
		{Key: "d", Description: "Details"},
		{Key: "c", Description: "Voice call"},
		{Key: "v", Description: "Video call"},
		{Key: "h", Description: "Hang up"},
		{Key: "s", Description: "Search"},
	}
}

// SetOnSend sets the callback for Enter in the composer. The composer is
// not cleared; call ClearComposer once the message went out.
func (mt *MessageThread) SetOnSend(fn func(text string)) { mt.onSend = fn }

// SetOnChanged sets the callback for every composer edit.
func (mt *MessageThread) SetOnChanged(fn func(text string)) { mt.onChanged = fn }

func (mt *MessageThread) ClearComposer() { mt.composer.SetText("") }

func (mt *MessageThread) Composer() *tview.InputField { return mt.composer }

func (mt *MessageThread) Messages() *tview.TextView { return mt.messages }

// Render draws the active chat of snap.
func (mt *MessageThread) Render(snap chat.Snapshot) {
	mt.messages.Clear()
	mt.info.Clear()
	if snap.ActiveChat == nil {
		mt.chatName = ""
		mt.messages.SetTitle(" Messages ")
		return
	}

	t := snap.ActiveChat
	mt.chatName = t.Name()
	mt.messages.SetTitle(" " + clean(mt.title(snap, t)) + " ")

	for _, m := range snap.Messages(t) {
		mt.writeMessage(snap, m)
	}
	mt.messages.ScrollToEnd()

	_, _ = fmt.Fprint(mt.info, mt.infoLine(snap, t))
}

func (mt *MessageThread) title(snap chat.Snapshot, t chat.Target) string {
	switch t := t.(type) {
	case chat.Direct:
		u, _ := snap.User(t.User.ID)
		return fmt.Sprintf("%s · %s", u.Name, chat.FormatLastSeen(u.LastSeen, snap.Now))
	case chat.GroupChat:
		return fmt.Sprintf("%s · %d members", t.Group.Name, len(t.Group.Members))
	}
	return t.Name()
}

func (mt *MessageThread) writeMessage(snap chat.Snapshot, m store.Message) {
	ts := formatTimestamp(m.Timestamp, snap.Now)

	if m.Type() == store.TypeSystem {
		_, _ = fmt.Fprintf(mt.messages, "[%s::i]  %s %s[-:-:-]\n\n", ui.Tag(mt.theme.SystemColor), clean(m.Text), ts)
		return
	}

	nameColor := mt.theme.CounterColor
	if m.SenderID == snap.Me.ID {
		nameColor = mt.theme.OwnMessageColor
	}
	_, _ = fmt.Fprintf(mt.messages, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]\n", ui.Tag(nameColor), clean(senderName(m.SenderID, snap)), ts)

	if r := m.ReplyTo; r != nil {
		_, _ = fmt.Fprintf(mt.messages, "[%s]│ %s: %s[-]\n", ui.Tag(mt.theme.SystemColor), clean(r.SenderName), oneLine(r.Text, 80))
	}

	switch c := m.Content.(type) {
	case store.MediaContent:
		_, _ = fmt.Fprintf(mt.messages, "[::u]%s[::-] %s\n", clean("["+string(c.Kind)+"]"), clean(c.File.Name))
	case store.StatusReplyContent:
		_, _ = fmt.Fprintf(mt.messages, "[%s]│ %s's %s status[-]\n", ui.Tag(mt.theme.SystemColor), clean(c.Status.StatusOwnerName), c.Status.StatusType)
	case store.CallContent:
		_, _ = fmt.Fprintf(mt.messages, "[%s]%s call[-]\n", ui.Tag(mt.theme.SystemColor), c.Call.Type)
	}
	if m.Text != "" {
		_, _ = fmt.Fprintf(mt.messages, "%s\n", clean(m.Text))
	}

	if m.SenderID == snap.Me.ID {
		_, _ = fmt.Fprintf(mt.messages, "[::d]%s[-:-:-]\n", mt.receipt(snap, m))
	}
	_, _ = fmt.Fprintln(mt.messages)
}

// receipt is "sent" until someone other than the sender read the message.
func (mt *MessageThread) receipt(snap chat.Snapshot, m store.Message) string {
	for _, id := range m.ReadBy {
		if id != m.SenderID {
			return "read"
		}
	}
	return "sent"
}

func (mt *MessageThread) infoLine(snap chat.Snapshot, t chat.Target) string {
	var parts []string
	if c := snap.Call; c != nil {
		peer := senderName(c.PeerID, snap)
		line := fmt.Sprintf("%s call with %s: %s", c.Kind, peer, c.Status)
		if c.Status == chat.CallConnected {
			line += " " + chat.FormatCallDuration(c.Duration)
			if c.Kind == store.CallVideo {
				line += " quality " + c.Quality
			}
		}
		parts = append(parts, line)
	}
	if who := snap.Typing[snap.ChatID(t)]; who != "" {
		parts = append(parts, who+" is typing...")
	}
	if r := snap.ReplyingTo; r != nil {
		parts = append(parts, fmt.Sprintf("replying to %s: %s", senderName(r.SenderID, snap), r.Text))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + oneLine(strings.Join(parts, " | "), 200)
}
