package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/store"
)

// formatTimestamp renders a millisecond timestamp relative to now: the
// clock time today, the date otherwise.
func formatTimestamp(ms int64, now time.Time) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms).In(now.Location())
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

// preview is the one-line summary of a message for lists.
func preview(m store.Message, snap chat.Snapshot) string {
	text := m.Text
	switch c := m.Content.(type) {
	case store.MediaContent:
		text = fmt.Sprintf("[%s] %s", c.Kind, c.File.Name)
		if m.Text != "" {
			text += " " + m.Text
		}
	case store.StatusReplyContent:
		text = "replied to a status: " + m.Text
	case store.CallContent:
		text = fmt.Sprintf("%s call ended", c.Call.Type)
	}
	if m.SenderID == snap.Me.ID {
		return "You: " + text
	}
	return text
}

func senderName(id string, snap chat.Snapshot) string {
	if id == snap.Me.ID {
		return "You"
	}
	if u, ok := snap.User(id); ok {
		return u.Name
	}
	return "Unknown"
}
