package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// SessionData is what the header shows about the tab.
type SessionData struct {
	Profile  string
	User     string
	Presence string
	Friends  int
	Groups   int
	Unread   int
	Requests int
	Alerts   int
	Call     string
}

// SessionInfo is the header panel with the tab's session.
type SessionInfo struct {
	*tview.TextView
	theme *Theme
}

func NewSessionInfo(theme *Theme) *SessionInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &SessionInfo{
		TextView: tv,
		theme:    theme,
	}
}

func (si *SessionInfo) Update(data SessionData) {
	si.Clear()

	fg := Tag(si.theme.FgColor)
	val := Tag(si.theme.CounterColor)
	row := func(label, value string) {
		_, _ = fmt.Fprintf(si, "[%s::b]%-9s[-:-:-] [%s]%s[-]\n", fg, label+":", val, tview.Escape(value))
	}

	row("Profile", data.Profile)
	if data.User == "" {
		row("User", "signed out")
		return
	}
	row("User", data.User)
	row("Presence", data.Presence)
	row("Chats", fmt.Sprintf("%d friends, %d groups", data.Friends, data.Groups))
	unread := fmt.Sprintf("%d", data.Unread)
	if data.Alerts > 0 {
		unread += fmt.Sprintf(" (%d alerts)", data.Alerts)
	}
	row("Unread", unread)
	if data.Call != "" {
		row("Call", data.Call)
	} else if data.Requests > 0 {
		row("Requests", fmt.Sprintf("%d pending", data.Requests))
	}
}
