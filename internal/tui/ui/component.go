package ui

import (
	"github.com/matheus3301/livechat/internal/chat"
	"github.com/rivo/tview"
)

// MenuHint describes a keyboard shortcut for the menu.
type MenuHint struct {
	Key         string
	Description string
}

// Component is a page of the TUI. Render runs on the UI goroutine with the
// latest manager snapshot.
type Component interface {
	tview.Primitive
	Name() string
	Hints() []MenuHint
	Render(snap chat.Snapshot)
}
