package views

import (
	"fmt"

	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpSection is a titled group of help lines.
type HelpSection struct {
	Title   string
	Entries []ui.MenuHint
}

// HelpView displays key bindings and commands.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	return &HelpView{
		TextView: tv,
		theme:    theme,
	}
}

func (hv *HelpView) Name() string { return "Help" }

func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (hv *HelpView) Render(chat.Snapshot) {}

// SetSections replaces the help text.
func (hv *HelpView) SetSections(sections []HelpSection) {
	hv.Clear()
	kc := ui.Tag(hv.theme.MenuKeyColor)

	width := 0
	for _, s := range sections {
		for _, e := range s.Entries {
			width = max(width, len(e.Key))
		}
	}

	for _, s := range sections {
		_, _ = fmt.Fprintf(hv, "\n  [::b]%s[-:-:-]\n\n", s.Title)
		for _, e := range s.Entries {
			_, _ = fmt.Fprintf(hv, "  [%s]%-*s[-:-:-]  %s\n", kc, width, tview.Escape(e.Key), tview.Escape(e.Description))
		}
	}
	hv.ScrollToBeginning()
}
