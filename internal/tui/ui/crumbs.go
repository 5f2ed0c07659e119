package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Crumbs shows the page stack, active page last.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Crumbs{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders one crumb per title.
func (c *Crumbs) Update(titles []string) {
	c.Clear()
	if len(titles) == 0 {
		return
	}

	parts := make([]string, 0, len(titles))
	last := len(titles) - 1
	for i, title := range titles {
		fg, bg, attr := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg, ""
		if i == last {
			fg, bg, attr = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg, "b"
		}
		parts = append(parts, fmt.Sprintf("[%s:%s:%s] %s [-:-:-]", Tag(fg), Tag(bg), attr, tview.Escape(title)))
	}
	_, _ = fmt.Fprint(c, strings.Join(parts, " "))
}

func colorHex(c tcell.Color) string {
	return fmt.Sprintf("#%06x", c.Hex())
}
