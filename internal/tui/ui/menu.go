package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Menu lists the active page's key hints in columns.
type Menu struct {
	*tview.TextView
	theme *Theme
	rows  int
}

func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
		rows:     5,
	}
}

// Update renders hints top to bottom, wrapping into a new column every
// few rows.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	if len(hints) == 0 {
		return
	}

	keyColor := Tag(m.theme.MenuKeyColor)
	cols := (len(hints) + m.rows - 1) / m.rows
	for r := 0; r < m.rows && r < len(hints); r++ {
		for c := 0; c < cols; c++ {
			i := c*m.rows + r
			if i >= len(hints) {
				break
			}
			cell := fmt.Sprintf("<%s> %s", hints[i].Key, hints[i].Description)
			_, _ = fmt.Fprintf(m, "[%s::b]%-24s[-:-:-]", keyColor, tview.Escape(cell))
		}
		_, _ = fmt.Fprintln(m)
	}
}
