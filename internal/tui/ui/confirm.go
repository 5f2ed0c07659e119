package ui

import "github.com/rivo/tview"

// Confirm is a yes/no modal.
type Confirm struct {
	*tview.Modal
	done func(yes bool)
}

func NewConfirm(theme *Theme) *Confirm {
	modal := tview.NewModal().
		AddButtons([]string{"Yes", "No"})
	modal.SetBackgroundColor(theme.BgColor)
	modal.SetBorderColor(theme.FlashWarnColor)
	modal.SetTextColor(theme.FgColor)

	c := &Confirm{Modal: modal}
	modal.SetDoneFunc(func(_ int, label string) {
		if c.done != nil {
			done := c.done
			c.done = nil
			done(label == "Yes")
		}
	})
	return c
}

// Ask shows text and calls done once with the answer. Escape counts as no.
func (c *Confirm) Ask(text string, done func(yes bool)) {
	c.SetText(text)
	c.SetFocus(1)
	c.done = done
}
