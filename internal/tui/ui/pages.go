package ui

import "github.com/rivo/tview"

// Pages is a stack of components over tview.Pages.
type Pages struct {
	*tview.Pages
	components map[string]Component
	stack      []string
	onChange   func(top Component, stack []Component)
}

func NewPages() *Pages {
	return &Pages{
		Pages:      tview.NewPages(),
		components: make(map[string]Component),
	}
}

// Add registers c under name, hidden.
func (p *Pages) Add(name string, c Component) {
	p.components[name] = c
	p.AddPage(name, c, true, false)
}

// SetOnChange sets a callback fired after every stack change.
func (p *Pages) SetOnChange(fn func(top Component, stack []Component)) {
	p.onChange = fn
}

// Push shows name on top of the stack. Pushing the current page is a no-op.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	if len(p.stack) > 0 {
		p.HidePage(p.stack[len(p.stack)-1])
	}
	p.stack = append(p.stack, name)
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

// Pop removes the top page unless it is the last one and returns the new
// top.
func (p *Pages) Pop() string {
	if len(p.stack) <= 1 {
		return p.Current()
	}
	p.HidePage(p.stack[len(p.stack)-1])
	p.stack = p.stack[:len(p.stack)-1]
	current := p.stack[len(p.stack)-1]
	p.ShowPage(current)
	p.SendToFront(current)
	p.notify()
	return current
}

func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Top returns the component on top, or nil.
func (p *Pages) Top() Component {
	return p.components[p.Current()]
}

// Contains reports whether name is anywhere on the stack.
func (p *Pages) Contains(name string) bool {
	for _, n := range p.stack {
		if n == name {
			return true
		}
	}
	return false
}

// Reset clears the stack down to name alone.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

// Visible returns the components on the stack, bottom first.
func (p *Pages) Visible() []Component {
	out := make([]Component, 0, len(p.stack))
	for _, n := range p.stack {
		out = append(out, p.components[n])
	}
	return out
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Top(), p.Visible())
	}
}
