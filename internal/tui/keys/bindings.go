// Package keys maps key presses to TUI actions per page.
package keys

import "github.com/gdamore/tcell/v2"

// Action is one key binding.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Label       string // shown in the menu, e.g. "Enter" or "a"
	Description string
	Handler     func()
	Hidden      bool
}

// Matches reports whether ev triggers the action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Hint is a visible binding for the menu.
type Hint struct {
	Key         string
	Description string
}

// Registry holds bindings in registration order: global ones and one list
// per page.
type Registry struct {
	global []*Action
	pages  map[string][]*Action
}

func NewRegistry() *Registry {
	return &Registry{pages: make(map[string][]*Action)}
}

func (r *Registry) AddGlobal(actions ...*Action) {
	r.global = append(r.global, actions...)
}

func (r *Registry) AddPage(page string, actions ...*Action) {
	r.pages[page] = append(r.pages[page], actions...)
}

// Hints lists the visible bindings of page, page bindings first.
func (r *Registry) Hints(page string) []Hint {
	var hints []Hint
	for _, list := range [][]*Action{r.pages[page], r.global} {
		for _, a := range list {
			if !a.Hidden {
				hints = append(hints, Hint{Key: a.Label, Description: a.Description})
			}
		}
	}
	return hints
}

// HandleEvent runs the first binding of page, then of the global list,
// matching ev. Reports whether one ran.
func (r *Registry) HandleEvent(page string, ev *tcell.EventKey) bool {
	for _, list := range [][]*Action{r.pages[page], r.global} {
		for _, a := range list {
			if a.Matches(ev) {
				a.Handler()
				return true
			}
		}
	}
	return false
}

// Rune is shorthand for a rune binding.
func Rune(r rune, description string, handler func()) *Action {
	return &Action{Key: tcell.KeyRune, Rune: r, Label: string(r), Description: description, Handler: handler}
}

// Key is shorthand for a special-key binding.
func Key(k tcell.Key, description string, handler func()) *Action {
	return &Action{Key: k, Label: tcell.KeyNames[k], Description: description, Handler: handler}
}
