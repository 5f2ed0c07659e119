package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestPageBindingsWinOverGlobal(t *testing.T) {
	r := NewRegistry()
	var got string
	r.AddGlobal(Rune('q', "Quit", func() { got = "quit" }))
	r.AddPage("chat", Rune('q', "Quote", func() { got = "quote" }))

	ev := tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)
	if !r.HandleEvent("chat", ev) || got != "quote" {
		t.Errorf("chat page: got %q, want quote", got)
	}
	if !r.HandleEvent("chats", ev) || got != "quit" {
		t.Errorf("chats page: got %q, want quit", got)
	}
	if r.HandleEvent("chats", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)) {
		t.Error("unbound rune was handled")
	}
}

func TestHintsKeepOrderAndSkipHidden(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal(Rune('?', "Help", func() {}))
	r.AddPage("chats",
		Key(tcell.KeyEnter, "Open", func() {}),
		&Action{Key: tcell.KeyRune, Rune: 'x', Label: "x", Hidden: true, Handler: func() {}},
		Rune('p', "Pin", func() {}),
	)

	hints := r.Hints("chats")
	want := []Hint{{"Enter", "Open"}, {"p", "Pin"}, {"?", "Help"}}
	if len(hints) != len(want) {
		t.Fatalf("hints = %v, want %v", hints, want)
	}
	for i := range want {
		if hints[i] != want[i] {
			t.Errorf("hints[%d] = %v, want %v", i, hints[i], want[i])
		}
	}
}
