package tui

import (
	"slices"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs string
	}{
		{"quit", "quit", ""},
		{"q", "quit", ""},
		{"  Search   hello world ", "search", "hello world"},
		{"s hello", "search", "hello"},
		{"desc a quiet group", "about", "a quiet group"},
		{"nick  Bob", "nick", "Bob"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseCommand(tt.input)
			if got.Name != tt.wantName || got.Args != tt.wantArgs {
				t.Errorf("ParseCommand(%q) = %+v, want {%s %s}", tt.input, got, tt.wantName, tt.wantArgs)
			}
		})
	}
}

func TestCommandFields(t *testing.T) {
	tests := []struct {
		args string
		want []string
	}{
		{"", nil},
		{"alice", []string{"alice"}},
		{`"Weekend trip" alice,bob`, []string{"Weekend trip", "alice,bob"}},
		{`pw1   pw2`, []string{"pw1", "pw2"}},
		{`""`, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			got := Command{Args: tt.args}.Fields()
			if !slices.Equal(got, tt.want) {
				t.Errorf("Fields(%q) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestCommandRest(t *testing.T) {
	tests := []struct {
		args string
		n    int
		want string
	}{
		{`"Weekend trip" alice, bob`, 1, "alice, bob"},
		{"photo.png look at this", 1, "look at this"},
		{"photo.png", 1, ""},
		{"a b c", 0, "a b c"},
		{`"unterminated`, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			if got := (Command{Args: tt.args}).Rest(tt.n); got != tt.want {
				t.Errorf("Rest(%q, %d) = %q, want %q", tt.args, tt.n, got, tt.want)
			}
		})
	}
}

func TestCommandTableHasNoDuplicates(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range commandTable {
		for _, name := range append([]string{c.Name}, c.Aliases...) {
			if seen[name] {
				t.Errorf("command %q defined twice", name)
			}
			seen[name] = true
		}
	}
}
