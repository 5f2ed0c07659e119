package views

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/tview"
)

// sanitizeForTerminal drops codepoints tcell cannot lay out in one cell
// run: skin tone modifiers, the zero width joiner and variation selectors.
// Control characters other than newline become spaces.
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case isProblematicRune(r):
		case r < 0x20 && r != '\n':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isProblematicRune(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	case r == 0x200D:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}

// clean makes user text safe to print in a dynamic-color view.
func clean(s string) string {
	return tview.Escape(sanitizeForTerminal(s))
}

// oneLine is clean with newlines folded and the result cut to max runes.
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(sanitizeForTerminal(s)), " ")
	if utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max-1]) + "…"
	}
	return tview.Escape(s)
}
