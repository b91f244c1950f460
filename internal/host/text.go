package host

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// sanitize drops control characters and invalid UTF-8 so document text
// cannot move the cursor or switch terminal modes. Tabs are expanded.
func sanitize(s string) string {
	if !needsSanitize(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size <= 1:
		case r == '\t':
			b.WriteString(strings.Repeat(" ", tabWidth))
		case r == ' ':
			b.WriteByte(' ')
		case unicode.IsControl(r):
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

const tabWidth = 4

func needsSanitize(s string) bool {
	if !utf8.ValidString(s) {
		return true
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// pad fills s with spaces to width cells.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}
