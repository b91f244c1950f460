package input

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestDecoder(kitty bool) *Decoder {
	d := NewDecoder(kitty)
	d.now = func() time.Time { return stamp }
	return d
}

// key builds an unmodified event; single characters type themselves.
func key(k string, kind Kind) Event {
	ev := Event{Key: k, Kind: kind, Time: stamp}
	if utf8.RuneCountInString(k) == 1 {
		ev.Text = k
	}
	return ev
}

func shifted(k, text string, kind Kind) Event {
	return Event{Key: k, Text: text, Shift: true, Kind: kind, Time: stamp}
}

func TestDecodeKitty(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []any
	}{
		{"press without mods", "\x1b[119u", []any{key("w", Down)}},
		{"explicit press", "\x1b[119;1:1u", []any{key("w", Down)}},
		{"repeat", "\x1b[119;1:2u", []any{key("w", Repeat)}},
		{"release", "\x1b[119;1:3u", []any{key("w", Up)}},
		{"space", "\x1b[32;1:3u", []any{key(" ", Up)}},
		{"enter", "\x1b[13u", []any{key("enter", Down)}},
		{"shifted letter keeps base key", "\x1b[100:68;2u", []any{shifted("d", "D", Down)}},
		{"shifted punctuation types alternate", "\x1b[59:58;2u", []any{shifted(";", ":", Down)}},
		{"shifted release", "\x1b[47:63;2:3u", []any{shifted("/", "?", Up)}},
		{"shift without alternate key", "\x1b[104;2u", []any{shifted("h", "H", Down)}},
		{
			"shift tab", "\x1b[9;2u",
			[]any{Event{Key: "tab", Shift: true, Kind: Down, Time: stamp}},
		},
		{
			"ctrl modifier", "\x1b[99;5u",
			[]any{Event{Key: "c", Text: "c", Kind: Down, Ctrl: true, Time: stamp}},
		},
		{"modifier key ignored", "\x1b[57441;2u", nil},
		{"arrow press", "\x1b[C", []any{key("arrowright", Down)}},
		{"arrow release", "\x1b[1;1:3C", []any{key("arrowright", Up)}},
		{"arrow repeat", "\x1b[1;1:2A", []any{key("arrowup", Repeat)}},
		{"page down release", "\x1b[6;1:3~", []any{key("pagedown", Up)}},
		{"unknown tilde", "\x1b[99~", nil},
		{"keyboard query reply", "\x1b[?11u", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDecoder(true)
			got := d.Feed([]byte(tt.input))
			assert.Equal(t, tt.want, got)
			assert.False(t, d.Pending())
		})
	}
}

func TestDecodeLegacyTaps(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		text  string
		shift bool
		ctrl  bool
		alt   bool
	}{
		{"letter", "w", "w", "w", false, false, false},
		{"uppercase folds", "W", "w", "W", true, false, false},
		{"punctuation", ":", ":", ":", false, false, false},
		{"space", " ", " ", " ", false, false, false},
		{"enter", "\r", "enter", "", false, false, false},
		{"tab", "\t", "tab", "", false, false, false},
		{"backspace", "\x7f", "backspace", "", false, false, false},
		{"ctrl letter", "\x03", "c", "c", false, true, false},
		{"alt letter", "\x1bw", "w", "w", false, false, true},
		{"arrow", "\x1b[D", "arrowleft", "", false, false, false},
		{"ss3 arrow", "\x1bOA", "arrowup", "", false, false, false},
		{"unicode", "é", "é", "é", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDecoder(false)
			got := d.Feed([]byte(tt.input))
			require.Len(t, got, 2)
			down := Event{Key: tt.key, Text: tt.text, Shift: tt.shift, Kind: Down, Ctrl: tt.ctrl, Alt: tt.alt, Time: stamp}
			up := down
			up.Kind = Up
			assert.Equal(t, []any{down, up}, got)
		})
	}
}

func TestDecodeSequenceOfKeys(t *testing.T) {
	d := newTestDecoder(true)

	got := d.Feed([]byte("\x1b[100u\x1b[100;1:2u\x1b[100;1:3u"))

	assert.Equal(t, []any{key("d", Down), key("d", Repeat), key("d", Up)}, got)
}

func TestDecodeSplitSequence(t *testing.T) {
	d := newTestDecoder(true)

	assert.Empty(t, d.Feed([]byte("\x1b[119;1")))
	assert.True(t, d.Pending())
	assert.Equal(t, []any{key("w", Up)}, d.Feed([]byte(":3u")))
	assert.False(t, d.Pending())
}

func TestDecodeLoneEscape(t *testing.T) {
	d := newTestDecoder(false)

	assert.Empty(t, d.Feed([]byte{0x1b}))
	require.True(t, d.Pending())

	got := d.Flush()
	assert.Equal(t, []any{key("escape", Down), key("escape", Up)}, got)
	assert.Empty(t, d.Flush())
}

func TestDecodeMouse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  PointerEvent
	}{
		{"left press", "\x1b[<0;10;5M", PointerEvent{X: 9, Y: 4, Button: true}},
		{"release", "\x1b[<0;10;5m", PointerEvent{X: 9, Y: 4}},
		{"motion", "\x1b[<35;1;1M", PointerEvent{X: 0, Y: 0}},
		{"wheel", "\x1b[<64;3;3M", PointerEvent{X: 2, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestDecoder(true).Feed([]byte(tt.input))
			assert.Equal(t, []any{tt.want}, got)
		})
	}
}

func TestDecodeFocus(t *testing.T) {
	d := newTestDecoder(true)

	got := d.Feed([]byte("\x1b[O\x1b[I"))

	assert.Equal(t, []any{FocusEvent{Focused: false}, FocusEvent{Focused: true}}, got)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "down", Down.String())
	assert.Equal(t, "repeat", Repeat.String())
	assert.Equal(t, "up", Up.String())
	assert.True(t, Repeat.IsPress())
	assert.False(t, Up.IsPress())
}
