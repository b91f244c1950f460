package input

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// FocusEvent reports the terminal gaining or losing focus.
type FocusEvent struct {
	Focused bool
}

// Kitty keyboard event types.
const (
	kittyPress   = 1
	kittyRepeat  = 2
	kittyRelease = 3
)

// Modifier bits, offset by one on the wire.
const (
	modShift = 1 << iota
	modAlt
	modCtrl
)

var kittyKeys = map[int]string{
	9:   "tab",
	13:  "enter",
	27:  "escape",
	32:  " ",
	127: "backspace",
}

var csiFinalKeys = map[byte]string{
	'A': "arrowup",
	'B': "arrowdown",
	'C': "arrowright",
	'D': "arrowleft",
	'H': "home",
	'F': "end",
}

var tildeKeys = map[int]string{
	1: "home",
	2: "insert",
	3: "delete",
	4: "end",
	5: "pageup",
	6: "pagedown",
	7: "home",
	8: "end",
}

// Decoder turns raw terminal bytes into Event, PointerEvent and FocusEvent
// values. Incomplete escape sequences are kept until more bytes arrive or
// Flush is called.
type Decoder struct {
	parser  *ansi.Parser
	pending []byte
	kitty   bool
	now     func() time.Time
}

// NewDecoder creates a decoder stamping events with time.Now. kitty tells
// whether the terminal was asked to report event types, in which case a key
// sequence without an event type is a press rather than a tap.
func NewDecoder(kitty bool) *Decoder {
	return &Decoder{parser: ansi.NewParser(), kitty: kitty, now: time.Now}
}

// Pending reports whether bytes are waiting for the rest of a sequence.
func (d *Decoder) Pending() bool {
	return len(d.pending) > 0
}

// Feed decodes p, returning the complete messages it contains.
func (d *Decoder) Feed(p []byte) []any {
	buf := append(d.pending, p...)
	d.pending = nil

	var out []any
	for len(buf) > 0 {
		if len(buf) >= 2 && buf[0] == ansi.ESC && buf[1] == 'O' {
			if len(buf) == 2 {
				d.pending = append([]byte(nil), buf...)
				break
			}
			out = append(out, d.ss3(buf[2])...)
			buf = buf[3:]
			continue
		}

		seq, _, n, state := ansi.DecodeSequence(buf, ansi.NormalState, d.parser)
		if state != ansi.NormalState {
			d.pending = append([]byte(nil), buf...)
			break
		}
		if n == 0 {
			n = 1
		}
		out = append(out, d.translate(seq)...)
		buf = buf[n:]
	}
	return out
}

// Flush gives up on an incomplete sequence. A lone ESC becomes the escape
// key; anything else is decoded byte by byte as legacy input.
func (d *Decoder) Flush() []any {
	buf := d.pending
	d.pending = nil
	if len(buf) == 0 {
		return nil
	}
	if len(buf) == 1 && buf[0] == ansi.ESC {
		return d.tap(Event{Key: "escape"})
	}
	if len(buf) == 2 && buf[0] == ansi.ESC {
		return d.legacy(buf[1:], true)
	}
	var out []any
	for _, b := range buf {
		out = append(out, d.legacy([]byte{b}, false)...)
	}
	return out
}

func (d *Decoder) translate(seq []byte) []any {
	switch {
	case len(seq) == 0:
		return nil
	case ansi.HasCsiPrefix(seq):
		return d.csi()
	case seq[0] == ansi.ESC && len(seq) == 1:
		return d.tap(Event{Key: "escape"})
	case seq[0] == ansi.ESC:
		return d.legacy(seq[1:], true)
	}
	return d.legacy(seq, false)
}

func (d *Decoder) csi() []any {
	cmd := ansi.Cmd(d.parser.Command())
	groups := paramGroups(d.parser.Params())

	switch {
	case cmd.Prefix() == '<' && (cmd.Final() == 'M' || cmd.Final() == 'm'):
		return d.sgrMouse(groups, cmd.Final() == 'M')
	case cmd.Prefix() != 0:
		return nil
	case cmd.Final() == 'u':
		return d.kittyKey(groups)
	case cmd.Final() == '~':
		key, ok := tildeKeys[group(groups, 0, 0, 0)]
		if !ok {
			return nil
		}
		return d.modified(Event{Key: key}, groups)
	case cmd.Final() == 'I':
		return []any{FocusEvent{Focused: true}}
	case cmd.Final() == 'O':
		return []any{FocusEvent{Focused: false}}
	}
	if key, ok := csiFinalKeys[cmd.Final()]; ok {
		return d.modified(Event{Key: key}, groups)
	}
	return nil
}

// kittyKey decodes CSI code[:shifted[:base]] ; mods[:event] ; text u.
// The shifted code is only sent while alternate key reporting is on.
func (d *Decoder) kittyKey(groups [][]int) []any {
	code := group(groups, 0, 0, 0)
	if key, ok := kittyKeys[code]; ok {
		ev := Event{Key: key}
		if key == " " {
			ev.Text = " "
		}
		return d.modified(ev, groups)
	}
	// Private use area: modifier keys, keypad, media keys.
	if !typable(code) {
		return nil
	}
	base := rune(code)
	ev := Event{Key: string(unicode.ToLower(base)), Text: string(base)}
	if modifiers(groups)&modShift != 0 {
		if shifted := group(groups, 0, 1, -1); typable(shifted) {
			ev.Text = string(rune(shifted))
		} else {
			ev.Text = string(unicode.ToUpper(base))
		}
	}
	return d.modified(ev, groups)
}

func typable(code int) bool {
	return code >= 0x20 && !(code >= 0xE000 && code <= 0xF8FF) && utf8.ValidRune(rune(code))
}

func modifiers(groups [][]int) int {
	return max(group(groups, 1, 0, 1)-1, 0)
}

// modified completes ev from the modifier group of a CSI key sequence.
func (d *Decoder) modified(ev Event, groups [][]int) []any {
	mods := modifiers(groups)
	ev.Shift = mods&modShift != 0
	ev.Ctrl = mods&modCtrl != 0
	ev.Alt = mods&modAlt != 0

	switch group(groups, 1, 1, 0) {
	case kittyPress:
	case kittyRepeat:
		ev.Kind = Repeat
	case kittyRelease:
		ev.Kind = Up
	default:
		if !d.kitty {
			return d.tap(ev)
		}
	}
	ev.Time = d.now()
	return []any{ev}
}

func (d *Decoder) sgrMouse(groups [][]int, pressed bool) []any {
	b := group(groups, 0, 0, 0)
	x, y := group(groups, 1, 0, 1), group(groups, 2, 0, 1)
	const motionBit, wheelBit = 32, 64
	return []any{PointerEvent{
		X:      x - 1,
		Y:      y - 1,
		Button: pressed && b&motionBit == 0 && b&wheelBit == 0,
	}}
}

func (d *Decoder) ss3(final byte) []any {
	key, ok := csiFinalKeys[final]
	if !ok {
		return nil
	}
	return d.tap(Event{Key: key})
}

// legacy decodes a plain byte or grapheme. The terminal reports no release
// for these, so each one is a down immediately followed by an up.
func (d *Decoder) legacy(b []byte, alt bool) []any {
	if len(b) == 0 {
		return nil
	}
	if len(b) == 1 {
		switch c := b[0]; {
		case c == '\r' || c == '\n':
			return d.tap(Event{Key: "enter", Alt: alt})
		case c == '\t':
			return d.tap(Event{Key: "tab", Alt: alt})
		case c == ansi.DEL || c == ansi.BS:
			return d.tap(Event{Key: "backspace", Alt: alt})
		case c == 0:
			return d.tap(Event{Key: " ", Text: " ", Ctrl: true, Alt: alt})
		case c >= 1 && c <= 26:
			letter := string(rune('a' + c - 1))
			return d.tap(Event{Key: letter, Text: letter, Ctrl: true, Alt: alt})
		case c < 0x20 || c > ansi.DEL:
			return nil
		}
	}
	text := string(b)
	key := strings.ToLower(text)
	return d.tap(Event{Key: key, Text: text, Shift: key != text, Alt: alt})
}

// tap turns ev into a down immediately followed by an up.
func (d *Decoder) tap(ev Event) []any {
	ev.Time = d.now()
	down, up := ev, ev
	down.Kind = Down
	up.Kind = Up
	return []any{down, up}
}

// paramGroups splits packed CSI parameters into ';'-separated groups of
// ':'-separated values. Missing values are -1.
func paramGroups(params ansi.Params) [][]int {
	var groups [][]int
	var cur []int
	for _, p := range params {
		cur = append(cur, p.Param(-1))
		if !p.HasMore() {
			groups = append(groups, cur)
			cur = nil
		}
	}
	if cur != nil {
		groups = append(groups, cur)
	}
	return groups
}

// group returns groups[i][j], or def when it is absent or missing.
func group(groups [][]int, i, j, def int) int {
	if i >= len(groups) || j >= len(groups[i]) || groups[i][j] < 0 {
		return def
	}
	return groups[i][j]
}
