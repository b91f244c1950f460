// Package input delivers key and pointer events from the terminal.
package input

import "time"

// Kind of a key event.
type Kind int

const (
	Down Kind = iota
	Repeat
	Up
)

func (k Kind) String() string {
	switch k {
	case Down:
		return "down"
	case Repeat:
		return "repeat"
	case Up:
		return "up"
	}
	return "unknown"
}

// IsPress reports whether the event is a press or an auto-repeat press.
func (k Kind) IsPress() bool {
	return k == Down || k == Repeat
}

// Event is a key-down, auto-repeat or key-up signal.
type Event struct {
	// Key is the logical key identifier, e.g. "w", " ", "arrowright".
	Key  string
	Kind Kind
	// InTextField is set when focus is in a text-entry field. Such events
	// never trigger actions.
	InTextField bool
	// Text is the character the key types with Shift applied, e.g. ":" for
	// shift+";". Empty for keys that type nothing, like arrows or enter.
	// Bindings match Key; Text is what a text field receives.
	Text  string
	Shift bool
	Ctrl  bool
	Alt   bool
	Time  time.Time
}

// PointerEvent reports the pointer position in cells.
type PointerEvent struct {
	X, Y int
	// Button is true for a press, false for motion and release.
	Button bool
}
