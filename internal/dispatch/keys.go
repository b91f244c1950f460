package dispatch

import (
	"errors"
	"fmt"
)

// KeyKind is the half of a synthetic key cycle.
type KeyKind int

const (
	KeyDown KeyKind = iota
	KeyUp
)

func (k KeyKind) String() string {
	if k == KeyUp {
		return "keyup"
	}
	return "keydown"
}

// Logical key names accepted by DispatchSyntheticKey.
const (
	ArrowLeft  = "ArrowLeft"
	ArrowUp    = "ArrowUp"
	ArrowRight = "ArrowRight"
	ArrowDown  = "ArrowDown"
	Space      = "Space"
)

// KeyIdentity is the stable identity of a synthetic key. Down and up halves
// carry the same identity so listeners matching on any field correlate them.
type KeyIdentity struct {
	Key     string // named key, as reported by the key field of a key event
	Code    string // physical key code
	KeyCode int    // legacy numeric code
}

// SyntheticKey is one injected key signal.
type SyntheticKey struct {
	Kind KeyKind
	KeyIdentity
}

var identities = map[string]KeyIdentity{
	ArrowLeft:  {Key: "ArrowLeft", Code: "ArrowLeft", KeyCode: 37},
	ArrowUp:    {Key: "ArrowUp", Code: "ArrowUp", KeyCode: 38},
	ArrowRight: {Key: "ArrowRight", Code: "ArrowRight", KeyCode: 39},
	ArrowDown:  {Key: "ArrowDown", Code: "ArrowDown", KeyCode: 40},
	Space:      {Key: " ", Code: "Space", KeyCode: 32},
}

// ErrUnknownKey is returned for logical keys without an identity.
var ErrUnknownKey = errors.New("unknown synthetic key")

// Identity returns the identity of a logical key.
func Identity(logical string) (KeyIdentity, error) {
	id, ok := identities[logical]
	if !ok {
		return KeyIdentity{}, fmt.Errorf("%w: %q", ErrUnknownKey, logical)
	}
	return id, nil
}
