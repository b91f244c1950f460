package keymap

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// BindingSet maps actions to trigger keys.
// A missing entry means "use the default"; an empty key means "unbound".
type BindingSet map[Action]string

// Scroll speed bounds. The speed is configured as an integer and mapped
// linearly to a pixels-per-frame multiplier of speed/2.
const (
	MinScrollSpeed     = 1
	MaxScrollSpeed     = 20
	DefaultScrollSpeed = 20
)

// Settings is one snapshot of the user configuration.
type Settings struct {
	Keys            BindingSet
	ScrollSpeed     int
	ArrowKeysAsSeek bool // arrowright behaves like seek-forward (long press only)
	ArrowKeysScroll bool // arrowup/arrowdown scroll continuously
}

// DefaultKeys returns the compiled-in bindings.
func DefaultKeys() BindingSet {
	return BindingSet{
		ActionScrollUp:      "w",
		ActionScrollDown:    "s",
		ActionSeekBack:      "a",
		ActionSeekForward:   "d",
		ActionToggleLike:    "z",
		ActionBack:          "b",
		ActionForward:       "f",
		ActionReload:        "r",
		ActionClickAtCursor: "x",
	}
}

// DefaultSettings returns the settings used before any configuration loads.
func DefaultSettings() Settings {
	return Settings{
		Keys:            DefaultKeys(),
		ScrollSpeed:     DefaultScrollSpeed,
		ArrowKeysAsSeek: true,
		ArrowKeysScroll: true,
	}
}

// Normalized returns a copy with the speed clamped and every key normalized.
func (s Settings) Normalized() Settings {
	out := s
	switch {
	case s.ScrollSpeed == 0:
		out.ScrollSpeed = DefaultScrollSpeed
	case s.ScrollSpeed < MinScrollSpeed:
		out.ScrollSpeed = MinScrollSpeed
	case s.ScrollSpeed > MaxScrollSpeed:
		out.ScrollSpeed = MaxScrollSpeed
	}
	out.Keys = make(BindingSet, len(s.Keys))
	for action, key := range s.Keys {
		out.Keys[action] = NormalizeKey(key)
	}
	return out
}

// SpeedMultiplier maps ScrollSpeed (1-20) to pixels per nominal frame (0.5-10).
func (s Settings) SpeedMultiplier() float64 {
	return float64(s.Normalized().ScrollSpeed) / 2
}

var keyAliases = map[string]string{
	"space":  " ",
	"left":   "arrowleft",
	"right":  "arrowright",
	"up":     "arrowup",
	"down":   "arrowdown",
	"esc":    "escape",
	"return": "enter",
	"del":    "delete",
	"pgup":   "pageup",
	"pgdown": "pagedown",
}

// NormalizeKey lowercases a key identifier and folds common aliases.
// A lone space is a valid key and is preserved.
func NormalizeKey(key string) string {
	if key == " " {
		return key
	}
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return k
}

var displayNames = map[string]string{
	" ":          "Space",
	"arrowleft":  "ArrowLeft",
	"arrowright": "ArrowRight",
	"arrowup":    "ArrowUp",
	"arrowdown":  "ArrowDown",
	"escape":     "Escape",
	"enter":      "Enter",
	"tab":        "Tab",
	"backspace":  "Backspace",
	"delete":     "Delete",
	"home":       "Home",
	"end":        "End",
	"pageup":     "PageUp",
	"pagedown":   "PageDown",
}

// FormatKey returns the display name of a key.
func FormatKey(key string) string {
	if key == "" {
		return "None"
	}
	k := NormalizeKey(key)
	if name, ok := displayNames[k]; ok {
		return name
	}
	if utf8.RuneCountInString(k) == 1 {
		return strings.ToUpper(k)
	}
	return key
}

// Conflicts returns the action other than exclude that already uses key.
// Empty keys never conflict.
func Conflicts(set BindingSet, key string, exclude Action) (Action, bool) {
	k := NormalizeKey(key)
	if k == "" {
		return "", false
	}
	for _, action := range Actions {
		if action == exclude {
			continue
		}
		if bound, ok := set.effective(action); ok && bound == k {
			return action, true
		}
	}
	return "", false
}

// ConflictError reports a key already claimed by another action.
type ConflictError struct {
	Key      string
	Action   Action
	Existing Action
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("key %s for %s is already bound to %s", FormatKey(e.Key), e.Action, e.Existing)
}
