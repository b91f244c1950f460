// Package keymap defines the bindable actions and resolves them to trigger keys.
package keymap

import (
	"errors"
	"fmt"
)

// Action represents a user-triggerable action.
type Action string

const (
	// Continuous motion
	ActionScrollUp   Action = "scroll-up"
	ActionScrollDown Action = "scroll-down"

	// Media
	ActionSeekBack    Action = "seek-back"
	ActionSeekForward Action = "seek-forward" // short = seek, long = hold Space
	ActionToggleLike  Action = "toggle-like"

	// Page navigation
	ActionBack    Action = "back"
	ActionForward Action = "forward"
	ActionReload  Action = "reload"

	ActionClickAtCursor Action = "click-at-cursor"
)

// Actions lists every action in resolution order. When two actions claim the
// same key, the one listed first wins.
var Actions = []Action{
	ActionScrollUp,
	ActionScrollDown,
	ActionSeekBack,
	ActionSeekForward,
	ActionToggleLike,
	ActionBack,
	ActionForward,
	ActionReload,
	ActionClickAtCursor,
}

// ErrUnknownAction is returned when an action name is not part of Actions.
var ErrUnknownAction = errors.New("unknown action")

// ParseAction validates an action name.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// Description returns a short human description of the action.
func (a Action) Description() string {
	switch a {
	case ActionScrollUp:
		return "Scroll up while held"
	case ActionScrollDown:
		return "Scroll down while held"
	case ActionSeekBack:
		return "Seek backward"
	case ActionSeekForward:
		return "Seek forward (hold to fast-forward)"
	case ActionToggleLike:
		return "Toggle like"
	case ActionBack:
		return "Go back"
	case ActionForward:
		return "Go forward"
	case ActionReload:
		return "Reload page"
	case ActionClickAtCursor:
		return "Click at pointer"
	}
	return string(a)
}
