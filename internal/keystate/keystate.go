// Package keystate tracks which trigger keys are currently held down.
package keystate

import "sort"

// Reader is the read-only view handed to timers and animation callbacks.
type Reader interface {
	IsHeld(key string) bool
}

// Tracker is the single writer of held-key state.
// It is not safe for concurrent use; all calls happen on the event loop.
type Tracker struct {
	held map[string]struct{}
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{held: make(map[string]struct{})}
}

// OnDown marks key as held. It reports whether the key was already held,
// in which case the call is an auto-repeat and callers must not start
// anything new.
func (t *Tracker) OnDown(key string) (wasAlreadyHeld bool) {
	if _, ok := t.held[key]; ok {
		return true
	}
	t.held[key] = struct{}{}
	return false
}

// OnUp releases key and reports whether it was held.
func (t *Tracker) OnUp(key string) (wasHeld bool) {
	if _, ok := t.held[key]; !ok {
		return false
	}
	delete(t.held, key)
	return true
}

// IsHeld reports whether key is currently held.
func (t *Tracker) IsHeld(key string) bool {
	_, ok := t.held[key]
	return ok
}

// Held returns the held keys in sorted order.
func (t *Tracker) Held() []string {
	keys := make([]string, 0, len(t.held))
	for k := range t.held {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset releases every key. Used on teardown.
func (t *Tracker) Reset() {
	clear(t.held)
}
