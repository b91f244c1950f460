package keymap

import "sync/atomic"

// effective returns the normalized key bound to action, applying the
// compiled-in default when the action has no entry.
func (b BindingSet) effective(action Action) (string, bool) {
	key, present := b[action]
	if !present {
		key = DefaultKeys()[action]
	}
	key = NormalizeKey(key)
	return key, key != ""
}

// Resolver answers binding queries against one Settings snapshot.
type Resolver struct {
	settings Settings
	byAction map[Action]string // action -> key, unbound actions omitted
	byKey    map[string]Action // key -> first action claiming it
}

// NewResolver creates a resolver from settings. It never fails: missing or
// malformed entries fall back to defaults.
func NewResolver(s Settings) *Resolver {
	r := &Resolver{
		settings: s.Normalized(),
		byAction: make(map[Action]string, len(Actions)),
		byKey:    make(map[string]Action, len(Actions)),
	}
	for _, action := range Actions {
		key, ok := s.Keys.effective(action)
		if !ok {
			continue
		}
		r.byAction[action] = key
		if _, taken := r.byKey[key]; !taken {
			r.byKey[key] = action
		}
	}
	return r
}

// Resolve returns the trigger key for an action, or false if it is unbound.
func (r *Resolver) Resolve(action Action) (string, bool) {
	key, ok := r.byAction[action]
	return key, ok
}

// IsBound reports whether any action claims key.
func (r *Resolver) IsBound(key string) bool {
	_, ok := r.byKey[NormalizeKey(key)]
	return ok
}

// ActionFor returns the action bound to key. Duplicates resolve to the
// action that comes first in Actions.
func (r *Resolver) ActionFor(key string) (Action, bool) {
	action, ok := r.byKey[NormalizeKey(key)]
	return action, ok
}

// Settings returns the normalized snapshot the resolver was built from.
func (r *Resolver) Settings() Settings {
	return r.settings
}

// Live holds the most recently pushed settings. Reads always see the latest
// snapshot; the zero value is not usable, use NewLive.
type Live struct {
	current atomic.Pointer[Resolver]
}

// NewLive creates a Live starting from the compiled-in defaults.
func NewLive() *Live {
	l := &Live{}
	l.current.Store(NewResolver(DefaultSettings()))
	return l
}

// Set replaces the current snapshot.
func (l *Live) Set(s Settings) {
	l.current.Store(NewResolver(s))
}

// Resolver returns a resolver over the current snapshot.
func (l *Live) Resolver() *Resolver {
	return l.current.Load()
}
