// Package settings persists key bindings and pushes updates when the
// bindings file changes.
//
// The file is TOML:
//
//	scroll_speed = 20
//	arrow_keys_as_seek = true
//	arrow_keys_scroll = true
//
//	[keys]
//	scroll-up = "w"
//	toggle-like = ""   # unbound
//
// Actions missing from [keys] use their default key.
package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/keyhold/internal/keymap"
)

const (
	keyScrollSpeed     = "scroll_speed"
	keyArrowKeysAsSeek = "arrow_keys_as_seek"
	keyArrowKeysScroll = "arrow_keys_scroll"
	keysSection        = "keys"
)

// Store reads and writes one bindings file.
type Store struct {
	path string
	log  logrus.FieldLogger
	mu   sync.Mutex // serializes read-modify-write in Update
}

// NewStore creates a store for path. The file need not exist.
func NewStore(path string, log logrus.FieldLogger) *Store {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Store{path: path, log: log}
}

// Path returns the bindings file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings without blocking the caller past ctx. A missing
// file yields the defaults. On a read or parse error the defaults are
// returned along with the error, so callers can always apply the result.
func (s *Store) Load(ctx context.Context) (keymap.Settings, error) {
	type result struct {
		settings keymap.Settings
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		st, err := s.read()
		ch <- result{st, err}
	}()

	select {
	case <-ctx.Done():
		return keymap.DefaultSettings(), ctx.Err()
	case r := <-ch:
		return r.settings, r.err
	}
}

func (s *Store) read() (keymap.Settings, error) {
	defaults := keymap.DefaultSettings()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return defaults, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), toml.Parser()); err != nil {
		return defaults, fmt.Errorf("loading %s: %w", s.path, err)
	}
	return s.fromKoanf(k), nil
}

// fromKoanf never fails: wrong types and unknown actions are logged and
// ignored.
func (s *Store) fromKoanf(k *koanf.Koanf) keymap.Settings {
	st := keymap.DefaultSettings()
	st.Keys = keymap.BindingSet{}

	if k.Exists(keyScrollSpeed) {
		st.ScrollSpeed = k.Int(keyScrollSpeed)
	}
	if k.Exists(keyArrowKeysAsSeek) {
		st.ArrowKeysAsSeek = k.Bool(keyArrowKeysAsSeek)
	}
	if k.Exists(keyArrowKeysScroll) {
		st.ArrowKeysScroll = k.Bool(keyArrowKeysScroll)
	}

	for name, raw := range k.Cut(keysSection).Raw() {
		action, err := keymap.ParseAction(name)
		if err != nil {
			s.log.WithError(err).WithField("file", s.path).Warn("ignoring binding")
			continue
		}
		key, ok := raw.(string)
		if !ok {
			s.log.WithFields(logrus.Fields{"file": s.path, "action": name}).
				Warn("ignoring non-string binding")
			continue
		}
		st.Keys[action] = key
	}
	return st.Normalized()
}

// Save validates st and writes it. Two actions may not share a key.
func (s *Store) Save(st keymap.Settings) error {
	st = st.Normalized()
	if err := Validate(st.Keys); err != nil {
		return err
	}

	keys := make(map[string]any, len(st.Keys))
	for action, key := range st.Keys {
		keys[string(action)] = key
	}
	data, err := toml.Parser().Marshal(map[string]any{
		keyScrollSpeed:     st.ScrollSpeed,
		keyArrowKeysAsSeek: st.ArrowKeysAsSeek,
		keyArrowKeysScroll: st.ArrowKeysScroll,
		keysSection:        keys,
	})
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return writeAtomic(s.path, data)
}

// Update loads the current file, applies fn and saves the result.
func (s *Store) Update(ctx context.Context, fn func(*keymap.Settings) error) (keymap.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Load(ctx)
	if err != nil {
		return st, err
	}
	if err := fn(&st); err != nil {
		return st, err
	}
	if err := s.Save(st); err != nil {
		return st, err
	}
	return st.Normalized(), nil
}

// Bind assigns key to action, rejecting keys claimed by another action.
func (s *Store) Bind(ctx context.Context, action keymap.Action, key string) (keymap.Settings, error) {
	return s.Update(ctx, func(st *keymap.Settings) error {
		key = keymap.NormalizeKey(key)
		if key == "" {
			return fmt.Errorf("binding %s: empty key", action)
		}
		if existing, ok := keymap.Conflicts(st.Keys, key, action); ok {
			return &keymap.ConflictError{Key: key, Action: action, Existing: existing}
		}
		st.Keys[action] = key
		return nil
	})
}

// Unbind disables action. Its key then passes through to the host.
func (s *Store) Unbind(ctx context.Context, action keymap.Action) (keymap.Settings, error) {
	return s.Update(ctx, func(st *keymap.Settings) error {
		st.Keys[action] = ""
		return nil
	})
}

// Reset restores the default key of the given actions, or every setting
// when none are given.
func (s *Store) Reset(ctx context.Context, actions ...keymap.Action) (keymap.Settings, error) {
	return s.Update(ctx, func(st *keymap.Settings) error {
		if len(actions) == 0 {
			*st = keymap.DefaultSettings()
			st.Keys = keymap.BindingSet{}
			return nil
		}
		for _, a := range actions {
			delete(st.Keys, a)
		}
		return Validate(st.Keys)
	})
}

// Validate reports the first pair of actions sharing a key.
func Validate(keys keymap.BindingSet) error {
	r := keymap.NewResolver(keymap.Settings{Keys: keys})
	for _, action := range keymap.Actions {
		key, ok := r.Resolve(action)
		if !ok {
			continue
		}
		if existing, clash := keymap.Conflicts(keys, key, action); clash {
			return &keymap.ConflictError{Key: key, Action: action, Existing: existing}
		}
	}
	return nil
}

// Effective lists every action with its resolved key, in resolution order.
// Unbound actions have an empty key.
func Effective(st keymap.Settings) []Binding {
	r := keymap.NewResolver(st)
	defaults := keymap.DefaultKeys()
	out := make([]Binding, 0, len(keymap.Actions))
	for _, action := range keymap.Actions {
		key, _ := r.Resolve(action)
		set, present := st.Keys[action]
		custom := present && keymap.NormalizeKey(set) != defaults[action]
		out = append(out, Binding{Action: action, Key: key, Custom: custom})
	}
	return out
}

// Binding is one row of Effective.
type Binding struct {
	Action keymap.Action
	Key    string
	Custom bool // differs from the default key
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
