package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/keyhold/internal/keymap"
)

func newStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindings.toml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return NewStore(path, nil)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s := newStore(t, "")

	st, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, keymap.DefaultSettings(), st)
}

func TestLoad_AbsentVersusEmpty(t *testing.T) {
	s := newStore(t, `
scroll_speed = 8
arrow_keys_scroll = false

[keys]
scroll-up = "I"
toggle-like = ""
`)

	st, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, st.ScrollSpeed)
	assert.True(t, st.ArrowKeysAsSeek, "absent flag keeps its default")
	assert.False(t, st.ArrowKeysScroll)

	r := keymap.NewResolver(st)
	key, ok := r.Resolve(keymap.ActionScrollUp)
	assert.True(t, ok)
	assert.Equal(t, "i", key)

	_, ok = r.Resolve(keymap.ActionToggleLike)
	assert.False(t, ok, "empty string unbinds")

	key, ok = r.Resolve(keymap.ActionScrollDown)
	assert.True(t, ok)
	assert.Equal(t, "s", key, "absent entry uses the default")
}

func TestLoad_ParseErrorFallsBackToDefaults(t *testing.T) {
	s := newStore(t, "[keys\nscroll-up = ")

	st, err := s.Load(context.Background())

	require.Error(t, err)
	assert.Equal(t, keymap.DefaultSettings(), st)
}

func TestLoad_IgnoresUnknownAndMistypedEntries(t *testing.T) {
	logger, hook := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "bindings.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[keys]
teleport = "t"
seek-back = 4
seek-forward = "e"
`), 0o600))
	s := NewStore(path, logger)

	st, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, keymap.BindingSet{keymap.ActionSeekForward: "e"}, st.Keys)
	assert.Len(t, hook.AllEntries(), 2)
}

func TestLoad_CancelledContext(t *testing.T) {
	s := newStore(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := s.Load(ctx)

	// Either the read or the cancellation may win; both yield usable settings.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, keymap.DefaultScrollSpeed, st.ScrollSpeed)
}

func TestSaveRoundTrip(t *testing.T) {
	s := newStore(t, "")
	want := keymap.Settings{
		Keys: keymap.BindingSet{
			keymap.ActionScrollUp:   "k",
			keymap.ActionScrollDown: "j",
			keymap.ActionToggleLike: "",
		},
		ScrollSpeed:     3,
		ArrowKeysAsSeek: false,
		ArrowKeysScroll: true,
	}

	require.NoError(t, s.Save(want))
	got, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSave_RejectsConflicts(t *testing.T) {
	s := newStore(t, "")
	st := keymap.DefaultSettings()
	st.Keys[keymap.ActionReload] = "w"

	err := s.Save(st)

	var conflict *keymap.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "w", conflict.Key)
	_, statErr := os.Stat(s.Path())
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "nothing written")
}

func TestBind(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, "")

	st, err := s.Bind(ctx, keymap.ActionToggleLike, "L")
	require.NoError(t, err)
	assert.Equal(t, "l", st.Keys[keymap.ActionToggleLike])

	_, err = s.Bind(ctx, keymap.ActionToggleLike, "d")
	var conflict *keymap.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, keymap.ActionSeekForward, conflict.Existing)

	_, err = s.Bind(ctx, keymap.ActionBack, "  ")
	require.Error(t, err)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "l", loaded.Keys[keymap.ActionToggleLike], "failed binds leave the file alone")
}

func TestUnbindAndReset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, "")

	_, err := s.Unbind(ctx, keymap.ActionSeekForward)
	require.NoError(t, err)

	// The freed key can now be bound elsewhere.
	_, err = s.Bind(ctx, keymap.ActionReload, "d")
	require.NoError(t, err)

	// Restoring seek-forward would clash with reload.
	_, err = s.Reset(ctx, keymap.ActionSeekForward)
	var conflict *keymap.ConflictError
	require.ErrorAs(t, err, &conflict)

	st, err := s.Reset(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Keys)
	for _, b := range Effective(st) {
		assert.False(t, b.Custom, b.Action)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		keys    keymap.BindingSet
		wantErr bool
	}{
		{"defaults", keymap.BindingSet{}, false},
		{"custom distinct", keymap.BindingSet{keymap.ActionScrollUp: "k"}, false},
		{"clash with default", keymap.BindingSet{keymap.ActionBack: "a"}, true},
		{"clash resolved by unbinding", keymap.BindingSet{keymap.ActionBack: "a", keymap.ActionSeekBack: ""}, false},
		{"case-insensitive clash", keymap.BindingSet{keymap.ActionScrollUp: "K", keymap.ActionScrollDown: "k"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.keys)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEffective(t *testing.T) {
	st := keymap.DefaultSettings()
	st.Keys = keymap.BindingSet{keymap.ActionReload: ""}

	rows := Effective(st)

	require.Len(t, rows, len(keymap.Actions))
	assert.Equal(t, Binding{Action: keymap.ActionScrollUp, Key: "w"}, rows[0])
	for _, row := range rows {
		if row.Action == keymap.ActionReload {
			assert.Equal(t, Binding{Action: keymap.ActionReload, Key: "", Custom: true}, row)
		}
	}
}

type pushes struct {
	mu   sync.Mutex
	list []keymap.Settings
}

func (p *pushes) add(st keymap.Settings, _ error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.list = append(p.list, st)
}

func (p *pushes) last() (keymap.Settings, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.list) == 0 {
		return keymap.Settings{}, 0
	}
	return p.list[len(p.list)-1], len(p.list)
}

func TestWatchPushesUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newStore(t, "")
	var got pushes

	require.NoError(t, s.Watch(ctx, got.add))

	st := keymap.DefaultSettings()
	st.ScrollSpeed = 5
	require.NoError(t, s.Save(st))

	require.Eventually(t, func() bool {
		last, n := got.last()
		return n > 0 && last.ScrollSpeed == 5
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(s.Path()))
	require.Eventually(t, func() bool {
		last, _ := got.last()
		return last.ScrollSpeed == keymap.DefaultScrollSpeed
	}, 3*time.Second, 20*time.Millisecond, "removal pushes the defaults")
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newStore(t, "")
	var got pushes

	require.NoError(t, s.Watch(ctx, got.add))
	other := filepath.Join(filepath.Dir(s.Path()), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("hello"), 0o600))

	time.Sleep(3 * WatchDebounce)
	_, n := got.last()
	assert.Zero(t, n)
}
