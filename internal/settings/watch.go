package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/llehouerou/keyhold/internal/keymap"
)

// WatchDebounce coalesces the burst of events an editor save produces.
const WatchDebounce = 100 * time.Millisecond

// Watch calls fn with freshly loaded settings after every change to the
// bindings file, until ctx is done. The parent directory is watched so the
// file may be created, replaced or removed; removal pushes the defaults.
// fn runs on a timer goroutine, one call at a time.
func (s *Store) Watch(ctx context.Context, fn func(keymap.Settings, error)) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go s.watchLoop(ctx, w, fn)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher, fn func(keymap.Settings, error)) {
	defer w.Close()

	target := filepath.Clean(s.path)
	var (
		mu      sync.Mutex
		timer   *time.Timer
		stopped bool
	)
	reload := func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		st, err := s.read()
		fn(st, err)
	}
	defer func() {
		mu.Lock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target || ev.Op == fsnotify.Chmod {
				continue
			}
			s.log.WithField("op", ev.Op.String()).Debug("bindings file changed")
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(WatchDebounce, reload)
			mu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.WithError(err).Warn("bindings watcher error")
		}
	}
}
