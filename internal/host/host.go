// Package host is the terminal document the gesture core drives: a text
// page with history, a built-in media player and the bubbletea view that
// renders them.
package host

import (
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/keyhold/internal/dispatch"
)

// Sinks decides which media sink is present. A remote locator, when set,
// takes precedence over the built-in player.
type Sinks struct {
	mu       sync.Mutex
	builtin  *Player
	attached bool
	remote   dispatch.SinkLocator
}

var _ dispatch.SinkLocator = (*Sinks)(nil)

// NewSinks creates a locator. builtin and remote may be nil.
func NewSinks(builtin *Player, remote dispatch.SinkLocator) *Sinks {
	return &Sinks{builtin: builtin, attached: builtin != nil, remote: remote}
}

// MediaSink implements dispatch.SinkLocator.
func (s *Sinks) MediaSink() (dispatch.MediaSink, bool) {
	s.mu.Lock()
	remote := s.remote
	builtin, attached := s.builtin, s.attached
	s.mu.Unlock()

	if remote != nil {
		if sink, ok := remote.MediaSink(); ok {
			return sink, true
		}
	}
	if builtin != nil && attached {
		return builtin, true
	}
	return nil, false
}

// Attached reports whether the built-in player is on the page.
func (s *Sinks) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builtin != nil && s.attached
}

// ToggleAttached adds or removes the built-in player from the page.
func (s *Sinks) ToggleAttached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = !s.attached && s.builtin != nil
	return s.attached
}

// Focus tracks whether the prompt, the only text field, has keyboard focus.
// It follows the key messages sent to the view in the order they are sent,
// so it is already current for the next key while the view is still behind.
// Not safe for concurrent use; the input router owns it.
type Focus struct {
	textField bool
}

var focusKeys = defaultKeyMap()

// InTextField reports whether a text field is focused.
func (f *Focus) InTextField() bool {
	return f.textField
}

// Set records whether a text field is focused.
func (f *Focus) Set(v bool) {
	f.textField = v
}

// Track updates the focus for a key message about to be sent to the view,
// mirroring how the view opens and closes its prompt.
func (f *Focus) Track(msg tea.KeyMsg) {
	switch {
	case !f.textField && key.Matches(msg, focusKeys.Prompt):
		f.textField = true
	case f.textField && key.Matches(msg, focusKeys.Submit, focusKeys.Cancel):
		f.textField = false
	}
}

// Actions wires the named actions to the page.
func Actions(page *Page) dispatch.Actions {
	return dispatch.Actions{
		ToggleLike: page.ToggleLike,
		Back:       page.Back,
		Forward:    page.Forward,
		Reload:     page.Reload,
		ClickAt:    page.ClickAt,
		Pointer:    page.Pointer,
	}
}
