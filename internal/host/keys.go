package host

import (
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/keyhold/internal/input"
)

var namedKeys = map[string]tea.KeyType{
	"enter":      tea.KeyEnter,
	"tab":        tea.KeyTab,
	"escape":     tea.KeyEsc,
	"backspace":  tea.KeyBackspace,
	"delete":     tea.KeyDelete,
	"insert":     tea.KeyInsert,
	"home":       tea.KeyHome,
	"end":        tea.KeyEnd,
	"pageup":     tea.KeyPgUp,
	"pagedown":   tea.KeyPgDown,
	"arrowup":    tea.KeyUp,
	"arrowdown":  tea.KeyDown,
	"arrowleft":  tea.KeyLeft,
	"arrowright": tea.KeyRight,
	" ":          tea.KeySpace,
}

// TeaKey converts a key event the gesture core did not consume into the
// message bubbletea components expect. Releases have no equivalent.
func TeaKey(ev input.Event) (tea.KeyMsg, bool) {
	if ev.Kind == input.Up {
		return tea.KeyMsg{}, false
	}
	if ev.Ctrl {
		if r, size := utf8.DecodeRuneInString(ev.Key); size == len(ev.Key) && r >= 'a' && r <= 'z' {
			return tea.KeyMsg{Type: tea.KeyCtrlA + tea.KeyType(r-'a'), Alt: ev.Alt}, true
		}
		return tea.KeyMsg{}, false
	}
	if t, ok := namedKeys[ev.Key]; ok {
		msg := tea.KeyMsg{Type: t, Alt: ev.Alt}
		switch {
		case t == tea.KeySpace:
			msg.Runes = []rune{' '}
		case t == tea.KeyTab && ev.Shift:
			msg.Type = tea.KeyShiftTab
		}
		return msg, true
	}
	// The typed character, so shift+";" reaches the view as ":".
	text := ev.Text
	if text == "" {
		text = ev.Key
	}
	if utf8.RuneCountInString(text) != 1 {
		return tea.KeyMsg{}, false
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text), Alt: ev.Alt}, true
}

type keyMap struct {
	Quit   key.Binding
	Prompt key.Binding
	Media  key.Binding
	Play   key.Binding
	Help   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Prompt: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "goto line / open")),
		Media:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle media")),
		Play:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play/pause")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "bindings")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Prompt, k.Media, k.Play, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Submit, k.Cancel}}
}
