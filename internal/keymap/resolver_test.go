//nolint:goconst // test cases intentionally repeat strings for readability
package keymap

import (
	"testing"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(Settings{Keys: BindingSet{
		ActionScrollUp:   "K",
		ActionSeekBack:   "",
		ActionToggleLike: "Space",
	}})

	tests := []struct {
		action  Action
		wantKey string
		wantOK  bool
	}{
		{ActionScrollUp, "k", true},
		{ActionScrollDown, "s", true}, // absent -> default
		{ActionSeekBack, "", false},   // explicitly unbound
		{ActionToggleLike, " ", true},
		{ActionClickAtCursor, "x", true},
		{Action("unknown"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			key, ok := r.Resolve(tt.action)
			if key != tt.wantKey || ok != tt.wantOK {
				t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.action, key, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}

func TestResolver_IsBound(t *testing.T) {
	r := NewResolver(Settings{Keys: BindingSet{ActionSeekBack: ""}})

	tests := []struct {
		key  string
		want bool
	}{
		{"w", true},
		{"W", true},
		{"a", false}, // default of an unbound action
		{"q", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := r.IsBound(tt.key); got != tt.want {
				t.Errorf("IsBound(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestResolver_DuplicateFirstMatchWins(t *testing.T) {
	r := NewResolver(Settings{Keys: BindingSet{
		ActionReload:   "j",
		ActionScrollUp: "j",
	}})

	action, ok := r.ActionFor("j")
	if !ok || action != ActionScrollUp {
		t.Errorf("ActionFor(j) = (%q, %v), want scroll-up", action, ok)
	}

	// Both actions still report their own key.
	if key, _ := r.Resolve(ActionReload); key != "j" {
		t.Errorf("Resolve(reload) = %q, want j", key)
	}
}

func TestResolver_NilKeysUsesDefaults(t *testing.T) {
	r := NewResolver(Settings{})

	for action, key := range DefaultKeys() {
		got, ok := r.Resolve(action)
		if !ok || got != key {
			t.Errorf("Resolve(%q) = (%q, %v), want (%q, true)", action, got, ok, key)
		}
	}
	if r.Settings().ScrollSpeed != DefaultScrollSpeed {
		t.Errorf("ScrollSpeed = %d, want %d", r.Settings().ScrollSpeed, DefaultScrollSpeed)
	}
}

func TestLive_SetReflectsLatest(t *testing.T) {
	l := NewLive()

	if action, _ := l.Resolver().ActionFor("w"); action != ActionScrollUp {
		t.Fatalf("default ActionFor(w) = %q", action)
	}

	l.Set(Settings{Keys: BindingSet{ActionScrollUp: "i"}})

	if l.Resolver().IsBound("w") {
		t.Error("w should no longer be bound after update")
	}
	if action, _ := l.Resolver().ActionFor("i"); action != ActionScrollUp {
		t.Errorf("ActionFor(i) = %q, want scroll-up", action)
	}
}
