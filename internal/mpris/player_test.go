package mpris

import "testing"

func TestPickPlayer(t *testing.T) {
	names := []string{
		"org.freedesktop.DBus",
		":1.42",
		"org.mpris.MediaPlayer2.keyhold",
		"org.mpris.MediaPlayer2.firefox.instance_1_84",
		"org.mpris.MediaPlayer2.mpv",
	}

	tests := []struct {
		name   string
		names  []string
		filter string
		want   string
		ok     bool
	}{
		{"first foreign player", names, "", "org.mpris.MediaPlayer2.firefox.instance_1_84", true},
		{"filter by name", names, "mpv", "org.mpris.MediaPlayer2.mpv", true},
		{"filter is case-insensitive", names, "Firefox", "org.mpris.MediaPlayer2.firefox.instance_1_84", true},
		{"own service skipped", []string{"org.mpris.MediaPlayer2.keyhold.instance2"}, "", "", false},
		{"no match", names, "vlc", "", false},
		{"no players", []string{"org.freedesktop.DBus"}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickPlayer(tt.names, tt.filter)
			if ok != tt.ok || got != tt.want {
				t.Errorf("pickPlayer() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestClampRate(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.5, MinRate},
		{1.5, 1.5},
		{4, MaxRate},
	}
	for _, tt := range tests {
		if got := clampRate(tt.in); got != tt.want {
			t.Errorf("clampRate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
