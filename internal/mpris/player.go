// Package mpris bridges media players over D-Bus: it exposes the built-in
// player and locates a remote player to act as the media sink.
package mpris

import (
	"strings"
	"time"
)

const (
	// ServiceName is the bus name suffix the built-in player registers.
	ServiceName = "keyhold"

	busPrefix   = "org.mpris.MediaPlayer2."
	objectPath  = "/org/mpris/MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"

	MinRate = 1.0
	MaxRate = 2.0
)

// Player is the media the adapter exposes.
type Player interface {
	Title() string
	Length() time.Duration
	Position() time.Duration
	Playing() bool
	Rate() float64
	SetRate(rate float64)
	Play()
	Pause()
	Toggle()
	SeekBy(delta time.Duration) error
	SeekTo(pos time.Duration) error
}

func clampRate(rate float64) float64 {
	return min(max(rate, MinRate), MaxRate)
}

// pickPlayer returns the first MPRIS bus name whose suffix contains filter,
// skipping our own service. An empty filter matches any player.
func pickPlayer(names []string, filter string) (string, bool) {
	filter = strings.ToLower(filter)
	for _, name := range names {
		suffix, ok := strings.CutPrefix(name, busPrefix)
		if !ok || suffix == ServiceName || strings.HasPrefix(suffix, ServiceName+".") {
			continue
		}
		if filter == "" || strings.Contains(strings.ToLower(suffix), filter) {
			return name, true
		}
	}
	return "", false
}
