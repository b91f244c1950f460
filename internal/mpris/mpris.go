//go:build linux

package mpris

import (
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/sirupsen/logrus"
)

// Adapter publishes the built-in player as org.mpris.MediaPlayer2.keyhold.
type Adapter struct {
	server *server.Server
}

// New registers player on the session bus. Registration runs in the
// background; a failure is logged and leaves the viewer unaffected.
func New(player Player, log logrus.FieldLogger) (*Adapter, error) {
	if player == nil {
		return nil, errors.New("mpris: nil player")
	}
	x := &exposed{player: player}
	a := &Adapter{server: server.NewServer(ServiceName, x, x)}
	go func() {
		if err := a.server.Listen(); err != nil {
			log.WithError(err).Warn("mpris server stopped")
		}
	}()
	return a, nil
}

// Close unregisters the player.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// exposed answers both the root and the Player interface of MPRIS.
// The built-in player holds a single item and cannot be raised or quit.
type exposed struct {
	player Player
}

func (x *exposed) Identity() (string, error)              { return "keyhold", nil }
func (x *exposed) Raise() error                           { return nil }
func (x *exposed) Quit() error                            { return nil }
func (x *exposed) CanQuit() (bool, error)                 { return false, nil }
func (x *exposed) CanRaise() (bool, error)                { return false, nil }
func (x *exposed) HasTrackList() (bool, error)            { return false, nil }
func (x *exposed) SupportedUriSchemes() ([]string, error) { return nil, nil } //nolint:revive // MPRIS name
func (x *exposed) SupportedMimeTypes() ([]string, error)  { return nil, nil }

func (x *exposed) Next() error                   { return nil }
func (x *exposed) Previous() error               { return nil }
func (x *exposed) OpenUri(string) error          { return nil } //nolint:revive // MPRIS name
func (x *exposed) CanGoNext() (bool, error)      { return false, nil }
func (x *exposed) CanGoPrevious() (bool, error)  { return false, nil }
func (x *exposed) CanPause() (bool, error)       { return true, nil }
func (x *exposed) CanControl() (bool, error)     { return true, nil }
func (x *exposed) Volume() (float64, error)      { return 1, nil }
func (x *exposed) SetVolume(float64) error       { return nil }
func (x *exposed) MinimumRate() (float64, error) { return MinRate, nil }
func (x *exposed) MaximumRate() (float64, error) { return MaxRate, nil }

func (x *exposed) Play() error {
	x.player.Play()
	return nil
}

func (x *exposed) Pause() error {
	x.player.Pause()
	return nil
}

func (x *exposed) PlayPause() error {
	x.player.Toggle()
	return nil
}

// Stop pauses and rewinds.
func (x *exposed) Stop() error {
	x.player.Pause()
	return x.player.SeekTo(0)
}

func (x *exposed) Seek(offset types.Microseconds) error {
	return x.player.SeekBy(micro(offset))
}

func (x *exposed) SetPosition(_ string, pos types.Microseconds) error {
	return x.player.SeekTo(micro(pos))
}

func (x *exposed) Position() (int64, error) {
	return x.player.Position().Microseconds(), nil
}

func (x *exposed) PlaybackStatus() (types.PlaybackStatus, error) {
	switch {
	case x.player.Playing():
		return types.PlaybackStatusPlaying, nil
	case x.player.Position() > 0:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (x *exposed) Rate() (float64, error) { return x.player.Rate(), nil }

func (x *exposed) SetRate(rate float64) error {
	x.player.SetRate(clampRate(rate))
	return nil
}

func (x *exposed) CanPlay() (bool, error) { return x.player.Length() > 0, nil }
func (x *exposed) CanSeek() (bool, error) { return x.player.Length() > 0, nil }

func (x *exposed) Metadata() (types.Metadata, error) {
	length := x.player.Length()
	if length <= 0 {
		return types.Metadata{}, nil
	}
	title := x.player.Title()
	return types.Metadata{
		TrackId: trackID(title),
		Length:  types.Microseconds(length.Microseconds()),
		Title:   title,
	}, nil
}

func micro(us types.Microseconds) time.Duration {
	return time.Duration(us) * time.Microsecond
}

func trackID(title string) dbus.ObjectPath {
	h := fnv.New64a()
	_, _ = h.Write([]byte(title))
	return dbus.ObjectPath(fmt.Sprintf("%s/Track/%x", objectPath, h.Sum64()))
}
