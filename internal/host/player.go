package host

import (
	"errors"
	"sync"
	"time"

	"github.com/llehouerou/keyhold/internal/dispatch"
)

const (
	// PlayerTargetName identifies the built-in player in logs.
	PlayerTargetName = "player"
	// BoostRate is the playback rate while Space is held.
	BoostRate = 2.0
)

// ErrNoMedia is returned when seeking a player without loaded media.
var ErrNoMedia = errors.New("no media loaded")

// PlayerState is a snapshot for rendering.
type PlayerState struct {
	Title    string
	Position time.Duration
	Length   time.Duration
	Rate     float64
	Playing  bool
}

// Player is the built-in media sink: a clock-driven playhead over a fixed
// length. It reacts to synthetic keys the way an embedded video does:
// arrows seek and a held Space plays at double rate.
type Player struct {
	mu       sync.Mutex
	title    string
	length   time.Duration
	base     time.Duration // position at since
	since    time.Time
	rate     float64
	playing  bool
	step     time.Duration
	now      func() time.Time
	onChange func()
}

var _ dispatch.MediaSink = (*Player)(nil)

// NewPlayer creates a paused player. step is the seek distance of an arrow
// key. A nil now uses the wall clock.
func NewPlayer(title string, length, step time.Duration, now func() time.Time) *Player {
	if now == nil {
		now = time.Now
	}
	return &Player{
		title:  title,
		length: length,
		rate:   1,
		step:   step,
		now:    now,
		since:  now(),
	}
}

// SetOnChange registers a callback run after every state change.
func (p *Player) SetOnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// TargetName implements dispatch.Target.
func (p *Player) TargetName() string {
	return PlayerTargetName
}

// DispatchKey implements dispatch.Target.
func (p *Player) DispatchKey(ev dispatch.SyntheticKey) error {
	switch ev.Code {
	case dispatch.ArrowLeft:
		if ev.Kind == dispatch.KeyDown {
			return p.SeekBy(-p.step)
		}
	case dispatch.ArrowRight:
		if ev.Kind == dispatch.KeyDown {
			return p.SeekBy(p.step)
		}
	case dispatch.Space:
		if ev.Kind == dispatch.KeyDown {
			p.SetRate(BoostRate)
		} else {
			p.SetRate(1)
		}
	}
	return nil
}

// SeekBy implements dispatch.MediaSink. The position is clamped to the
// media length.
func (p *Player) SeekBy(delta time.Duration) error {
	return p.update(func(now time.Time) error {
		if p.length <= 0 {
			return ErrNoMedia
		}
		p.base = p.clamp(p.positionAt(now) + delta)
		p.since = now
		return nil
	})
}

// SeekTo moves the playhead to an absolute position.
func (p *Player) SeekTo(pos time.Duration) error {
	return p.update(func(now time.Time) error {
		if p.length <= 0 {
			return ErrNoMedia
		}
		p.base = p.clamp(pos)
		p.since = now
		return nil
	})
}

// SetRate changes the playback rate, keeping the current position.
func (p *Player) SetRate(rate float64) {
	_ = p.update(func(now time.Time) error {
		p.base = p.positionAt(now)
		p.since = now
		p.rate = rate
		return nil
	})
}

// Play starts playback.
func (p *Player) Play() {
	p.setPlaying(true)
}

// Pause stops the playhead.
func (p *Player) Pause() {
	p.setPlaying(false)
}

// Toggle switches between playing and paused.
func (p *Player) Toggle() {
	p.mu.Lock()
	playing := p.playing
	p.mu.Unlock()
	p.setPlaying(!playing)
}

func (p *Player) setPlaying(playing bool) {
	_ = p.update(func(now time.Time) error {
		p.base = p.positionAt(now)
		p.since = now
		p.playing = playing
		return nil
	})
}

// Position returns the current playhead.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionAt(p.now())
}

// Rate returns the playback rate.
func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// Playing reports whether the playhead is moving.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && p.positionAt(p.now()) < p.length
}

// Length returns the media length.
func (p *Player) Length() time.Duration {
	return p.length
}

// Title returns the media title.
func (p *Player) Title() string {
	return p.title
}

// Snapshot returns the state for rendering.
func (p *Player) Snapshot() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := p.positionAt(p.now())
	return PlayerState{
		Title:    p.title,
		Position: pos,
		Length:   p.length,
		Rate:     p.rate,
		Playing:  p.playing && pos < p.length,
	}
}

func (p *Player) positionAt(now time.Time) time.Duration {
	if !p.playing {
		return p.base
	}
	elapsed := time.Duration(float64(now.Sub(p.since)) * p.rate)
	return p.clamp(p.base + elapsed)
}

func (p *Player) clamp(pos time.Duration) time.Duration {
	return min(max(pos, 0), p.length)
}

// update runs fn under the lock and notifies after a successful change.
func (p *Player) update(fn func(now time.Time) error) error {
	p.mu.Lock()
	err := fn(p.now())
	notify := p.onChange
	p.mu.Unlock()
	if err == nil && notify != nil {
		notify()
	}
	return err
}
