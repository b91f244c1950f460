// Package motion drives continuous scrolling while a key is held.
package motion

import (
	"time"

	"github.com/llehouerou/keyhold/internal/keystate"
	"github.com/llehouerou/keyhold/internal/sched"
)

// Direction of a motion session.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

func (d Direction) sign() float64 {
	if d == Up {
		return -1
	}
	return 1
}

// Scroller receives the signed vertical displacement of each tick.
type Scroller interface {
	DispatchScroll(deltaY float64)
}

// session is the live state of one direction.
type session struct {
	dir   Direction
	key   string
	last  time.Time
	speed float64 // pixels per nominal frame
	frame sched.Handle
}

// Engine owns one session slot per direction.
type Engine struct {
	sched    sched.Scheduler
	held     keystate.Reader
	scroller Scroller
	speed    func() float64
	sessions [2]*session
}

// New creates an engine. speed is read once when a session starts and
// returns the multiplier in pixels per nominal (1/60 s) frame.
func New(s sched.Scheduler, held keystate.Reader, scroller Scroller, speed func() float64) *Engine {
	return &Engine{sched: s, held: held, scroller: scroller, speed: speed}
}

// Start begins scrolling in dir for as long as heldKey stays held. It
// returns false without doing anything if dir already has a session.
func (e *Engine) Start(dir Direction, heldKey string) bool {
	if e.sessions[dir] != nil {
		return false
	}
	s := &session{
		dir:   dir,
		key:   heldKey,
		last:  e.sched.Now(),
		speed: e.speed(),
	}
	e.sessions[dir] = s
	s.frame = e.sched.NextFrame(func(now time.Time) { e.tick(s, now) })
	return true
}

// Stop cancels the session for dir. It reports whether one was active.
func (e *Engine) Stop(dir Direction) bool {
	s := e.sessions[dir]
	if s == nil {
		return false
	}
	e.sessions[dir] = nil
	s.frame = sched.Cancel(s.frame)
	return true
}

// StopAll cancels every session.
func (e *Engine) StopAll() {
	e.Stop(Up)
	e.Stop(Down)
}

// Active reports whether dir has a running session.
func (e *Engine) Active(dir Direction) bool {
	return e.sessions[dir] != nil
}

// Owner returns the key driving the session in dir.
func (e *Engine) Owner(dir Direction) (string, bool) {
	s := e.sessions[dir]
	if s == nil {
		return "", false
	}
	return s.key, true
}

func (e *Engine) tick(s *session, now time.Time) {
	s.frame = nil
	if e.sessions[s.dir] != s {
		return
	}
	if !e.held.IsHeld(s.key) {
		e.sessions[s.dir] = nil
		return
	}

	delta := now.Sub(s.last)
	s.last = now
	if delta > 0 {
		amount := s.speed * float64(delta) / float64(sched.NominalFrameInterval)
		e.scroller.DispatchScroll(s.dir.sign() * amount)
	}

	// The scroller may have stopped the session.
	if e.sessions[s.dir] == s {
		s.frame = e.sched.NextFrame(func(t time.Time) { e.tick(s, t) })
	}
}
