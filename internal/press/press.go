// Package press classifies a key press as short or long.
//
// A press starts a one-shot timer. If the key is released first, the timer is
// cancelled and the short action runs. If the timer fires while the key is
// still held, the long action starts, and the release later ends it.
package press

import (
	"time"

	"github.com/llehouerou/keyhold/internal/keystate"
	"github.com/llehouerou/keyhold/internal/sched"
)

// LongPressThreshold is how long a key must stay held to count as a long press.
const LongPressThreshold = 200 * time.Millisecond

// State of a disambiguator.
type State int

const (
	Idle State = iota
	Pending
	LongResolved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case LongResolved:
		return "long"
	}
	return "unknown"
}

// Callbacks are the resolved actions. Each runs at most once per episode.
// Nil callbacks are skipped.
type Callbacks struct {
	Short     func()
	LongStart func()
	LongEnd   func()
}

// episode is the bookkeeping for one press, from first down to up.
type episode struct {
	key   string
	start time.Time
	timer sched.Handle
	long  bool
}

// Disambiguator runs the Idle -> Pending -> Short|Long -> Idle machine for
// one trigger key at a time. Instances never share timers.
type Disambiguator struct {
	sched     sched.Scheduler
	held      keystate.Reader
	threshold time.Duration
	cb        Callbacks
	ep        *episode
}

// New creates a disambiguator. A non-positive threshold means
// LongPressThreshold.
func New(s sched.Scheduler, held keystate.Reader, threshold time.Duration, cb Callbacks) *Disambiguator {
	if threshold <= 0 {
		threshold = LongPressThreshold
	}
	return &Disambiguator{sched: s, held: held, threshold: threshold, cb: cb}
}

// State returns the current state.
func (d *Disambiguator) State() State {
	switch {
	case d.ep == nil:
		return Idle
	case d.ep.long:
		return LongResolved
	default:
		return Pending
	}
}

// Press starts an episode for key. It is a no-op while an episode is active,
// so callers only need to filter auto-repeat through the tracker.
func (d *Disambiguator) Press(key string) {
	if d.ep != nil {
		return
	}
	ep := &episode{key: key, start: d.sched.Now()}
	ep.timer = d.sched.After(d.threshold, func() { d.expire(ep) })
	d.ep = ep
}

// Release ends the episode for key, emitting the short action if the
// threshold was not reached and the long-end action otherwise. Episode state
// is cleared before any callback runs.
func (d *Disambiguator) Release(key string) {
	ep := d.ep
	if ep == nil || ep.key != key {
		return
	}
	d.ep = nil
	ep.timer = sched.Cancel(ep.timer)

	if ep.long {
		call(d.cb.LongEnd)
		return
	}
	call(d.cb.Short)
}

// Held returns how long the active episode has lasted.
func (d *Disambiguator) Held() time.Duration {
	if d.ep == nil {
		return 0
	}
	return d.sched.Now().Sub(d.ep.start)
}

// Reset drops the active episode without emitting anything.
func (d *Disambiguator) Reset() {
	if d.ep == nil {
		return
	}
	d.ep.timer = sched.Cancel(d.ep.timer)
	d.ep = nil
}

func (d *Disambiguator) expire(ep *episode) {
	ep.timer = nil
	if d.ep != ep || !d.held.IsHeld(ep.key) {
		return
	}
	ep.long = true
	call(d.cb.LongStart)
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
