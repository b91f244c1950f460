package sched

import (
	"sort"
	"time"
)

// Fake is a manually driven Scheduler for tests. Time only moves when
// Advance or Frame is called, and callbacks run on the caller's goroutine.
type Fake struct {
	now    time.Time
	seq    uint64
	timers []*fakeTimer
	frames []*loopFrame
}

var _ Scheduler = (*Fake)(nil)

// NewFake creates a fake scheduler whose clock starts at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake clock.
func (f *Fake) Now() time.Time {
	return f.now
}

// After schedules fn at now+d.
func (f *Fake) After(d time.Duration, fn func()) Handle {
	f.seq++
	t := &fakeTimer{at: f.now.Add(d), seq: f.seq, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// NextFrame queues fn for the next call to Frame.
func (f *Fake) NextFrame(fn func(now time.Time)) Handle {
	fr := &loopFrame{fn: fn}
	f.frames = append(f.frames, fr)
	return fr
}

// Advance moves the clock forward by d, running due timers in deadline order.
// Timers scheduled by a running timer fire too if they fall within d.
func (f *Fake) Advance(d time.Duration) {
	target := f.now.Add(d)
	for {
		t := f.nextDue(target)
		if t == nil {
			break
		}
		if t.at.After(f.now) {
			f.now = t.at
		}
		t.finished = true
		t.fn()
	}
	f.now = target
}

// Frame advances the clock by dt and then runs the pending frame callbacks
// with the new time.
func (f *Fake) Frame(dt time.Duration) {
	f.Advance(dt)
	batch := f.frames
	f.frames = nil
	for _, fr := range batch {
		if fr.finished {
			continue
		}
		fr.finished = true
		fr.fn(f.now)
	}
}

// PendingTimers returns the number of timers that have neither fired nor
// been cancelled.
func (f *Fake) PendingTimers() int {
	f.compact()
	return len(f.timers)
}

// PendingFrames returns the number of frame callbacks waiting for Frame.
func (f *Fake) PendingFrames() int {
	n := 0
	for _, fr := range f.frames {
		if !fr.finished {
			n++
		}
	}
	return n
}

func (f *Fake) nextDue(target time.Time) *fakeTimer {
	f.compact()
	sort.SliceStable(f.timers, func(i, j int) bool {
		a, b := f.timers[i], f.timers[j]
		if a.at.Equal(b.at) {
			return a.seq < b.seq
		}
		return a.at.Before(b.at)
	})
	if len(f.timers) == 0 || f.timers[0].at.After(target) {
		return nil
	}
	return f.timers[0]
}

func (f *Fake) compact() {
	live := f.timers[:0]
	for _, t := range f.timers {
		if !t.finished {
			live = append(live, t)
		}
	}
	f.timers = live
}

type fakeTimer struct {
	at       time.Time
	seq      uint64
	fn       func()
	finished bool
}

func (t *fakeTimer) Cancel() bool {
	if t.finished {
		return false
	}
	t.finished = true
	return true
}
