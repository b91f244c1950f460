package sched

import (
	"context"
	"sync"
	"time"
)

const queueSize = 256

// Loop is the single event timeline. Input events, timers, frames and
// settings updates are all funneled through Post and run one at a time on
// the goroutine that calls Run.
//
// After, NextFrame and Handle.Cancel must only be called from callbacks
// running on the loop.
type Loop struct {
	queue         chan func()
	done          chan struct{}
	closeOnce     sync.Once
	now           func() time.Time
	frameInterval time.Duration

	// owned by the loop goroutine
	timers     map[*loopTimer]struct{}
	frames     []*loopFrame
	frameTimer *time.Timer
}

var _ Scheduler = (*Loop)(nil)

// NewLoop creates a loop delivering frames at frameRate per second.
// A non-positive frame rate means 60.
func NewLoop(frameRate int) *Loop {
	if frameRate <= 0 {
		frameRate = 60
	}
	return &Loop{
		queue:         make(chan func(), queueSize),
		done:          make(chan struct{}),
		now:           time.Now,
		frameInterval: time.Second / time.Duration(frameRate),
		timers:        make(map[*loopTimer]struct{}),
	}
}

// Post queues fn to run on the loop. It returns false once the loop is closed.
// Safe for concurrent use.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Sync runs fn on the loop and waits for it to finish.
// It returns false if the loop closed before fn ran.
func (l *Loop) Sync(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// Run processes callbacks until ctx is cancelled or Close is called.
// Outstanding timers and frames are cancelled before it returns.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.done:
			return nil
		}
	}
}

// Close stops the loop. Safe to call more than once and from any goroutine.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return l.now()
}

// After schedules fn on the loop after d.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	t := &loopTimer{loop: l, fn: fn}
	l.timers[t] = struct{}{}
	t.timer = time.AfterFunc(d, func() { l.Post(t.fire) })
	return t
}

// NextFrame schedules fn for the next frame. Frames requested before the
// frame fires share it.
func (l *Loop) NextFrame(fn func(now time.Time)) Handle {
	f := &loopFrame{fn: fn}
	l.frames = append(l.frames, f)
	if l.frameTimer == nil {
		l.frameTimer = time.AfterFunc(l.frameInterval, func() { l.Post(l.runFrame) })
	}
	return f
}

func (l *Loop) runFrame() {
	l.frameTimer = nil
	batch := l.frames
	l.frames = nil
	now := l.now()
	for _, f := range batch {
		if f.finished {
			continue
		}
		f.finished = true
		f.fn(now)
	}
}

func (l *Loop) shutdown() {
	for t := range l.timers {
		t.finished = true
		t.timer.Stop()
	}
	clear(l.timers)
	for _, f := range l.frames {
		f.finished = true
	}
	l.frames = nil
	if l.frameTimer != nil {
		l.frameTimer.Stop()
		l.frameTimer = nil
	}
}

type loopTimer struct {
	loop     *Loop
	timer    *time.Timer
	fn       func()
	finished bool
}

func (t *loopTimer) fire() {
	if t.finished {
		return
	}
	t.finished = true
	delete(t.loop.timers, t)
	t.fn()
}

func (t *loopTimer) Cancel() bool {
	if t.finished {
		return false
	}
	t.finished = true
	t.timer.Stop()
	delete(t.loop.timers, t)
	return true
}

type loopFrame struct {
	fn       func(now time.Time)
	finished bool
}

func (f *loopFrame) Cancel() bool {
	if f.finished {
		return false
	}
	f.finished = true
	return true
}
