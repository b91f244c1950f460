// Package sched provides the cancellable timer and frame callbacks that all
// gesture processing is expressed with.
//
// Every callback runs on a single timeline. A handle cancelled on that
// timeline never runs its callback, which is what lets a key-up reliably
// supersede a pending long-press timer.
package sched

import "time"

// NominalFrameInterval is the frame duration motion speeds are defined against.
const NominalFrameInterval = time.Second / 60

// Handle cancels a scheduled callback.
type Handle interface {
	// Cancel stops the callback from running. It returns false if the
	// callback already ran or was already cancelled.
	Cancel() bool
}

// Scheduler schedules callbacks on the event timeline.
type Scheduler interface {
	// Now returns the timeline's current time.
	Now() time.Time
	// After runs fn once, no earlier than d from now.
	After(d time.Duration, fn func()) Handle
	// NextFrame runs fn at the next animation frame with the frame time.
	NextFrame(fn func(now time.Time)) Handle
}

// Cancel cancels h if it is non-nil and returns nil, for use as
// h = sched.Cancel(h).
func Cancel(h Handle) Handle {
	if h != nil {
		h.Cancel()
	}
	return nil
}
