package sched

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func startLoop(t *testing.T, frameRate int) *Loop {
	t.Helper()
	l := NewLoop(frameRate)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l
}

func TestLoop_AfterFires(t *testing.T) {
	l := startLoop(t, 60)
	fired := make(chan struct{})

	require.True(t, l.Sync(func() {
		l.After(5*time.Millisecond, func() { close(fired) })
	}))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestLoop_CancelledTimerNeverRuns(t *testing.T) {
	l := startLoop(t, 60)
	ran := make(chan struct{}, 1)

	require.True(t, l.Sync(func() {
		h := l.After(10*time.Millisecond, func() { ran <- struct{}{} })
		assert.True(t, h.Cancel())
		assert.False(t, h.Cancel(), "second cancel reports nothing to cancel")
	}))

	select {
	case <-ran:
		t.Fatal("cancelled timer ran")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoop_CancelAfterExpiryBeforeDelivery(t *testing.T) {
	l := startLoop(t, 60)
	ran := make(chan struct{}, 1)

	// Block the loop past the deadline so the fire is queued behind the cancel.
	require.True(t, l.Sync(func() {
		h := l.After(time.Millisecond, func() { ran <- struct{}{} })
		time.Sleep(20 * time.Millisecond)
		h.Cancel()
	}))
	require.True(t, l.Sync(func() {}))

	select {
	case <-ran:
		t.Fatal("timer cancelled on the loop must not run even if already expired")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestLoop_FramesAreBatched(t *testing.T) {
	l := startLoop(t, 120)
	times := make(chan time.Time, 2)

	require.True(t, l.Sync(func() {
		l.NextFrame(func(now time.Time) { times <- now })
		l.NextFrame(func(now time.Time) { times <- now })
	}))

	a := <-times
	b := <-times
	assert.Equal(t, a, b, "frame callbacks requested together share the frame time")
}

func TestLoop_CloseRejectsPosts(t *testing.T) {
	l := NewLoop(60)
	l.Close()
	l.Close()

	assert.False(t, l.Post(func() {}))
	assert.False(t, l.Sync(func() {}))
}

func TestFake_AdvanceFiresInOrder(t *testing.T) {
	f := NewFake(epoch)
	var order []string

	f.After(30*time.Millisecond, func() { order = append(order, "c") })
	f.After(10*time.Millisecond, func() { order = append(order, "a") })
	f.After(10*time.Millisecond, func() { order = append(order, "b") })

	f.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, f.PendingTimers())

	f.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, epoch.Add(30*time.Millisecond), f.Now())
}

func TestFake_TimerSeesItsDeadline(t *testing.T) {
	f := NewFake(epoch)
	var at time.Time

	f.After(200*time.Millisecond, func() { at = f.Now() })
	f.Advance(time.Second)

	assert.Equal(t, epoch.Add(200*time.Millisecond), at)
	assert.Equal(t, epoch.Add(time.Second), f.Now())
}

func TestFake_CancelledTimerSkipped(t *testing.T) {
	f := NewFake(epoch)
	ran := false

	h := f.After(time.Millisecond, func() { ran = true })
	h.Cancel()
	f.Advance(time.Second)

	assert.False(t, ran)
	assert.Zero(t, f.PendingTimers())
}

func TestFake_Frame(t *testing.T) {
	f := NewFake(epoch)
	var got []time.Time

	h := f.NextFrame(func(now time.Time) { got = append(got, now) })
	f.NextFrame(func(now time.Time) { got = append(got, now) })
	h.Cancel()
	assert.Equal(t, 1, f.PendingFrames())

	f.Frame(16 * time.Millisecond)
	assert.Equal(t, []time.Time{epoch.Add(16 * time.Millisecond)}, got)
	assert.Zero(t, f.PendingFrames())
}

func TestCancelHelper(t *testing.T) {
	f := NewFake(epoch)
	ran := false

	h := f.After(time.Millisecond, func() { ran = true })
	h = Cancel(h)
	assert.Nil(t, h)
	assert.Nil(t, Cancel(nil))

	f.Advance(time.Second)
	assert.False(t, ran)
}
