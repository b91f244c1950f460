package app

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/keyhold/internal/host"
)

// Sender delivers messages to the UI. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// forwarder queues messages for the UI without ever blocking the caller.
// tea.Program.Send blocks until the program is running and while Update is
// busy, so the event loop hands messages here instead. Order is kept and
// pending refreshes collapse into one.
type forwarder struct {
	mu      sync.Mutex
	queue   []tea.Msg
	refresh bool // a RefreshMsg is queued
	closed  bool
	wake    chan struct{}
}

func newForwarder() *forwarder {
	return &forwarder{wake: make(chan struct{}, 1)}
}

// Send queues msg. It is dropped after Run returns.
func (f *forwarder) Send(msg tea.Msg) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	if _, ok := msg.(host.RefreshMsg); ok {
		if f.refresh {
			f.mu.Unlock()
			return
		}
		f.refresh = true
	}
	f.queue = append(f.queue, msg)
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Refresh queues a redraw unless one is already pending.
func (f *forwarder) Refresh() {
	f.Send(host.RefreshMsg{})
}

// Run delivers queued messages to s until ctx is done.
func (f *forwarder) Run(ctx context.Context, s Sender) {
	defer func() {
		f.mu.Lock()
		f.closed = true
		f.queue = nil
		f.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.wake:
		}
		for _, msg := range f.drain() {
			if ctx.Err() != nil {
				return
			}
			s.Send(msg)
		}
	}
}

func (f *forwarder) drain() []tea.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := f.queue
	f.queue = nil
	f.refresh = false
	return batch
}
