package app

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/keyhold/internal/host"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
	gate chan struct{} // when set, each Send waits for a token
}

func (r *recordingSender) Send(msg tea.Msg) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recordingSender) received() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tea.Msg(nil), r.msgs...)
}

func runForwarder(t *testing.T, f *forwarder, s Sender) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.Run(ctx, s)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestForwarder_KeepsOrder(t *testing.T) {
	f := newForwarder()
	s := &recordingSender{}

	for _, k := range "abc" {
		f.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{k}})
	}
	runForwarder(t, f, s)

	require.Eventually(t, func() bool { return len(s.received()) == 3 }, time.Second, time.Millisecond)
	var got string
	for _, msg := range s.received() {
		got += msg.(tea.KeyMsg).String()
	}
	assert.Equal(t, "abc", got)
}

func TestForwarder_CoalescesRefresh(t *testing.T) {
	f := newForwarder()
	s := &recordingSender{}

	f.Refresh()
	f.Send(host.ErrorMsg{Text: "boom"})
	f.Refresh()
	f.Refresh()
	runForwarder(t, f, s)

	require.Eventually(t, func() bool { return len(s.received()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []tea.Msg{host.RefreshMsg{}, host.ErrorMsg{Text: "boom"}}, s.received())
}

func TestForwarder_NeverBlocksSender(t *testing.T) {
	f := newForwarder()
	s := &recordingSender{gate: make(chan struct{})}
	runForwarder(t, f, s)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 1000 {
			f.Send(host.PointerMsg{})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked while the UI was busy")
	}
	close(s.gate)
	require.Eventually(t, func() bool { return len(s.received()) == 1000 }, time.Second, time.Millisecond)
}

func TestForwarder_DropsAfterStop(t *testing.T) {
	f := newForwarder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.Run(ctx, &recordingSender{})

	f.Send(host.RefreshMsg{})

	assert.Empty(t, f.drain())
}
