package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/keyhold/internal/dispatch"
	"github.com/llehouerou/keyhold/internal/host"
	"github.com/llehouerou/keyhold/internal/input"
)

// KeyHandler is the part of the controller the router drives.
type KeyHandler interface {
	HandleKey(ev input.Event) bool
	ReleaseAll()
}

// PointerTracker records where the pointer is.
type PointerTracker interface {
	SetPointer(pt dispatch.Point)
}

// router feeds decoded terminal input to the controller first and passes
// whatever it does not consume on to the UI. It runs on the event loop.
type router struct {
	keys    KeyHandler
	focus   *host.Focus
	pointer PointerTracker
	send    func(tea.Msg)
	log     logrus.FieldLogger
}

func (r *router) handle(msg any) {
	switch msg := msg.(type) {
	case input.Event:
		msg.InTextField = r.focus.InTextField()
		if r.keys.HandleKey(msg) {
			return
		}
		if km, ok := host.TeaKey(msg); ok {
			// Before the view sees it, so the keys right after a prompt
			// opens are already typed into it.
			r.focus.Track(km)
			r.send(km)
		}

	case input.PointerEvent:
		r.pointer.SetPointer(dispatch.Point{X: msg.X, Y: msg.Y})
		if msg.Button {
			r.send(host.PointerMsg{X: msg.X, Y: msg.Y})
		}

	case input.FocusEvent:
		if !msg.Focused {
			r.log.Debug("terminal lost focus, releasing held keys")
			r.keys.ReleaseAll()
		}
	}
}
