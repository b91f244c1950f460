// Package dispatch turns resolved gestures into effect requests on the host:
// scroll deltas, synthetic key signals and named external actions.
//
// The dispatcher is the failure boundary. Collaborator errors and panics are
// logged here and never reach the gesture state machines.
package dispatch

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/keyhold/internal/keymap"
)

// Target receives synthetic key signals.
type Target interface {
	TargetName() string
	DispatchKey(ev SyntheticKey) error
}

// Document is the host document root: the fallback key target and the
// scroll surface.
type Document interface {
	Target
	ScrollBy(deltaY float64) error
}

// MediaSink is the primary playable element keys are preferentially sent to.
type MediaSink interface {
	Target
	SeekBy(delta time.Duration) error
}

// SinkLocator finds the media sink, if one is present right now.
type SinkLocator interface {
	MediaSink() (MediaSink, bool)
}

// SinkLocatorFunc adapts a function to SinkLocator.
type SinkLocatorFunc func() (MediaSink, bool)

// MediaSink implements SinkLocator.
func (f SinkLocatorFunc) MediaSink() (MediaSink, bool) {
	return f()
}

// Point is a screen position.
type Point struct {
	X, Y int
}

// Actions are the external collaborators behind named actions.
// Nil entries make the action a no-op.
type Actions struct {
	ToggleLike func() error
	Back       func() error
	Forward    func() error
	Reload     func() error
	ClickAt    func(p Point) error
	Pointer    func() (Point, bool)
}

// ErrNoPointer is logged when click-at-cursor fires before any pointer
// position is known.
var ErrNoPointer = errors.New("pointer position unknown")

// Dispatcher is the single exit point from the core to the host.
type Dispatcher struct {
	doc     Document
	sinks   SinkLocator
	actions Actions
	log     logrus.FieldLogger
}

// New creates a dispatcher. sinks may be nil when the host never has a
// media sink.
func New(doc Document, sinks SinkLocator, actions Actions, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Dispatcher{doc: doc, sinks: sinks, actions: actions, log: log}
}

// DispatchScroll applies a signed vertical scroll delta to the document.
func (d *Dispatcher) DispatchScroll(deltaY float64) {
	d.guard(d.log.WithField("delta", deltaY), func() error {
		return d.doc.ScrollBy(deltaY)
	})
}

// DispatchSyntheticKey sends one half of a key cycle to the media sink if
// present, otherwise to the document. The target is looked up on every
// call, so a sink that appears between down and up receives the up.
func (d *Dispatcher) DispatchSyntheticKey(kind KeyKind, logicalKey string) {
	entry := d.log.WithFields(logrus.Fields{"key": logicalKey, "kind": kind.String()})
	id, err := Identity(logicalKey)
	if err != nil {
		entry.WithError(err).Error("dropping synthetic key")
		return
	}
	target := d.target()
	entry = entry.WithField("target", target.TargetName())
	if d.guard(entry, func() error {
		return target.DispatchKey(SyntheticKey{Kind: kind, KeyIdentity: id})
	}) {
		entry.Debug("synthetic key dispatched")
	}
}

// SeekSink adjusts the media sink position directly. It returns false when
// no sink is present so the caller can fall back to synthetic keys.
func (d *Dispatcher) SeekSink(delta time.Duration) bool {
	sink, ok := d.mediaSink()
	if !ok {
		return false
	}
	entry := d.log.WithFields(logrus.Fields{"target": sink.TargetName(), "delta": delta})
	if d.guard(entry, func() error { return sink.SeekBy(delta) }) {
		entry.Debug("sink seek")
	}
	return true
}

// HasSink reports whether a media sink is present right now.
func (d *Dispatcher) HasSink() bool {
	_, ok := d.mediaSink()
	return ok
}

// Invoke runs the collaborator behind action. Fire and forget: failures are
// logged and dropped.
func (d *Dispatcher) Invoke(action keymap.Action) {
	entry := d.log.WithField("action", string(action))
	fn := d.collaborator(action)
	if fn == nil {
		entry.Debug("no collaborator for action")
		return
	}
	if d.guard(entry, fn) {
		entry.Debug("action invoked")
	}
}

func (d *Dispatcher) collaborator(action keymap.Action) func() error {
	switch action {
	case keymap.ActionToggleLike:
		return d.actions.ToggleLike
	case keymap.ActionBack:
		return d.actions.Back
	case keymap.ActionForward:
		return d.actions.Forward
	case keymap.ActionReload:
		return d.actions.Reload
	case keymap.ActionClickAtCursor:
		if d.actions.ClickAt == nil {
			return nil
		}
		return d.clickAtPointer
	}
	return nil
}

func (d *Dispatcher) clickAtPointer() error {
	if d.actions.Pointer == nil {
		return ErrNoPointer
	}
	p, ok := d.actions.Pointer()
	if !ok {
		return ErrNoPointer
	}
	return d.actions.ClickAt(p)
}

func (d *Dispatcher) mediaSink() (sink MediaSink, ok bool) {
	if d.sinks == nil {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.WithError(fmt.Errorf("panic: %v", r)).Error("media sink lookup panicked")
			sink, ok = nil, false
		}
	}()
	sink, ok = d.sinks.MediaSink()
	if !ok || sink == nil {
		return nil, false
	}
	return sink, true
}

func (d *Dispatcher) target() Target {
	if sink, ok := d.mediaSink(); ok {
		return sink
	}
	return d.doc
}

// guard runs fn, logging errors and recovered panics. It reports success.
func (d *Dispatcher) guard(entry *logrus.Entry, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			entry.WithError(fmt.Errorf("panic: %v", r)).Error("collaborator panicked")
			ok = false
		}
	}()
	if err := fn(); err != nil {
		entry.WithError(err).Warn("collaborator failed")
		return false
	}
	return true
}
