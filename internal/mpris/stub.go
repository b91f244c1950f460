//go:build !linux

package mpris

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/keyhold/internal/dispatch"
)

// ErrUnsupported is returned by Dial on platforms without a session bus.
var ErrUnsupported = errors.New("mpris is only available on linux")

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ Player, _ logrus.FieldLogger) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}

// Remote never finds a player on non-Linux platforms.
type Remote struct{}

// Dial fails on non-Linux platforms.
func Dial(_ string, _ time.Duration, _ logrus.FieldLogger) (*Remote, error) {
	return nil, ErrUnsupported
}

// MediaSink implements dispatch.SinkLocator.
func (r *Remote) MediaSink() (dispatch.MediaSink, bool) {
	return nil, false
}

// Close is a no-op on non-Linux platforms.
func (r *Remote) Close() error {
	return nil
}
