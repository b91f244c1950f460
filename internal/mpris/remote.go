//go:build linux

package mpris

import (
	"io"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/keyhold/internal/dispatch"
)

// Remote locates another MPRIS player on the session bus and drives it as
// the media sink.
type Remote struct {
	conn   *dbus.Conn
	filter string
	step   time.Duration
	log    logrus.FieldLogger
}

var _ dispatch.SinkLocator = (*Remote)(nil)

// Dial connects to the session bus. filter selects the player by bus name;
// step is the seek distance of an arrow key.
func Dial(filter string, step time.Duration, log logrus.FieldLogger) (*Remote, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &Remote{conn: conn, filter: filter, step: step, log: log}, nil
}

// MediaSink implements dispatch.SinkLocator. The bus is queried on every
// call so players that start or quit are picked up.
func (r *Remote) MediaSink() (dispatch.MediaSink, bool) {
	var names []string
	err := r.conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		r.log.WithError(err).Debug("listing bus names")
		return nil, false
	}
	name, ok := pickPlayer(names, r.filter)
	if !ok {
		return nil, false
	}
	return &remotePlayer{
		obj:  r.conn.Object(name, objectPath),
		name: strings.TrimPrefix(name, busPrefix),
		step: r.step,
	}, true
}

// Close releases the bus connection.
func (r *Remote) Close() error {
	return r.conn.Close()
}

type remotePlayer struct {
	obj  dbus.BusObject
	name string
	step time.Duration
}

func (p *remotePlayer) TargetName() string {
	return "mpris:" + p.name
}

func (p *remotePlayer) SeekBy(delta time.Duration) error {
	return p.obj.Call(playerIface+".Seek", 0, delta.Microseconds()).Err
}

// DispatchKey maps key signals to the player methods a browser video would
// react to.
func (p *remotePlayer) DispatchKey(ev dispatch.SyntheticKey) error {
	switch ev.Code {
	case dispatch.ArrowLeft:
		if ev.Kind == dispatch.KeyDown {
			return p.SeekBy(-p.step)
		}
	case dispatch.ArrowRight:
		if ev.Kind == dispatch.KeyDown {
			return p.SeekBy(p.step)
		}
	case dispatch.Space:
		rate := MinRate
		if ev.Kind == dispatch.KeyDown {
			rate = MaxRate
		}
		return p.obj.SetProperty(playerIface+".Rate", dbus.MakeVariant(rate))
	}
	return nil
}
