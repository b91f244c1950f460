//go:build linux

package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	busName   = "org.freedesktop.Notifications"
	busPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	busMethod = busName + ".Notify"
	busClose  = busName + ".CloseNotification"
)

// caller is the part of dbus.BusObject the notifier uses.
type caller interface {
	Call(method string, flags dbus.Flags, args ...any) *dbus.Call
}

type dbusNotifier struct {
	obj caller
}

// New returns a Notifier talking to the session bus notification server.
// Without a session bus the returned Notifier drops everything.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nopNotifier{}, nil //nolint:nilerr // no session bus is not an error for callers
	}
	return &dbusNotifier{obj: conn.Object(busName, busPath)}, nil
}

func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(AppName),
	}
	if n.Transient {
		h["transient"] = dbus.MakeVariant(true)
	}
	return h
}

func (d *dbusNotifier) Notify(n Notification) (uint32, error) {
	call := d.obj.Call(busMethod, 0,
		AppName, n.ReplacesID, n.Icon, n.Title, n.Body,
		[]string{}, hints(n), n.Timeout)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify reply: %w", err)
	}
	return id, nil
}

func (d *dbusNotifier) Close(id uint32) error {
	if err := d.obj.Call(busClose, 0, id).Err; err != nil {
		return fmt.Errorf("closing notification %d: %w", id, err)
	}
	return nil
}
