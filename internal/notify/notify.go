// Package notify sends desktop notifications through the freedesktop
// notification server on the session bus.
package notify

import "sync"

// AppName is the application name shown by the notification server.
const AppName = "keyhold"

// Urgency is the freedesktop urgency level.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification is one desktop notification.
type Notification struct {
	Title      string
	Body       string
	Icon       string // icon name or image path
	Timeout    int32  // ms; -1 lets the server decide, 0 never expires
	ReplacesID uint32
	Urgency    Urgency
	Transient  bool // not kept in the server's history
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify shows n and returns the id the server assigned, 0 when
	// nothing was shown.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) (uint32, error) { return 0, nil }

func (nopNotifier) Close(uint32) error { return nil }

// Replacing shows one notification at a time: each one replaces the
// previous, so repeated bindings reloads do not pile up.
type Replacing struct {
	n  Notifier
	mu sync.Mutex
	id uint32
}

// NewReplacing wraps n.
func NewReplacing(n Notifier) *Replacing {
	return &Replacing{n: n}
}

// Notify sends notif in place of the last one sent.
func (r *Replacing) Notify(notif Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notif.ReplacesID = r.id
	id, err := r.n.Notify(notif)
	if err != nil {
		return err
	}
	r.id = id
	return nil
}

// Close removes the current notification, if any.
func (r *Replacing) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == 0 {
		return nil
	}
	id := r.id
	r.id = 0
	return r.n.Close(id)
}
