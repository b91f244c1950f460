// Package controller owns the gesture machinery for one document lifetime
// and routes input events through it.
package controller

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/keyhold/internal/dispatch"
	"github.com/llehouerou/keyhold/internal/input"
	"github.com/llehouerou/keyhold/internal/keymap"
	"github.com/llehouerou/keyhold/internal/keystate"
	"github.com/llehouerou/keyhold/internal/motion"
	"github.com/llehouerou/keyhold/internal/press"
	"github.com/llehouerou/keyhold/internal/sched"
)

const (
	// DefaultSeekStep is the direct sink adjustment of a navigation tap.
	DefaultSeekStep = 5 * time.Second
	// DefaultFallbackReleaseDelay separates the halves of a substitute key
	// cycle so the host never sees a zero-length press.
	DefaultFallbackReleaseDelay = 30 * time.Millisecond

	navigationKey = "arrowright"
)

// Effects is what the controller asks of the host. *dispatch.Dispatcher
// implements it.
type Effects interface {
	DispatchScroll(deltaY float64)
	DispatchSyntheticKey(kind dispatch.KeyKind, logicalKey string)
	Invoke(action keymap.Action)
	SeekSink(delta time.Duration) bool
}

var _ Effects = (*dispatch.Dispatcher)(nil)

// Options configures a Controller.
type Options struct {
	Scheduler            sched.Scheduler
	Settings             *keymap.Live
	Effects              Effects
	Logger               logrus.FieldLogger
	SeekStep             time.Duration
	FallbackReleaseDelay time.Duration
	LongPressThreshold   time.Duration
}

// role is what a held key was doing when it went down. Releases use the
// recorded role so a binding change mid-hold cannot strand a session.
type role int

const (
	roleNone role = iota
	roleScrollUp
	roleScrollDown
	rolePrimary
	roleNavigate
	roleSeekBack
	roleOneShot
)

func (r role) String() string {
	switch r {
	case roleScrollUp:
		return "scroll-up"
	case roleScrollDown:
		return "scroll-down"
	case rolePrimary:
		return "primary"
	case roleNavigate:
		return "navigate"
	case roleSeekBack:
		return "seek-back"
	case roleOneShot:
		return "one-shot"
	}
	return "none"
}

// Controller is the coordinating instance. All methods must run on the
// scheduler's timeline.
type Controller struct {
	sched   sched.Scheduler
	live    *keymap.Live
	fx      Effects
	log     logrus.FieldLogger
	tracker *keystate.Tracker
	primary *press.Disambiguator
	nav     *press.Disambiguator
	motion  *motion.Engine

	seekStep      time.Duration
	fallbackDelay time.Duration

	roles    map[string]role
	fallback sched.Handle // pending release half of a substitute key cycle
	boost    int          // long presses currently holding Space
	closed   bool
}

// New creates a controller.
func New(opts Options) *Controller {
	c := &Controller{
		sched:         opts.Scheduler,
		live:          opts.Settings,
		fx:            opts.Effects,
		log:           opts.Logger,
		tracker:       keystate.New(),
		seekStep:      opts.SeekStep,
		fallbackDelay: opts.FallbackReleaseDelay,
		roles:         make(map[string]role),
	}
	if c.live == nil {
		c.live = keymap.NewLive()
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	if c.seekStep <= 0 {
		c.seekStep = DefaultSeekStep
	}
	if c.fallbackDelay <= 0 {
		c.fallbackDelay = DefaultFallbackReleaseDelay
	}

	c.primary = press.New(c.sched, c.tracker, opts.LongPressThreshold, press.Callbacks{
		Short:     c.primaryShort,
		LongStart: c.boostOn,
		LongEnd:   c.boostOff,
	})
	c.nav = press.New(c.sched, c.tracker, opts.LongPressThreshold, press.Callbacks{
		Short:     c.navigateShort,
		LongStart: c.boostOn,
		LongEnd:   c.boostOff,
	})
	c.motion = motion.New(c.sched, c.tracker, c.fx, func() float64 {
		return c.live.Resolver().Settings().SpeedMultiplier()
	})
	return c
}

// HandleKey processes one key event and reports whether it was consumed,
// in which case the host's own handling must be suppressed.
func (c *Controller) HandleKey(ev input.Event) bool {
	if c.closed {
		return false
	}
	key := keymap.NormalizeKey(ev.Key)
	if key == "" {
		return false
	}
	if ev.Kind == input.Up {
		return c.keyUp(key, ev.InTextField)
	}
	if ev.InTextField || ev.Ctrl || ev.Alt {
		return false
	}
	return c.keyDown(key)
}

// Status is a snapshot of the gesture machinery.
type Status struct {
	Held          []string
	ScrollingUp   bool
	ScrollingDown bool
	Primary       press.State
	Navigate      press.State
	Boosted       bool
}

// Status returns the current snapshot.
func (c *Controller) Status() Status {
	return Status{
		Held:          c.tracker.Held(),
		ScrollingUp:   c.motion.Active(motion.Up),
		ScrollingDown: c.motion.Active(motion.Down),
		Primary:       c.primary.State(),
		Navigate:      c.nav.State(),
		Boosted:       c.boost > 0,
	}
}

// ReleaseAll runs the release path for every held key, as if all of them
// went up. Used when the terminal loses focus and key-ups will not arrive.
func (c *Controller) ReleaseAll() {
	for _, key := range c.tracker.Held() {
		c.keyUp(key, false)
	}
}

// Teardown cancels every timer and motion session and forgets all held
// keys. Synthetic key-downs already sent get their key-up first, so no
// target is left with a key held. Pending presses resolve to nothing.
// The controller ignores events afterwards.
func (c *Controller) Teardown() {
	if c.closed {
		return
	}
	c.closed = true
	c.primary.Reset()
	c.nav.Reset()
	c.motion.StopAll()

	for _, key := range c.tracker.Held() {
		if c.roles[key] == roleSeekBack {
			c.fx.DispatchSyntheticKey(dispatch.KeyUp, dispatch.ArrowLeft)
		}
	}
	c.flushFallback()
	if c.boost > 0 {
		c.boost = 0
		c.fx.DispatchSyntheticKey(dispatch.KeyUp, dispatch.Space)
	}

	c.tracker.Reset()
	clear(c.roles)
	c.log.Debug("controller torn down")
}

func (c *Controller) keyDown(key string) bool {
	if _, owned := c.roles[key]; owned {
		c.tracker.OnDown(key) // auto-repeat
		return true
	}

	r, action := c.classify(key)
	if r == roleNone {
		return false
	}
	if c.tracker.OnDown(key) {
		return true
	}
	c.roles[key] = r
	c.log.WithFields(logrus.Fields{"key": key, "role": r.String()}).Debug("key down")

	switch r {
	case roleScrollUp:
		c.motion.Start(motion.Up, key)
	case roleScrollDown:
		c.motion.Start(motion.Down, key)
	case rolePrimary:
		c.primary.Press(key)
	case roleNavigate:
		c.nav.Press(key)
	case roleSeekBack:
		c.fx.DispatchSyntheticKey(dispatch.KeyDown, dispatch.ArrowLeft)
	case roleOneShot:
		c.fx.Invoke(action)
	case roleNone:
	}
	return true
}

func (c *Controller) keyUp(key string, inTextField bool) bool {
	r, owned := c.roles[key]
	if !c.tracker.OnUp(key) || !owned {
		if inTextField {
			return false
		}
		unbound, _ := c.classify(key)
		return unbound != roleNone
	}
	delete(c.roles, key)
	c.log.WithFields(logrus.Fields{"key": key, "role": r.String()}).Debug("key up")

	switch r {
	case roleScrollUp:
		c.releaseScroll(motion.Up, key)
	case roleScrollDown:
		c.releaseScroll(motion.Down, key)
	case rolePrimary:
		c.primary.Release(key)
	case roleNavigate:
		c.nav.Release(key)
	case roleSeekBack:
		c.fx.DispatchSyntheticKey(dispatch.KeyUp, dispatch.ArrowLeft)
	case roleOneShot, roleNone:
	}
	return !inTextField
}

// classify decides what a newly pressed key does under the current settings.
// Explicit bindings take precedence over the arrow key options.
func (c *Controller) classify(key string) (role, keymap.Action) {
	res := c.live.Resolver()
	if action, ok := res.ActionFor(key); ok {
		switch action {
		case keymap.ActionScrollUp:
			return roleScrollUp, action
		case keymap.ActionScrollDown:
			return roleScrollDown, action
		case keymap.ActionSeekForward:
			return rolePrimary, action
		case keymap.ActionSeekBack:
			return roleSeekBack, action
		case keymap.ActionToggleLike, keymap.ActionBack, keymap.ActionForward,
			keymap.ActionReload, keymap.ActionClickAtCursor:
			return roleOneShot, action
		}
	}

	s := res.Settings()
	switch key {
	case "arrowup":
		if s.ArrowKeysScroll {
			return roleScrollUp, keymap.ActionScrollUp
		}
	case "arrowdown":
		if s.ArrowKeysScroll {
			return roleScrollDown, keymap.ActionScrollDown
		}
	case navigationKey:
		if s.ArrowKeysAsSeek {
			return roleNavigate, keymap.ActionSeekForward
		}
	}
	return roleNone, ""
}

// releaseScroll stops the session in dir if key owns it, then hands the
// direction to another held key with the same role, if any.
func (c *Controller) releaseScroll(dir motion.Direction, key string) {
	if owner, ok := c.motion.Owner(dir); !ok || owner != key {
		return
	}
	c.motion.Stop(dir)

	want := roleScrollUp
	if dir == motion.Down {
		want = roleScrollDown
	}
	for _, k := range c.tracker.Held() {
		if c.roles[k] == want {
			c.motion.Start(dir, k)
			return
		}
	}
}

func (c *Controller) primaryShort() {
	c.fx.DispatchSyntheticKey(dispatch.KeyDown, dispatch.ArrowRight)
	c.fx.DispatchSyntheticKey(dispatch.KeyUp, dispatch.ArrowRight)
}

// navigateShort seeks the media sink directly. Without a sink it replays the
// key to the document as a press, releasing it after a short delay.
func (c *Controller) navigateShort() {
	if c.fx.SeekSink(c.seekStep) {
		return
	}
	c.flushFallback()
	c.fx.DispatchSyntheticKey(dispatch.KeyDown, dispatch.ArrowRight)
	c.fallback = c.sched.After(c.fallbackDelay, func() {
		c.fallback = nil
		c.fx.DispatchSyntheticKey(dispatch.KeyUp, dispatch.ArrowRight)
	})
}

// flushFallback completes a pending substitute cycle immediately.
func (c *Controller) flushFallback() {
	if c.fallback == nil {
		return
	}
	c.fallback = sched.Cancel(c.fallback)
	c.fx.DispatchSyntheticKey(dispatch.KeyUp, dispatch.ArrowRight)
}

func (c *Controller) boostOn() {
	c.boost++
	if c.boost == 1 {
		c.fx.DispatchSyntheticKey(dispatch.KeyDown, dispatch.Space)
	}
}

func (c *Controller) boostOff() {
	if c.boost == 0 {
		return
	}
	c.boost--
	if c.boost == 0 {
		c.fx.DispatchSyntheticKey(dispatch.KeyUp, dispatch.Space)
	}
}
