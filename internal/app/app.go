// Package app wires the gesture core to the terminal host and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/keyhold/internal/config"
	"github.com/llehouerou/keyhold/internal/controller"
	"github.com/llehouerou/keyhold/internal/dispatch"
	"github.com/llehouerou/keyhold/internal/errmsg"
	"github.com/llehouerou/keyhold/internal/host"
	"github.com/llehouerou/keyhold/internal/input"
	"github.com/llehouerou/keyhold/internal/keymap"
	"github.com/llehouerou/keyhold/internal/mpris"
	"github.com/llehouerou/keyhold/internal/notify"
	"github.com/llehouerou/keyhold/internal/sched"
	"github.com/llehouerou/keyhold/internal/settings"
	"github.com/llehouerou/keyhold/internal/state"
)

// Run opens docPath and runs the viewer until the user quits or ctx is done.
func Run(ctx context.Context, cfg *config.Config, docPath string, log *logrus.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Queued until the UI runs.
	fwd := newForwarder()

	var markers host.Markers
	stateMgr, err := state.Open()
	if err != nil {
		log.WithError(err).Warn("session markers unavailable")
		fwd.Send(host.ErrorMsg{Text: errmsg.Format(errmsg.OpMarkersOpen, err)})
	} else {
		defer stateMgr.Close()
		markers = stateMgr
	}

	page := host.NewPage(markers, log.WithField("component", "page"))
	if err := page.Open(docPath); err != nil {
		return fmt.Errorf("opening %s: %w", docPath, err)
	}
	defer page.Close()

	player := host.NewPlayer(page.Snapshot().Title, cfg.MediaLength(), cfg.SeekStep(), nil)
	docID := page.Snapshot().Path
	if stateMgr != nil {
		restoreMedia(stateMgr, docID, player, log)
		defer saveMedia(stateMgr, docID, player, log)
	}

	var remote dispatch.SinkLocator
	if cfg.SinkKind() == config.SinkMPRIS {
		r, err := mpris.Dial(cfg.MPRISPlayer, cfg.SeekStep(), log.WithField("component", "mpris"))
		if err != nil {
			log.WithError(err).Warn("remote media player unavailable, using built-in player")
			fwd.Send(host.ErrorMsg{Text: errmsg.Format(errmsg.OpMPRISConnect, err)})
		} else {
			defer r.Close()
			remote = r
		}
	}
	if cfg.ExposeMPRIS() {
		adapter, err := mpris.New(player, log.WithField("component", "mpris"))
		if err != nil {
			log.WithError(err).Warn("not exposing built-in player on the session bus")
			fwd.Send(host.ErrorMsg{Text: errmsg.Format(errmsg.OpMPRISExpose, err)})
		} else {
			defer adapter.Close()
		}
	}
	sinks := host.NewSinks(player, remote)

	loop := sched.NewLoop(cfg.GetFrameRate())
	defer loop.Close()
	live := keymap.NewLive()
	ctrl := controller.New(controller.Options{
		Scheduler: loop,
		Settings:  live,
		Effects:   dispatch.New(page, sinks, host.Actions(page), log.WithField("component", "dispatch")),
		Logger:    log.WithField("component", "controller"),
		SeekStep:  cfg.SeekStep(),
	})

	reader, err := input.Open(os.Stdin, os.Stdout, log.WithField("component", "input"))
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer reader.Close()

	page.SetOnChange(fwd.Refresh)
	player.SetOnChange(fwd.Refresh)

	var notifier *notify.Replacing
	if cfg.NotifyReloads() {
		n, err := notify.New()
		if err != nil {
			log.WithError(err).Warn("desktop notifications unavailable")
		} else {
			notifier = notify.NewReplacing(n)
		}
	}

	store := settings.NewStore(cfg.BindingsPath(), log.WithField("component", "settings"))
	watchSettings(ctx, store, live, loop, fwd.Send, notifier, log)

	focus := &host.Focus{}
	model := host.NewModel(host.Options{
		Page:   page,
		Player: player,
		Sinks:  sinks,
		Status: func() (controller.Status, bool) {
			var st controller.Status
			ok := loop.Sync(func() { st = ctrl.Status() })
			return st, ok
		},
		Settings: func() keymap.Settings { return live.Resolver().Settings() },
	})
	program := tea.NewProgram(model, tea.WithInput(nil), tea.WithAltScreen())

	r := &router{keys: ctrl, focus: focus, pointer: page, send: fwd.Send, log: log}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Warn("event loop stopped")
		}
	}()
	go func() {
		defer wg.Done()
		fwd.Run(ctx, program)
	}()
	go func() {
		defer wg.Done()
		err := reader.Run(ctx, func(msg any) {
			loop.Post(func() { r.handle(msg) })
		})
		if err != nil {
			log.WithError(err).Error("terminal input stopped")
			program.Quit()
		}
	}()
	stop := context.AfterFunc(ctx, program.Quit)
	defer stop()

	log.WithFields(logrus.Fields{"document": page.Snapshot().Path, "sink": cfg.SinkKind()}).Info("keyhold started")
	_, runErr := program.Run()

	loop.Sync(ctrl.Teardown)
	cancel()
	_ = reader.Close()
	wg.Wait()

	log.Info("keyhold stopped")
	return runErr
}

// watchSettings loads the bindings and keeps them current.
// Settings are applied on the event loop. A file that fails to load leaves
// the current bindings in place.
func watchSettings(ctx context.Context, store *settings.Store, live *keymap.Live, loop *sched.Loop, send func(tea.Msg), notifier *notify.Replacing, log logrus.FieldLogger) {
	desktop := func(n notify.Notification) {
		if notifier == nil {
			return
		}
		if err := notifier.Notify(n); err != nil {
			log.WithError(err).Debug("sending notification")
		}
	}

	apply := func(st keymap.Settings) {
		loop.Post(func() {
			live.Set(st)
			send(host.RefreshMsg{})
		})
	}

	st, err := store.Load(ctx)
	if err != nil {
		log.WithError(err).Warn("loading bindings, using defaults")
		send(host.ErrorMsg{Text: errmsg.Format(errmsg.OpBindingsLoad, err)})
	} else {
		apply(st)
	}

	err = store.Watch(ctx, func(st keymap.Settings, err error) {
		if err != nil {
			log.WithError(err).Warn("reloading bindings, keeping current")
			text := errmsg.Format(errmsg.OpBindingsLoad, err)
			send(host.ErrorMsg{Text: text})
			desktop(notify.Notification{Title: "Key bindings not reloaded", Body: text, Timeout: -1, Urgency: notify.UrgencyCritical})
			return
		}
		log.Info("bindings reloaded")
		apply(st)
		desktop(notify.Notification{Title: "Key bindings reloaded", Body: store.Path(), Timeout: 3000, Urgency: notify.UrgencyLow, Transient: true})
	})
	if err != nil {
		log.WithError(err).Warn("bindings changes will not be picked up")
		send(host.ErrorMsg{Text: errmsg.Format(errmsg.OpBindingsWatch, err)})
	}
}
