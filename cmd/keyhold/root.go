package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llehouerou/keyhold/internal/app"
	"github.com/llehouerou/keyhold/internal/config"
	"github.com/llehouerou/keyhold/internal/settings"
	"github.com/llehouerou/keyhold/internal/state"
	"github.com/llehouerou/keyhold/internal/stderr"
)

type options struct {
	configFile   string
	bindingsFile string
}

// openMarkers opens the session marker store. Tests replace it.
var openMarkers = func() (state.Interface, error) {
	m, err := state.Open()
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "keyhold <file>",
		Short: "View a document with held-key scrolling and tap/hold media keys",
		Long: `keyhold opens a text document in the terminal. Holding a bound key scrolls
smoothly, tapping or holding the media keys seeks or fast-forwards the player.
Key bindings live in a TOML file that is reloaded whenever it changes.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViewer(cmd.Context(), opts, args[0])
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/keyhold/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.bindingsFile, "bindings", "", "key bindings file, overrides bindings_file")

	cmd.AddCommand(newBindingsCmd(opts))
	cmd.AddCommand(newBindCmd(opts))
	cmd.AddCommand(newUnbindCmd(opts))
	cmd.AddCommand(newResetCmd(opts))
	cmd.AddCommand(newMarkersCmd())

	return cmd
}

func (o *options) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFrom(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.bindingsFile != "" {
		cfg.BindingsFile = o.bindingsFile
	}
	return cfg, nil
}

func (o *options) store() (*settings.Store, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return settings.NewStore(cfg.BindingsPath(), nil), nil
}

func runViewer(ctx context.Context, opts *options, path string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	log, logFile, err := app.NewLogger(cfg.LogPath(), cfg.GetLogLevel())
	if err != nil {
		return err
	}
	defer logFile.Close()

	capture, err := stderr.Start(func(line string) {
		log.WithField("source", "stderr").Warn(line)
	})
	if err != nil {
		log.WithError(err).Warn("stderr not captured")
	} else {
		defer capture.Stop()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := app.Run(ctx, cfg, path, log); err != nil {
		log.WithError(err).Error("keyhold exited with an error")
		return err
	}
	return nil
}
