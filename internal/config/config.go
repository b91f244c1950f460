package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

const appName = "keyhold"

// Media sink kinds.
const (
	SinkBuiltin = "builtin"
	SinkMPRIS   = "mpris"
)

type Config struct {
	BindingsFile    string  `koanf:"bindings_file"`        // key bindings TOML, watched for changes
	FrameRate       int     `koanf:"frame_rate"`           // motion frames per second (1-240, default: 60)
	SeekStepSeconds float64 `koanf:"seek_step_seconds"`    // navigation tap seek (default: 5)
	Sink            string  `koanf:"sink"`                 // "builtin" or "mpris"
	MPRISPlayer     string  `koanf:"mpris_player"`         // remote player name filter, e.g. "mpv"
	MPRISServer     *bool   `koanf:"mpris_server"`         // expose the built-in player (default: true)
	MediaLengthSecs float64 `koanf:"media_length_seconds"` // built-in player length (default: 600)
	Notifications   *bool   `koanf:"notifications"`        // desktop notification on bindings reload (default: true)
	LogLevel        string  `koanf:"log_level"`            // logrus level name (default: "info")
	LogFile         string  `koanf:"log_file"`
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given files in order, later ones overriding earlier
// ones. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.BindingsFile = expandPath(cfg.BindingsFile)
	cfg.LogFile = expandPath(cfg.LogFile)
	cfg.Sink = strings.ToLower(strings.TrimSpace(cfg.Sink))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/keyhold/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// BindingsPath returns the key bindings file, defaulting to
// $XDG_CONFIG_HOME/keyhold/bindings.toml.
func (c *Config) BindingsPath() string {
	if c.BindingsFile != "" {
		return c.BindingsFile
	}
	return filepath.Join(xdg.ConfigHome, appName, "bindings.toml")
}

// LogPath returns the log file, defaulting to $XDG_STATE_HOME/keyhold/keyhold.log.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// GetFrameRate returns the frame rate with defaults applied.
func (c *Config) GetFrameRate() int {
	if c.FrameRate <= 0 || c.FrameRate > 240 {
		return 60
	}
	return c.FrameRate
}

// SeekStep returns the navigation tap seek distance.
func (c *Config) SeekStep() time.Duration {
	if c.SeekStepSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.SeekStepSeconds * float64(time.Second))
}

// MediaLength returns the length of the built-in player's media.
func (c *Config) MediaLength() time.Duration {
	if c.MediaLengthSecs <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.MediaLengthSecs * float64(time.Second))
}

// SinkKind returns the configured media sink, "builtin" unless "mpris" is set.
func (c *Config) SinkKind() string {
	if c.Sink == SinkMPRIS {
		return SinkMPRIS
	}
	return SinkBuiltin
}

// ExposeMPRIS reports whether the built-in player is published on the
// session bus.
func (c *Config) ExposeMPRIS() bool {
	if c.MPRISServer == nil {
		return true
	}
	return *c.MPRISServer
}

// NotifyReloads reports whether bindings reloads raise a desktop
// notification.
func (c *Config) NotifyReloads() bool {
	if c.Notifications == nil {
		return true
	}
	return *c.Notifications
}

// GetLogLevel parses LogLevel, falling back to info.
func (c *Config) GetLogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
