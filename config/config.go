// Package config loads the small YAML document that configures the
// xdeps demo CLI: log level and default container label. Grounded on the
// corpus's general preference for gopkg.in/yaml.v3 config files (used by
// both cuelang.org/go and the beads example) over a bespoke flag-only
// setup.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the demo CLI's configuration document.
type Config struct {
	LogLevel     string `yaml:"logLevel"`
	DefaultLabel string `yaml:"defaultLabel"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{LogLevel: "info", DefaultLabel: "_"}
}

// Load reads and parses a YAML config file at path. A missing file is not
// an error — Default is returned instead, so `xdeps demo` works with zero
// configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("xdeps: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("xdeps: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// SlogLevel maps the config's textual log level to a slog.Level, defaulting
// to Info for an unrecognized or empty value.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the slog.Logger the demo CLI and Manager should use,
// writing structured text to stderr at the configured level.
func (c Config) NewLogger() *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.SlogLevel()})
	return slog.New(h)
}
