// Package config loads mindtower settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/mindtower/config.toml (falling back to
// ~/.config) unless a path is given explicitly. Every key is optional; missing
// keys keep their defaults:
//
//	[layout]
//	horizontal_spacing = 60.0
//	base_radius = 40.0
//
//	[palette]
//	colors = ["#7df9ff", "#ff5ecb", "#fcf6bd", "#ffbd44"]
//
//	[server]
//	addr = "127.0.0.1:8080"
//	allowed_origins = ["http://localhost:5173"]
//
//	[log]
//	level = "info"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	mterrors "github.com/matzehuels/mindtower/pkg/errors"
	"github.com/matzehuels/mindtower/pkg/layout"
	"github.com/matzehuels/mindtower/pkg/mindmap"
)

// Config holds mindtower configuration.
type Config struct {
	Layout  layout.Config `toml:"layout"`
	Palette PaletteConfig `toml:"palette"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
}

// PaletteConfig lists the node colors in cycle order.
type PaletteConfig struct {
	Colors []string `toml:"colors"`
}

// ServerConfig controls the HTTP adapter.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// StreamBuffer is the number of snapshots queued per stream client
	// before the client is dropped.
	StreamBuffer int `toml:"stream_buffer"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout:  layout.DefaultConfig(),
		Palette: PaletteConfig{Colors: slices.Clone(mindmap.DefaultPalette)},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"*"},
			StreamBuffer:   16,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Dir returns the mindtower config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mindtower")
}

// DefaultPath returns the config file used when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path (or [DefaultPath] when empty) on top of the
// defaults. A missing file is not an error. Unknown keys are.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeInvalidConfig, err, "cannot parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, mterrors.New(mterrors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	cfg.Layout.PaletteSize = len(cfg.Palette.Colors)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path (or [DefaultPath] when empty), creating the
// directory if needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return mterrors.Wrap(mterrors.ErrCodeInvalidConfig, err, "invalid [layout]")
	}
	if len(c.Palette.Colors) == 0 {
		return mterrors.New(mterrors.ErrCodeInvalidConfig, "[palette] colors must not be empty")
	}
	for _, col := range c.Palette.Colors {
		if !hexColor.MatchString(col) {
			return mterrors.New(mterrors.ErrCodeInvalidConfig, "[palette] %q is not a #rgb or #rrggbb color", col)
		}
	}
	if c.Server.Addr == "" {
		return mterrors.New(mterrors.ErrCodeInvalidConfig, "[server] addr must not be empty")
	}
	if c.Server.StreamBuffer < 1 {
		return mterrors.New(mterrors.ErrCodeInvalidConfig, "[server] stream_buffer must be at least 1")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return mterrors.Wrap(mterrors.ErrCodeInvalidConfig, err, "[log] level %q", c.Log.Level)
	}
	return nil
}

// NodePalette returns the configured node colors.
func (c *Config) NodePalette() mindmap.Palette {
	return mindmap.Palette(slices.Clone(c.Palette.Colors))
}

// LogLevel returns the configured level, or info if it does not parse.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
