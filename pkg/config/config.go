// Package config loads and saves the mapview user configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ha1tch/mapview/pkg/mapview"
)

// Config holds mapview configuration.
type Config struct {
	View   ViewConfig   `toml:"view"`
	Canvas CanvasConfig `toml:"canvas"`
	Export ExportConfig `toml:"export"`
	Editor EditorConfig `toml:"editor"`
}

// ViewConfig controls the map view.
type ViewConfig struct {
	Kind          string  `toml:"kind"` // "list", "grid", "canvas"
	SnapTolerance float64 `toml:"snap_tolerance"`
	AnimationMs   int     `toml:"animation_ms"`
}

// CanvasConfig bounds canvas zooming.
type CanvasConfig struct {
	MinZoom  float64 `toml:"min_zoom"`
	MaxZoom  float64 `toml:"max_zoom"`
	ZoomStep float64 `toml:"zoom_step"`
}

// ExportConfig sets defaults for rendered images.
type ExportConfig struct {
	Format string `toml:"format"` // "svg", "png"
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// EditorConfig remembers editor state.
type EditorConfig struct {
	LastFile string `toml:"last_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		View:   ViewConfig{Kind: "list", SnapTolerance: 0.2, AnimationMs: 500},
		Canvas: CanvasConfig{MinZoom: 0.1, MaxZoom: 20, ZoomStep: 0.01},
		Export: ExportConfig{Format: "svg", Width: 800, Height: 600},
	}
}

// Animation returns the configured animation duration.
func (c *Config) Animation() time.Duration {
	return time.Duration(c.View.AnimationMs) * time.Millisecond
}

// ViewOptions returns view options for the configured behaviour.
func (c *Config) ViewOptions(log *slog.Logger) mapview.Options {
	return mapview.Options{
		Logger:            log,
		SnapTolerance:     c.View.SnapTolerance,
		MinZoom:           c.Canvas.MinZoom,
		MaxZoom:           c.Canvas.MaxZoom,
		ZoomStep:          c.Canvas.ZoomStep,
		AnimationDuration: c.Animation(),
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := mapview.ParseKind(c.View.Kind); err != nil {
		return fmt.Errorf("view.kind: %w", err)
	}
	if c.View.SnapTolerance < 0 {
		return fmt.Errorf("view.snap_tolerance: must not be negative")
	}
	if c.Canvas.MinZoom <= 0 || c.Canvas.MaxZoom < c.Canvas.MinZoom {
		return fmt.Errorf("canvas: invalid zoom range [%g, %g]", c.Canvas.MinZoom, c.Canvas.MaxZoom)
	}
	switch c.Export.Format {
	case "svg", "png":
	default:
		return fmt.Errorf("export.format: unknown format %q", c.Export.Format)
	}
	return nil
}

// ConfigDir returns the mapview config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mapview")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file. A missing file yields the defaults; a file
// that cannot be parsed is an error.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads config from path over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return encode(f, cfg)
}

// encode writes cfg as TOML and closes w. A failed close is an error since
// it may mean the file was not flushed.
func encode(w io.WriteCloser, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
