package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.View.Kind != "list" {
		t.Errorf("expected view kind 'list', got %q", cfg.View.Kind)
	}
	if cfg.View.SnapTolerance != 0.2 {
		t.Errorf("expected snap tolerance 0.2, got %g", cfg.View.SnapTolerance)
	}
	if cfg.Animation() != 500*time.Millisecond {
		t.Errorf("expected 500ms animation, got %v", cfg.Animation())
	}
	if cfg.Canvas.MinZoom != 0.1 || cfg.Canvas.MaxZoom != 20 {
		t.Errorf("unexpected zoom range [%g, %g]", cfg.Canvas.MinZoom, cfg.Canvas.MaxZoom)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if dir := ConfigDir(); dir != "/tmp/test-xdg/mapview" {
		t.Errorf("expected /tmp/test-xdg/mapview, got %q", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config", "mapview")
	if dir := ConfigDir(); dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Export.Format != "svg" {
		t.Errorf("expected default export format, got %q", cfg.Export.Format)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.View.Kind = "canvas"
	cfg.Export.Width = 1024
	cfg.Editor.LastFile = "/tmp/scene.toml"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.View.Kind != "canvas" {
		t.Errorf("expected kind canvas, got %q", loaded.View.Kind)
	}
	if loaded.Export.Width != 1024 {
		t.Errorf("expected width 1024, got %d", loaded.Export.Width)
	}
	if loaded.Editor.LastFile != "/tmp/scene.toml" {
		t.Errorf("expected last file to round trip, got %q", loaded.Editor.LastFile)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[canvas]\nmax_zoom = 5.0\n"), 0o644)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Canvas.MaxZoom != 5 {
		t.Errorf("expected max zoom 5, got %g", cfg.Canvas.MaxZoom)
	}
	if cfg.Canvas.MinZoom != 0.1 {
		t.Errorf("unset keys should keep defaults, got min zoom %g", cfg.Canvas.MinZoom)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[view\nkind = 1"},
		{"kind", "[view]\nkind = \"radial\"\n"},
		{"zoom", "[canvas]\nmin_zoom = 2.0\nmax_zoom = 1.0\n"},
		{"format", "[export]\nformat = \"gif\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(path, []byte(tt.content), 0o644)
			if _, err := LoadFile(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestViewOptions(t *testing.T) {
	cfg := Default()
	cfg.View.AnimationMs = 250
	cfg.Canvas.MaxZoom = 8

	opts := cfg.ViewOptions(nil)
	if opts.AnimationDuration != 250*time.Millisecond {
		t.Errorf("expected 250ms animation, got %v", opts.AnimationDuration)
	}
	if opts.MaxZoom != 8 || opts.SnapTolerance != 0.2 {
		t.Errorf("unexpected options %+v", opts)
	}
}

type failingClose struct {
	bytes.Buffer
	err error
}

func (f *failingClose) Close() error { return f.err }

func TestEncodeReportsCloseError(t *testing.T) {
	flush := errors.New("flush failed")
	w := &failingClose{err: flush}
	if err := encode(w, Default()); !errors.Is(err, flush) {
		t.Errorf("expected close error, got %v", err)
	}
	if !bytes.Contains(w.Bytes(), []byte("[view]")) {
		t.Errorf("expected encoded config, got %q", w.String())
	}
	if err := encode(&failingClose{}, Default()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
