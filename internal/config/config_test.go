package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/image-selector/pkg/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}
	if cfg.Surface.Width != 600 || cfg.Surface.Height != 600 {
		t.Errorf("Expected 600x600 surface, got %dx%d", cfg.Surface.Width, cfg.Surface.Height)
	}
	if cfg.Boundary.Rect() != (types.Rect{X: 50, Y: 50, Width: 500, Height: 500}) {
		t.Errorf("Unexpected default boundary %+v", cfg.Boundary.Rect())
	}
	if cfg.Anchors.Size != 5 {
		t.Errorf("Expected anchor size 5, got %v", cfg.Anchors.Size)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Output.Format = "webp"
	cfg.Boundary.Width = 300
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Output.Format != "webp" || loaded.Boundary.Width != 300 {
		t.Errorf("Loaded config does not match saved one: %+v", loaded)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"anchors":{"size":8}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Anchors.Size != 8 {
		t.Errorf("Expected anchor size 8, got %v", cfg.Anchors.Size)
	}
	if cfg.Surface.Width != 600 || cfg.Output.Quality != 90 {
		t.Error("Expected missing fields to keep their defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"surface", func(c *Config) { c.Surface.Width = 0 }},
		{"boundary size", func(c *Config) { c.Boundary.Height = 0 }},
		{"boundary outside", func(c *Config) { c.Boundary.X = 200 }},
		{"anchor size", func(c *Config) { c.Anchors.Size = 0 }},
		{"mask alpha", func(c *Config) { c.Overlay.MaskAlpha = 2 }},
		{"stroke", func(c *Config) { c.Overlay.StrokeWidth = 0 }},
		{"format", func(c *Config) { c.Output.Format = "gif" }},
		{"quality", func(c *Config) { c.Output.Quality = 0 }},
		{"backend", func(c *Config) { c.Suggest.Backend = "magic" }},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.modify(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}

	// A disabled boundary is not checked
	cfg := Default()
	cfg.Boundary.Enabled = false
	cfg.Boundary.Width = -1
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected disabled boundary to be ignored, got %v", err)
	}
}

func TestSelectionConfig(t *testing.T) {
	cfg := Default()
	cfg.Anchors.Size = 7
	cfg.Overlay.MaskAlpha = 0.5

	sc := cfg.SelectionConfig()
	if !sc.UseBoundary || sc.Boundary != cfg.Boundary.Rect() {
		t.Errorf("Unexpected boundary %+v (enabled=%v)", sc.Boundary, sc.UseBoundary)
	}
	if sc.AnchorSize != 7 {
		t.Errorf("Expected anchor size 7, got %v", sc.AnchorSize)
	}
	if sc.MaskColor.A != 128 {
		t.Errorf("Expected mask alpha 128, got %d", sc.MaskColor.A)
	}
	if Default().SelectionConfig().MaskColor.A != 51 {
		t.Error("Expected default mask alpha 51")
	}
}

func TestGetConfigPath(t *testing.T) {
	if filepath.Base(GetConfigPath()) != "config.json" {
		t.Errorf("Unexpected config path %s", GetConfigPath())
	}
}
