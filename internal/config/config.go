package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/menta2k/image-selector/pkg/selection"
	"github.com/menta2k/image-selector/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Surface  SurfaceConfig  `json:"surface"`
	Boundary BoundaryConfig `json:"boundary"`
	Anchors  AnchorConfig   `json:"anchors"`
	Overlay  OverlayConfig  `json:"overlay"`
	Output   OutputConfig   `json:"output"`
	Suggest  SuggestConfig  `json:"suggest"`
}

// SurfaceConfig holds the size of the drawing surface
type SurfaceConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BoundaryConfig holds the rectangle selections are confined to
type BoundaryConfig struct {
	Enabled bool    `json:"enabled"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Rect returns the boundary as a rectangle
func (b BoundaryConfig) Rect() types.Rect {
	return types.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// AnchorConfig holds configuration for the resize handles
type AnchorConfig struct {
	Size float64 `json:"size"`
}

// OverlayConfig holds configuration for the selection overlay
type OverlayConfig struct {
	MaskAlpha   float64 `json:"mask_alpha"`
	StrokeWidth int     `json:"stroke_width"`
}

// OutputConfig holds configuration for preview output
type OutputConfig struct {
	Format    string `json:"format"`
	Quality   int    `json:"quality"`
	Lossless  bool   `json:"lossless"`
	OutputDir string `json:"output_dir"`
	Prefix    string `json:"prefix"`
}

// SuggestConfig holds configuration for initial selection suggestions
type SuggestConfig struct {
	Backend        string `json:"backend"`
	URL            string `json:"url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	SendSize       int    `json:"send_size"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Surface: SurfaceConfig{
			Width:  600,
			Height: 600,
		},
		Boundary: BoundaryConfig{
			Enabled: true,
			X:       50,
			Y:       50,
			Width:   500,
			Height:  500,
		},
		Anchors: AnchorConfig{
			Size: 5,
		},
		Overlay: OverlayConfig{
			MaskAlpha:   0.2,
			StrokeWidth: 1,
		},
		Output: OutputConfig{
			Format:    "png",
			Quality:   90,
			Lossless:  false,
			OutputDir: "./output",
			Prefix:    "selection",
		},
		Suggest: SuggestConfig{
			Backend:        "none",
			URL:            "http://localhost:11434",
			Model:          "openbmb/minicpm-v4.5",
			TimeoutSeconds: 300,
			SendSize:       1536,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Missing fields keep
// their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Surface.Width < 1 || c.Surface.Height < 1 {
		return fmt.Errorf("surface width and height must be positive")
	}

	if c.Boundary.Enabled {
		b := c.Boundary
		if b.Width <= 0 || b.Height <= 0 {
			return fmt.Errorf("boundary width and height must be positive")
		}
		if b.X < 0 || b.Y < 0 || b.X+b.Width > float64(c.Surface.Width) || b.Y+b.Height > float64(c.Surface.Height) {
			return fmt.Errorf("boundary must lie within the %dx%d surface", c.Surface.Width, c.Surface.Height)
		}
	}

	if c.Anchors.Size <= 0 {
		return fmt.Errorf("anchors.size must be positive")
	}

	if c.Overlay.MaskAlpha < 0 || c.Overlay.MaskAlpha > 1 {
		return fmt.Errorf("overlay.mask_alpha must be between 0 and 1")
	}

	if c.Overlay.StrokeWidth < 1 {
		return fmt.Errorf("overlay.stroke_width must be positive")
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("output.format must be png, jpg or webp")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	switch c.Suggest.Backend {
	case "none", "saliency", "ollama":
	default:
		return fmt.Errorf("suggest.backend must be none, saliency or ollama")
	}

	return nil
}

// SelectionConfig converts the configuration for the selection controller
func (c *Config) SelectionConfig() selection.Config {
	sc := selection.DefaultConfig()
	sc.UseBoundary = c.Boundary.Enabled
	sc.Boundary = c.Boundary.Rect()
	sc.AnchorSize = c.Anchors.Size
	sc.StrokeWidth = c.Overlay.StrokeWidth
	sc.MaskColor.A = uint8(math.Round(c.Overlay.MaskAlpha * 255))
	return sc
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-selector", "config.json")
}
