// Package imageselector provides interactive rectangular region selection
// over an image.
//
// A Selector owns a raster surface, an image layer painted into the
// selection boundary and a selection controller. Pointer events drive the
// controller; every completed selection is handed to the registered preview
// sinks as the cropped pixels of the surface.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		imageselector "github.com/menta2k/image-selector"
//		"github.com/menta2k/image-selector/pkg/gesture"
//		"github.com/menta2k/image-selector/pkg/preview"
//		"github.com/menta2k/image-selector/pkg/types"
//	)
//
//	func main() {
//		sel := imageselector.New()
//		if err := sel.LoadImage("photo.jpg"); err != nil {
//			log.Fatal(err)
//		}
//
//		collector := preview.NewCollector()
//		sel.AddPreviewSink(collector)
//
//		sel.Replay(gesture.Drag(types.Pt(100, 100), types.Pt(300, 200), 10, types.Modifiers{}))
//
//		if region, ok := collector.Last(); ok {
//			log.Printf("selected %v", region.Rect)
//		}
//	}
//
// The package consists of these components:
//
// 1. Anchor (pkg/anchor): the eight resize handles and their classification
// 2. Selection (pkg/selection): the pointer state machine and overlay painting
// 3. Raster (pkg/raster): an in-memory surface and the image layer
// 4. Preview (pkg/preview): sinks for completed selections
// 5. Suggest (pkg/suggest): initial selections from a vision model or saliency
package imageselector

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-selector/internal/config"
	"github.com/menta2k/image-selector/pkg/imageio"
	"github.com/menta2k/image-selector/pkg/raster"
	"github.com/menta2k/image-selector/pkg/selection"
	"github.com/menta2k/image-selector/pkg/suggest"
	"github.com/menta2k/image-selector/pkg/types"
)

// Version of the image selector library
const Version = "1.0.0"

// Selector provides a high-level interface for selecting regions of an image
type Selector struct {
	config     *config.Config
	codec      *imageio.Codec
	surface    *raster.Surface
	layer      *raster.ImageLayer
	controller *selection.Controller
	suggester  suggest.Suggester
}

// New creates a new Selector with default configuration
func New() *Selector {
	return NewWithConfig(config.Default())
}

// NewWithConfig creates a new Selector with custom configuration. A nil
// config uses the defaults.
func NewWithConfig(cfg *config.Config) *Selector {
	if cfg == nil {
		cfg = config.Default()
	}

	surface := raster.NewSurface(cfg.Surface.Width, cfg.Surface.Height)
	layer := raster.NewImageLayer()
	controller := selection.NewWithConfig(surface, cfg.SelectionConfig())
	controller.AddRedrawListener(layer)

	return &Selector{
		config:     cfg,
		codec:      imageio.NewCodec(),
		surface:    surface,
		layer:      layer,
		controller: controller,
	}
}

// SetSuggester sets the suggester used by Suggest
func (s *Selector) SetSuggester(suggester suggest.Suggester) {
	s.suggester = suggester
}

// SetLogger enables tracing of selection state transitions
func (s *Selector) SetLogger(l *log.Logger) {
	s.controller.SetLogger(l)
}

// AddPreviewSink registers a sink for completed selections
func (s *Selector) AddPreviewSink(sink selection.PreviewSink) {
	s.controller.AddPreviewSink(sink)
}

// SetCursorSink sets the receiver of hover cursor hints
func (s *Selector) SetCursorSink(sink selection.CursorSink) {
	s.controller.SetCursorSink(sink)
}

// Controller returns the underlying selection controller
func (s *Selector) Controller() *selection.Controller {
	return s.controller
}

// Codec returns the codec used to load images
func (s *Selector) Codec() *imageio.Codec {
	return s.codec
}

// LoadImage loads an image from a file path or http(s) URL and shows it
func (s *Selector) LoadImage(source string) error {
	img, err := s.codec.LoadImageSmart(source)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	if err := imageio.ValidateImage(img, 1); err != nil {
		return fmt.Errorf("image validation failed: %w", err)
	}
	s.SetImage(img)
	return nil
}

// SetImage shows img inside the boundary and drops the current selection
func (s *Selector) SetImage(img image.Image) {
	s.layer.SetImage(img)
	s.controller.Clear()
}

// Image returns the image being selected from, or nil
func (s *Selector) Image() image.Image {
	return s.layer.Image()
}

// Handle feeds one pointer event to the controller
func (s *Selector) Handle(ev types.PointerEvent) {
	s.controller.Handle(ev)
}

// Replay feeds events to the controller in order
func (s *Selector) Replay(events []types.PointerEvent) {
	for _, ev := range events {
		s.controller.Handle(ev)
	}
}

// Run handles events until the channel is closed or ctx is done
func (s *Selector) Run(ctx context.Context, events <-chan types.PointerEvent) error {
	return s.controller.Run(ctx, events)
}

// Select programmatically selects r, clamped to the boundary
func (s *Selector) Select(r types.Rect) {
	s.controller.Select(r)
}

// Clear drops the current selection
func (s *Selector) Clear() {
	s.controller.Clear()
}

// Selection returns the current selection rectangle
func (s *Selector) Selection() types.Rect {
	return s.controller.Selection()
}

// Suggest asks the suggester for the main subject of the current image and
// selects it. The returned rectangle is in surface coordinates.
func (s *Selector) Suggest(ctx context.Context) (types.Rect, error) {
	if s.suggester == nil {
		return types.Rect{}, fmt.Errorf("no suggester configured")
	}
	img := s.layer.Image()
	if img == nil {
		return types.Rect{}, fmt.Errorf("no image loaded")
	}

	box, err := s.suggester.Suggest(ctx, img)
	if err != nil {
		return types.Rect{}, fmt.Errorf("suggestion failed: %w", err)
	}

	s.controller.Select(box.Within(s.controller.Boundary()))
	return s.controller.Selection(), nil
}

// Crop returns the part of the source image under the current selection at
// the source resolution
func (s *Selector) Crop() (image.Image, error) {
	img := s.layer.Image()
	if img == nil {
		return nil, fmt.Errorf("no image loaded")
	}

	r := s.controller.Selection().Normalize()
	region := SourceRect(r, s.controller.Boundary(), img.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("selection is empty")
	}
	return imaging.Crop(img, region), nil
}

// SourceRect maps a selection made over boundary onto an image with the given
// bounds, assuming the image is stretched over the boundary
func SourceRect(sel, boundary types.Rect, bounds image.Rectangle) image.Rectangle {
	boundary = boundary.Normalize()
	if boundary.Width <= 0 || boundary.Height <= 0 {
		return image.Rectangle{}
	}

	sx := float64(bounds.Dx()) / boundary.Width
	sy := float64(bounds.Dy()) / boundary.Height
	mapped := types.Rect{
		X:      float64(bounds.Min.X) + (sel.X-boundary.X)*sx,
		Y:      float64(bounds.Min.Y) + (sel.Y-boundary.Y)*sy,
		Width:  sel.Width * sx,
		Height: sel.Height * sy,
	}
	return mapped.Image().Intersect(bounds)
}

// Snapshot returns a copy of the surface including the overlay
func (s *Selector) Snapshot() *image.NRGBA {
	return s.surface.Image()
}

// SaveSnapshot writes the surface to path in the given format
func (s *Selector) SaveSnapshot(path, format string, quality int) error {
	return s.codec.SaveImage(s.surface.Image(), path, format, quality, false)
}

// NewSuggester builds the suggester named by cfg.Backend. It returns nil for
// the "none" backend.
func NewSuggester(cfg config.SuggestConfig) (suggest.Suggester, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "saliency":
		return suggest.NewSaliencySuggester(), nil
	case "ollama":
		oc := suggest.DefaultOllamaConfig(cfg.Model)
		if cfg.SendSize > 0 {
			oc.SendSize = cfg.SendSize
		}
		if cfg.TimeoutSeconds > 0 {
			oc.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		return suggest.NewOllamaSuggester(cfg.URL, oc)
	}
	return nil, fmt.Errorf("unknown suggest backend: %s", cfg.Backend)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
