package selection

import (
	"image"
	"image/color"

	"github.com/menta2k/image-selector/pkg/types"
)

// Surface is the 2D raster the controller paints its overlay on and reads
// the selected pixels back from
type Surface interface {
	Bounds() image.Rectangle
	Clear()
	FillRect(r types.Rect, c color.Color)
	StrokeRect(r types.Rect, c color.Color, width int)
	PixelRegion(r image.Rectangle) image.Image
}

// Region is a finalized selection together with its pixels
type Region struct {
	Rect  types.Rect
	Image image.Image
}

// PreviewSink receives the pixels of every completed selection
type PreviewSink interface {
	Preview(region Region)
}

// PreviewFunc adapts a function to PreviewSink
type PreviewFunc func(region Region)

// Preview calls f(region)
func (f PreviewFunc) Preview(region Region) {
	f(region)
}

// CursorSink receives cursor hints while the pointer hovers the surface
type CursorSink interface {
	SetCursor(cursor types.Cursor)
}

// CursorFunc adapts a function to CursorSink
type CursorFunc func(cursor types.Cursor)

// SetCursor calls f(cursor)
func (f CursorFunc) SetCursor(cursor types.Cursor) {
	f(cursor)
}

// RedrawListener is notified before the controller paints, so it can repaint
// the layers below the selection overlay
type RedrawListener interface {
	Redraw(s Surface, boundary types.Rect)
}

// RedrawFunc adapts a function to RedrawListener
type RedrawFunc func(s Surface, boundary types.Rect)

// Redraw calls f(s, boundary)
func (f RedrawFunc) Redraw(s Surface, boundary types.Rect) {
	f(s, boundary)
}
