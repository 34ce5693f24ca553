// Package raster provides an in-memory drawing surface for the selection
// controller and the base image layer painted beneath its overlay.
package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"github.com/menta2k/image-selector/pkg/types"
)

// Surface is a 2D raster backed by an NRGBA image
type Surface struct {
	img        *image.NRGBA
	background color.NRGBA
}

// NewSurface creates a transparent surface of the given size
func NewSurface(width, height int) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Surface{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// SetBackground sets the color Clear fills the surface with
func (s *Surface) SetBackground(c color.NRGBA) {
	s.background = c
}

// Bounds returns the surface bounds
func (s *Surface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Clear fills the whole surface with the background color
func (s *Surface) Clear() {
	xdraw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, xdraw.Src)
}

// FillRect composites c over the pixels covered by r
func (s *Surface) FillRect(r types.Rect, c color.Color) {
	rect := r.Image().Intersect(s.img.Bounds())
	if rect.Empty() {
		return
	}
	xdraw.Draw(s.img, rect, image.NewUniform(c), image.Point{}, xdraw.Over)
}

// StrokeRect draws the outline of r, width pixels thick, inside its edges
func (s *Surface) StrokeRect(r types.Rect, c color.Color, width int) {
	if width < 1 {
		width = 1
	}
	rect := r.Image()
	w := float64(width)
	x0, y0 := float64(rect.Min.X), float64(rect.Min.Y)
	dx, dy := float64(rect.Dx()), float64(rect.Dy())

	if dx <= 2*w || dy <= 2*w {
		s.FillRect(types.Rect{X: x0, Y: y0, Width: maxf(dx, 1), Height: maxf(dy, 1)}, c)
		return
	}

	s.FillRect(types.Rect{X: x0, Y: y0, Width: dx, Height: w}, c)
	s.FillRect(types.Rect{X: x0, Y: y0 + dy - w, Width: dx, Height: w}, c)
	s.FillRect(types.Rect{X: x0, Y: y0 + w, Width: w, Height: dy - 2*w}, c)
	s.FillRect(types.Rect{X: x0 + dx - w, Y: y0 + w, Width: w, Height: dy - 2*w}, c)
}

// DrawImage paints img into dst, scaling it when the sizes differ
func (s *Surface) DrawImage(img image.Image, dst types.Rect) {
	rect := dst.Image()
	if rect.Empty() {
		return
	}
	src := img.Bounds()
	if src.Dx() == rect.Dx() && src.Dy() == rect.Dy() {
		xdraw.Draw(s.img, rect, img, src.Min, xdraw.Over)
		return
	}
	xdraw.BiLinear.Scale(s.img, rect, img, src, xdraw.Over, nil)
}

// PixelRegion returns a copy of the pixels inside r
func (s *Surface) PixelRegion(r image.Rectangle) image.Image {
	return imaging.Crop(s.img, r)
}

// Image returns a copy of the whole surface
func (s *Surface) Image() *image.NRGBA {
	return imaging.Clone(s.img)
}

// At returns the color of a single pixel
func (s *Surface) At(x, y int) color.NRGBA {
	return s.img.NRGBAAt(x, y)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
