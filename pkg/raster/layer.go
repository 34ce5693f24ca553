package raster

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-selector/pkg/selection"
	"github.com/menta2k/image-selector/pkg/types"
)

// ImageDrawer is implemented by surfaces that can paint images
type ImageDrawer interface {
	DrawImage(img image.Image, dst types.Rect)
}

// ImageLayer repaints a base image stretched over the boundary whenever the
// selection controller redraws
type ImageLayer struct {
	src    image.Image
	scaled image.Image
	size   image.Point
	filter imaging.ResampleFilter
}

// NewImageLayer creates a layer with no image
func NewImageLayer() *ImageLayer {
	return &ImageLayer{filter: imaging.Lanczos}
}

// SetImage replaces the image painted by the layer
func (l *ImageLayer) SetImage(img image.Image) {
	l.src = img
	l.scaled = nil
	l.size = image.Point{}
}

// Image returns the source image, or nil
func (l *ImageLayer) Image() image.Image {
	return l.src
}

// SetFilter sets the resampling filter used to fit the image
func (l *ImageLayer) SetFilter(filter imaging.ResampleFilter) {
	l.filter = filter
	l.scaled = nil
}

// Redraw paints the image into the boundary. Surfaces without image support
// are left untouched.
func (l *ImageLayer) Redraw(s selection.Surface, boundary types.Rect) {
	drawer, ok := s.(ImageDrawer)
	if !ok || l.src == nil {
		return
	}

	dst := boundary.Image()
	if dst.Empty() {
		return
	}
	if l.scaled == nil || l.size != dst.Size() {
		l.scaled = imaging.Resize(l.src, dst.Dx(), dst.Dy(), l.filter)
		l.size = dst.Size()
	}
	drawer.DrawImage(l.scaled, boundary)
}
