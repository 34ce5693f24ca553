package selection

import (
	"math"

	"github.com/menta2k/image-selector/pkg/anchor"
	"github.com/menta2k/image-selector/pkg/types"
)

// paintBase clears the surface, lets the listeners repaint what lies below
// the overlay and outlines the boundary
func (c *Controller) paintBase() {
	c.surface.Clear()
	for _, l := range c.listeners {
		l.Redraw(c.surface, c.boundary)
	}
	if c.config.UseBoundary {
		c.surface.StrokeRect(c.boundary, c.config.BoundaryColor, c.config.StrokeWidth)
	}
}

// draw rebuilds the anchor matrix from the rectangle and paints the dim
// mask, the selection outline and the anchor handles over the base layers
func (c *Controller) draw() {
	if err := c.matrix.SetRect(c.rect); err != nil {
		c.logger.Printf("selection: %v", err)
		return
	}

	c.paintBase()

	for _, r := range c.maskRects() {
		c.surface.FillRect(r, c.config.MaskColor)
	}
	c.surface.StrokeRect(c.rect.Normalize(), c.config.StrokeColor, c.config.StrokeWidth)
	for _, a := range c.matrix.Anchors() {
		c.surface.FillRect(a.Handle(), c.config.HandleColor)
	}
}

// maskRects returns the four strips of the boundary outside the selection:
// full-height strips left and right, and strips above and below spanning
// the selection width. They are derived from the corner anchors so they
// line up with the hit-test geometry.
func (c *Controller) maskRects() []types.Rect {
	tl, _ := c.matrix.At(anchor.TopLeft)
	tr, _ := c.matrix.At(anchor.TopRight)
	bl, _ := c.matrix.At(anchor.BottomLeft)

	b := c.boundary
	width := math.Abs(c.rect.Width)

	return []types.Rect{
		{X: b.X, Y: b.Y, Width: tl.X - b.X, Height: b.Height},
		{X: tr.X, Y: b.Y, Width: math.Abs(tr.X - b.Right()), Height: b.Height},
		{X: tl.X, Y: b.Y, Width: width, Height: tl.Y - b.Y},
		{X: bl.X, Y: bl.Y, Width: width, Height: math.Abs(bl.Y - b.Bottom())},
	}
}
