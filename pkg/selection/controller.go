// Package selection turns pointer input into a rectangular selection on a
// raster surface.
//
// A Controller owns the selection rectangle and the drag state machine. A
// pointer-down outside the current anchors starts a new selection, a
// pointer-down on an anchor resizes the existing one from its opposite side,
// and pointer-up normalizes the rectangle and hands the selected pixels to
// the registered preview sinks.
//
// Every handler runs to completion synchronously; callers deliver the events
// of one gesture in down, move..., up order from a single goroutine, either by
// calling the handlers directly or through Run.
package selection

import (
	"context"
	"image/color"
	"io"
	"log"
	"math"

	"github.com/menta2k/image-selector/pkg/anchor"
	"github.com/menta2k/image-selector/pkg/types"
)

// State is the phase of the drag state machine
type State int

const (
	// Idle waits for a pointer down
	Idle State = iota
	// Selecting is drawing a new selection from a pointer down
	Selecting
	// Dragging is resizing the selection from one of its anchors
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Dragging:
		return "dragging"
	}
	return "unknown"
}

// Config holds configuration for a selection controller
type Config struct {
	// Boundary limits every selection edge. Ignored when UseBoundary is
	// false, in which case the full surface is the limit.
	Boundary    types.Rect
	UseBoundary bool

	AnchorSize    float64
	StrokeWidth   int
	MaskColor     color.NRGBA
	StrokeColor   color.NRGBA
	HandleColor   color.NRGBA
	BoundaryColor color.NRGBA
}

// DefaultConfig returns the configuration used by New
func DefaultConfig() Config {
	return Config{
		Boundary:      types.Rect{X: 50, Y: 50, Width: 500, Height: 500},
		UseBoundary:   true,
		AnchorSize:    anchor.DefaultSize,
		StrokeWidth:   1,
		MaskColor:     color.NRGBA{0, 0, 0, 51},
		StrokeColor:   color.NRGBA{0, 0, 0, 255},
		HandleColor:   color.NRGBA{0, 0, 0, 255},
		BoundaryColor: color.NRGBA{0, 0, 0, 255},
	}
}

// session is the state of one pointer-down to pointer-up gesture
type session struct {
	selectActive bool
	anchorActive bool
	lockRow      bool
	lockCol      bool
	proportional bool
	moved        bool
}

// Controller interprets pointer events into a selection rectangle
type Controller struct {
	surface  Surface
	config   Config
	boundary types.Rect
	matrix   *anchor.Matrix

	rect    types.Rect
	session session

	listeners []RedrawListener
	sinks     []PreviewSink
	cursor    CursorSink
	logger    *log.Logger
}

// New creates a controller with the default configuration
func New(surface Surface) *Controller {
	return NewWithConfig(surface, DefaultConfig())
}

// NewWithConfig creates a controller with a custom configuration
func NewWithConfig(surface Surface, config Config) *Controller {
	if config.StrokeWidth < 1 {
		config.StrokeWidth = 1
	}

	boundary := types.RectFromImage(surface.Bounds())
	if config.UseBoundary {
		boundary = config.Boundary.Normalize()
	}

	return &Controller{
		surface:  surface,
		config:   config,
		boundary: boundary,
		matrix:   anchor.NewMatrixWithSize(config.AnchorSize),
		logger:   log.New(io.Discard, "", 0),
	}
}

// AddRedrawListener registers a listener that repaints the layers below the
// overlay. Listeners run in registration order.
func (c *Controller) AddRedrawListener(l RedrawListener) {
	c.listeners = append(c.listeners, l)
}

// AddPreviewSink registers a sink for completed selections
func (c *Controller) AddPreviewSink(s PreviewSink) {
	c.sinks = append(c.sinks, s)
}

// SetCursorSink sets the receiver of hover cursor hints
func (c *Controller) SetCursorSink(s CursorSink) {
	c.cursor = s
}

// SetLogger enables tracing of state transitions
func (c *Controller) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	c.logger = l
}

// Boundary returns the rectangle selections are confined to
func (c *Controller) Boundary() types.Rect {
	return c.boundary
}

// Selection returns the current selection rectangle. While a drag is in
// progress the size may be negative.
func (c *Controller) Selection() types.Rect {
	return c.rect
}

// Matrix returns the anchor matrix of the current selection
func (c *Controller) Matrix() *anchor.Matrix {
	return c.matrix
}

// State returns the current phase of the state machine
func (c *Controller) State() State {
	switch {
	case !c.session.selectActive:
		return Idle
	case c.session.anchorActive:
		return Dragging
	default:
		return Selecting
	}
}

// Handle dispatches ev to the matching pointer handler
func (c *Controller) Handle(ev types.PointerEvent) {
	switch ev.Kind {
	case types.PointerDown:
		c.PointerDown(ev)
	case types.PointerMove:
		c.PointerMove(ev)
	case types.PointerUp:
		c.PointerUp(ev)
	}
}

// Run handles events until the channel is closed or ctx is done
func (c *Controller) Run(ctx context.Context, events <-chan types.PointerEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Handle(ev)
		}
	}
}

// PointerDown starts a resize when an anchor is hit, otherwise starts or
// cancels a fresh selection inside the boundary
func (c *Controller) PointerDown(ev types.PointerEvent) {
	ev = snap(ev)
	if hit, ok := c.matrix.HitTest(ev.X, ev.Y); ok && !c.session.selectActive {
		origin := c.matrix.OppositeOriginOf(hit)

		c.session = session{selectActive: true, anchorActive: true}
		if hit.Cell().Horizontal() {
			c.session.lockCol = true
		} else if hit.Cell().Vertical() {
			c.session.lockRow = true
		}

		c.rect.X = origin.X
		c.rect.Y = origin.Y
		c.logger.Printf("selection: drag anchor (%d,%d) from origin %.0f,%.0f", hit.Row, hit.Col, origin.X, origin.Y)

		c.move(ev)
		return
	}

	if !c.boundary.Contains(ev.Point()) {
		return
	}

	c.selectClick(ev)
}

// PointerMove updates the selection during a gesture and reports hover
// cursors otherwise
func (c *Controller) PointerMove(ev types.PointerEvent) {
	ev = snap(ev)
	if c.session.selectActive {
		c.session.moved = true
		c.move(ev)
		return
	}
	c.hover(ev)
}

// PointerUp finalizes the gesture. A click that never moved leaves the
// controller selecting, so the next click cancels it.
func (c *Controller) PointerUp(ev types.PointerEvent) {
	if !c.session.selectActive {
		return
	}
	if !c.session.anchorActive && !c.session.moved && c.rect.Empty() {
		return
	}

	c.finalize()
}

// Select replaces the selection with r clamped to the boundary, then
// finalizes it like a completed drag. Any gesture in progress is dropped.
func (c *Controller) Select(r types.Rect) {
	p0 := c.boundary.Clamp(types.Pt(r.X, r.Y))
	p1 := c.boundary.Clamp(types.Pt(r.Right(), r.Bottom()))

	c.rect = types.Rect{X: p0.X, Y: p0.Y, Width: p1.X - p0.X, Height: p1.Y - p0.Y}
	c.session = session{}
	if err := c.matrix.SetRect(c.rect); err != nil {
		c.logger.Printf("selection: %v", err)
		c.matrix.Reset()
	}
	c.finalize()
}

// Clear drops the selection and repaints the base layers
func (c *Controller) Clear() {
	c.rect = types.Rect{}
	c.session = session{}
	c.matrix.Reset()
	c.paintBase()
}

// Render repaints the base layers and the overlay of the current selection
func (c *Controller) Render() {
	if !c.matrix.Built() {
		c.paintBase()
		return
	}
	c.draw()
}

func (c *Controller) selectClick(ev types.PointerEvent) {
	if c.session.selectActive {
		c.logger.Printf("selection: cancelled at %.0f,%.0f", ev.X, ev.Y)
		c.Clear()
		return
	}

	c.rect = types.Rect{X: ev.X, Y: ev.Y}
	c.matrix.Reset()
	c.paintBase()

	c.session = session{selectActive: true}
	c.logger.Printf("selection: start at %.0f,%.0f", ev.X, ev.Y)
}

// move recomputes the rectangle from a pointer position clamped to the
// boundary
func (c *Controller) move(ev types.PointerEvent) {
	cur := c.boundary.Clamp(ev.Point())

	switch {
	case ev.Mods.Ctrl && !ev.Mods.Shift:
		c.translate(cur)

	case ev.Mods.Shift && !ev.Mods.Ctrl && !c.session.lockRow && !c.session.lockCol:
		c.session.proportional = true
		maxSelect := math.Max(cur.X, cur.Y)
		right := clamp(maxSelect, c.boundary.X, c.boundary.Right())
		bottom := clamp(maxSelect, c.boundary.Y, c.boundary.Bottom())
		c.rect.Width = right - c.rect.X
		c.rect.Height = bottom - c.rect.Y

	default:
		if !c.session.lockRow {
			c.rect.Width = cur.X - c.rect.X
		}
		if !c.session.lockCol {
			c.rect.Height = cur.Y - c.rect.Y
		}
	}

	c.draw()
}

// translate slides the rectangle so its far corner follows the pointer,
// then pushes it back inside the boundary. A rectangle larger than the
// boundary is pinned to the top-left edge.
func (c *Controller) translate(cur types.Point) {
	c.rect.X = cur.X - c.rect.Width
	c.rect.Y = cur.Y - c.rect.Height

	n := c.rect.Normalize()
	b := c.boundary

	var dx, dy float64
	if n.Right() > b.Right() {
		dx = b.Right() - n.Right()
	}
	if n.X+dx < b.X {
		dx = b.X - n.X
	}
	if n.Bottom() > b.Bottom() {
		dy = b.Bottom() - n.Bottom()
	}
	if n.Y+dy < b.Y {
		dy = b.Y - n.Y
	}

	c.rect.X += dx
	c.rect.Y += dy
}

func (c *Controller) finalize() {
	if tl, ok := c.matrix.At(anchor.TopLeft); ok {
		c.rect.X = tl.X
		c.rect.Y = tl.Y
		c.rect.Width = math.Abs(c.rect.Width)
		c.rect.Height = math.Abs(c.rect.Height)
	} else {
		c.rect = c.rect.Normalize()
	}
	c.session = session{}

	c.paintBase()
	c.emit()
	c.draw()
	c.logger.Printf("selection: final %.0f,%.0f %.0fx%.0f", c.rect.X, c.rect.Y, c.rect.Width, c.rect.Height)
}

func (c *Controller) emit() {
	region := c.rect.Image().Intersect(c.surface.Bounds())
	if region.Empty() || len(c.sinks) == 0 {
		return
	}

	img := c.surface.PixelRegion(region)
	for _, s := range c.sinks {
		s.Preview(Region{Rect: c.rect, Image: img})
	}
}

func (c *Controller) hover(ev types.PointerEvent) {
	if c.cursor == nil {
		return
	}

	if hit, ok := c.matrix.HitTest(ev.X, ev.Y); ok {
		if ev.Mods.Ctrl {
			c.cursor.SetCursor(types.CursorMove)
		} else {
			c.cursor.SetCursor(hit.Cursor)
		}
		return
	}
	c.cursor.SetCursor(types.CursorAuto)
}

// snap rounds event coordinates to whole pixels, which keeps edge midpoints
// exactly representable for the anchor classification
func snap(ev types.PointerEvent) types.PointerEvent {
	ev.X = math.Round(ev.X)
	ev.Y = math.Round(ev.Y)
	return ev
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
