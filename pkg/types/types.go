package types

import (
	"image"
	"math"
)

// Point is a position in surface pixel coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Rect is an axis aligned rectangle given by its origin and size.
// Width and Height may be negative while a drag is inverted.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the edge opposite the origin
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the edge opposite the origin
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Normalize returns the same rectangle with a non-negative size and the origin
// in the top-left corner
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Empty reports whether the rectangle has zero area
func (r Rect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Point) bool {
	n := r.Normalize()
	return p.X >= n.X && p.X <= n.Right() && p.Y >= n.Y && p.Y <= n.Bottom()
}

// Clamp snaps each axis of p independently to the nearest edge of r when it
// lies outside
func (r Rect) Clamp(p Point) Point {
	n := r.Normalize()
	return Point{
		X: clamp(p.X, n.X, n.Right()),
		Y: clamp(p.Y, n.Y, n.Bottom()),
	}
}

// Corners returns the eight perimeter points of the rectangle: the four
// corners followed by the four edge midpoints. Midpoints are the mean of
// their two corners so they compare equal to one computed from the corners.
func (r Rect) Corners() [8]Point {
	right, bottom := r.X+r.Width, r.Y+r.Height
	midX, midY := (r.X+right)/2, (r.Y+bottom)/2
	return [8]Point{
		{r.X, r.Y},
		{right, bottom},
		{right, r.Y},
		{r.X, bottom},
		{midX, r.Y},
		{midX, bottom},
		{r.X, midY},
		{right, midY},
	}
}

// Image converts the normalized rectangle to integer pixel bounds
func (r Rect) Image() image.Rectangle {
	n := r.Normalize()
	x0 := int(math.Round(n.X))
	y0 := int(math.Round(n.Y))
	return image.Rect(x0, y0, x0+int(math.Round(n.Width)), y0+int(math.Round(n.Height)))
}

// RectFromImage converts integer pixel bounds to a Rect
func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Clamp limits every component of the box to [0,1]
func (b Box) Clamp() Box {
	b.X = clamp(b.X, 0, 1)
	b.Y = clamp(b.Y, 0, 1)
	b.W = clamp(b.W, 0, 1-b.X)
	b.H = clamp(b.H, 0, 1-b.Y)
	return b
}

// Within maps the normalized box into the given rectangle
func (b Box) Within(r Rect) Rect {
	b = b.Clamp()
	n := r.Normalize()
	return Rect{
		X:      math.Round(n.X + b.X*n.Width),
		Y:      math.Round(n.Y + b.Y*n.Height),
		Width:  math.Round(b.W * n.Width),
		Height: math.Round(b.H * n.Height),
	}
}

// Modifiers holds the keyboard modifier state of a pointer event
type Modifiers struct {
	Ctrl  bool `json:"ctrl"`
	Shift bool `json:"shift"`
}

// EventKind identifies the phase of a pointer gesture
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	}
	return "unknown"
}

// PointerEvent is a mouse event in surface-local coordinates
type PointerEvent struct {
	Kind EventKind
	X    float64
	Y    float64
	Mods Modifiers
}

// Point returns the event position
func (e PointerEvent) Point() Point {
	return Point{X: e.X, Y: e.Y}
}

// Cursor is a presentation hint for the pointer shape
type Cursor string

const (
	CursorAuto       Cursor = "auto"
	CursorMove       Cursor = "move"
	CursorNWSEResize Cursor = "nwse-resize"
	CursorNESWResize Cursor = "nesw-resize"
	CursorRowResize  Cursor = "row-resize"
	CursorColResize  Cursor = "col-resize"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
