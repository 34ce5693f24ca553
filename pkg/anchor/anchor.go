// Package anchor models the eight resize handles around a selection
// rectangle and the ragged 3x3 matrix that holds them.
package anchor

import "github.com/menta2k/image-selector/pkg/types"

// DefaultSize is the hit-test radius of an anchor in pixels
const DefaultSize = 5.0

// CellKind distinguishes corner handles from edge midpoint handles
type CellKind int

const (
	// Corner is one of the four corner handles
	Corner CellKind = iota
	// EdgeMidpoint is a handle in the middle of an edge
	EdgeMidpoint
)

func (k CellKind) String() string {
	if k == Corner {
		return "corner"
	}
	return "edge-midpoint"
}

// Cell addresses a slot of the anchor matrix. Row 1 only has two slots:
// column 0 is the left middle handle and column 1 the right middle handle.
type Cell struct {
	Row int
	Col int
}

// The eight cells of the matrix in row-major order
var (
	TopLeft      = Cell{0, 0}
	TopMiddle    = Cell{0, 1}
	TopRight     = Cell{0, 2}
	LeftMiddle   = Cell{1, 0}
	RightMiddle  = Cell{1, 1}
	BottomLeft   = Cell{2, 0}
	BottomMiddle = Cell{2, 1}
	BottomRight  = Cell{2, 2}
)

// Cells lists every valid cell in matrix traversal order
var Cells = [8]Cell{TopLeft, TopMiddle, TopRight, LeftMiddle, RightMiddle, BottomLeft, BottomMiddle, BottomRight}

// Valid reports whether c addresses one of the eight slots
func (c Cell) Valid() bool {
	return c.index() >= 0
}

// Kind returns whether the cell holds a corner or an edge midpoint handle
func (c Cell) Kind() CellKind {
	if c.Row == 1 || c.Col == 1 {
		return EdgeMidpoint
	}
	return Corner
}

// Horizontal reports whether the cell is a left or right middle handle,
// which only resizes the width
func (c Cell) Horizontal() bool {
	return c.Row == 1
}

// Vertical reports whether the cell is a top or bottom middle handle,
// which only resizes the height
func (c Cell) Vertical() bool {
	return c.Row != 1 && c.Col == 1
}

func (c Cell) index() int {
	switch c.Row {
	case 0:
		if c.Col >= 0 && c.Col <= 2 {
			return c.Col
		}
	case 1:
		if c.Col >= 0 && c.Col <= 1 {
			return 3 + c.Col
		}
	case 2:
		if c.Col >= 0 && c.Col <= 2 {
			return 5 + c.Col
		}
	}
	return -1
}

// Anchor is a handle positioned on the selection perimeter
type Anchor struct {
	X      float64
	Y      float64
	Size   float64
	Row    int
	Col    int
	Cursor types.Cursor
}

// New creates an anchor at (x, y) with the default size
func New(x, y float64) Anchor {
	return Anchor{X: x, Y: y, Size: DefaultSize, Cursor: types.CursorAuto}
}

// Cell returns the matrix slot assigned to the anchor
func (a Anchor) Cell() Cell {
	return Cell{Row: a.Row, Col: a.Col}
}

// Point returns the anchor position
func (a Anchor) Point() types.Point {
	return types.Point{X: a.X, Y: a.Y}
}

// Hit reports whether (x, y) falls inside the anchor's hit box. The box spans
// [X-Size, X+2*Size] on both axes, so it extends further right and down.
func (a Anchor) Hit(x, y float64) bool {
	return x >= a.X-a.Size &&
		x <= a.X+a.Size*2 &&
		y >= a.Y-a.Size &&
		y <= a.Y+a.Size*2
}

// Handle returns the square drawn for the anchor, centered on its position
func (a Anchor) Handle() types.Rect {
	return types.Rect{
		X:      a.X - a.Size/2,
		Y:      a.Y - a.Size/2,
		Width:  a.Size,
		Height: a.Size,
	}
}

func (a *Anchor) setCursor(cursor types.Cursor) {
	a.Cursor = cursor
}

func (a *Anchor) setPosition(row, col int) {
	a.Row = row
	a.Col = col
}
