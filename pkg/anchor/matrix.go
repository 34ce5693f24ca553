package anchor

import (
	"errors"
	"fmt"

	"github.com/menta2k/image-selector/pkg/types"
)

// ErrMalformed is returned when a point set cannot be classified into the
// anchor layout of a single rectangle
var ErrMalformed = errors.New("anchor: points do not describe a rectangle")

// opposites maps a cell to the cell across the rectangle. That anchor stays
// fixed while the other one is dragged.
var opposites = [8]Cell{
	BottomRight, BottomMiddle, BottomLeft,
	RightMiddle, LeftMiddle,
	TopRight, TopMiddle, TopLeft,
}

// originOpposites maps a cell to the anchor that becomes the drag origin.
// Edge handles resolve to a corner so the locked axis keeps its extent, and
// the top row is preferred whenever the origin row is free.
var originOpposites = [8]Cell{
	BottomRight, BottomLeft, BottomLeft,
	TopRight, TopLeft,
	TopRight, TopLeft, TopLeft,
}

// cursors holds the resize hint of every cell in traversal order
var cursors = [8]types.Cursor{
	types.CursorNWSEResize,
	types.CursorRowResize,
	types.CursorNESWResize,
	types.CursorColResize,
	types.CursorColResize,
	types.CursorNESWResize,
	types.CursorRowResize,
	types.CursorNWSEResize,
}

// Matrix arranges the eight anchors of a rectangle in canonical order
type Matrix struct {
	anchors [8]Anchor
	size    float64
	built   bool
}

// NewMatrix creates an empty matrix whose anchors use the default size
func NewMatrix() *Matrix {
	return NewMatrixWithSize(DefaultSize)
}

// NewMatrixWithSize creates an empty matrix whose anchors use the given size
func NewMatrixWithSize(size float64) *Matrix {
	if size <= 0 {
		size = DefaultSize
	}
	return &Matrix{size: size}
}

// Built reports whether the matrix currently holds anchors
func (m *Matrix) Built() bool {
	return m.built
}

// Reset removes all anchors
func (m *Matrix) Reset() {
	m.anchors = [8]Anchor{}
	m.built = false
}

// SetRect rebuilds the matrix from the perimeter points of r
func (m *Matrix) SetRect(r types.Rect) error {
	return m.SetAnchors(r.Corners())
}

// SetAnchors classifies eight points into the canonical layout. Input order
// does not matter. The matrix is left untouched when the points cannot be
// classified.
func (m *Matrix) SetAnchors(points [8]types.Point) error {
	cells, err := classify(points)
	if err != nil {
		return err
	}

	for i, p := range cells {
		a := New(p.X, p.Y)
		a.Size = m.size
		a.setCursor(cursors[i])
		a.setPosition(Cells[i].Row, Cells[i].Col)
		m.anchors[i] = a
	}
	m.built = true
	return nil
}

// At returns the anchor stored in cell c
func (m *Matrix) At(c Cell) (Anchor, bool) {
	i := c.index()
	if !m.built || i < 0 {
		return Anchor{}, false
	}
	return m.anchors[i], true
}

// Anchors returns the anchors in traversal order, or nil when empty
func (m *Matrix) Anchors() []Anchor {
	if !m.built {
		return nil
	}
	out := make([]Anchor, len(m.anchors))
	copy(out, m.anchors[:])
	return out
}

// HitTest returns the last anchor in traversal order whose hit box contains
// (x, y)
func (m *Matrix) HitTest(x, y float64) (Anchor, bool) {
	if !m.built {
		return Anchor{}, false
	}

	var hit Anchor
	found := false
	for _, a := range m.anchors {
		if a.Hit(x, y) {
			hit = a
			found = true
		}
	}
	return hit, found
}

// OppositeOf returns the anchor geometrically across from a
func (m *Matrix) OppositeOf(a Anchor) Anchor {
	return m.lookup(opposites, a.Cell())
}

// OppositeOriginOf returns the anchor that becomes the fixed origin while a
// is dragged
func (m *Matrix) OppositeOriginOf(a Anchor) Anchor {
	return m.lookup(originOpposites, a.Cell())
}

// Bounds returns the normalized rectangle spanned by the corner anchors
func (m *Matrix) Bounds() types.Rect {
	if !m.built {
		return types.Rect{}
	}
	tl := m.anchors[TopLeft.index()]
	br := m.anchors[BottomRight.index()]
	return types.Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

func (m *Matrix) lookup(table [8]Cell, c Cell) Anchor {
	i := c.index()
	if !m.built || i < 0 {
		panic(fmt.Sprintf("anchor: no opposite for cell (%d,%d) in matrix (built=%v)", c.Row, c.Col, m.built))
	}
	return m.anchors[table[i].index()]
}

// classify resolves the corners by extremal tests, then the midpoints by
// exact matches against the corners. Each pass keeps the last point that
// satisfies its test, starting from points[0].
func classify(points [8]types.Point) ([8]types.Point, error) {
	pick := func(test func(val, acc types.Point) bool) types.Point {
		acc := points[0]
		for _, val := range points {
			if test(val, acc) {
				acc = val
			}
		}
		return acc
	}

	topLeft := pick(func(v, a types.Point) bool { return v.X <= a.X && v.Y <= a.Y })
	topRight := pick(func(v, a types.Point) bool { return v.X >= a.X && v.Y <= a.Y })
	bottomRight := pick(func(v, a types.Point) bool { return v.X >= a.X && v.Y >= a.Y })
	bottomLeft := pick(func(v, a types.Point) bool { return v.X <= a.X && v.Y >= a.Y })

	topMiddleTest := func(v types.Point) bool {
		return v.X == (topRight.X+topLeft.X)/2 && v.Y == topLeft.Y
	}
	bottomMiddleTest := func(v types.Point) bool {
		return v.X == (bottomRight.X+bottomLeft.X)/2 && v.Y == bottomLeft.Y
	}
	rightMiddleTest := func(v types.Point) bool {
		return v.X == topRight.X && v.Y == (bottomRight.Y+topRight.Y)/2
	}
	leftMiddleTest := func(v types.Point) bool {
		return v.X == topLeft.X && v.Y == (bottomRight.Y+topRight.Y)/2
	}

	topMiddle := pick(func(v, _ types.Point) bool { return topMiddleTest(v) })
	bottomMiddle := pick(func(v, _ types.Point) bool { return bottomMiddleTest(v) })
	rightMiddle := pick(func(v, _ types.Point) bool { return rightMiddleTest(v) })
	leftMiddle := pick(func(v, _ types.Point) bool { return leftMiddleTest(v) })

	if topLeft.X != bottomLeft.X || topRight.X != bottomRight.X ||
		topLeft.Y != topRight.Y || bottomLeft.Y != bottomRight.Y {
		return [8]types.Point{}, fmt.Errorf("%w: corners are not axis aligned", ErrMalformed)
	}
	if !topMiddleTest(topMiddle) || !bottomMiddleTest(bottomMiddle) ||
		!rightMiddleTest(rightMiddle) || !leftMiddleTest(leftMiddle) {
		return [8]types.Point{}, fmt.Errorf("%w: missing edge midpoint", ErrMalformed)
	}

	return [8]types.Point{
		topLeft, topMiddle, topRight,
		leftMiddle, rightMiddle,
		bottomLeft, bottomMiddle, bottomRight,
	}, nil
}
