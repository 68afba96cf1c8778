// Package shape implements the polygon annotations edited on the canvas.
//
// A Shape is an ordered list of image-space vertices plus the bookkeeping the
// canvas needs: a stable identifier, the closed/selected/confirmed flags, an
// optional label and the shape's index in the owning collection.
package shape

import (
	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/example/annocanvas/internal/assert"
	"github.com/example/annocanvas/internal/geom"
)

// ID identifies a shape for the whole of its life, including across backup
// snapshots.
type ID = uuid.UUID

// NilID is the zero ID used for "no shape".
var NilID = uuid.Nil

// HighlightMode tells the painter how a highlighted vertex should be drawn.
type HighlightMode int

const (
	// NearVertex marks the first vertex when the pointer snaps to it while drawing.
	NearVertex HighlightMode = iota
	// MoveVertex marks a vertex under the pointer that can be dragged.
	MoveVertex
)

// Shape is a polygon annotation.
type Shape struct {
	ID        ID
	Points    []geom.Point
	Label     string
	Index     int
	Closed    bool
	Selected  bool
	Confirmed bool

	// Highlighted vertex index, -1 when none. Painting hint only.
	Highlight     int `copier:"-"`
	HighlightMode HighlightMode
}

// New returns an open shape with a fresh ID holding the given points.
func New(points ...geom.Point) *Shape {
	s := &Shape{ID: uuid.New(), Highlight: -1}
	s.Points = append(s.Points, points...)
	return s
}

// Len returns the number of vertices.
func (s *Shape) Len() int { return len(s.Points) }

// At returns vertex i.
func (s *Shape) At(i int) geom.Point { return s.Points[i] }

// First returns the first vertex. The shape must not be empty.
func (s *Shape) First() geom.Point { return s.Points[0] }

// Last returns the last vertex. The shape must not be empty.
func (s *Shape) Last() geom.Point { return s.Points[len(s.Points)-1] }

// AddPoint appends a vertex.
func (s *Shape) AddPoint(p geom.Point) {
	s.Points = append(s.Points, p)
}

// PopPoint removes and returns the last vertex.
func (s *Shape) PopPoint() (geom.Point, bool) {
	if len(s.Points) == 0 {
		return geom.Point{}, false
	}
	p := s.Points[len(s.Points)-1]
	s.Points = s.Points[:len(s.Points)-1]
	return p, true
}

// Close marks the shape closed. Closing needs at least three vertices.
func (s *Shape) Close() {
	if !assert.That(len(s.Points) >= 3, "shape %s: close with %d points", s.ID, len(s.Points)) {
		return
	}
	s.Closed = true
}

// SetOpen reopens a closed shape.
func (s *Shape) SetOpen() { s.Closed = false }

// IsClosed reports whether the shape has been closed.
func (s *Shape) IsClosed() bool { return s.Closed }

// MoveBy translates every vertex by d.
func (s *Shape) MoveBy(d geom.Point) {
	for i := range s.Points {
		s.Points[i] = s.Points[i].Add(d)
	}
}

// MoveVertexBy translates vertex i by d.
func (s *Shape) MoveVertexBy(i int, d geom.Point) {
	s.Points[i] = s.Points[i].Add(d)
}

// NearestVertex returns the index of the vertex closest to p whose distance
// is at most epsilon, or -1.
func (s *Shape) NearestVertex(p geom.Point, epsilon float64) int {
	idx := -1
	best := epsilon
	for i, v := range s.Points {
		if d := v.Distance(p); d <= best {
			idx, best = i, d
		}
	}
	return idx
}

// ContainsPoint reports whether p lies inside the polygon.
func (s *Shape) ContainsPoint(p geom.Point) bool {
	return geom.PolygonContains(s.Points, p)
}

// BoundingRect returns the axis-aligned bounds of the vertices.
func (s *Shape) BoundingRect() geom.Rect {
	return geom.BoundingRect(s.Points)
}

// IsAxisAlignedRect reports whether the shape has exactly four vertices that
// form an axis-aligned rectangle in drawing order: p0 and p3 share X, p0 and
// p1 share Y, p2 and p1 share X, p2 and p3 share Y.
func (s *Shape) IsAxisAlignedRect() bool {
	if len(s.Points) != 4 {
		return false
	}
	p := s.Points
	return p[0].X == p[3].X && p[0].Y == p[1].Y && p[2].X == p[1].X && p[2].Y == p[3].Y
}

// HighlightVertex marks vertex i for the painter.
func (s *Shape) HighlightVertex(i int, mode HighlightMode) {
	s.Highlight = i
	s.HighlightMode = mode
}

// HighlightClear removes any vertex highlight.
func (s *Shape) HighlightClear() { s.Highlight = -1 }

// Copy returns a deep copy that keeps the same ID.
func (s *Shape) Copy() *Shape {
	out := &Shape{}
	if err := copier.CopyWithOption(out, s, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen for a
		// Shape copied onto a Shape.
		panic(err)
	}
	out.Highlight = -1
	return out
}

// Clone returns a deep copy with a fresh ID, unselected and unconfirmed.
func (s *Shape) Clone() *Shape {
	out := s.Copy()
	out.ID = uuid.New()
	out.Selected = false
	out.Confirmed = false
	return out
}

// CopyAll deep-copies a collection, keeping IDs.
func CopyAll(shapes []*Shape) []*Shape {
	out := make([]*Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Copy()
	}
	return out
}

// SamePoints reports whether a and b hold identical vertex lists.
func SamePoints(a, b *Shape) bool {
	if len(a.Points) != len(b.Points) {
		return false
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			return false
		}
	}
	return true
}
