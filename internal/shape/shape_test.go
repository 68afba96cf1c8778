package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/annocanvas/internal/geom"
)

func rect(x0, y0, x1, y1 float64) *Shape {
	return New(geom.Pt(x0, y0), geom.Pt(x1, y0), geom.Pt(x1, y1), geom.Pt(x0, y1))
}

func TestAddPopPoint(t *testing.T) {
	s := New()
	_, ok := s.PopPoint()
	assert.False(t, ok)

	s.AddPoint(geom.Pt(1, 2))
	s.AddPoint(geom.Pt(3, 4))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, geom.Pt(1, 2), s.First())
	assert.Equal(t, geom.Pt(3, 4), s.Last())

	p, ok := s.PopPoint()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(3, 4), p)
	assert.Equal(t, 1, s.Len())
}

func TestCloseAndReopen(t *testing.T) {
	s := rect(0, 0, 10, 10)
	s.Close()
	assert.True(t, s.IsClosed())
	s.SetOpen()
	assert.False(t, s.IsClosed())
}

func TestNearestVertex(t *testing.T) {
	s := rect(10, 10, 100, 100)
	assert.Equal(t, 0, s.NearestVertex(geom.Pt(12, 13), 5))
	assert.Equal(t, 2, s.NearestVertex(geom.Pt(100, 96), 5))
	assert.Equal(t, -1, s.NearestVertex(geom.Pt(50, 50), 5))

	pair := New(geom.Pt(0, 0), geom.Pt(3, 0))
	assert.Equal(t, 1, pair.NearestVertex(geom.Pt(2, 0), 5), "nearest wins over first")
}

func TestMoveBy(t *testing.T) {
	s := rect(0, 0, 10, 10)
	s.MoveBy(geom.Pt(5, -2))
	assert.Equal(t, []geom.Point{{X: 5, Y: -2}, {X: 15, Y: -2}, {X: 15, Y: 8}, {X: 5, Y: 8}}, s.Points)
	s.MoveVertexBy(2, geom.Pt(1, 1))
	assert.Equal(t, geom.Pt(16, 9), s.At(2))
}

func TestContainsAndBounds(t *testing.T) {
	s := rect(10, 20, 30, 60)
	assert.True(t, s.ContainsPoint(geom.Pt(15, 25)))
	assert.False(t, s.ContainsPoint(geom.Pt(5, 25)))
	assert.Equal(t, geom.R(10, 20, 30, 60), s.BoundingRect())
}

func TestIsAxisAlignedRect(t *testing.T) {
	assert.True(t, rect(0, 0, 10, 20).IsAxisAlignedRect())
	skew := New(geom.Pt(0, 0), geom.Pt(10, 1), geom.Pt(10, 10), geom.Pt(0, 10))
	assert.False(t, skew.IsAxisAlignedRect())
	assert.False(t, New(geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(1, 1)).IsAxisAlignedRect())
}

func TestCopyIsDeep(t *testing.T) {
	s := rect(0, 0, 10, 10)
	s.Label = "cat"
	s.Confirmed = true
	s.HighlightVertex(1, MoveVertex)

	c := s.Copy()
	assert.Equal(t, s.ID, c.ID)
	assert.Equal(t, "cat", c.Label)
	assert.True(t, c.Confirmed)
	assert.Equal(t, -1, c.Highlight)
	assert.True(t, SamePoints(s, c))

	c.MoveBy(geom.Pt(1, 1))
	assert.Equal(t, geom.Pt(0, 0), s.At(0), "original untouched")
	assert.False(t, SamePoints(s, c))
}

func TestCloneGetsFreshID(t *testing.T) {
	s := rect(0, 0, 10, 10)
	s.Selected = true
	s.Confirmed = true
	c := s.Clone()
	assert.NotEqual(t, s.ID, c.ID)
	assert.False(t, c.Selected)
	assert.False(t, c.Confirmed)
	assert.True(t, SamePoints(s, c))
}

func TestCopyAll(t *testing.T) {
	in := []*Shape{rect(0, 0, 1, 1), rect(2, 2, 3, 3)}
	out := CopyAll(in)
	require.Len(t, out, 2)
	for i := range in {
		assert.NotSame(t, in[i], out[i])
		assert.Equal(t, in[i].ID, out[i].ID)
	}
}
