package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/shape"
)

func collection(n int) []*shape.Shape {
	out := make([]*shape.Shape, n)
	for i := range out {
		out[i] = shape.New(geom.Pt(float64(i), 0), geom.Pt(float64(i), 1), geom.Pt(float64(i)+1, 1))
	}
	return out
}

func TestNewDefaultsLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, New(0).Limit())
	assert.Equal(t, 3, New(3).Limit())
}

func TestPushIsDeepCopy(t *testing.T) {
	s := New(0)
	shapes := collection(1)
	s.Push(shapes)
	shapes[0].MoveBy(geom.Pt(100, 100))

	top, ok := s.Top()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(0, 0), top[0].At(0))
	assert.Equal(t, shapes[0].ID, top[0].ID)
}

func TestBoundedToLimit(t *testing.T) {
	s := New(10)
	for i := 0; i < 11; i++ {
		s.Push(collection(i))
	}
	require.Equal(t, 10, s.Len())
	snaps := s.Snapshots()
	for i, snap := range snaps {
		assert.Len(t, snap, i+1, "snapshot %d", i)
	}
	for i := 0; i < 25; i++ {
		s.Push(collection(1))
		assert.LessOrEqual(t, s.Len(), 10)
	}
}

func TestUndo(t *testing.T) {
	s := New(0)
	_, ok := s.Undo()
	assert.False(t, ok)

	s.Push(collection(1))
	s.Push(collection(2))
	assert.True(t, s.Restorable())

	got, ok := s.Undo()
	require.True(t, ok)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Restorable())

	// mutating the restored copy leaves the stored snapshot alone
	got[0].MoveBy(geom.Pt(5, 5))
	again, ok := s.Undo()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(0, 0), again[0].At(0))
	assert.Equal(t, 1, s.Len())
}

func TestFind(t *testing.T) {
	s := New(0)
	_, ok := s.Find(shape.NilID)
	assert.False(t, ok)

	shapes := collection(2)
	s.Push(shapes)
	got, ok := s.Find(shapes[1].ID)
	require.True(t, ok)
	assert.True(t, shape.SamePoints(shapes[1], got))
	_, ok = s.Find(shape.New().ID)
	assert.False(t, ok)
}

func TestReset(t *testing.T) {
	s := New(0)
	s.Push(collection(1))
	s.Reset()
	assert.Equal(t, 0, s.Len())
}
