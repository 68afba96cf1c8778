package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"

	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/shape"
)

func TestFourPointCommit(t *testing.T) {
	c, rec := newCanvas(t)
	c.SetEditing(false)
	require.Equal(t, ModeCreate, c.Mode())

	click(c, 10, 10)
	click(c, 100, 10)
	click(c, 100, 100)
	require.Equal(t, 0, c.Len())
	require.NotNil(t, c.Current())
	click(c, 10, 100)

	require.Equal(t, 1, c.Len())
	s := c.Shapes()[0]
	assert.Equal(t, []geom.Point{{X: 10, Y: 10}, {X: 100, Y: 10}, {X: 100, Y: 100}, {X: 10, Y: 100}}, s.Points)
	assert.True(t, s.IsClosed())
	assert.Equal(t, 0, s.Index)
	assert.Nil(t, c.Current())
	assert.Empty(t, c.Selected())
	assert.Empty(t, rec.selections)
	require.Len(t, rec.created, 1)
	assert.Same(t, s, rec.created[0])
	assert.Equal(t, []bool{true}, rec.drawing)
	assert.Equal(t, 2, c.History().Len())
}

func TestShapeCreatedFiresAfterCommit(t *testing.T) {
	c := New(800, 600)
	var seen int
	c.AddObserver(Funcs{OnShapeCreated: func(s *shape.Shape) {
		seen = c.Len()
		assert.Nil(t, c.Current())
	}})
	c.SetEditing(false)
	for _, p := range []geom.Point{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 50}, {X: 10, Y: 50}} {
		click(c, p.X, p.Y)
	}
	assert.Equal(t, 1, seen)
}

func TestSecondShapeGetsNextIndex(t *testing.T) {
	c, _ := newCanvas(t)
	c.SetEditing(false)
	for i := 0; i < 2; i++ {
		o := float64(i * 200)
		click(c, o+10, 10)
		click(c, o+100, 10)
		click(c, o+100, 100)
		click(c, o+10, 100)
	}
	require.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.Shapes()[1].Index)
	assert.NotEqual(t, c.Shapes()[0].ID, c.Shapes()[1].ID)
}

func TestDegenerateShapeDiscarded(t *testing.T) {
	c, rec := newCanvas(t)
	c.SetEditing(false)
	click(c, 10, 10)
	click(c, 100, 10)
	click(c, 100, 100)
	// within epsilon of the first vertex, so it snaps onto it
	click(c, 12, 12)

	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Current())
	assert.Empty(t, rec.created)
	assert.Equal(t, []bool{true, false}, rec.drawing)
	assert.Equal(t, 1, c.History().Len())
}

func TestPreviewClippedToBounds(t *testing.T) {
	c, _ := newCanvas(t)
	c.SetEditing(false)
	click(c, 10, 10)
	moveTo(c, 900, -20)
	assert.Equal(t, [2]geom.Point{{X: 10, Y: 10}, {X: 800, Y: 0}}, c.Preview())

	click(c, 900, -20)
	assert.Equal(t, geom.Pt(800, 0), c.Current().Last())
}

func TestStartOutsideImageIgnored(t *testing.T) {
	c, rec := newCanvas(t)
	c.SetEditing(false)
	click(c, -10, 50)
	assert.Nil(t, c.Current())
	assert.Empty(t, rec.drawing)
}

func TestRectangleCommit(t *testing.T) {
	tests := []struct {
		name   string
		square bool
		want   []geom.Point
	}{
		{"free", false, []geom.Point{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 60}, {X: 10, Y: 60}}},
		{"square", true, []geom.Point{{X: 10, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: 60}, {X: 10, Y: 60}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newCanvas(t, WithStrategy(StrategyRectangle), WithSquare(tt.square))
			c.SetEditing(false)
			click(c, 10, 10)
			moveTo(c, 110, 60)
			click(c, 110, 60)

			require.Equal(t, 1, c.Len())
			s := c.Shapes()[0]
			assert.Equal(t, tt.want, s.Points)
			assert.True(t, s.IsAxisAlignedRect())
			assert.Len(t, rec.created, 1)
		})
	}
}

func TestRectangleSquarePreview(t *testing.T) {
	c, _ := newCanvas(t, WithStrategy(StrategyRectangle), WithSquare(true))
	c.SetEditing(false)
	click(c, 100, 100)
	moveTo(c, 40, 130)
	assert.Equal(t, [2]geom.Point{{X: 100, Y: 100}, {X: 70, Y: 130}}, c.Preview())
}

func TestSetFourPoint(t *testing.T) {
	c, _ := newCanvas(t)
	c.SetFourPoint(false)
	assert.Equal(t, StrategyRectangle, c.Strategy())
	c.SetFourPoint(true)
	assert.Equal(t, StrategyFourPoint, c.Strategy())
}

func TestPolygonClosesOnFirstPoint(t *testing.T) {
	c, _ := newCanvas(t, WithStrategy(StrategyPolygon))
	c.SetEditing(false)
	for _, p := range []geom.Point{{X: 10, Y: 10}, {X: 100, Y: 10}, {X: 100, Y: 100}, {X: 50, Y: 150}} {
		click(c, p.X, p.Y)
	}
	require.Equal(t, 0, c.Len())
	moveTo(c, 11, 11)
	assert.Equal(t, CursorPoint, c.Cursor())
	click(c, 11, 11)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, []geom.Point{{X: 10, Y: 10}, {X: 100, Y: 10}, {X: 100, Y: 100}, {X: 50, Y: 150}}, c.Shapes()[0].Points)
}

func TestDoubleClickCommits(t *testing.T) {
	t.Run("polygon drops the duplicate point", func(t *testing.T) {
		c, _ := newCanvas(t, WithStrategy(StrategyPolygon))
		c.SetEditing(false)
		for _, p := range []geom.Point{{X: 10, Y: 10}, {X: 100, Y: 10}, {X: 100, Y: 100}, {X: 100, Y: 100}} {
			click(c, p.X, p.Y)
		}
		assert.True(t, c.HandleEvent(DoubleClick{X: 100, Y: 100}))
		require.Equal(t, 1, c.Len())
		assert.Equal(t, 3, c.Shapes()[0].Len())
	})
	t.Run("polygon needs more than three points", func(t *testing.T) {
		c, _ := newCanvas(t, WithStrategy(StrategyPolygon))
		c.SetEditing(false)
		for _, p := range []geom.Point{{X: 10, Y: 10}, {X: 100, Y: 10}, {X: 100, Y: 100}} {
			click(c, p.X, p.Y)
		}
		assert.False(t, c.HandleEvent(DoubleClick{X: 100, Y: 100}))
		assert.Equal(t, 0, c.Len())
	})
	t.Run("four point with three points", func(t *testing.T) {
		c, _ := newCanvas(t)
		c.SetEditing(false)
		for _, p := range []geom.Point{{X: 10, Y: 10}, {X: 100, Y: 10}, {X: 100, Y: 100}} {
			click(c, p.X, p.Y)
		}
		assert.True(t, c.HandleEvent(DoubleClick{X: 100, Y: 100}))
		require.Equal(t, 1, c.Len())
		assert.Equal(t, 3, c.Shapes()[0].Len())
	})
}

func TestEnterCommits(t *testing.T) {
	c, _ := newCanvas(t)
	c.SetEditing(false)
	click(c, 10, 10)
	click(c, 100, 10)
	assert.False(t, pressKey(c, key.CodeReturnEnter, 0))
	click(c, 100, 100)
	assert.True(t, pressKey(c, key.CodeReturnEnter, 0))
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.Shapes()[0].Len())
}

func TestCancelRemovesUnconfirmed(t *testing.T) {
	kept := rect(300, 300, 400, 400)
	c, rec := newCanvas(t)
	c.LoadShapes([]*shape.Shape{kept}, true)

	c.SetEditing(false)
	draw := func(o float64) {
		click(c, o, 10)
		click(c, o+50, 10)
		click(c, o+50, 50)
		click(c, o, 50)
	}
	draw(10)
	draw(100)
	labelled := c.SetLastLabel("cat")
	require.NotNil(t, labelled)
	click(c, 500, 500)
	require.Equal(t, 3, c.Len())

	assert.True(t, pressKey(c, key.CodeEscape, 0))
	assert.Equal(t, ModeEdit, c.Mode())
	assert.Nil(t, c.Current())
	require.Equal(t, 2, c.Len())
	assert.Equal(t, kept.ID, c.Shapes()[0].ID)
	assert.Equal(t, labelled.ID, c.Shapes()[1].ID)
	assert.Equal(t, "cat", c.Shapes()[1].Label)
	assert.Equal(t, 1, c.Shapes()[1].Index)
	assert.Equal(t, false, rec.drawing[len(rec.drawing)-1])

	// escape outside create mode does nothing
	assert.False(t, pressKey(c, key.CodeEscape, 0))
}

func TestLeavingCreateDiscardsCurrent(t *testing.T) {
	c, rec := newCanvas(t)
	c.SetEditing(false)
	click(c, 10, 10)
	click(c, 50, 10)
	c.HandleEvent(ToggleDrawing{})
	assert.True(t, c.Editing())
	assert.Nil(t, c.Current())
	assert.Equal(t, []bool{true, false}, rec.drawing)
	assert.Equal(t, 0, c.Len())
}

func TestUndoLastPoint(t *testing.T) {
	c, rec := newCanvas(t)
	c.SetEditing(false)
	click(c, 10, 10)
	click(c, 50, 10)

	assert.True(t, pressKey(c, key.CodeDeleteBackspace, 0))
	require.NotNil(t, c.Current())
	assert.Equal(t, 1, c.Current().Len())
	assert.Equal(t, geom.Pt(10, 10), c.Preview()[0])

	assert.True(t, c.UndoLastPoint())
	assert.Nil(t, c.Current())
	assert.Equal(t, []bool{true, false}, rec.drawing)
	assert.False(t, c.UndoLastPoint())
}

func TestUndoLastLineReopens(t *testing.T) {
	c, rec := newCanvas(t)
	c.SetEditing(false)
	for _, p := range []geom.Point{{X: 10, Y: 10}, {X: 100, Y: 10}, {X: 100, Y: 100}, {X: 10, Y: 100}} {
		click(c, p.X, p.Y)
	}
	require.Equal(t, 1, c.Len())
	id := c.Shapes()[0].ID

	assert.True(t, c.UndoLastLine())
	assert.Equal(t, 0, c.Len())
	require.NotNil(t, c.Current())
	assert.False(t, c.Current().IsClosed())
	assert.Equal(t, 3, c.Current().Len())
	assert.Equal(t, true, rec.drawing[len(rec.drawing)-1])

	click(c, 20, 120)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, id, c.Shapes()[0].ID)
	assert.Equal(t, geom.Pt(20, 120), c.Shapes()[0].Last())
}

func TestSetLastLabel(t *testing.T) {
	c, _ := newCanvas(t)
	assert.Nil(t, c.SetLastLabel("dog"))
	s := rect(10, 10, 20, 20)
	c.LoadShapes([]*shape.Shape{s}, true)
	got := c.SetLastLabel("dog")
	require.NotNil(t, got)
	assert.Equal(t, "dog", s.Label)
	assert.True(t, s.Confirmed)
}

func TestLabelAndConfirmCommands(t *testing.T) {
	c, _ := newCanvas(t)
	c.SetEditing(false)
	for _, o := range []float64{10, 100} {
		click(c, o, 10)
		click(c, o+50, 10)
		click(c, o+50, 50)
		click(c, o, 50)
	}
	require.Equal(t, 2, c.Len())

	assert.False(t, c.HandleEvent(LabelLast{}))
	assert.True(t, c.HandleEvent(LabelLast{Text: "cat"}))
	assert.Equal(t, "cat", c.Shapes()[1].Label)
	assert.False(t, c.Shapes()[0].Confirmed)

	assert.True(t, c.HandleEvent(ConfirmShapes{}))
	assert.True(t, c.HandleEvent(CancelDrawing{}))
	assert.Equal(t, 2, c.Len())
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"four_point", StrategyFourPoint, false},
		{"Four-Point", StrategyFourPoint, false},
		{"rectangle", StrategyRectangle, false},
		{"polygon", StrategyPolygon, false},
		{"hexagon", StrategyFourPoint, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		again, err := ParseStrategy(got.String())
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestUndoKeepsLabelAndConfirmation(t *testing.T) {
	c, _ := newCanvas(t)
	c.SetEditing(false)
	draw := func(o float64) {
		click(c, o, 10)
		click(c, o+90, 10)
		click(c, o+90, 90)
		click(c, o, 90)
	}
	draw(10)
	require.NotNil(t, c.SetLastLabel("cat"))
	draw(200)
	require.True(t, c.Confirm(c.Shapes()[1].ID))

	c.SetEditing(true)
	click(c, 50, 50)
	require.Len(t, c.Selected(), 1)
	c.Nudge(Right)
	require.Equal(t, geom.Pt(11, 10), c.Shapes()[0].At(0))

	require.True(t, c.Undo())
	require.Equal(t, 2, c.Len())
	first, second := c.Shapes()[0], c.Shapes()[1]
	assert.Equal(t, geom.Pt(10, 10), first.At(0))
	assert.Equal(t, "cat", first.Label)
	assert.True(t, first.Confirmed)
	assert.True(t, second.Confirmed)

	c.SetEditing(false)
	assert.True(t, c.Cancel())
	assert.Equal(t, 2, c.Len())
}

func TestConfirmAllStoresOnce(t *testing.T) {
	c, _ := newCanvas(t)
	c.SetEditing(false)
	for _, p := range []geom.Point{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 50}, {X: 10, Y: 50}} {
		click(c, p.X, p.Y)
	}
	before := c.History().Len()
	c.ConfirmAll()
	assert.Equal(t, before+1, c.History().Len())
	top, ok := c.History().Top()
	require.True(t, ok)
	assert.True(t, top[0].Confirmed)

	c.ConfirmAll()
	assert.Equal(t, before+1, c.History().Len())
}

func TestLeavingCreateReportsInactive(t *testing.T) {
	c, rec := newCanvas(t)
	c.SetEditing(false)
	c.SetEditing(true)
	assert.Equal(t, []bool{false}, rec.drawing)

	c.SetEditing(true)
	assert.Equal(t, []bool{false}, rec.drawing)
}
