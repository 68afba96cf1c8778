package canvas

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/shape"
)

type scroll struct {
	delta float64
	axis  Axis
}

type recorder struct {
	selections [][]shape.ID
	created    []*shape.Shape
	moved      int
	drawing    []bool
	scrolls    []scroll
	zooms      []float64
	cursors    []Cursor
}

func (r *recorder) SelectionChanged(ids []shape.ID)          { r.selections = append(r.selections, ids) }
func (r *recorder) ShapeCreated(s *shape.Shape)              { r.created = append(r.created, s) }
func (r *recorder) ShapeMoved()                              { r.moved++ }
func (r *recorder) DrawingActive(active bool)                { r.drawing = append(r.drawing, active) }
func (r *recorder) ScrollRequested(delta float64, axis Axis) { r.scrolls = append(r.scrolls, scroll{delta, axis}) }
func (r *recorder) ZoomRequested(delta float64)              { r.zooms = append(r.zooms, delta) }
func (r *recorder) CursorChanged(c Cursor)                   { r.cursors = append(r.cursors, c) }

func newCanvas(t *testing.T, opts ...Option) (*Canvas, *recorder) {
	t.Helper()
	rec := &recorder{}
	c := New(800, 600, append([]Option{WithObserver(rec)}, opts...)...)
	return c, rec
}

func mouseEvent(x, y float64, b mouse.Button, dir mouse.Direction) mouse.Event {
	return mouse.Event{X: float32(x), Y: float32(y), Button: b, Direction: dir}
}

func moveTo(c *Canvas, x, y float64) {
	c.HandleEvent(mouseEvent(x, y, mouse.ButtonNone, mouse.DirNone))
}

func press(c *Canvas, x, y float64, b mouse.Button) {
	c.HandleEvent(mouseEvent(x, y, b, mouse.DirPress))
}

func release(c *Canvas, x, y float64, b mouse.Button) {
	c.HandleEvent(mouseEvent(x, y, b, mouse.DirRelease))
}

func click(c *Canvas, x, y float64) {
	press(c, x, y, mouse.ButtonLeft)
	release(c, x, y, mouse.ButtonLeft)
}

func ctrlClick(c *Canvas, x, y float64) {
	e := mouseEvent(x, y, mouse.ButtonLeft, mouse.DirPress)
	e.Modifiers = key.ModControl
	c.HandleEvent(e)
	release(c, x, y, mouse.ButtonLeft)
}

// drag hovers at from, presses b, moves to each point in turn and releases at
// the last one.
func drag(c *Canvas, b mouse.Button, from geom.Point, to ...geom.Point) {
	moveTo(c, from.X, from.Y)
	press(c, from.X, from.Y, b)
	last := from
	for _, p := range to {
		moveTo(c, p.X, p.Y)
		last = p
	}
	release(c, last.X, last.Y, b)
}

func pressKey(c *Canvas, code key.Code, mods key.Modifiers) bool {
	return c.HandleEvent(key.Event{Code: code, Modifiers: mods, Direction: key.DirPress})
}

func rect(x0, y0, x1, y1 float64) *shape.Shape {
	return shape.New(geom.Pt(x0, y0), geom.Pt(x1, y0), geom.Pt(x1, y1), geom.Pt(x0, y1))
}

// loaded returns a canvas holding a single selected rectangle.
func loaded(t *testing.T, s *shape.Shape, opts ...Option) (*Canvas, *recorder) {
	t.Helper()
	c, rec := newCanvas(t, opts...)
	c.LoadShapes([]*shape.Shape{s}, true)
	c.SelectShapes([]shape.ID{s.ID})
	require.Equal(t, []shape.ID{s.ID}, c.Selected())
	return c, rec
}

func inBounds(t *testing.T, c *Canvas, shapes ...*shape.Shape) {
	t.Helper()
	for _, s := range shapes {
		for i, p := range s.Points {
			require.False(t, c.Viewport().OutOfBounds(p), "shape %s vertex %d at %v", s.ID, i, p)
		}
	}
}
