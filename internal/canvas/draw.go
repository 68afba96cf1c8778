package canvas

import (
	"github.com/sirupsen/logrus"

	"github.com/example/annocanvas/internal/assert"
	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/shape"
)

// SetEditing switches between edit mode (true) and create mode (false).
// Leaving create mode discards the in-progress shape and reports drawing as
// inactive.
func (c *Canvas) SetEditing(editing bool) {
	if editing {
		wasDrawing := c.mode == ModeCreate
		c.mode = ModeEdit
		c.hasCross = false
		if wasDrawing || c.current != nil {
			c.current = nil
			c.emitDrawingActive(false)
		}
		c.setCursor(CursorDefault)
	} else {
		c.mode = ModeCreate
		c.unHighlight()
		c.gesture = GestureIdle
	}
	c.log.WithField("mode", c.mode).Debug("mode changed")
}

// SetStrategy selects the drawing strategy. An in-progress shape is dropped
// because its points were placed under the old rules.
func (c *Canvas) SetStrategy(s Strategy) {
	if s == c.strategy {
		return
	}
	c.strategy = s
	if c.current != nil {
		c.current = nil
		c.emitDrawingActive(false)
	}
}

// SetFourPoint chooses between four-point and rectangle drawing.
func (c *Canvas) SetFourPoint(on bool) {
	if on {
		c.SetStrategy(StrategyFourPoint)
	} else {
		c.SetStrategy(StrategyRectangle)
	}
}

// CanCloseShape reports whether the in-progress shape can be committed.
func (c *Canvas) CanCloseShape() bool {
	return c.Drawing() && c.current != nil && c.current.Len() > 2
}

// CommitDrawing commits the in-progress shape if it can be closed.
func (c *Canvas) CommitDrawing() bool {
	c.setCursor(CursorDefault)
	if !c.CanCloseShape() {
		return false
	}
	return c.finalise()
}

// DoubleClickAt commits the in-progress shape on a double click. Strategies
// other than four-point drop the vertex the second click of the pair added.
func (c *Canvas) DoubleClickAt(geom.Point) bool {
	if !c.CanCloseShape() {
		return false
	}
	if c.strategy != StrategyFourPoint {
		if c.current.Len() <= 3 {
			return false
		}
		c.current.PopPoint()
	}
	return c.finalise()
}

// Cancel abandons drawing: the in-progress shape and every unconfirmed
// committed shape are dropped and the canvas returns to edit mode.
func (c *Canvas) Cancel() bool {
	if !c.Drawing() {
		return false
	}
	c.current = nil
	removed := c.removeShapes(func(s *shape.Shape) bool { return !s.Confirmed })
	if removed > 0 {
		c.storeShapes()
	}
	c.mode = ModeEdit
	c.hasCross = false
	c.emitDrawingActive(false)
	c.setCursor(CursorDefault)
	c.log.WithField("removed", removed).Debug("drawing cancelled")
	return true
}

// UndoLastPoint drops the newest vertex of the in-progress shape.
func (c *Canvas) UndoLastPoint() bool {
	if c.current == nil || c.current.IsClosed() {
		return false
	}
	c.current.PopPoint()
	if c.current.Len() > 0 {
		c.line[0] = c.current.Last()
		return true
	}
	c.current = nil
	c.emitDrawingActive(false)
	return true
}

// UndoLastLine reopens the most recently committed shape as the in-progress
// shape.
func (c *Canvas) UndoLastLine() bool {
	if !assert.That(len(c.shapes) > 0, "undo last line with no shapes") {
		return false
	}
	last := c.shapes[len(c.shapes)-1]
	c.removeShapes(func(s *shape.Shape) bool { return s == last })
	last.SetOpen()
	last.Selected = false
	c.strategy.drawer().reopen(last)
	c.current = last
	c.line = [2]geom.Point{last.Last(), last.First()}
	c.mode = ModeCreate
	c.emitDrawingActive(true)
	return true
}

// SetLastLabel labels and confirms the most recently committed shape.
func (c *Canvas) SetLastLabel(text string) *shape.Shape {
	if !assert.That(text != "", "empty label") || len(c.shapes) == 0 {
		return nil
	}
	last := c.shapes[len(c.shapes)-1]
	last.Label = text
	last.Confirmed = true
	c.storeShapes()
	return last
}

// pressCreate handles a left press in create mode.
func (c *Canvas) pressCreate(pos geom.Point) {
	if c.current != nil {
		c.movePreview(pos)
		d := c.strategy.drawer()
		d.addPoint(c, c.current, c.line[1])
		c.line[0] = c.current.Last()
		if d.shouldFinalize(c.current) {
			c.finalise()
		}
		return
	}
	if c.view.OutOfBounds(pos) {
		return
	}
	c.current = shape.New(pos)
	c.line = [2]geom.Point{pos, pos}
	c.hasCross = false
	c.log.WithField("at", pos).Debug("shape started")
	c.emitDrawingActive(true)
}

// movePreview updates the rubber band for pointer position pos.
func (c *Canvas) movePreview(pos geom.Point) {
	c.setCursor(CursorDraw)
	if c.current == nil {
		c.crosshair, c.hasCross = pos, true
		return
	}
	d := c.strategy.drawer()
	c.current.HighlightClear()
	if p, snapped := c.view.Snap(pos); snapped {
		pos = p
	} else if d.snapsToStart() && c.current.Len() > 1 && c.closeEnough(pos, c.current.First()) {
		pos = c.current.First()
		c.current.HighlightVertex(0, shape.NearVertex)
		c.setCursor(CursorPoint)
	}
	c.line = d.preview(c, c.current, pos)
}

// finalise commits the in-progress shape. Shapes whose first and last points
// coincide are dropped.
func (c *Canvas) finalise() bool {
	if !assert.That(c.current != nil, "finalise without a shape") {
		return false
	}
	cur := c.current
	c.current = nil
	if cur.First() == cur.Last() {
		c.log.WithField("points", cur.Len()).Debug("degenerate shape discarded")
		c.emitDrawingActive(false)
		return false
	}
	cur.HighlightClear()
	cur.Close()
	cur.Index = len(c.shapes)
	c.shapes = append(c.shapes, cur)
	c.log.WithFields(logrus.Fields{"id": cur.ID, "points": cur.Len()}).Debug("shape created")
	c.storeShapes()
	c.emitShapeCreated(cur)
	return true
}

func (c *Canvas) closeEnough(p1, p2 geom.Point) bool {
	return p1.Distance(p2) < c.epsilon
}
