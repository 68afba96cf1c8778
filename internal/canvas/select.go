package canvas

import (
	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/shape"
)

// hover updates highlight and cursor for an edit-mode pointer move with no
// button held. Vertex hits take priority over shape interiors.
func (c *Canvas) hover(pos geom.Point) {
	for i := len(c.shapes) - 1; i >= 0; i-- {
		s := c.shapes[i]
		if !c.IsVisible(s.ID) {
			continue
		}
		if v := s.NearestVertex(pos, c.epsilon); v >= 0 {
			c.setHighlight(s, v)
			s.HighlightVertex(v, shape.NearVertex)
			c.setCursor(CursorPoint)
			return
		}
	}
	for i := len(c.shapes) - 1; i >= 0; i-- {
		s := c.shapes[i]
		if c.IsVisible(s.ID) && s.ContainsPoint(pos) {
			c.setHighlight(s, -1)
			c.setCursor(CursorGrab)
			return
		}
	}
	c.unHighlight()
	c.setCursor(CursorDefault)
}

func (c *Canvas) setHighlight(s *shape.Shape, vertex int) {
	if prev, ok := c.Shape(c.hShape); ok {
		prev.HighlightClear()
	}
	c.hShape, c.hVertex = s.ID, vertex
}

func (c *Canvas) unHighlight() {
	if prev, ok := c.Shape(c.hShape); ok {
		prev.HighlightClear()
	}
	c.hShape, c.hVertex = shape.NilID, -1
}

// SelectShapePoint runs the press half of hit testing at pos. A highlighted
// vertex is armed for dragging; otherwise the topmost visible shape containing
// pos is selected (added to the selection when multi is set). Clicking empty
// space clears the selection.
func (c *Canvas) SelectShapePoint(pos geom.Point, multi bool) {
	if c.SelectedVertex() {
		if s, ok := c.Shape(c.hShape); ok {
			s.HighlightVertex(c.hVertex, shape.MoveVertex)
			return
		}
		c.unHighlight()
	}
	for i := len(c.shapes) - 1; i >= 0; i-- {
		s := c.shapes[i]
		if !c.IsVisible(s.ID) || !s.ContainsPoint(pos) {
			continue
		}
		if !multi {
			c.SelectShapes([]shape.ID{s.ID})
		} else if !s.Selected {
			c.SelectShapes(append(c.Selected(), s.ID))
		}
		c.calculateOffsets(pos)
		return
	}
	c.DeselectShape()
}

// SelectShapes replaces the selection with ids. Unknown IDs are dropped.
func (c *Canvas) SelectShapes(ids []shape.ID) {
	for _, s := range c.SelectedShapes() {
		s.Selected = false
	}
	c.selected = c.selected[:0]
	for _, id := range ids {
		if s, ok := c.Shape(id); ok && !s.Selected {
			s.Selected = true
			c.selected = append(c.selected, id)
		}
	}
	c.emitSelectionChanged()
}

// DeselectShape clears the selection.
func (c *Canvas) DeselectShape() {
	if len(c.selected) == 0 {
		return
	}
	c.clearSelection()
}

func (c *Canvas) clearSelection() {
	if len(c.selected) == 0 {
		return
	}
	for _, s := range c.SelectedShapes() {
		s.Selected = false
	}
	c.selected = nil
	c.emitSelectionChanged()
}

// scrubSelection drops selected IDs that no longer resolve.
func (c *Canvas) scrubSelection() {
	kept := make([]shape.ID, 0, len(c.selected))
	for _, id := range c.selected {
		if _, ok := c.Shape(id); ok {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(c.selected) {
		return
	}
	c.selected = kept
	c.emitSelectionChanged()
}

// calculateOffsets records the corners of the selection's bounding box
// relative to the grab point.
func (c *Canvas) calculateOffsets(pos geom.Point) {
	c.setOffsets(c.SelectedShapes(), pos)
}

func (c *Canvas) setOffsets(shapes []*shape.Shape, pos geom.Point) {
	var pts []geom.Point
	for _, s := range shapes {
		pts = append(pts, s.Points...)
	}
	r := geom.BoundingRect(pts)
	c.offsets = [2]geom.Point{r.Min.Sub(pos), r.Max.Sub(pos)}
}
