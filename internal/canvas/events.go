package canvas

import (
	"github.com/example/annocanvas/internal/shape"
)

// Axis names a scroll direction.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Observer receives canvas notifications. Calls are synchronous and happen
// after the state change they describe.
type Observer interface {
	SelectionChanged(ids []shape.ID)
	ShapeCreated(s *shape.Shape)
	ShapeMoved()
	DrawingActive(active bool)
	ScrollRequested(delta float64, axis Axis)
	ZoomRequested(delta float64)
	CursorChanged(c Cursor)
}

// Funcs is an Observer built from optional callbacks.
type Funcs struct {
	OnSelectionChanged func(ids []shape.ID)
	OnShapeCreated     func(s *shape.Shape)
	OnShapeMoved       func()
	OnDrawingActive    func(active bool)
	OnScrollRequested  func(delta float64, axis Axis)
	OnZoomRequested    func(delta float64)
	OnCursorChanged    func(c Cursor)
}

var _ Observer = Funcs{}

func (f Funcs) SelectionChanged(ids []shape.ID) {
	if f.OnSelectionChanged != nil {
		f.OnSelectionChanged(ids)
	}
}

func (f Funcs) ShapeCreated(s *shape.Shape) {
	if f.OnShapeCreated != nil {
		f.OnShapeCreated(s)
	}
}

func (f Funcs) ShapeMoved() {
	if f.OnShapeMoved != nil {
		f.OnShapeMoved()
	}
}

func (f Funcs) DrawingActive(active bool) {
	if f.OnDrawingActive != nil {
		f.OnDrawingActive(active)
	}
}

func (f Funcs) ScrollRequested(delta float64, axis Axis) {
	if f.OnScrollRequested != nil {
		f.OnScrollRequested(delta, axis)
	}
}

func (f Funcs) ZoomRequested(delta float64) {
	if f.OnZoomRequested != nil {
		f.OnZoomRequested(delta)
	}
}

func (f Funcs) CursorChanged(c Cursor) {
	if f.OnCursorChanged != nil {
		f.OnCursorChanged(c)
	}
}

func (c *Canvas) emitSelectionChanged() {
	ids := c.Selected()
	for _, o := range c.observers {
		o.SelectionChanged(ids)
	}
}

func (c *Canvas) emitShapeCreated(s *shape.Shape) {
	for _, o := range c.observers {
		o.ShapeCreated(s)
	}
}

func (c *Canvas) emitShapeMoved() {
	for _, o := range c.observers {
		o.ShapeMoved()
	}
}

func (c *Canvas) emitDrawingActive(active bool) {
	for _, o := range c.observers {
		o.DrawingActive(active)
	}
}

func (c *Canvas) emitScroll(delta float64, axis Axis) {
	for _, o := range c.observers {
		o.ScrollRequested(delta, axis)
	}
}

func (c *Canvas) emitZoom(delta float64) {
	for _, o := range c.observers {
		o.ZoomRequested(delta)
	}
}

func (c *Canvas) emitCursor(cur Cursor) {
	for _, o := range c.observers {
		o.CursorChanged(cur)
	}
}
