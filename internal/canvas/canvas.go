// Package canvas is the interaction engine of the annotation canvas. It turns
// pointer and keyboard input into shape creation, selection, bounded dragging
// and snapshot-based undo over a collection of polygon shapes.
//
// A Canvas is single-threaded: every handler runs to completion, including
// the observer notifications it fires, before the next event is processed.
// Use a Queue to feed it from other goroutines.
package canvas

import (
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/history"
	"github.com/example/annocanvas/internal/shape"
	"github.com/example/annocanvas/internal/viewport"
)

// DefaultEpsilon is the vertex hit radius in image units.
const DefaultEpsilon = 5.0

// Mode is the top level state of the canvas.
type Mode int

const (
	ModeEdit Mode = iota
	ModeCreate
)

func (m Mode) String() string {
	if m == ModeCreate {
		return "create"
	}
	return "edit"
}

// Cursor is the pointer affordance the host should show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorPoint
	CursorDraw
	CursorMove
	CursorGrab
)

// Gesture is the pointer sub-state while a button is held in edit mode.
type Gesture int

const (
	GestureIdle Gesture = iota
	GestureVertex
	GestureShape
	GesturePan
	GestureCopy
)

// Canvas holds the committed shapes and all interaction state.
type Canvas struct {
	mode      Mode
	strategy  Strategy
	square    bool
	epsilon   float64
	drop      DropAction
	nudgeStep float64

	view    *viewport.Viewport
	shapes  []*shape.Shape
	visible map[shape.ID]bool
	history *history.Stack

	selected []shape.ID
	hShape   shape.ID
	hVertex  int

	current *shape.Shape
	line    [2]geom.Point
	copies  []*shape.Shape

	prevPoint geom.Point
	hasPrev   bool
	panStart  geom.Point
	offsets   [2]geom.Point
	crosshair geom.Point
	hasCross  bool
	gesture   Gesture
	buttons   map[mouse.Button]bool
	cursor    Cursor

	observers []Observer
	log       *logrus.Logger
}

// Option configures a Canvas during creation.
type Option func(*Canvas)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *logrus.Logger) Option { return func(c *Canvas) { c.log = l } }

// WithEpsilon sets the vertex hit radius.
func WithEpsilon(eps float64) Option { return func(c *Canvas) { c.epsilon = eps } }

// WithStrategy sets the drawing strategy.
func WithStrategy(s Strategy) Option { return func(c *Canvas) { c.strategy = s } }

// WithSquare enables the square constraint.
func WithSquare(on bool) Option { return func(c *Canvas) { c.square = on } }

// WithHistoryLimit sets the number of backup snapshots kept.
func WithHistoryLimit(n int) Option { return func(c *Canvas) { c.history = history.New(n) } }

// WithDropAction sets what a right-button copy drag does on release.
func WithDropAction(a DropAction) Option { return func(c *Canvas) { c.drop = a } }

// WithNudgeStep sets the distance an arrow key moves the selection.
func WithNudgeStep(step float64) Option { return func(c *Canvas) { c.nudgeStep = step } }

// WithObserver registers an observer for canvas notifications.
func WithObserver(o Observer) Option {
	return func(c *Canvas) { c.observers = append(c.observers, o) }
}

// New creates a canvas over a bitmap of the given size and pushes the empty
// baseline snapshot.
func New(width, height float64, opts ...Option) *Canvas {
	c := &Canvas{
		mode:      ModeEdit,
		strategy:  StrategyFourPoint,
		epsilon:   DefaultEpsilon,
		nudgeStep: 1,
		view:      viewport.New(width, height),
		visible:   map[shape.ID]bool{},
		history:   history.New(history.DefaultLimit),
		hVertex:   -1,
		buttons:   map[mouse.Button]bool{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = logrus.New()
		c.log.SetOutput(io.Discard)
	}
	if c.epsilon <= 0 {
		c.epsilon = DefaultEpsilon
	}
	if c.nudgeStep <= 0 {
		c.nudgeStep = 1
	}
	c.history.Push(c.shapes)
	return c
}

// AddObserver registers o for notifications.
func (c *Canvas) AddObserver(o Observer) { c.observers = append(c.observers, o) }

// Mode returns the current mode.
func (c *Canvas) Mode() Mode { return c.mode }

// Drawing reports whether the canvas is in create mode.
func (c *Canvas) Drawing() bool { return c.mode == ModeCreate }

// Editing reports whether the canvas is in edit mode.
func (c *Canvas) Editing() bool { return c.mode == ModeEdit }

// Strategy returns the active drawing strategy.
func (c *Canvas) Strategy() Strategy { return c.strategy }

// Square reports whether the square constraint is on.
func (c *Canvas) Square() bool { return c.square }

// Epsilon returns the vertex hit radius.
func (c *Canvas) Epsilon() float64 { return c.epsilon }

// Viewport exposes the coordinate transform. Hosts update Scale and Size on it.
func (c *Canvas) Viewport() *viewport.Viewport { return c.view }

// History exposes the backup stack.
func (c *Canvas) History() *history.Stack { return c.history }

// Cursor returns the current pointer affordance.
func (c *Canvas) Cursor() Cursor { return c.cursor }

// Gesture returns the active pointer gesture.
func (c *Canvas) Gesture() Gesture { return c.gesture }

// Shapes returns the committed shapes in drawing order. The slice is a copy;
// the shapes are live.
func (c *Canvas) Shapes() []*shape.Shape {
	out := make([]*shape.Shape, len(c.shapes))
	copy(out, c.shapes)
	return out
}

// Len returns the number of committed shapes.
func (c *Canvas) Len() int { return len(c.shapes) }

// Shape looks up a committed shape by ID.
func (c *Canvas) Shape(id shape.ID) (*shape.Shape, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return c.shapes[i], true
}

// Current returns the in-progress shape, or nil.
func (c *Canvas) Current() *shape.Shape { return c.current }

// Preview returns the rubber-band segment shown while drawing.
func (c *Canvas) Preview() [2]geom.Point { return c.line }

// Crosshair returns the last pointer position while in create mode with no
// shape started.
func (c *Canvas) Crosshair() (geom.Point, bool) { return c.crosshair, c.hasCross }

// Copies returns the uncommitted copies of a right-button drag.
func (c *Canvas) Copies() []*shape.Shape { return c.copies }

// Selected returns the IDs of the selected shapes in selection order.
func (c *Canvas) Selected() []shape.ID {
	out := make([]shape.ID, len(c.selected))
	copy(out, c.selected)
	return out
}

// SelectedShapes resolves the selection to live shapes, skipping stale IDs.
func (c *Canvas) SelectedShapes() []*shape.Shape {
	out := make([]*shape.Shape, 0, len(c.selected))
	for _, id := range c.selected {
		if s, ok := c.Shape(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// Highlighted returns the highlighted shape and vertex (-1 for none).
func (c *Canvas) Highlighted() (shape.ID, int) { return c.hShape, c.hVertex }

// SelectedVertex reports whether a vertex is highlighted.
func (c *Canvas) SelectedVertex() bool { return c.hVertex >= 0 }

// IsVisible reports whether a shape takes part in painting and hit testing.
func (c *Canvas) IsVisible(id shape.ID) bool {
	v, ok := c.visible[id]
	return !ok || v
}

// SetShapeVisible shows or hides a shape.
func (c *Canvas) SetShapeVisible(id shape.ID, visible bool) {
	c.visible[id] = visible
	if !visible && c.hShape == id {
		c.unHighlight()
	}
}

// SetScale updates the zoom factor.
func (c *Canvas) SetScale(s float64) { c.view.Scale = s }

// SetViewportSize updates the widget size used for centring.
func (c *Canvas) SetViewportSize(w, h float64) { c.view.Size = geom.Pt(w, h) }

// SetSquare turns the square constraint on or off.
func (c *Canvas) SetSquare(on bool) { c.square = on }

// SetDropAction sets what a right-button copy drag does on release.
func (c *Canvas) SetDropAction(a DropAction) { c.drop = a }

// LoadImage installs a new backing bitmap. All shapes, selection and history
// are dropped and a fresh baseline snapshot is pushed.
func (c *Canvas) LoadImage(width, height float64) {
	c.view.Width, c.view.Height = width, height
	c.shapes = nil
	c.visible = map[shape.ID]bool{}
	c.current = nil
	c.copies = nil
	c.unHighlight()
	c.clearSelection()
	c.history.Reset()
	c.history.Push(c.shapes)
	c.log.WithFields(logrus.Fields{"width": width, "height": height}).Debug("image loaded")
}

// LoadShapes replaces or extends the collection with shapes, which are
// treated as confirmed. A snapshot is pushed.
func (c *Canvas) LoadShapes(shapes []*shape.Shape, replace bool) {
	if replace {
		c.shapes = append([]*shape.Shape(nil), shapes...)
	} else {
		c.shapes = append(c.shapes, shapes...)
	}
	for _, s := range shapes {
		s.Confirmed = true
		if s.Len() >= 3 {
			s.Close()
		}
	}
	c.current = nil
	c.unHighlight()
	c.scrubSelection()
	c.storeShapes()
	c.updateShapeIndex()
	c.log.WithFields(logrus.Fields{"count": len(shapes), "replace": replace}).Debug("shapes loaded")
}

// Confirm marks the shape with the given ID as confirmed so Cancel keeps it.
func (c *Canvas) Confirm(id shape.ID) bool {
	s, ok := c.Shape(id)
	if ok && !s.Confirmed {
		s.Confirmed = true
		c.storeShapes()
	}
	return ok
}

// ConfirmAll marks every committed shape as confirmed.
func (c *Canvas) ConfirmAll() {
	changed := false
	for _, s := range c.shapes {
		changed = changed || !s.Confirmed
		s.Confirmed = true
	}
	if changed {
		c.storeShapes()
	}
}

// Undo restores the previous backup snapshot. Selection and highlight are
// cleared. It reports whether anything was restored.
func (c *Canvas) Undo() bool {
	shapes, ok := c.history.Undo()
	if !ok {
		return false
	}
	c.shapes = shapes
	for _, s := range c.shapes {
		s.Selected = false
	}
	c.copies = nil
	c.unHighlight()
	c.clearSelection()
	c.log.WithField("count", len(shapes)).Debug("restored snapshot")
	return true
}

// Reset drops the in-progress shape and the backup history.
func (c *Canvas) Reset() {
	if c.current != nil {
		c.current = nil
		c.emitDrawingActive(false)
	}
	c.setCursor(CursorDefault)
	c.history.Reset()
}

func (c *Canvas) storeShapes() {
	c.history.Push(c.shapes)
}

func (c *Canvas) updateShapeIndex() {
	for i, s := range c.shapes {
		s.Index = i
	}
}

func (c *Canvas) indexOf(id shape.ID) int {
	for i, s := range c.shapes {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// removeShapes drops every shape for which drop returns true and scrubs it
// from selection, highlight and visibility. It returns the number removed.
func (c *Canvas) removeShapes(drop func(*shape.Shape) bool) int {
	kept := c.shapes[:0]
	removed := 0
	for _, s := range c.shapes {
		if drop(s) {
			removed++
			delete(c.visible, s.ID)
			if c.hShape == s.ID {
				c.unHighlight()
			}
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(c.shapes); i++ {
		c.shapes[i] = nil
	}
	c.shapes = kept
	if removed > 0 {
		c.scrubSelection()
		c.updateShapeIndex()
	}
	return removed
}

func (c *Canvas) setCursor(cur Cursor) {
	if c.cursor == cur {
		return
	}
	c.cursor = cur
	c.emitCursor(cur)
}
