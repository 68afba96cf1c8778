package canvas

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/shape"
)

// WheelStep is the scroll delta reported for one wheel notch.
const WheelStep = 120.0

// DoubleClick is a double click at widget coordinates X, Y. The shiny event
// stream has no double click so hosts synthesise it.
type DoubleClick struct {
	X, Y float32
}

// Command is an input that is not a pointer or key event.
type Command interface {
	apply(c *Canvas) bool
}

// ToggleDrawing flips between edit and create mode.
type ToggleDrawing struct{}

// SetDrawing enters create mode when On is set and edit mode otherwise.
type SetDrawing struct{ On bool }

// SetSquareMode turns the square constraint on or off.
type SetSquareMode struct{ On bool }

// SetFourPointMode chooses four-point (true) or rectangle (false) drawing.
type SetFourPointMode struct{ On bool }

// SelectStrategy selects any drawing strategy.
type SelectStrategy struct{ Strategy Strategy }

// CancelDrawing abandons the current drawing session.
type CancelDrawing struct{}

// DeleteSelection removes the selected shapes.
type DeleteSelection struct{}

// NudgeSelection moves the selection one step.
type NudgeSelection struct{ Direction Direction }

// RestoreBackup undoes to the previous snapshot.
type RestoreBackup struct{}

// ReplaceShapes loads shapes, replacing the collection when Replace is set.
type ReplaceShapes struct {
	Shapes  []*shape.Shape
	Replace bool
}

// SetVisibility shows or hides a shape.
type SetVisibility struct {
	ID      shape.ID
	Visible bool
}

// LabelLast labels and confirms the most recently committed shape.
type LabelLast struct{ Text string }

// ConfirmShapes confirms every committed shape.
type ConfirmShapes struct{}

func (ToggleDrawing) apply(c *Canvas) bool      { c.SetEditing(c.Drawing()); return true }
func (m SetDrawing) apply(c *Canvas) bool       { c.SetEditing(!m.On); return true }
func (m SetSquareMode) apply(c *Canvas) bool    { c.SetSquare(m.On); return true }
func (m SetFourPointMode) apply(c *Canvas) bool { c.SetFourPoint(m.On); return true }
func (m SelectStrategy) apply(c *Canvas) bool   { c.SetStrategy(m.Strategy); return true }
func (CancelDrawing) apply(c *Canvas) bool      { return c.Cancel() }
func (DeleteSelection) apply(c *Canvas) bool    { return c.DeleteSelected() }
func (m NudgeSelection) apply(c *Canvas) bool   { return c.Nudge(m.Direction) }
func (RestoreBackup) apply(c *Canvas) bool      { return c.Undo() }
func (m ReplaceShapes) apply(c *Canvas) bool    { c.LoadShapes(m.Shapes, m.Replace); return true }
func (m SetVisibility) apply(c *Canvas) bool    { c.SetShapeVisible(m.ID, m.Visible); return true }
func (m LabelLast) apply(c *Canvas) bool        { return m.Text != "" && c.SetLastLabel(m.Text) != nil }
func (ConfirmShapes) apply(c *Canvas) bool      { c.ConfirmAll(); return true }

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// Matches reports whether e triggers the shortcut.
func (s KeyShortcut) Matches(e key.Event) bool {
	if e.Modifiers != s.Modifiers {
		return false
	}
	if s.Code != key.CodeUnknown {
		return e.Code == s.Code
	}
	if e.Rune == s.Rune || e.Rune == s.Rune-'a'+'A' {
		return true
	}
	return s.Rune >= 'a' && s.Rune <= 'z' && e.Code == key.CodeA+key.Code(s.Rune-'a')
}

type binding struct {
	keys []KeyShortcut
	run  func(c *Canvas) bool
}

var bindings = []binding{
	{[]KeyShortcut{{Code: key.CodeEscape}}, (*Canvas).Cancel},
	{[]KeyShortcut{{Code: key.CodeReturnEnter}, {Code: key.CodeKeypadEnter}}, (*Canvas).CommitDrawing},
	{[]KeyShortcut{{Code: key.CodeLeftArrow}}, func(c *Canvas) bool { return c.Nudge(Left) }},
	{[]KeyShortcut{{Code: key.CodeRightArrow}}, func(c *Canvas) bool { return c.Nudge(Right) }},
	{[]KeyShortcut{{Code: key.CodeUpArrow}}, func(c *Canvas) bool { return c.Nudge(Up) }},
	{[]KeyShortcut{{Code: key.CodeDownArrow}}, func(c *Canvas) bool { return c.Nudge(Down) }},
	{[]KeyShortcut{{Code: key.CodeDeleteForward}}, (*Canvas).DeleteSelected},
	{[]KeyShortcut{{Code: key.CodeDeleteBackspace}}, (*Canvas).UndoLastPoint},
	{[]KeyShortcut{{Rune: 'z', Modifiers: key.ModControl}}, (*Canvas).Undo},
	{[]KeyShortcut{{Rune: 'd', Modifiers: key.ModControl}}, (*Canvas).DuplicateSelected},
}

// HandleEvent dispatches one input. It accepts mouse.Event, key.Event,
// DoubleClick and Command values and reports whether the input was used.
func (c *Canvas) HandleEvent(e any) bool {
	switch e := e.(type) {
	case mouse.Event:
		return c.handleMouse(e)
	case key.Event:
		return c.handleKey(e)
	case DoubleClick:
		return c.DoubleClickAt(c.view.ToImage(geom.Pt(float64(e.X), float64(e.Y))))
	case Command:
		return e.apply(c)
	}
	c.log.WithField("event", e).Warn("unhandled canvas event")
	return false
}

func (c *Canvas) handleKey(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	for _, b := range bindings {
		for _, k := range b.keys {
			if k.Matches(e) {
				return b.run(c)
			}
		}
	}
	return false
}

func (c *Canvas) handleMouse(e mouse.Event) bool {
	if e.Direction == mouse.DirStep {
		return c.wheel(e)
	}
	pos := c.view.ToImage(geom.Pt(float64(e.X), float64(e.Y)))
	switch e.Direction {
	case mouse.DirPress:
		c.buttons[e.Button] = true
		c.press(pos, e.Button, e.Modifiers&key.ModControl != 0)
	case mouse.DirRelease:
		delete(c.buttons, e.Button)
		c.release(pos, e.Button)
	default:
		c.move(pos)
	}
	return true
}

func (c *Canvas) wheel(e mouse.Event) bool {
	ctrl := e.Modifiers&key.ModControl != 0
	switch e.Button {
	case mouse.ButtonWheelUp, mouse.ButtonWheelDown:
		d := WheelStep
		if e.Button == mouse.ButtonWheelDown {
			d = -d
		}
		if ctrl {
			c.emitZoom(d)
		} else {
			c.emitScroll(d, Vertical)
		}
	case mouse.ButtonWheelLeft:
		c.emitScroll(WheelStep, Horizontal)
	case mouse.ButtonWheelRight:
		c.emitScroll(-WheelStep, Horizontal)
	default:
		return false
	}
	return true
}

func (c *Canvas) press(pos geom.Point, b mouse.Button, multi bool) {
	c.log.WithFields(logrus.Fields{"mode": c.mode, "button": b, "at": pos}).Debug("press")
	switch b {
	case mouse.ButtonLeft:
		if c.Drawing() {
			c.pressCreate(pos)
			return
		}
		c.SelectShapePoint(pos, multi)
		c.prevPoint, c.hasPrev = pos, true
		c.panStart = pos
		c.gesture = GestureIdle
	case mouse.ButtonRight:
		if c.Editing() {
			c.SelectShapePoint(pos, multi)
			c.prevPoint, c.hasPrev = pos, true
			c.gesture = GestureIdle
		}
	}
}

func (c *Canvas) move(pos geom.Point) {
	if c.Drawing() {
		c.movePreview(pos)
		return
	}
	switch {
	case c.buttons[mouse.ButtonRight]:
		c.dragCopies(pos)
	case c.buttons[mouse.ButtonLeft]:
		c.dragLeft(pos)
	default:
		c.hover(pos)
	}
}

func (c *Canvas) dragCopies(pos geom.Point) {
	if len(c.copies) > 0 && c.hasPrev {
		c.setCursor(CursorMove)
		c.boundedMoveShapes(c.copies, pos)
		return
	}
	if len(c.selected) > 0 {
		c.startCopies()
		c.gesture = GestureCopy
	}
}

func (c *Canvas) dragLeft(pos geom.Point) {
	switch {
	case c.SelectedVertex():
		c.gesture = GestureVertex
		c.boundedMoveVertex(pos)
		c.emitShapeMoved()
	case len(c.selected) > 0 && c.hasPrev:
		c.gesture = GestureShape
		c.setCursor(CursorMove)
		if c.boundedMoveShapes(c.SelectedShapes(), pos) {
			c.emitShapeMoved()
		}
	default:
		c.gesture = GesturePan
		d := pos.Sub(c.panStart)
		c.emitScroll(d.X, Horizontal)
		c.emitScroll(d.Y, Vertical)
	}
}

func (c *Canvas) release(pos geom.Point, b mouse.Button) {
	if c.Drawing() {
		return
	}
	switch b {
	case mouse.ButtonRight:
		if len(c.copies) > 0 {
			c.EndMove(c.drop)
		}
	case mouse.ButtonLeft:
		if c.gesture == GestureVertex || c.gesture == GestureShape {
			c.endDrag()
		}
		switch {
		case c.SelectedVertex():
			c.setCursor(CursorPoint)
		case len(c.selected) > 0:
			c.setCursor(CursorGrab)
		default:
			c.setCursor(CursorDefault)
		}
	}
	c.gesture = GestureIdle
	c.hasPrev = false
	c.log.WithField("at", pos).Debug("release")
}
