package canvas

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/example/annocanvas/internal/assert"
	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/shape"
)

// DropAction decides what happens to the copies of a right-button drag when
// the button is released.
type DropAction int

const (
	// DropCopy commits the copies as new shapes.
	DropCopy DropAction = iota
	// DropMove writes the copies' points back into the originals.
	DropMove
	// DropCancel discards the copies.
	DropCancel
)

func (a DropAction) String() string {
	switch a {
	case DropMove:
		return "move"
	case DropCancel:
		return "cancel"
	}
	return "copy"
}

// ParseDropAction converts a config name into a DropAction.
func ParseDropAction(name string) (DropAction, error) {
	switch name {
	case "copy", "":
		return DropCopy, nil
	case "move":
		return DropMove, nil
	case "cancel":
		return DropCancel, nil
	}
	return DropCopy, fmt.Errorf("unknown drop action %q", name)
}

// Direction is a keyboard nudge direction.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Step returns the unit vector for d in image space (Y grows downwards).
func (d Direction) Step() geom.Point {
	switch d {
	case Left:
		return geom.Pt(-1, 0)
	case Right:
		return geom.Pt(1, 0)
	case Up:
		return geom.Pt(0, -1)
	}
	return geom.Pt(0, 1)
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// duplicateOffset is how far DuplicateSelected shifts the copies.
var duplicateOffset = geom.Pt(5, 5)

// boundedMoveVertex drags the highlighted vertex towards pos, clamped to the
// image. Axis-aligned rectangles stay rectangular.
func (c *Canvas) boundedMoveVertex(pos geom.Point) {
	s, ok := c.Shape(c.hShape)
	if !ok || c.hVertex < 0 || c.hVertex >= s.Len() {
		return
	}
	index := c.hVertex
	point := s.At(index)
	pos = c.view.Clamp(pos)

	rect := s.Len() == 4 && s.IsAxisAlignedRect()
	var shift geom.Point
	if rect && c.square {
		opposite := s.At((index + 2) % 4)
		d := pos.Sub(opposite)
		size := math.Min(math.Abs(d.X), math.Abs(d.Y))
		corner := opposite.Add(geom.Pt(sign(d.X)*size, sign(d.Y)*size))
		shift = corner.Sub(point)
	} else {
		shift = pos.Sub(point)
	}
	s.MoveVertexBy(index, shift)

	if !rect {
		return
	}
	lindex := (index + 1) % 4
	rindex := (index + 3) % 4
	var lshift, rshift geom.Point
	if index%2 == 0 {
		rshift = geom.Pt(shift.X, 0)
		lshift = geom.Pt(0, shift.Y)
	} else {
		lshift = geom.Pt(shift.X, 0)
		rshift = geom.Pt(0, shift.Y)
	}
	s.MoveVertexBy(rindex, rshift)
	s.MoveVertexBy(lindex, lshift)
}

// boundedMoveShapes translates shapes so the pointer follows pos while the
// recorded bounding box stays inside the image. It reports whether anything
// moved.
func (c *Canvas) boundedMoveShapes(shapes []*shape.Shape, pos geom.Point) bool {
	if c.view.OutOfBounds(pos) {
		return false
	}
	o1 := pos.Add(c.offsets[0])
	if c.view.OutOfBounds(o1) {
		pos = pos.Sub(geom.Pt(math.Min(0, o1.X), math.Min(0, o1.Y)))
	}
	o2 := pos.Add(c.offsets[1])
	if c.view.OutOfBounds(o2) {
		pos = pos.Add(geom.Pt(math.Min(0, c.view.Width-o2.X), math.Min(0, c.view.Height-o2.Y)))
	}
	dp := pos.Sub(c.prevPoint)
	if dp.IsZero() {
		return false
	}
	for _, s := range shapes {
		s.MoveBy(dp)
		if s.Len() >= 3 {
			s.Close()
		}
	}
	c.prevPoint = pos
	return true
}

// Nudge moves every selected shape one step in direction d. Shapes that would
// leave the image stay put. One snapshot is pushed for the whole selection.
func (c *Canvas) Nudge(d Direction) bool {
	return c.nudge(d, -1)
}

// NudgeVertex moves only vertex index of every selected shape.
func (c *Canvas) NudgeVertex(d Direction, index int) bool {
	return c.nudge(d, index)
}

func (c *Canvas) nudge(d Direction, index int) bool {
	shapes := c.SelectedShapes()
	if len(shapes) == 0 {
		return false
	}
	step := d.Step().Mul(c.nudgeStep)
	moved := false
	for _, s := range shapes {
		if c.nudgeOutOfBounds(s, step, index) {
			continue
		}
		if index >= 0 {
			s.MoveVertexBy(index, step)
		} else {
			s.MoveBy(step)
		}
		moved = true
	}
	c.storeShapes()
	c.emitShapeMoved()
	c.log.WithFields(logrus.Fields{"direction": d, "moved": moved}).Debug("nudge")
	return moved
}

func (c *Canvas) nudgeOutOfBounds(s *shape.Shape, step geom.Point, index int) bool {
	if index >= 0 {
		return index >= s.Len() || c.view.OutOfBounds(s.At(index).Add(step))
	}
	for _, p := range s.Points {
		if c.view.OutOfBounds(p.Add(step)) {
			return true
		}
	}
	return false
}

// startCopies seeds the scratch copies of a right-button drag from the
// selection.
func (c *Canvas) startCopies() {
	sel := c.SelectedShapes()
	c.copies = make([]*shape.Shape, len(sel))
	for i, s := range sel {
		c.copies[i] = s.Clone()
	}
	c.setOffsets(c.copies, c.prevPoint)
}

// EndMove finishes a right-button drag. Every path clears the copies and
// pushes a snapshot.
func (c *Canvas) EndMove(action DropAction) bool {
	sel := c.SelectedShapes()
	if !assert.That(len(sel) > 0 && len(c.copies) > 0, "end move without selection or copies") {
		c.copies = nil
		return false
	}
	if !assert.That(len(sel) == len(c.copies), "selection and copies differ: %d != %d", len(sel), len(c.copies)) {
		c.copies = nil
		return false
	}
	switch action {
	case DropCopy:
		ids := make([]shape.ID, len(c.copies))
		for i, cp := range c.copies {
			cp.Index = len(c.shapes)
			cp.Confirmed = true
			c.shapes = append(c.shapes, cp)
			ids[i] = cp.ID
		}
		c.SelectShapes(ids)
	case DropMove:
		for i, s := range sel {
			s.Points = append(s.Points[:0], c.copies[i].Points...)
		}
		c.emitShapeMoved()
	}
	c.log.WithFields(logrus.Fields{"action": action, "count": len(c.copies)}).Debug("end move")
	c.copies = nil
	c.storeShapes()
	return true
}

// DuplicateSelected commits copies of the selection shifted by a few pixels.
func (c *Canvas) DuplicateSelected() bool {
	if len(c.SelectedShapes()) == 0 {
		return false
	}
	c.startCopies()
	c.boundedShiftShapes(c.copies)
	return c.EndMove(DropCopy)
}

func (c *Canvas) boundedShiftShapes(shapes []*shape.Shape) {
	for _, s := range shapes {
		point := s.First()
		c.setOffsets([]*shape.Shape{s}, point)
		c.prevPoint = point
		if !c.boundedMoveShapes([]*shape.Shape{s}, point.Sub(duplicateOffset)) {
			c.boundedMoveShapes([]*shape.Shape{s}, point.Add(duplicateOffset))
		}
	}
}

// DeleteSelected removes the selected shapes and reports whether any were
// removed.
func (c *Canvas) DeleteSelected() bool {
	ids := c.selected
	if len(ids) == 0 {
		return false
	}
	drop := make(map[shape.ID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	removed := c.removeShapes(func(s *shape.Shape) bool { return drop[s.ID] })
	c.clearSelection()
	if removed == 0 {
		return false
	}
	c.storeShapes()
	c.log.WithField("count", removed).Debug("shapes deleted")
	return true
}

// endDrag runs after a left release in edit mode. Shapes whose points differ
// from the newest snapshot get a fresh snapshot and a moved notification.
func (c *Canvas) endDrag() {
	ids := c.Selected()
	if c.gesture == GestureVertex && c.hShape != shape.NilID {
		ids = append(ids, c.hShape)
	}
	changed := false
	for _, id := range ids {
		s, ok := c.Shape(id)
		if !ok {
			continue
		}
		old, ok := c.history.Find(id)
		if !ok || !shape.SamePoints(s, old) {
			changed = true
			break
		}
	}
	if changed {
		c.storeShapes()
		c.emitShapeMoved()
	}
}
