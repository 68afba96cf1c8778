// Package history keeps the bounded stack of whole-collection snapshots used
// for coarse undo.
package history

import (
	"github.com/example/annocanvas/internal/shape"
)

// DefaultLimit is the number of snapshots kept when no limit is configured.
const DefaultLimit = 10

// Snapshot is a deep copy of the committed shape collection.
type Snapshot []*shape.Shape

// Stack is a size-bounded list of snapshots, oldest first.
type Stack struct {
	limit int
	snaps []Snapshot
}

// New returns a stack keeping at most limit snapshots. Non-positive limits
// fall back to DefaultLimit.
func New(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{limit: limit}
}

// Limit returns the configured cap.
func (s *Stack) Limit() int { return s.limit }

// Len returns the number of stored snapshots.
func (s *Stack) Len() int { return len(s.snaps) }

// Push stores a deep copy of shapes, dropping the oldest snapshot once the cap
// is exceeded.
func (s *Stack) Push(shapes []*shape.Shape) {
	if len(s.snaps) >= s.limit {
		keep := s.snaps[len(s.snaps)-s.limit+1:]
		s.snaps = append(make([]Snapshot, 0, s.limit), keep...)
	}
	s.snaps = append(s.snaps, Snapshot(shape.CopyAll(shapes)))
}

// Top returns the newest snapshot without copying it. Callers must not mutate
// the result.
func (s *Stack) Top() (Snapshot, bool) {
	if len(s.snaps) == 0 {
		return nil, false
	}
	return s.snaps[len(s.snaps)-1], true
}

// Find returns the newest snapshot's copy of the shape with the given ID.
func (s *Stack) Find(id shape.ID) (*shape.Shape, bool) {
	top, ok := s.Top()
	if !ok {
		return nil, false
	}
	for _, sh := range top {
		if sh.ID == id {
			return sh, true
		}
	}
	return nil, false
}

// Restorable reports whether Undo can step back past the current state.
func (s *Stack) Restorable() bool { return len(s.snaps) >= 2 }

// Undo drops the newest snapshot, which mirrors the current state, and returns
// a deep copy of the one before it. With a single snapshot it returns a copy
// of that snapshot and keeps it. The returned shapes are safe to mutate.
func (s *Stack) Undo() ([]*shape.Shape, bool) {
	switch len(s.snaps) {
	case 0:
		return nil, false
	case 1:
	default:
		s.snaps[len(s.snaps)-1] = nil
		s.snaps = s.snaps[:len(s.snaps)-1]
	}
	return shape.CopyAll(s.snaps[len(s.snaps)-1]), true
}

// Reset removes every snapshot.
func (s *Stack) Reset() { s.snaps = nil }

// Snapshots returns the stored snapshots, oldest first.
func (s *Stack) Snapshots() []Snapshot {
	out := make([]Snapshot, len(s.snaps))
	copy(out, s.snaps)
	return out
}
