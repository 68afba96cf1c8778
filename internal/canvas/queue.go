package canvas

import (
	"context"
	"errors"
)

// ErrQueueClosed is returned by Post after Close.
var ErrQueueClosed = errors.New("canvas queue closed")

// Queue serialises input for a Canvas. Any goroutine may Post; a single
// consumer, Run or Drain, applies events in the order they were posted.
type Queue struct {
	c      *Canvas
	events chan any
	done   chan struct{}
}

// NewQueue returns a queue for c buffering up to size events.
func NewQueue(c *Canvas, size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{c: c, events: make(chan any, size), done: make(chan struct{})}
}

// Post enqueues e, blocking while the buffer is full.
func (q *Queue) Post(ctx context.Context, e any) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.events <- e:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops Run once the queue has been drained. Posting afterwards fails.
func (q *Queue) Close() {
	select {
	case <-q.done:
	default:
		close(q.done)
	}
}

// Run applies events until ctx is cancelled or the queue is closed and empty.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case e := <-q.events:
			q.c.HandleEvent(e)
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			q.Drain()
			return nil
		}
	}
}

// Drain applies every pending event and returns how many were handled.
func (q *Queue) Drain() int {
	n := 0
	for {
		select {
		case e := <-q.events:
			q.c.HandleEvent(e)
			n++
		default:
			return n
		}
	}
}
