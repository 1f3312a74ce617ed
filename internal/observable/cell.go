// Package observable provides a latest-value publish/subscribe cell used to
// propagate derived view state to any number of readers.
package observable

import (
	"context"
	"sync"
)

// Cell holds the most recent value written by its single writer and fans it
// out to subscribers. Subscribers only ever observe the newest value: if a
// reader falls behind, intermediate values are dropped, never queued.
type Cell[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
	subs  map[*Subscription[T]]struct{}
}

// NewCell returns an empty cell.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Set stores v and offers it to every subscriber.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = v
	c.set = true
	for s := range c.subs {
		s.offer(v)
	}
}

// Get returns the latest value and whether one has been set.
func (c *Cell[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.set
}

// Subscribe registers a reader. The current value, if any, is delivered
// first. The subscription is closed when ctx is done or Close is called.
func (c *Cell[T]) Subscribe(ctx context.Context) *Subscription[T] {
	s := &Subscription[T]{
		cell: c,
		ch:   make(chan T, 1),
	}

	c.mu.Lock()
	c.subs[s] = struct{}{}
	if c.set {
		s.offer(c.value)
	}
	c.mu.Unlock()

	stop := context.AfterFunc(ctx, s.Close)

	c.mu.Lock()
	if s.closed {
		stop()
	} else {
		s.stop = stop
	}
	c.mu.Unlock()
	return s
}

// Len reports the number of live subscriptions.
func (c *Cell[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Subscription is a reader handle on a Cell.
type Subscription[T any] struct {
	cell   *Cell[T]
	ch     chan T
	stop   func() bool
	closed bool
}

// C returns the channel carrying the latest values. It is closed when the
// subscription ends.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.cell.mu.Lock()
	defer s.cell.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	delete(s.cell.subs, s)
	close(s.ch)
	if s.stop != nil {
		s.stop()
	}
}

// offer replaces any undelivered value with v. Callers hold cell.mu.
func (s *Subscription[T]) offer(v T) {
	if s.closed {
		return
	}
	select {
	case s.ch <- v:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- v:
	default:
	}
}
