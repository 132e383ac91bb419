// Package cell provides a single observable value slot.
//
// A Cell holds exactly one value. Writers replace it with Set; readers either
// read the latest value with Current or wait for the next publish through a
// Subscription. Nothing is buffered: a subscriber that falls behind observes
// only the most recent value once it catches up.
package cell

import (
	"context"
	"sync"
)

// Cell is safe for concurrent use.
type Cell[T any] struct {
	mu      sync.Mutex
	value   T
	version uint64
	changed chan struct{} // closed and replaced on every publish
}

// New returns a cell holding initial. The initial value is not a publish.
func New[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial, changed: make(chan struct{})}
}

// Current returns the latest published value.
func (c *Cell[T]) Current() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set publishes v, waking every waiting subscriber.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.publishLocked(v)
	c.mu.Unlock()
}

// Update publishes fn(current) atomically and returns the new value.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := fn(c.value)
	c.publishLocked(v)
	return v
}

func (c *Cell[T]) publishLocked(v T) {
	c.value = v
	c.version++
	close(c.changed)
	c.changed = make(chan struct{})
}

// Version returns the number of publishes so far.
func (c *Cell[T]) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *Cell[T]) load() (T, uint64, <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.version, c.changed
}

// Subscribe returns a subscription positioned at the current version, so its
// first Next returns the first publish after this call.
func (c *Cell[T]) Subscribe() *Subscription[T] {
	_, v, _ := c.load()
	return &Subscription[T]{cell: c, seen: v}
}

// Next waits for the next publish after this call and returns its value.
func (c *Cell[T]) Next(ctx context.Context) (T, error) {
	return c.Subscribe().Next(ctx)
}

// Subscription is one reader's cursor over a Cell.
// A Subscription must not be shared between goroutines.
type Subscription[T any] struct {
	cell *Cell[T]
	seen uint64
}

// Next blocks until the cell has been published past the last value this
// subscription observed, then returns the latest value. If several publishes
// happened in between, only the latest is returned.
func (s *Subscription[T]) Next(ctx context.Context) (T, error) {
	for {
		v, ver, changed := s.cell.load()
		if ver > s.seen {
			s.seen = ver
			return v, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Wait is Next without the value.
func (s *Subscription[T]) Wait(ctx context.Context) error {
	_, err := s.Next(ctx)
	return err
}

// Seen returns the version of the last value this subscription returned.
func (s *Subscription[T]) Seen() uint64 { return s.seen }
