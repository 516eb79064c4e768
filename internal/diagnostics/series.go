// Package diagnostics collects periodic snapshots of an episode for offline
// analysis and rendering.
package diagnostics

// Series is an append-only buffer with a fixed capacity. Appends past the
// capacity are counted and discarded.
type Series[T any] struct {
	items    []T
	capacity int
	dropped  int
}

func NewSeries[T any](capacity int) *Series[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Series[T]{items: make([]T, 0, capacity), capacity: capacity}
}

// Append stores v and reports whether there was room for it.
func (s *Series[T]) Append(v T) bool {
	if len(s.items) >= s.capacity {
		s.dropped++
		return false
	}
	s.items = append(s.items, v)
	return true
}

func (s *Series[T]) Items() []T   { return s.items }
func (s *Series[T]) Len() int     { return len(s.items) }
func (s *Series[T]) Cap() int     { return s.capacity }
func (s *Series[T]) Dropped() int { return s.dropped }
