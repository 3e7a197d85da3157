package collections

import (
	"iter"

	"github.com/cafebrew/cafe-runtime/hasher"
)

// Set is an open-addressing hash set built on Map with zero-size values.
// It shares the Map's probing, load factor and tombstone behavior, and the
// same restrictions: not goroutine-safe, no mutation during iteration.
type Set[K comparable] struct {
	m *Map[K, struct{}]
}

// NewSet creates an empty set using the given hashing strategy.
func NewSet[K comparable](h hasher.Hasher[K], opts ...Option) *Set[K] {
	return &Set[K]{m: NewMap[K, struct{}](h, opts...)}
}

// Add inserts key and reports whether it was already present. Add fails
// only when a required rehash cannot obtain backing storage.
func (s *Set[K]) Add(key K) (existed bool, err error) {
	_, existed, err = s.m.Put(key, struct{}{})
	return existed, err
}

// Contains reports whether key is in the set.
func (s *Set[K]) Contains(key K) bool {
	return s.m.Contains(key)
}

// Remove deletes key and reports whether it was present.
func (s *Set[K]) Remove(key K) bool {
	_, ok := s.m.Delete(key)
	return ok
}

// Len returns the number of elements.
func (s *Set[K]) Len() int { return s.m.Len() }

// Slots returns the current slot count.
func (s *Set[K]) Slots() int { return s.m.Slots() }

// All returns a lazy iterator over the elements in slot order.
func (s *Set[K]) All() iter.Seq[K] { return s.m.Keys() }

// Reserve grows the set so n elements fit without further rehashing.
func (s *Set[K]) Reserve(n int) error { return s.m.Reserve(n) }

// Clear removes all elements, keeping the backing storage.
func (s *Set[K]) Clear() { s.m.Clear() }

// Close releases the set's backing storage to the native heap.
func (s *Set[K]) Close() { s.m.Close() }
