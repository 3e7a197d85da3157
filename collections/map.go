package collections

import (
	"iter"
	"unsafe"

	"github.com/cafebrew/cafe-runtime/errors"
	"github.com/cafebrew/cafe-runtime/hasher"
	"github.com/cafebrew/cafe-runtime/heap"
)

const (
	// minSlots is the initial slot count of a table that received no
	// capacity hint. Always a power of two.
	minSlots = 8

	// Load factor threshold: occupied+tombstone slots may not exceed 7/8
	// of the slot count after any insert.
	maxLoadNum = 7
	maxLoadDen = 8

	// A compacting rehash runs when tombstones exceed 1/4 of the slots.
	tombstoneDen = 4
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstone
)

type slot[K comparable, V any] struct {
	key   K
	value V
	state slotState
}

// Map is an open-addressing hash table from K to V.
//
// Collisions are resolved by linear probing over a power-of-two slot array;
// deleted entries become tombstones so probe chains stay intact until a
// rehash compacts them away. The hashing strategy and the native-heap
// backing are injected, so the same table runs on any host that supplies
// equivalent capabilities.
//
// A Map is NOT goroutine-safe. Mutating the table while iterating over it
// is forbidden and unchecked.
type Map[K comparable, V any] struct {
	hash    hasher.Hasher[K]
	backing Backing
	slots   []slot[K, V]
	block   heap.Block
	mask    uint64
	used    uint32
	dead    uint32
	hint    uint32
}

// Option configures a Map or Set at construction.
type Option func(*config)

type config struct {
	backing  Backing
	capacity uint32
}

// WithBacking charges the table's slot storage against a native heap. Slot
// array growth then fails with a recoverable error when the heap is
// exhausted.
func WithBacking(b Backing) Option {
	return func(c *config) { c.backing = b }
}

// WithCapacity sizes the table for at least n entries up front.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = uint32(n)
		}
	}
}

// NewMap creates an empty map using the given hashing strategy. A nil
// hasher is a contract violation and panics. Backing storage is not
// allocated until the first insert.
func NewMap[K comparable, V any](h hasher.Hasher[K], opts ...Option) *Map[K, V] {
	if h == nil {
		panic(errors.Contract(errors.PhaseCollections, "nil hasher"))
	}
	cfg := config{backing: Unmanaged()}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Map[K, V]{
		hash:    h,
		backing: cfg.backing,
		hint:    minSlots,
	}
	if cfg.capacity > 0 {
		m.hint = slotsFor(cfg.capacity)
	}
	return m
}

// Len returns the number of live entries. Tombstones are never counted.
func (m *Map[K, V]) Len() int { return int(m.used) }

// Slots returns the current slot count, zero before the first insert.
func (m *Map[K, V]) Slots() int { return len(m.slots) }

// Get returns the value stored for key. Probing stops at the first empty
// slot; tombstones keep the search going.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	if m.slots == nil {
		return zero, false
	}
	i := m.hash.Hash(key) & m.mask
	for {
		s := &m.slots[i]
		switch s.state {
		case slotEmpty:
			return zero, false
		case slotOccupied:
			if s.key == key {
				return s.value, true
			}
		}
		i = (i + 1) & m.mask
	}
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Put inserts or replaces the value for key. When the key was already
// present the previous value is returned with replaced set. Put fails only
// when a required rehash cannot obtain backing storage from the native
// heap; the table is unchanged in that case.
func (m *Map[K, V]) Put(key K, value V) (prev V, replaced bool, err error) {
	if m.slots == nil {
		if err = m.rehash(m.hint); err != nil {
			return prev, false, err
		}
	} else if uint64(m.used+m.dead+1)*maxLoadDen > uint64(len(m.slots))*maxLoadNum {
		if err = m.grow(); err != nil {
			return prev, false, err
		}
	}

	i := m.hash.Hash(key) & m.mask
	reuse := -1
	for {
		s := &m.slots[i]
		switch s.state {
		case slotEmpty:
			if reuse >= 0 {
				s = &m.slots[reuse]
				m.dead--
			}
			s.key = key
			s.value = value
			s.state = slotOccupied
			m.used++
			return prev, false, nil
		case slotTombstone:
			if reuse < 0 {
				reuse = int(i)
			}
		case slotOccupied:
			if s.key == key {
				prev = s.value
				s.value = value
				return prev, true, nil
			}
		}
		i = (i + 1) & m.mask
	}
}

// Delete removes key and returns its value. Removing an absent key is a
// no-op. The slot becomes a tombstone, never empty, so probe chains for
// other keys survive; accumulated tombstones are compacted away once they
// exceed a quarter of the slots.
func (m *Map[K, V]) Delete(key K) (V, bool) {
	var zero V
	if m.slots == nil {
		return zero, false
	}
	i := m.hash.Hash(key) & m.mask
	for {
		s := &m.slots[i]
		switch s.state {
		case slotEmpty:
			return zero, false
		case slotOccupied:
			if s.key == key {
				value := s.value
				s.key = zeroOf[K]()
				s.value = zero
				s.state = slotTombstone
				m.used--
				m.dead++
				if uint64(m.dead)*tombstoneDen > uint64(len(m.slots)) {
					// Compaction is best-effort; on exhaustion the
					// tombstones simply stay until the next rehash.
					_ = m.rehash(uint32(len(m.slots)))
				}
				return value, true
			}
		}
		i = (i + 1) & m.mask
	}
}

// All returns a lazy iterator over the live entries in slot order. The
// sequence is finite and single-use; mutating the table during iteration
// is forbidden.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.slots {
			if m.slots[i].state == slotOccupied {
				if !yield(m.slots[i].key, m.slots[i].value) {
					return
				}
			}
		}
	}
}

// Keys returns a lazy iterator over the live keys in slot order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for i := range m.slots {
			if m.slots[i].state == slotOccupied {
				if !yield(m.slots[i].key) {
					return
				}
			}
		}
	}
}

// Reserve grows the table so n entries fit without further rehashing.
func (m *Map[K, V]) Reserve(n int) error {
	if n <= 0 {
		return nil
	}
	target := slotsFor(uint32(n))
	if int(target) <= len(m.slots) {
		return nil
	}
	return m.rehash(target)
}

// Clear removes all entries, keeping the current backing storage.
func (m *Map[K, V]) Clear() {
	clear(m.slots)
	m.used = 0
	m.dead = 0
}

// Close releases the table's backing storage to the native heap. The table
// reverts to its empty pre-allocation state and may be reused.
func (m *Map[K, V]) Close() {
	m.backing.Free(m.block)
	m.block = heap.Block{}
	m.slots = nil
	m.mask = 0
	m.used = 0
	m.dead = 0
}

// grow rehashes into a larger table, or compacts in place when the table
// is dominated by tombstones. On exhaustion at the doubled size it retries
// at the current size to reclaim tombstones before giving up.
func (m *Map[K, V]) grow() error {
	n := uint32(len(m.slots))
	target := n * 2
	if m.dead >= m.used {
		target = n
	}

	err := m.rehash(target)
	if err != nil && target > n && m.dead > 0 {
		if m.rehash(n) == nil {
			// Compacted. Only proceed if the insert still fits the load
			// factor; otherwise surface the original exhaustion.
			if uint64(m.used+1)*maxLoadDen <= uint64(n)*maxLoadNum {
				return nil
			}
		}
	}
	return err
}

// rehash moves every live entry into a fresh slot array of n slots
// (n a power of two), obtained from the backing, and releases the old
// array. Tombstones die here. On error the table is untouched.
func (m *Map[K, V]) rehash(n uint32) error {
	var s slot[K, V]
	size := n * uint32(unsafe.Sizeof(s))
	align := uint32(unsafe.Alignof(s))

	block, err := m.backing.Alloc(size, align)
	if err != nil {
		return errors.Wrap(errors.PhaseCollections, errors.KindExhausted, err,
			"rehash backing allocation")
	}

	slots := make([]slot[K, V], n)
	mask := uint64(n - 1)
	for i := range m.slots {
		if m.slots[i].state != slotOccupied {
			continue
		}
		j := m.hash.Hash(m.slots[i].key) & mask
		for slots[j].state == slotOccupied {
			j = (j + 1) & mask
		}
		slots[j] = m.slots[i]
	}

	m.backing.Free(m.block)
	m.block = block
	m.slots = slots
	m.mask = mask
	m.dead = 0
	return nil
}

// slotsFor returns the power-of-two slot count that keeps n entries under
// the load factor threshold.
func slotsFor(n uint32) uint32 {
	slots := uint32(minSlots)
	for uint64(n)*maxLoadDen > uint64(slots)*maxLoadNum {
		slots *= 2
	}
	return slots
}

func zeroOf[T any]() T {
	var zero T
	return zero
}
