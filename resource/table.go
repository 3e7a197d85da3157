package resource

import (
	"sync"

	"github.com/cafebrew/cafe-runtime/collections"
	"github.com/cafebrew/cafe-runtime/hasher"
)

// Handle is an opaque reference to a resource in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}

// EventType identifies a resource lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event describes a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID uint32
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

type entry struct {
	value  any
	typeID uint32
}

// Table maps handles to opaque native resources. Storage is a heap-aware
// hash map; handles are reused through a free list so long-lived tables do
// not exhaust the handle space.
//
// Unlike the collection layer, a Table is safe for concurrent use: it
// carries its own lock, since resource handles routinely cross goroutines.
type Table struct {
	mu        sync.RWMutex
	entries   *collections.Map[uint32, entry]
	freeList  []Handle
	next      Handle
	observers []Observer
	closed    bool
}

// NewTable creates an empty table. Options are forwarded to the underlying
// map, so a table can charge its storage against a native heap with
// collections.WithBacking.
func NewTable(opts ...collections.Option) *Table {
	return &Table{
		entries: collections.NewMap[uint32, entry](hasher.Uint32(), opts...),
	}
}

// Insert adds a value and returns its handle, or 0 when the table is
// closed or the native heap cannot hold another entry.
func (t *Table) Insert(typeID uint32, value any) Handle {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}

	var h Handle
	if n := len(t.freeList); n > 0 {
		h = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		t.next++
		h = t.next
	}

	if _, _, err := t.entries.Put(uint32(h), entry{value: value, typeID: typeID}); err != nil {
		t.freeList = append(t.freeList, h)
		t.mu.Unlock()
		return 0
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: h, TypeID: typeID, Value: value})
	return h
}

// Get retrieves a value by handle.
func (t *Table) Get(h Handle) (any, bool) {
	if h == 0 {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries.Get(uint32(h))
	if !ok {
		return nil, false
	}
	return e.value, true
}

// GetTyped retrieves a value only if it matches the expected type.
func (t *Table) GetTyped(h Handle, typeID uint32) (any, bool) {
	if h == 0 {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries.Get(uint32(h))
	if !ok || e.typeID != typeID {
		return nil, false
	}
	return e.value, true
}

// Remove drops a resource and returns (value, true) if found. A value
// implementing Dropper has its destructor run.
func (t *Table) Remove(h Handle) (any, bool) {
	if h == 0 {
		return nil, false
	}
	t.mu.Lock()
	e, ok := t.entries.Delete(uint32(h))
	if !ok {
		t.mu.Unlock()
		return nil, false
	}
	t.freeList = append(t.freeList, h)
	t.mu.Unlock()

	if d, ok := e.value.(Dropper); ok {
		d.Drop()
	}
	t.notify(Event{Type: EventDropped, Handle: h, TypeID: e.typeID, Value: e.value})
	return e.value, true
}

// Len returns the number of active resources.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries.Len()
}

// Each calls fn for every active resource until it returns false.
func (t *Table) Each(fn func(Handle, uint32, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for k, e := range t.entries.All() {
		if !fn(Handle(k), e.typeID, e.value) {
			return
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Clear drops all resources.
func (t *Table) Clear() {
	// Collect handles first so destructors and notifications run without
	// the lock held.
	var handles []Handle
	t.mu.RLock()
	for k := range t.entries.Keys() {
		handles = append(handles, Handle(k))
	}
	t.mu.RUnlock()
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close drops all resources, releases the table's backing storage and
// stops accepting operations.
func (t *Table) Close() error {
	t.Clear()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.entries.Close()
	t.freeList = nil
	return nil
}

func (t *Table) notify(e Event) {
	t.mu.RLock()
	obs := t.observers
	t.mu.RUnlock()
	for _, o := range obs {
		o.OnResourceEvent(e)
	}
}
