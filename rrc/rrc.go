// Package rrc provides reference-counted initialization for native
// resources.
//
// Many native SDK features are libraries or subsystems that need explicit
// init and deinit calls. A Counter ties that pair to a reference count: the
// init function runs when the count goes 0 to 1, the deinit function when
// it returns to 0. Consumers hold a Guard for as long as they use the
// resource.
//
//	var screen = rrc.New(initScreen, deinitScreen)
//
//	g := screen.Acquire()
//	defer g.Release()
package rrc

import (
	"sync"
	"sync/atomic"
)

// Counter pairs a native resource's init and deinit functions with a
// reference count. The zero value is not usable; create with New.
type Counter struct {
	refs     atomic.Int32
	mu       sync.Mutex
	initFn   func()
	deinitFn func()
}

// New creates a counter for a resource. Either function may be nil.
func New(init, deinit func()) *Counter {
	return &Counter{initFn: init, deinitFn: deinit}
}

// Acquire takes a reference, running the init function if this is the
// first one. Safe for concurrent use; init and deinit never overlap.
func (c *Counter) Acquire() *Guard {
	c.mu.Lock()
	if c.refs.Add(1) == 1 && c.initFn != nil {
		c.initFn()
	}
	c.mu.Unlock()
	return &Guard{c: c}
}

// Refs returns the current reference count.
func (c *Counter) Refs() int { return int(c.refs.Load()) }

// Clear deinitializes the resource and resets the count to zero, ignoring
// outstanding guards. Only for teardown paths that know no one will
// acquire the resource again.
func (c *Counter) Clear() {
	c.mu.Lock()
	c.refs.Store(0)
	if c.deinitFn != nil {
		c.deinitFn()
	}
	c.mu.Unlock()
}

func (c *Counter) release() {
	c.mu.Lock()
	if c.refs.Add(-1) == 0 && c.deinitFn != nil {
		c.deinitFn()
	}
	c.mu.Unlock()
}

// Guard represents one held reference. Release is idempotent.
type Guard struct {
	c        *Counter
	released atomic.Bool
}

// Release drops the reference, running the deinit function if it was the
// last one.
func (g *Guard) Release() {
	if g.released.CompareAndSwap(false, true) {
		g.c.release()
	}
}
