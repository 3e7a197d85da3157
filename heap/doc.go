// Package heap implements the allocator adapter over the native capability
// surface.
//
// The adapter is the only component allowed to call the native heap's
// alloc/realloc/free primitives; everything else (the collection layer,
// resource tables, application subsystems) goes through it. Allocations are
// represented as Block values carrying the pointer together with the size
// and alignment they were requested with, because the native free primitive
// requires the original request parameters.
//
// Heap exhaustion is surfaced as a recoverable typed error so callers can
// retry smaller, drop the operation, or escalate. Contract violations such
// as a non-power-of-two alignment panic instead; see the proc package for
// how panics terminate.
package heap
