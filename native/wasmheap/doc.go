// Package wasmheap provides a hosted native capability surface backed by a
// WebAssembly linear memory.
//
// A linear memory is the closest host-side analogue of a console heap: one
// contiguous region, byte-addressed, no virtual memory, growth in fixed
// pages up to a hard limit, and exhaustion as an ordinary outcome rather
// than an exception. Running the runtime layer against it exercises the
// same failure modes the console target produces, with the page limit
// standing in for physical memory.
//
// Allocation bookkeeping lives host-side in a first-fit free list; the
// linear memory holds only payload bytes.
package wasmheap
