// Package sim provides an in-process simulation of the native capability
// surface: a single flat heap with first-fit allocation and coalescing
// frees, plus a recording environment lifecycle.
//
// The simulation mirrors the console's memory model closely enough for the
// rest of the runtime layer to be exercised without hardware: a single
// contiguous region, no virtual memory, exhaustion through a zero return.
// Abort records the message and returns instead of terminating, which lets
// tests assert on the panic-to-abort path.
package sim
