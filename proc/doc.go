// Package proc is the runtime lifecycle bridge between Go application code
// and the native environment.
//
// The bridge owns a process-wide state machine:
//
//	Uninitialized -> Running -> ShuttingDown        (orderly, Shutdown)
//	                 Running -> Aborted             (panic boundary)
//
// Init and Shutdown are the only orderly transition points; the panic
// boundary (Run) is the only unrecoverable one. State transitions are
// single-writer (the console's cooperative environment has one logical
// thread of application control), but the abort path is guarded so
// that concurrent panics from multiple goroutines cannot re-enter the
// native abort primitive.
//
// The bridge never lets a panic unwind across native call frames: Run
// recovers at the outermost point the runtime controls, converts the panic
// into a PanicRecord and terminates through the native abort primitive.
// ShuttingDown and Aborted are terminal; the process does not resume.
package proc
