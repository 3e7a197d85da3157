// Package caferuntime provides the runtime abstraction layer for writing
// memory-safe Go code against a console-style native environment: a single
// shared heap, no virtual memory, and an abort-only failure model.
//
// The library sits between a raw native capability surface (heap alloc/free,
// environment init/teardown, process abort) and application code. Application
// code allocates through the adapter, uses the associative containers, and
// panics normally; every underlying operation executes through the native
// heap, and an unrecoverable panic is converted into a controlled native
// abort instead of unwinding into call frames the runtime does not own.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	caferuntime/      Root package with the Memory, NativeHeap, Environment
//	                  and Surface capability interfaces
//	├── heap/         Allocator adapter over a NativeHeap (blocks, realloc
//	                  fallback, allocation statistics)
//	├── hasher/       Fixed, non-seeded hashing strategies for the
//	                  collection layer
//	├── collections/  Open-addressing hash map and set parameterized by
//	                  hasher and heap backing
//	├── proc/         Process lifecycle bridge and the panic-to-abort
//	                  boundary
//	├── rrc/          Reference-counted init/deinit for native resources
//	├── resource/     Handle table for opaque native resources
//	├── native/sim/   Pure-Go simulated capability surface for tests and
//	                  host-side development
//	├── native/wasmheap/  Hosted surface backed by a WebAssembly linear
//	                  memory (wazero)
//	└── errors/       Structured error types
//
// # Quick Start
//
// Bring up the runtime over a surface and run application code inside the
// panic boundary:
//
//	surface := sim.New(8 << 20)
//	if err := proc.Init(surface); err != nil {
//	    log.Fatal(err)
//	}
//
//	h := heap.New(surface, surface)
//	m := collections.NewMap[string, uint32](hasher.String(), collections.WithBacking(h))
//	defer m.Close()
//
//	err := proc.Run(func() {
//	    if _, _, err := m.Put("mario", 64); err != nil {
//	        // native heap exhausted; recoverable
//	    }
//	})
//
// # Failure Model
//
// Heap exhaustion is a recoverable, typed error returned from Alloc, Realloc
// and Put. Contract violations (double Init, misaligned requests) panic.
// Any panic reaching the proc boundary terminates the process through the
// native abort primitive; it is never swallowed and never unwinds further.
//
// # Thread Safety
//
// The collection layer provides no built-in synchronization; callers sharing
// a table across goroutines must serialize access themselves. Lifecycle
// transitions in proc are single-writer by design and guarded against
// concurrent aborts.
package caferuntime
