package caferuntime

// Memory provides byte-level access to native heap memory. Offsets are
// native heap pointers as returned by NativeHeap.Alloc.
type Memory interface {
	// Read returns a copy of length bytes starting at offset.
	Read(offset uint32, length uint32) ([]byte, error)

	// Write copies data into native memory starting at offset.
	Write(offset uint32, data []byte) error

	// Size returns the current size of the native heap region in bytes.
	Size() uint32
}

// NativeHeap is the raw allocation surface of the native environment.
// A zero return from Alloc or Realloc signals heap exhaustion; the native
// heap never hands out pointer 0 for a successful allocation.
type NativeHeap interface {
	// Alloc returns a pointer to size bytes aligned to align, or 0.
	Alloc(size, align uint32) uint32

	// Realloc resizes an existing allocation in place when the native heap
	// supports it. Returns the (possibly moved) pointer, or 0 if the native
	// heap cannot satisfy the request; the original allocation is untouched
	// on failure.
	Realloc(ptr, oldSize, newSize, align uint32) uint32

	// Free releases an allocation. The size and align must match the values
	// the block was allocated with.
	Free(ptr, size, align uint32)
}

// Environment is the process lifecycle surface of the native environment.
type Environment interface {
	// Init brings up the native environment. Called exactly once per
	// process, before any other native call.
	Init() error

	// Teardown shuts the native environment down in an orderly fashion.
	Teardown()

	// Abort terminates the process through the native abort primitive.
	// On a conforming native environment Abort never returns; test
	// environments may record the message and return instead.
	Abort(msg string)
}

// Surface is a complete Native Capability Surface: heap, memory access and
// process lifecycle. The sim and wasmheap packages provide hosted
// implementations; on a real console target the surface wraps the SDK's
// C ABI bindings.
type Surface interface {
	NativeHeap
	Memory
	Environment
}
