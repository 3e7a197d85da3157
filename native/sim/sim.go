package sim

import (
	"sync"

	"github.com/cafebrew/cafe-runtime/errors"
	"github.com/cafebrew/cafe-runtime/native/internal/freelist"
)

// heapBase keeps pointer 0 unallocatable so it stays the failure sentinel.
const heapBase = 8

// Surface is a pure-Go simulation of a console's native capability surface:
// one flat heap with first-fit allocation, an environment lifecycle, and an
// abort primitive that records instead of terminating. It implements
// caferuntime.Surface and is the default backing for tests and host-side
// development.
type Surface struct {
	mu      sync.Mutex
	buf     []byte
	fl      *freelist.List
	inited  bool
	torn    bool
	aborted bool
	aborts  int
	abort   string
	initErr error
}

// New creates a surface with a heap of size bytes.
func New(size uint32) *Surface {
	if size < heapBase {
		size = heapBase
	}
	fl := freelist.New()
	fl.AddRegion(heapBase, size-heapBase)
	return &Surface{
		buf: make([]byte, size),
		fl:  fl,
	}
}

// FailInit makes the next Init call return err. Test hook.
func (s *Surface) FailInit(err error) { s.initErr = err }

// Alloc implements caferuntime.NativeHeap.
func (s *Surface) Alloc(size, align uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ptr, ok := s.fl.Alloc(size, align)
	if !ok {
		return 0
	}
	return ptr
}

// Realloc implements caferuntime.NativeHeap. Growth succeeds only when the
// span directly after the allocation is free and large enough; the adapter
// handles the move-and-copy fallback.
func (s *Surface) Realloc(ptr, oldSize, newSize, align uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case newSize == oldSize:
		return ptr
	case newSize < oldSize:
		s.fl.Free(ptr+newSize, oldSize-newSize)
		return ptr
	default:
		if s.fl.GrowInPlace(ptr, oldSize, newSize) {
			return ptr
		}
		return 0
	}
}

// Free implements caferuntime.NativeHeap.
func (s *Surface) Free(ptr, size, align uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fl.Free(ptr, size)
}

// Read implements caferuntime.Memory.
func (s *Surface) Read(offset, length uint32) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(offset)+uint64(length) > uint64(len(s.buf)) {
		return nil, errors.OutOfBounds(errors.PhaseNative, offset, length, uint32(len(s.buf)))
	}
	out := make([]byte, length)
	copy(out, s.buf[offset:offset+length])
	return out, nil
}

// Write implements caferuntime.Memory.
func (s *Surface) Write(offset uint32, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(offset)+uint64(len(data)) > uint64(len(s.buf)) {
		return errors.OutOfBounds(errors.PhaseNative, offset, uint32(len(data)), uint32(len(s.buf)))
	}
	copy(s.buf[offset:], data)
	return nil
}

// Size implements caferuntime.Memory.
func (s *Surface) Size() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint32(len(s.buf))
}

// Init implements caferuntime.Environment.
func (s *Surface) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initErr != nil {
		err := s.initErr
		s.initErr = nil
		return err
	}
	s.inited = true
	return nil
}

// Teardown implements caferuntime.Environment.
func (s *Surface) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.torn = true
}

// Abort implements caferuntime.Environment. Unlike a real console surface
// it returns, so the caller's post-abort behavior can be observed in tests.
func (s *Surface) Abort(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = true
	s.aborts++
	if s.abort == "" {
		s.abort = msg
	}
}

// FreeBytes returns the heap's current free space.
func (s *Surface) FreeBytes() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fl.FreeBytes()
}

// Fragments returns the number of free spans in the heap.
func (s *Surface) Fragments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fl.Spans()
}

// Initialized reports whether Init has been called.
func (s *Surface) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inited
}

// TornDown reports whether Teardown has been called.
func (s *Surface) TornDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.torn
}

// AbortState returns the recorded abort message and the number of Abort
// calls observed.
func (s *Surface) AbortState() (msg string, calls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.abort, s.aborts
}
