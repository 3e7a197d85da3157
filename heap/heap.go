package heap

import (
	"sync/atomic"

	caferuntime "github.com/cafebrew/cafe-runtime"
	"github.com/cafebrew/cafe-runtime/errors"
)

// MinAlign is the minimum alignment the native heap guarantees. Requests
// with a smaller alignment are rounded up to it.
const MinAlign = 4

// Block is an owned allocation obtained from a Heap. The zero Block is not
// valid; empty blocks produced by zero-size requests carry a dangling,
// aligned, non-zero pointer and are distinguishable via IsEmpty.
type Block struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// IsEmpty reports whether the block is the zero-size sentinel.
func (b Block) IsEmpty() bool { return b.Size == 0 }

// Stats reports the adapter's allocation bookkeeping.
type Stats struct {
	LiveBytes uint64 // bytes currently allocated through this adapter
	Allocs    uint64
	Frees     uint64
	Fails     uint64 // exhaustion failures surfaced to callers
}

// Heap is the allocator adapter: the sole mediator between application code
// and the native heap. It holds no state beyond the capability references
// and its statistics counters; locking is whatever the native heap already
// provides.
type Heap struct {
	native caferuntime.NativeHeap
	mem    caferuntime.Memory

	liveBytes atomic.Uint64
	allocs    atomic.Uint64
	frees     atomic.Uint64
	fails     atomic.Uint64
}

// New creates a heap adapter over a native heap. mem is used only for the
// copy fallback in Realloc and may be nil if the native heap always
// reallocates in place or callers never resize.
func New(native caferuntime.NativeHeap, mem caferuntime.Memory) *Heap {
	return &Heap{native: native, mem: mem}
}

// Alloc requests size bytes aligned to align. A zero size returns the empty
// sentinel without touching the native heap. Exhaustion is returned as a
// recoverable error; an alignment that is not a power of two panics, since
// that is a logic defect rather than a runtime resource condition.
func (h *Heap) Alloc(size, align uint32) (Block, error) {
	align = checkAlign(align)

	if size == 0 {
		return Block{Ptr: align, Size: 0, Align: align}, nil
	}

	ptr := h.native.Alloc(size, align)
	if ptr == 0 {
		h.fails.Add(1)
		return Block{}, errors.Exhausted(errors.PhaseAlloc, size, align)
	}

	h.liveBytes.Add(uint64(size))
	h.allocs.Add(1)
	return Block{Ptr: ptr, Size: size, Align: align}, nil
}

// Free releases a block back to the native heap. Freeing the empty sentinel
// is a no-op.
func (h *Heap) Free(b Block) {
	if b.IsEmpty() {
		return
	}
	h.native.Free(b.Ptr, b.Size, b.Align)
	h.liveBytes.Add(^uint64(b.Size - 1))
	h.frees.Add(1)
}

// Realloc grows or shrinks a block, preserving contents up to the minimum
// of the old and new sizes. The native realloc primitive is tried first;
// when it cannot satisfy the request the adapter falls back to
// allocate-new + copy + release-old. On error the original block remains
// valid and owned by the caller.
func (h *Heap) Realloc(b Block, newSize uint32) (Block, error) {
	if newSize == b.Size {
		return b, nil
	}
	if b.IsEmpty() {
		return h.Alloc(newSize, b.Align)
	}
	if newSize == 0 {
		h.Free(b)
		return Block{Ptr: b.Align, Size: 0, Align: b.Align}, nil
	}

	if ptr := h.native.Realloc(b.Ptr, b.Size, newSize, b.Align); ptr != 0 {
		h.liveBytes.Add(uint64(newSize) - uint64(b.Size))
		return Block{Ptr: ptr, Size: newSize, Align: b.Align}, nil
	}

	nb, err := h.Alloc(newSize, b.Align)
	if err != nil {
		return Block{}, err
	}
	if err := h.copy(b, nb); err != nil {
		h.Free(nb)
		return Block{}, err
	}
	h.Free(b)
	return nb, nil
}

func (h *Heap) copy(from, to Block) error {
	if h.mem == nil {
		return errors.NotInitialized(errors.PhaseAlloc, "memory capability for realloc copy")
	}
	n := min(from.Size, to.Size)
	data, err := h.mem.Read(from.Ptr, n)
	if err != nil {
		return errors.Wrap(errors.PhaseAlloc, errors.KindOutOfBounds, err, "realloc copy read")
	}
	if err := h.mem.Write(to.Ptr, data); err != nil {
		return errors.Wrap(errors.PhaseAlloc, errors.KindOutOfBounds, err, "realloc copy write")
	}
	return nil
}

// Memory returns the memory capability the adapter was built with, or nil.
func (h *Heap) Memory() caferuntime.Memory { return h.mem }

// Stats returns a snapshot of the adapter's counters.
func (h *Heap) Stats() Stats {
	return Stats{
		LiveBytes: h.liveBytes.Load(),
		Allocs:    h.allocs.Load(),
		Frees:     h.frees.Load(),
		Fails:     h.fails.Load(),
	}
}

// checkAlign validates the alignment contract and applies MinAlign. A
// non-power-of-two alignment panics with a contract error; the lifecycle
// boundary converts it into a native abort.
func checkAlign(align uint32) uint32 {
	if align == 0 {
		return MinAlign
	}
	if align&(align-1) != 0 {
		panic(errors.InvalidAlign(errors.PhaseAlloc, align))
	}
	if align < MinAlign {
		align = MinAlign
	}
	return align
}
