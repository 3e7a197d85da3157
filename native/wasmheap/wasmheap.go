package wasmheap

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/cafebrew/cafe-runtime/errors"
	"github.com/cafebrew/cafe-runtime/native/internal/freelist"
)

const (
	pageSize = 64 * 1024

	// heapBase keeps pointer 0 unallocatable so it stays the failure
	// sentinel.
	heapBase = 8
)

// memoryModule is a minimal WASM module exporting one linear memory of
// 1 page with no declared maximum; the runtime's page limit caps growth.
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory"
	0x02, 0x00, // kind: memory, index 0
}

// Config sizes the hosted heap.
type Config struct {
	// InitialPages is the heap size at startup in 64KB pages. 0 means 1.
	InitialPages uint32

	// MaxPages caps heap growth. 0 means 256 pages (16MB), a
	// console-sized budget.
	MaxPages uint32
}

// Heap is a hosted native capability surface whose heap is a WebAssembly
// linear memory: a single contiguous region with no virtual memory that
// can only grow, matching the console's memory model. It implements
// caferuntime.Surface.
type Heap struct {
	mu     sync.Mutex
	rt     wazero.Runtime
	mod    api.Module
	mem    api.Memory
	fl     *freelist.List
	inited bool
	torn   bool
	aborts int
	abort  string
	closed bool
}

// New instantiates the memory module and prepares the free list.
func New(ctx context.Context, cfg Config) (*Heap, error) {
	if cfg.InitialPages == 0 {
		cfg.InitialPages = 1
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = 256
	}
	if cfg.InitialPages > cfg.MaxPages {
		return nil, errors.Contract(errors.PhaseNative,
			"initial pages %d exceed max pages %d", cfg.InitialPages, cfg.MaxPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx,
		wazero.NewRuntimeConfig().WithMemoryLimitPages(cfg.MaxPages))

	mod, err := rt.Instantiate(ctx, memoryModule)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Environment("instantiate memory module", err)
	}

	mem := mod.Memory()
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.Environment("memory export missing", nil)
	}
	if cfg.InitialPages > 1 {
		if _, ok := mem.Grow(cfg.InitialPages - 1); !ok {
			_ = rt.Close(ctx)
			return nil, errors.Environment("grow to initial pages", nil)
		}
	}

	fl := freelist.New()
	fl.AddRegion(heapBase, mem.Size()-heapBase)

	return &Heap{rt: rt, mod: mod, mem: mem, fl: fl}, nil
}

// Alloc implements caferuntime.NativeHeap. When no free span fits, the
// linear memory grows by just enough pages; a zero return means the page
// limit is reached.
func (h *Heap) Alloc(size, align uint32) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}

	if ptr, ok := h.fl.Alloc(size, align); ok {
		return ptr
	}

	need := uint64(size) + uint64(align)
	pages := uint32((need + pageSize - 1) / pageSize)
	prevPages, ok := h.mem.Grow(pages)
	if !ok {
		return 0
	}
	h.fl.AddRegion(prevPages*pageSize, pages*pageSize)

	ptr, ok := h.fl.Alloc(size, align)
	if !ok {
		return 0
	}
	return ptr
}

// Realloc implements caferuntime.NativeHeap. Growth succeeds only in
// place; the adapter handles the move-and-copy fallback.
func (h *Heap) Realloc(ptr, oldSize, newSize, align uint32) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	switch {
	case newSize == oldSize:
		return ptr
	case newSize < oldSize:
		h.fl.Free(ptr+newSize, oldSize-newSize)
		return ptr
	default:
		if h.fl.GrowInPlace(ptr, oldSize, newSize) {
			return ptr
		}
		return 0
	}
}

// Free implements caferuntime.NativeHeap.
func (h *Heap) Free(ptr, size, align uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.fl.Free(ptr, size)
}

// Read implements caferuntime.Memory. The returned slice is a copy; the
// linear memory view may move on growth.
func (h *Heap) Read(offset, length uint32) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, errors.Closed(errors.PhaseNative, "wasm heap")
	}
	view, ok := h.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseNative, offset, length, h.mem.Size())
	}
	out := make([]byte, length)
	copy(out, view)
	return out, nil
}

// Write implements caferuntime.Memory.
func (h *Heap) Write(offset uint32, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.Closed(errors.PhaseNative, "wasm heap")
	}
	if !h.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseNative, offset, uint32(len(data)), h.mem.Size())
	}
	return nil
}

// Size implements caferuntime.Memory.
func (h *Heap) Size() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	return h.mem.Size()
}

// Init implements caferuntime.Environment.
func (h *Heap) Init() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.Closed(errors.PhaseNative, "wasm heap")
	}
	h.inited = true
	return nil
}

// Teardown implements caferuntime.Environment.
func (h *Heap) Teardown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.torn = true
}

// Abort implements caferuntime.Environment. Hosted surface: records the
// message and returns so the caller can observe the post-abort state.
func (h *Heap) Abort(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.aborted(msg)
}

func (h *Heap) aborted(msg string) {
	h.aborts++
	if h.abort == "" {
		h.abort = msg
	}
}

// FreeBytes returns the heap's current free space.
func (h *Heap) FreeBytes() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fl.FreeBytes()
}

// AbortState returns the recorded abort message and call count.
func (h *Heap) AbortState() (msg string, calls int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.abort, h.aborts
}

// Close releases the wazero runtime. The surface is unusable afterwards.
func (h *Heap) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.rt.Close(ctx)
}
