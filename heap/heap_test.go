package heap

import (
	"bytes"
	"testing"

	"github.com/cafebrew/cafe-runtime/errors"
	"github.com/cafebrew/cafe-runtime/native/sim"
)

func newTestHeap(t *testing.T, size uint32) (*Heap, *sim.Surface) {
	t.Helper()
	surface := sim.New(size)
	return New(surface, surface), surface
}

func TestHeap_AllocFreeRoundTrip(t *testing.T) {
	h, surface := newTestHeap(t, 4<<10)
	free := surface.FreeBytes()

	var blocks []Block
	for _, size := range []uint32{16, 64, 7, 128, 1} {
		b, err := h.Alloc(size, 8)
		if err != nil {
			t.Fatalf("Alloc(%d): %v", size, err)
		}
		if b.Ptr == 0 {
			t.Fatalf("Alloc(%d) returned null pointer", size)
		}
		if b.Ptr%8 != 0 {
			t.Fatalf("Alloc(%d) misaligned: ptr=%d", size, b.Ptr)
		}
		blocks = append(blocks, b)
	}

	for _, b := range blocks {
		h.Free(b)
	}
	if got := surface.FreeBytes(); got != free {
		t.Fatalf("free space after round trip: %d, want %d", got, free)
	}

	st := h.Stats()
	if st.LiveBytes != 0 {
		t.Fatalf("LiveBytes=%d after freeing everything", st.LiveBytes)
	}
	if st.Allocs != 5 || st.Frees != 5 {
		t.Fatalf("Allocs=%d Frees=%d, want 5/5", st.Allocs, st.Frees)
	}
}

func TestHeap_ZeroSizeSentinel(t *testing.T) {
	h, surface := newTestHeap(t, 1<<10)
	free := surface.FreeBytes()

	b, err := h.Alloc(0, 16)
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsEmpty() {
		t.Fatal("zero-size block not empty")
	}
	if b.Ptr != 16 {
		t.Fatalf("sentinel ptr=%d, want alignment value 16", b.Ptr)
	}
	if surface.FreeBytes() != free {
		t.Fatal("zero-size alloc touched the native heap")
	}

	h.Free(b)
	if st := h.Stats(); st.Allocs != 0 || st.Frees != 0 {
		t.Fatalf("sentinel counted in stats: %+v", st)
	}
}

func TestHeap_Exhaustion(t *testing.T) {
	h, _ := newTestHeap(t, 256)

	if _, err := h.Alloc(1<<20, 4); !errors.IsExhausted(err) {
		t.Fatalf("expected exhaustion, got %v", err)
	}

	// The heap stays usable after a failed allocation.
	b, err := h.Alloc(32, 4)
	if err != nil {
		t.Fatalf("small alloc after exhaustion: %v", err)
	}
	h.Free(b)

	if st := h.Stats(); st.Fails != 1 {
		t.Fatalf("Fails=%d, want 1", st.Fails)
	}
}

func TestHeap_ReallocPreservesContents(t *testing.T) {
	h, surface := newTestHeap(t, 4<<10)

	b, err := h.Alloc(32, 4)
	if err != nil {
		t.Fatal(err)
	}
	payload := bytes.Repeat([]byte{0xab}, 32)
	if err := surface.Write(b.Ptr, payload); err != nil {
		t.Fatal(err)
	}

	// An allocation right after b blocks in-place growth and forces the
	// copy fallback.
	blocker, err := h.Alloc(64, 4)
	if err != nil {
		t.Fatal(err)
	}

	nb, err := h.Realloc(b, 256)
	if err != nil {
		t.Fatal(err)
	}
	if nb.Size != 256 {
		t.Fatalf("Size=%d after grow", nb.Size)
	}
	got, err := surface.Read(nb.Ptr, 32)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("contents lost across realloc")
	}

	// Shrink keeps the prefix.
	sb, err := h.Realloc(nb, 8)
	if err != nil {
		t.Fatal(err)
	}
	got, err = surface.Read(sb.Ptr, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload[:8]) {
		t.Fatal("contents lost across shrink")
	}

	h.Free(sb)
	h.Free(blocker)
	if st := h.Stats(); st.LiveBytes != 0 {
		t.Fatalf("LiveBytes=%d after freeing everything", st.LiveBytes)
	}
}

func TestHeap_ReallocEdges(t *testing.T) {
	h, _ := newTestHeap(t, 1<<10)

	empty, err := h.Alloc(0, 4)
	if err != nil {
		t.Fatal(err)
	}

	// Empty-to-sized behaves like Alloc.
	b, err := h.Realloc(empty, 16)
	if err != nil {
		t.Fatal(err)
	}
	if b.IsEmpty() || b.Size != 16 {
		t.Fatalf("realloc from empty: %+v", b)
	}

	// Sized-to-zero behaves like Free and returns the sentinel.
	z, err := h.Realloc(b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !z.IsEmpty() {
		t.Fatal("realloc to zero did not return the empty sentinel")
	}
	if st := h.Stats(); st.LiveBytes != 0 {
		t.Fatalf("LiveBytes=%d", st.LiveBytes)
	}

	// Same-size realloc is a no-op.
	b2, err := h.Alloc(16, 4)
	if err != nil {
		t.Fatal(err)
	}
	same, err := h.Realloc(b2, 16)
	if err != nil {
		t.Fatal(err)
	}
	if same != b2 {
		t.Fatalf("same-size realloc moved the block: %+v -> %+v", b2, same)
	}
	h.Free(same)
}

func TestHeap_ReallocExhaustionKeepsBlock(t *testing.T) {
	surface := sim.New(256)
	h := New(surface, surface)

	b, err := h.Alloc(64, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := surface.Write(b.Ptr, bytes.Repeat([]byte{0x5a}, 64)); err != nil {
		t.Fatal(err)
	}

	if _, err := h.Realloc(b, 4<<10); !errors.IsExhausted(err) {
		t.Fatalf("expected exhaustion, got %v", err)
	}

	// The original block survives a failed resize.
	got, err := surface.Read(b.Ptr, 64)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, bytes.Repeat([]byte{0x5a}, 64)) {
		t.Fatal("original block damaged by failed realloc")
	}
	h.Free(b)
}

func TestHeap_AlignContract(t *testing.T) {
	h, _ := newTestHeap(t, 1<<10)

	// Zero and sub-minimum alignments round up to MinAlign.
	b, err := h.Alloc(8, 0)
	if err != nil {
		t.Fatal(err)
	}
	if b.Align != MinAlign {
		t.Fatalf("align=%d, want %d", b.Align, MinAlign)
	}
	h.Free(b)

	b, err = h.Alloc(8, 1)
	if err != nil {
		t.Fatal(err)
	}
	if b.Align != MinAlign {
		t.Fatalf("align=%d, want %d", b.Align, MinAlign)
	}
	h.Free(b)

	// A non-power-of-two alignment is a logic defect and panics.
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for align=3")
		}
		err, ok := r.(*errors.Error)
		if !ok || err.Kind != errors.KindInvalidAlign {
			t.Fatalf("unexpected panic value: %v", r)
		}
	}()
	_, _ = h.Alloc(8, 3)
}
