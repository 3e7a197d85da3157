// Package freelist provides first-fit free-span bookkeeping over a flat
// address range. It backs the hosted capability surfaces; offsets are
// native heap pointers, sizes are bytes. The list itself lives in Go
// memory and never touches the managed range.
package freelist

import "sort"

type span struct {
	off  uint32
	size uint32
}

// List tracks free spans of a flat region, sorted by offset and coalesced.
// Not safe for concurrent use.
type List struct {
	spans []span
}

// New returns an empty list. Add regions with AddRegion before allocating.
func New() *List {
	return &List{spans: make([]span, 0, 16)}
}

// AddRegion marks [off, off+size) as free. Used for the initial region and
// after the underlying memory grows.
func (l *List) AddRegion(off, size uint32) {
	if size == 0 {
		return
	}
	l.insert(span{off: off, size: size})
}

// Alloc carves size bytes aligned to align out of the first span that fits.
// Returns the allocated offset, or false when no span can satisfy the
// request. align must be a power of two.
func (l *List) Alloc(size, align uint32) (uint32, bool) {
	for i := range l.spans {
		s := l.spans[i]
		aligned := (s.off + align - 1) &^ (align - 1)
		if aligned < s.off { // overflow
			continue
		}
		end := s.off + s.size
		if aligned+size < aligned || aligned+size > end {
			continue
		}

		// Carve [aligned, aligned+size), keeping front and tail remainders.
		l.spans = append(l.spans[:i], l.spans[i+1:]...)
		if front := aligned - s.off; front > 0 {
			l.insert(span{off: s.off, size: front})
		}
		if tail := end - (aligned + size); tail > 0 {
			l.insert(span{off: aligned + size, size: tail})
		}
		return aligned, true
	}
	return 0, false
}

// Free returns [off, off+size) to the list, coalescing with neighbors.
func (l *List) Free(off, size uint32) {
	if size == 0 {
		return
	}
	l.insert(span{off: off, size: size})
}

// GrowInPlace extends the allocation [off, off+oldSize) to newSize bytes by
// consuming the free span that starts exactly at its end, if one exists and
// is large enough. Returns false without changing state otherwise.
func (l *List) GrowInPlace(off, oldSize, newSize uint32) bool {
	if newSize <= oldSize {
		return false
	}
	need := newSize - oldSize
	end := off + oldSize
	i := sort.Search(len(l.spans), func(i int) bool { return l.spans[i].off >= end })
	if i == len(l.spans) || l.spans[i].off != end || l.spans[i].size < need {
		return false
	}
	if l.spans[i].size == need {
		l.spans = append(l.spans[:i], l.spans[i+1:]...)
	} else {
		l.spans[i].off += need
		l.spans[i].size -= need
	}
	return true
}

// FreeBytes returns the total free space tracked by the list.
func (l *List) FreeBytes() uint32 {
	var total uint32
	for _, s := range l.spans {
		total += s.size
	}
	return total
}

// LargestSpan returns the size of the largest contiguous free span.
func (l *List) LargestSpan() uint32 {
	var largest uint32
	for _, s := range l.spans {
		if s.size > largest {
			largest = s.size
		}
	}
	return largest
}

// Spans returns the number of free spans; useful for fragmentation checks.
func (l *List) Spans() int { return len(l.spans) }

// insert places s in offset order and merges it with adjacent spans.
func (l *List) insert(s span) {
	i := sort.Search(len(l.spans), func(i int) bool { return l.spans[i].off >= s.off })

	// Merge with predecessor.
	if i > 0 && l.spans[i-1].off+l.spans[i-1].size == s.off {
		l.spans[i-1].size += s.size
		// Merge predecessor with successor if they now touch.
		if i < len(l.spans) && l.spans[i-1].off+l.spans[i-1].size == l.spans[i].off {
			l.spans[i-1].size += l.spans[i].size
			l.spans = append(l.spans[:i], l.spans[i+1:]...)
		}
		return
	}

	// Merge with successor.
	if i < len(l.spans) && s.off+s.size == l.spans[i].off {
		l.spans[i].off = s.off
		l.spans[i].size += s.size
		return
	}

	l.spans = append(l.spans, span{})
	copy(l.spans[i+1:], l.spans[i:])
	l.spans[i] = s
}
