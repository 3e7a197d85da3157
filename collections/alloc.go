package collections

import (
	"github.com/cafebrew/cafe-runtime/heap"
)

// Backing supplies the native-heap reservation for a table's slot array.
// *heap.Heap satisfies it directly. The table owns the returned block and
// releases it on rehash and Close.
type Backing interface {
	Alloc(size, align uint32) (heap.Block, error)
	Free(b heap.Block)
}

// unmanaged is the default backing for hosts without a native heap budget:
// slot storage is charged to nothing and never fails.
type unmanaged struct{}

func (unmanaged) Alloc(size, align uint32) (heap.Block, error) {
	return heap.Block{Ptr: align, Size: 0, Align: align}, nil
}

func (unmanaged) Free(heap.Block) {}

// Unmanaged returns a backing that performs no native reservation. Tables
// built with it can never fail an insert.
func Unmanaged() Backing { return unmanaged{} }
