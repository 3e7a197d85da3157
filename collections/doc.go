// Package collections provides the associative containers of the runtime
// layer: an open-addressing hash map and hash set tuned for a constrained,
// single-heap target.
//
// # Design
//
// All entries live in one contiguous slot array whose length is a power of
// two, so probing uses mask-based indexing. Collisions are resolved by
// linear probing; insert, lookup and delete share the probe sequence.
// Deleting marks the slot as a tombstone rather than empty, keeping probe
// chains for other keys intact. Tombstones count toward the load factor
// until a rehash compacts them away.
//
// The slot array grows by doubling once occupied+tombstone slots would
// exceed 7/8 of the table. Rehashing is the only operation that is O(n)
// worst case; everything else is amortized constant.
//
// # Capabilities
//
// Tables are parameterized over a hashing capability (hasher.Hasher) and an
// allocation capability (Backing). With a heap-backed table, growth charges
// the slot storage against the native heap and an exhausted heap surfaces
// as a recoverable error from Put/Add, never a silent drop. The default
// pairing for the embedded target is the fixed hashers in package hasher
// plus a *heap.Heap backing.
//
// # Restrictions
//
// Tables are not synchronized; concurrent use from multiple goroutines,
// including readers overlapping a rehash, requires external mutual
// exclusion. Mutating a table while ranging over All or Keys is forbidden
// and is not guarded against at runtime.
package collections
