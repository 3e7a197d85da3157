// Package resource implements a handle table for opaque native resources.
//
// Subsystems that hand objects across the native boundary refer to them by
// small integer handles rather than pointers. The table owns the
// handle-to-value mapping, reuses freed handles, runs optional destructors
// on removal, and notifies observers of lifecycle events.
//
// The table is built on the collections hash map, so its storage can be
// charged against the native heap like any other container in the runtime
// layer.
package resource
