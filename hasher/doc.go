// Package hasher provides the fixed hashing strategies used by the
// collection layer.
//
// The hashers are chosen for speed on an embedded CPU rather than
// DoS-resistance: there is no per-process random seed, so hash values are
// reproducible within a run. Integer keys go through a splitmix64 finalizer;
// string and byte keys through FNV-1a with the same finalizer for avalanche.
package hasher
