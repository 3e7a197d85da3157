//go:build !cafe_nopanic

package proc

// defaultPanicBoundary controls whether Run installs the panic-to-abort
// boundary when no explicit option is given. Hosts that supply their own
// panic handling build with -tags cafe_nopanic.
const defaultPanicBoundary = true
