//go:build cafe_nopanic

package proc

const defaultPanicBoundary = false
