package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which layer of the runtime the error occurred in
type Phase string

const (
	PhaseAlloc       Phase = "alloc"       // allocator adapter
	PhaseCollections Phase = "collections" // hash map / hash set
	PhaseLifecycle   Phase = "lifecycle"   // process lifecycle bridge
	PhaseNative      Phase = "native"      // native capability surface
	PhaseResource    Phase = "resource"    // resource handle table
)

// Kind categorizes the error
type Kind string

const (
	KindExhausted      Kind = "exhausted"       // native heap out of memory, recoverable
	KindContract       Kind = "contract"        // programming-contract violation
	KindDoubleInit     Kind = "double_init"     // lifecycle initialized twice
	KindNotInitialized Kind = "not_initialized" // used before Init
	KindInvalidAlign   Kind = "invalid_align"   // alignment not a power of two or below minimum
	KindOutOfBounds    Kind = "out_of_bounds"   // native memory access outside the heap
	KindClosed         Kind = "closed"          // operation on a released object
	KindAborted        Kind = "aborted"         // process terminated through the abort primitive
	KindEnvironment    Kind = "environment"     // native environment call failed
)

// Error is the structured error type used throughout the runtime layer
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two Errors match when their
// Phase and Kind are equal, so callers can test against a bare
// &Error{Phase: ..., Kind: ...} with errors.Is.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// Exhausted creates a recoverable heap-exhaustion error
func Exhausted(phase Phase, size, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExhausted,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// IsExhausted reports whether err is a heap-exhaustion error from any phase
func IsExhausted(err error) bool {
	return IsKind(err, KindExhausted)
}

// IsKind reports whether the first *Error in err's chain has the given kind
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Contract creates a programming-contract violation error. These are raised
// on the panic path, not returned.
func Contract(phase Phase, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindContract,
		Detail: detail,
	}
}

// DoubleInit creates the error returned by a second lifecycle Init call
func DoubleInit() *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindDoubleInit,
		Detail: "runtime already initialized",
	}
}

// NotInitialized creates a not-initialized error for a missing capability
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", what),
	}
}

// InvalidAlign creates an invalid-alignment error
func InvalidAlign(phase Phase, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidAlign,
		Detail: fmt.Sprintf("alignment %d is not a supported power of two", align),
		Value:  align,
	}
}

// OutOfBounds creates an out-of-bounds native memory access error
func OutOfBounds(phase Phase, offset, length, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("access at %d+%d outside heap of %d bytes", offset, length, size),
		Value:  offset,
	}
}

// Closed creates an error for operations on a released object
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// Aborted creates the terminal error describing a panic-driven abort
func Aborted(msg string) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindAborted,
		Detail: msg,
	}
}

// Environment wraps a failure from a native environment call
func Environment(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseNative,
		Kind:   KindEnvironment,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
