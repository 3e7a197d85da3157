// Package errors provides structured error types for the cafe-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The taxonomy follows the runtime's failure model: exhausted
// errors are recoverable and returned, contract errors are raised on the
// panic path, and aborted errors describe the terminal state after the
// native abort primitive has been invoked.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.Exhausted(errors.PhaseAlloc, size, align)
//	err := errors.Contract(errors.PhaseCollections, "mutation during iteration")
//
// All errors implement the standard error interface and support errors.Is/As.
// Matching with errors.Is compares Phase and Kind, so sentinel targets can be
// constructed inline:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindExhausted}) {
//	    // retry with a smaller request
//	}
package errors
