package proc

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/cafebrew/cafe-runtime/errors"
)

// PanicRecord describes an unrecoverable error captured at the boundary,
// just before the native abort primitive runs.
type PanicRecord struct {
	Message string
	Stack   []byte
}

// Run executes fn inside the panic boundary. A panic raised anywhere in
// fn's call stack is recovered here and never unwinds further, because the
// native SDK's call frames below are not unwind-safe. The boundary captures
// a PanicRecord, transitions the runtime to Aborted and invokes the native
// abort primitive exactly once, even when several call sites panic
// concurrently.
//
// On a conforming native environment the abort primitive does not return.
// With a hosted surface Run returns an aborted error instead, carrying the
// panic message.
//
// With the boundary disabled (WithPanicBoundary(false) or the cafe_nopanic
// build tag) the panic propagates to the host's own handler.
func Run(fn func()) error { return std.run(fn) }

// LastPanic returns the captured record after an abort on a hosted
// surface. The second return is false until the boundary has fired.
func LastPanic() (PanicRecord, bool) { return std.lastPanic() }

func (b *bridge) run(fn func()) (err error) {
	if b.current() != StateRunning {
		return errors.NotInitialized(errors.PhaseLifecycle, "runtime")
	}
	if !b.boundary {
		fn()
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = b.abort(r)
		}
	}()
	fn()
	return nil
}

// abort is the single place an unrecoverable error becomes a non-unwinding
// termination. The sync.Once is the single-entry guard: a second panic
// during the first's cleanup blocks here and never re-enters the native
// abort primitive.
func (b *bridge) abort(r any) error {
	b.abortOnce.Do(func() {
		n := runtime.Stack(b.stackBuf[:], false)
		b.record = PanicRecord{
			Message: panicMessage(r),
			Stack:   b.stackBuf[:n],
		}
		b.state.Store(int32(StateAborted))

		// Best-effort; the logger must not stand between the panic and
		// the native abort.
		func() {
			defer func() { _ = recover() }()
			Logger().Error("panic reached runtime boundary",
				zap.String("message", b.record.Message))
		}()

		b.env.Abort(b.record.Message)
	})
	return errors.Aborted(b.record.Message)
}

func (b *bridge) lastPanic() (PanicRecord, bool) {
	if b.current() != StateAborted {
		return PanicRecord{}, false
	}
	return b.record, true
}

// panicMessage renders the recovered value without trusting it: a broken
// Error or String method must not take down the abort path.
func panicMessage(r any) (msg string) {
	defer func() {
		if recover() != nil {
			msg = "panic: unprintable value"
		}
	}()
	switch v := r.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}
