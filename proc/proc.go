package proc

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	caferuntime "github.com/cafebrew/cafe-runtime"
	"github.com/cafebrew/cafe-runtime/errors"
)

// State is the lifecycle state of the process-wide runtime bridge.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StateShuttingDown
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// bridge owns the process-wide lifecycle state. Application code never
// touches it directly; all access goes through the package-level API, and
// mutation happens only at the designated transition points (Init,
// Shutdown, the panic boundary).
type bridge struct {
	state     atomic.Int32
	env       caferuntime.Environment
	boundary  bool
	abortOnce sync.Once
	record    PanicRecord

	// Pre-reserved buffer for the panic stack capture. The cleanup path
	// must not allocate through the allocator adapter, which on the real
	// target backs all allocation; a panic caused by heap exhaustion
	// still gets its record.
	stackBuf [8 << 10]byte
}

var std = newBridge()

func newBridge() *bridge {
	return &bridge{boundary: defaultPanicBoundary}
}

// Option configures the bridge at Init time.
type Option func(*bridge)

// WithPanicBoundary enables or disables the panic-to-abort boundary, for
// hosts that install their own. The build tag cafe_nopanic flips the
// default.
func WithPanicBoundary(enabled bool) Option {
	return func(b *bridge) { b.boundary = enabled }
}

// Init brings up the native environment and transitions the runtime from
// Uninitialized to Running. It is callable exactly once per process; a
// second call fails with a double_init error and leaves the Running state
// untouched.
func Init(env caferuntime.Environment, opts ...Option) error {
	return std.init(env, opts...)
}

// Shutdown runs the orderly teardown path: Running to ShuttingDown, then
// the native teardown primitive. ShuttingDown is terminal; the process is
// expected to exit afterwards.
func Shutdown() error { return std.shutdown() }

// Running reports whether the runtime is in the Running state.
func Running() bool { return std.current() == StateRunning }

// Current returns the bridge's lifecycle state.
func Current() State { return std.current() }

func (b *bridge) current() State {
	return State(b.state.Load())
}

func (b *bridge) init(env caferuntime.Environment, opts ...Option) error {
	if env == nil {
		panic(errors.Contract(errors.PhaseLifecycle, "nil environment"))
	}
	if !b.state.CompareAndSwap(int32(StateUninitialized), int32(StateRunning)) {
		return errors.DoubleInit()
	}
	for _, opt := range opts {
		opt(b)
	}
	b.env = env

	if err := env.Init(); err != nil {
		b.state.Store(int32(StateUninitialized))
		b.env = nil
		return errors.Environment("environment init", err)
	}

	Logger().Info("runtime initialized",
		zap.Bool("panic_boundary", b.boundary))
	return nil
}

func (b *bridge) shutdown() error {
	if !b.state.CompareAndSwap(int32(StateRunning), int32(StateShuttingDown)) {
		switch b.current() {
		case StateUninitialized:
			return errors.NotInitialized(errors.PhaseLifecycle, "runtime")
		default:
			return errors.Contract(errors.PhaseLifecycle,
				"shutdown from state %s", b.current())
		}
	}

	Logger().Info("runtime shutting down")
	b.env.Teardown()
	return nil
}
