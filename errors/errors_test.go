package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseAlloc,
				Kind:   KindExhausted,
				Detail: "failed to allocate 64 bytes",
			},
			contains: []string{"[alloc]", "exhausted", "failed to allocate 64 bytes"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLifecycle,
				Kind:  KindDoubleInit,
			},
			contains: []string{"[lifecycle]", "double_init"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseNative,
				Kind:   KindEnvironment,
				Detail: "environment init",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[native]", "environment", "environment init", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("expected %q in %q", s, msg)
				}
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := Exhausted(PhaseCollections, 1024, 8)

	if !errors.Is(err, &Error{Phase: PhaseCollections, Kind: KindExhausted}) {
		t.Error("expected match on same phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseAlloc, Kind: KindExhausted}) {
		t.Error("expected no match on different phase")
	}
	if errors.Is(err, &Error{Phase: PhaseCollections, Kind: KindContract}) {
		t.Error("expected no match on different kind")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Environment("init failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestIsExhausted(t *testing.T) {
	direct := Exhausted(PhaseAlloc, 16, 4)
	if !IsExhausted(direct) {
		t.Error("expected direct exhausted error to match")
	}

	wrapped := Wrap(PhaseCollections, KindExhausted, direct, "rehash failed")
	if !IsExhausted(wrapped) {
		t.Error("expected wrapped exhausted error to match")
	}

	if IsExhausted(Contract(PhaseAlloc, "bad align")) {
		t.Error("contract error should not match")
	}
	if IsExhausted(nil) {
		t.Error("nil should not match")
	}
	if IsExhausted(errors.New("plain")) {
		t.Error("plain error should not match")
	}
}

func TestConstructors(t *testing.T) {
	if e := DoubleInit(); e.Kind != KindDoubleInit || e.Phase != PhaseLifecycle {
		t.Errorf("DoubleInit: unexpected %v", e)
	}
	if e := InvalidAlign(PhaseAlloc, 3); e.Value != uint32(3) {
		t.Errorf("InvalidAlign: expected value 3, got %v", e.Value)
	}
	if e := Contract(PhaseAlloc, "got %d", 7); !strings.Contains(e.Detail, "got 7") {
		t.Errorf("Contract: formatting failed: %q", e.Detail)
	}
	if e := OutOfBounds(PhaseNative, 100, 8, 64); !strings.Contains(e.Error(), "100+8") {
		t.Errorf("OutOfBounds: unexpected %v", e)
	}
	if e := NotInitialized(PhaseLifecycle, "runtime"); !strings.Contains(e.Detail, "runtime") {
		t.Errorf("NotInitialized: unexpected %v", e)
	}
	if e := Closed(PhaseResource, "table"); e.Kind != KindClosed {
		t.Errorf("Closed: unexpected %v", e)
	}
	if e := Aborted("panic: boom"); e.Kind != KindAborted {
		t.Errorf("Aborted: unexpected %v", e)
	}
}
