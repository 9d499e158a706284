package errors

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEngineErrorString(t *testing.T) {
	err := &EngineError{
		Op:   "core.commit",
		Kind: KindHost,
		Err:  ErrNilPortalTarget,
	}
	got := err.Error()
	want := "core.commit [host]: portal target is nil"
	if got != want {
		t.Errorf("EngineError.Error() = %q, want %q", got, want)
	}
}

func TestEngineErrorWithFiber(t *testing.T) {
	err := &EngineError{
		Op:    "events.Dispatch",
		Kind:  KindDispatch,
		Fiber: "app:ul_0",
		Err:   ErrMissingTarget,
	}
	got := err.Error()
	if !strings.Contains(got, "fiber=app:ul_0") {
		t.Errorf("error string %q should contain fiber identity", got)
	}
	if !Is(err, ErrMissingTarget) {
		t.Error("EngineError should unwrap to its cause")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindHost, "host"},
		{KindDispatch, "dispatch"},
		{KindEffect, "effect"},
		{KindRender, "render"},
		{KindConfig, "config"},
		{KindParsing, "parsing"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "scheduler.Run"
	if got, want := err.Error(), "panic in scheduler.Run: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("effect failed")
	err := &PanicError{Value: cause}
	if !Is(err, cause) {
		t.Error("PanicError should unwrap an error panic value")
	}
	if (&PanicError{Value: 42}).Unwrap() != nil {
		t.Error("non-error panic values should not unwrap")
	}
}

func TestParseErrorString(t *testing.T) {
	err := &ParseError{
		Path:     "root.children[1]",
		DataType: "element",
		Got:      123,
	}
	want := "failed to parse element at root.children[1]: got int"
	if got := err.Error(); got != want {
		t.Errorf("ParseError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *EngineError
	SetHandler(&testHandler{onError: func(err *EngineError) { captured = err }})
	defer SetHandler(nil)

	Report(&EngineError{
		Op:   "test.op",
		Kind: KindRender,
		Err:  ErrNilContainer,
	})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestFromPanic(t *testing.T) {
	fault := &EngineError{Op: "core.commit", Kind: KindHost, Err: ErrNilPortalTarget, Fiber: "app:modal"}
	err := FromPanic("loom.render", fault)
	if err != error(fault) {
		t.Fatalf("engine faults should come back unchanged, got %T", err)
	}
	if fault.StackTrace == "" || fault.Timestamp.IsZero() {
		t.Error("expected stack and timestamp to be filled in")
	}

	err = FromPanic("loom.render", "boom")
	var pe *PanicError
	if !As(err, &pe) {
		t.Fatalf("expected PanicError, got %T", err)
	}
	if pe.Op != "loom.render" || pe.Value != "boom" {
		t.Errorf("unexpected panic error %+v", pe)
	}
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		wantError bool
	}{
		{"engine fault", &EngineError{Op: "core.render", Kind: KindRender, Err: ErrNilContainer, Fiber: "app:Row_0"}, true},
		{"plain value", "task failed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs []*EngineError
			var panics []*PanicError
			SetHandler(&testHandler{
				onError: func(err *EngineError) { errs = append(errs, err) },
				onPanic: func(err *PanicError) { panics = append(panics, err) },
			})
			defer SetHandler(nil)

			var got error
			func() {
				defer Guard("scheduler.tick", func(err error) { got = err })
				panic(tt.value)
			}()

			if got == nil {
				t.Fatal("onPanic was not called")
			}
			if tt.wantError {
				if len(errs) != 1 || len(panics) != 0 {
					t.Fatalf("errors=%d panics=%d, want 1/0", len(errs), len(panics))
				}
				if errs[0].Fiber != "app:Row_0" {
					t.Errorf("fiber identity lost: %q", errs[0].Fiber)
				}
				return
			}
			if len(errs) != 0 || len(panics) != 1 {
				t.Fatalf("errors=%d panics=%d, want 0/1", len(errs), len(panics))
			}
			if panics[0].Op != "scheduler.tick" {
				t.Errorf("Op = %q", panics[0].Op)
			}
		})
	}
}

func TestGuardWithoutPanic(t *testing.T) {
	called := false
	func() {
		defer Guard("noop", func(error) { called = true })
	}()
	if called {
		t.Error("onPanic should not run without a panic")
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if !strings.Contains(stack, "testing.tRunner") {
		t.Errorf("stack trace should contain the test runner, got: %s", stack)
	}
	if strings.Contains(stack, "runtime.") {
		t.Errorf("runtime frames should be left out, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", Handler())
	}
}

func TestLogHandlerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := &LogHandler{Logger: zap.New(core)}

	h.HandleError(&EngineError{Op: "events.Dispatch", Kind: KindDispatch, Err: ErrMissingTarget})
	h.HandleError(&EngineError{Op: "core.commit", Kind: KindHost, Err: ErrNilPortalTarget, Fiber: "root:div_0"})
	h.HandlePanic(&PanicError{Op: "scheduler.Run", Value: "boom"})

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("dispatch errors should log at warn, got %s", entries[0].Level)
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("host errors should log at error, got %s", entries[1].Level)
	}
	if entries[1].ContextMap()["fiber"] != "root:div_0" {
		t.Errorf("expected fiber field, got %v", entries[1].ContextMap())
	}
	if entries[2].Message != "loom panic" {
		t.Errorf("unexpected panic message %q", entries[2].Message)
	}
}

type testHandler struct {
	onError func(*EngineError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *EngineError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
