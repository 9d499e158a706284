package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

type handlerBox struct{ h ErrorHandler }

var current atomic.Pointer[handlerBox]

func init() {
	current.Store(&handlerBox{h: &LogHandler{}})
}

// SetHandler installs the process-wide error handler. Pass nil to restore
// a LogHandler on the global zap logger.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	current.Store(&handlerBox{h: h})
}

// Handler returns the installed error handler.
func Handler() ErrorHandler {
	return current.Load().h
}

// Report sends err to the installed handler, stamping it if needed.
func Report(err *EngineError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// ReportPanic sends a recovered panic to the installed handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandlePanic(err)
}

// FromPanic turns a recovered value into an error. Engine faults raised
// with panic(*EngineError), such as a failing component or a nil portal
// target, come back as themselves with a stack attached; anything else
// becomes a PanicError for op.
func FromPanic(op string, v any) error {
	if ee, ok := v.(*EngineError); ok {
		if ee.StackTrace == "" {
			ee.StackTrace = CaptureStack()
		}
		if ee.Timestamp.IsZero() {
			ee.Timestamp = time.Now()
		}
		return ee
	}
	return &PanicError{
		Op:         op,
		Value:      v,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
}

// Guard recovers a panic in the deferring function, reports it and, when
// onPanic is set, hands it the converted error. Engine faults go to
// HandleError so their kind and fiber are kept; other values go to
// HandlePanic.
//
//	defer errors.Guard("scheduler.tick", func(error) { ran = true })
func Guard(op string, onPanic func(error)) {
	r := recover()
	if r == nil {
		return
	}
	err := FromPanic(op, r)
	switch e := err.(type) {
	case *EngineError:
		Report(e)
	case *PanicError:
		ReportPanic(e)
	}
	if onPanic != nil {
		onPanic(err)
	}
}

// CaptureStack returns the caller's stack, one "function\n\tfile:line"
// entry per frame. Runtime frames and this package's own frames are left
// out.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(2, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if !internalFrame(frame.Function) {
			sb.WriteString(frame.Function)
			sb.WriteString("\n\t")
			sb.WriteString(frame.File)
			sb.WriteString(":")
			sb.WriteString(strconv.Itoa(frame.Line))
			sb.WriteString("\n")
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func internalFrame(fn string) bool {
	return strings.HasPrefix(fn, "runtime.") ||
		strings.HasPrefix(fn, "github.com/go-drift/loom/pkg/errors.")
}
