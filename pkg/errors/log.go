package errors

import (
	"go.uber.org/zap"
)

// LogHandler is an ErrorHandler that writes to a zap logger.
type LogHandler struct {
	// Logger receives the entries. When nil the global zap logger is used.
	Logger *zap.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.L()
}

// HandleError logs an EngineError. Dispatch errors are warnings; every
// other kind is logged at error level.
func (h *LogHandler) HandleError(err *EngineError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
	}
	if err.Fiber != "" {
		fields = append(fields, zap.String("fiber", err.Fiber))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	if err.Kind == KindDispatch {
		h.logger().Warn("loom dispatch aborted", fields...)
		return
	}
	h.logger().Error("loom error", fields...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Any("value", err.Value),
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger().Error("loom panic", fields...)
}
