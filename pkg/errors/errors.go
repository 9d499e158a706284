// Package errors provides structured error handling for the loom engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindHost indicates a Host Adapter fault (invalid handle, bad portal target).
	KindHost
	// KindDispatch indicates a malformed or undeliverable event dispatch.
	KindDispatch
	// KindEffect indicates a failure raised by an effect body or cleanup.
	KindEffect
	// KindRender indicates a failure during a render pass.
	KindRender
	// KindConfig indicates invalid configuration.
	KindConfig
	// KindParsing indicates an element tree file could not be decoded.
	KindParsing
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindHost:
		return "host"
	case KindDispatch:
		return "dispatch"
	case KindEffect:
		return "effect"
	case KindRender:
		return "render"
	case KindConfig:
		return "config"
	case KindParsing:
		return "parsing"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

var (
	// ErrMissingTarget is reported when a native event arrives without a target node.
	ErrMissingTarget = errors.New("event has no target")
	// ErrTargetOutsideRoot is reported when a native event target is not under the root container.
	ErrTargetOutsideRoot = errors.New("event target is outside the root container")
	// ErrNilContainer is returned when a root is created without a container.
	ErrNilContainer = errors.New("root container is nil")
	// ErrNilPortalTarget is raised when a portal element carries a nil target.
	ErrNilPortalTarget = errors.New("portal target is nil")
)

// EngineError represents a structured error in the engine.
type EngineError struct {
	// Op is the operation that failed (e.g., "events.Dispatch").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Fiber is the identity of the fiber involved, if any.
	Fiber string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *EngineError) Error() string {
	if e.Fiber != "" {
		return fmt.Sprintf("%s [%s] fiber=%s: %v", e.Op, e.Kind, e.Fiber, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "scheduler.Run").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ParseError represents a failure to decode part of an element tree file.
type ParseError struct {
	// Path locates the offending node (e.g., "root.children[2]").
	Path string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s at %s: got %T", e.DataType, e.Path, e.Got)
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *EngineError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return errors.As(err, target) }
