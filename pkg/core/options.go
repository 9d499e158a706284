package core

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/go-drift/loom/pkg/scheduler"
)

// PassStats summarizes one render pass.
type PassStats struct {
	// Rendered counts component bodies invoked.
	Rendered int
	// Skipped counts subtrees carried over without re-rendering.
	Skipped int
	// Mounted counts fibers created.
	Mounted int
	// Removed counts fibers torn down.
	Removed int
	// Moved counts existing fibers repositioned in the host tree.
	Moved int
}

// PassObserver is notified after every render pass. pkg/metrics
// implements it.
type PassObserver interface {
	ObservePass(target string, elapsed time.Duration, stats PassStats)
}

// Option configures a Root.
type Option func(*Root)

// WithLoop runs the root on an existing loop. Roots sharing a loop share
// its microtask and work queues.
func WithLoop(l *scheduler.Loop) Option {
	return func(r *Root) { r.loop = l }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Root) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics registers a pass observer.
func WithMetrics(o PassObserver) Option {
	return func(r *Root) { r.observer = o }
}

// WithTracer sets the tracer used for render pass spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Root) {
		if t != nil {
			r.tracer = t
		}
	}
}
