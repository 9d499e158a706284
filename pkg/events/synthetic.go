package events

import "github.com/go-drift/loom/pkg/host"

// SyntheticEvent wraps a native event while it is replayed through the
// component handlers of the dispatch path.
type SyntheticEvent struct {
	native  host.Event
	target  host.Node
	current host.Node
	stopped bool
}

var _ host.Event = (*SyntheticEvent)(nil)

func (e *SyntheticEvent) Type() string { return e.native.Type() }

func (e *SyntheticEvent) Target() host.Node { return e.target }

// CurrentTarget is the node whose handler is running.
func (e *SyntheticEvent) CurrentTarget() host.Node { return e.current }

func (e *SyntheticEvent) Detail() any { return e.native.Detail() }

// StopPropagation stops the replay and forwards to the native event.
func (e *SyntheticEvent) StopPropagation() {
	e.stopped = true
	e.native.StopPropagation()
}

func (e *SyntheticEvent) PropagationStopped() bool { return e.stopped }

// Native returns the wrapped platform event.
func (e *SyntheticEvent) Native() host.Event { return e.native }
