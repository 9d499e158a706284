// Package events implements event delegation for a render root.
//
// Components never get native listeners of their own. The Host keeps a
// handler table per node (see host.DiffAttrs), and a Delegator installs a
// single native listener per event name on the root container. When a
// native event reaches the container, the delegator walks from the target
// up to the container and replays the component handlers it finds:
// capture handlers outermost first, then bubble handlers innermost first.
package events

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/loom/pkg/errors"
	"github.com/go-drift/loom/pkg/host"
)

// Delegator routes native events on a container to component handlers.
// It is not safe for concurrent use.
type Delegator struct {
	container host.Node
	host      host.Host
	logger    *zap.Logger
	events    map[string]bool
}

// NewDelegator creates a delegator for container. No listener is
// installed until Listen is called.
func NewDelegator(container host.Node, h host.Host, logger *zap.Logger) *Delegator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Delegator{
		container: container,
		host:      h,
		logger:    logger,
		events:    make(map[string]bool),
	}
}

// Listen installs the container listener for event. Repeated calls are
// no-ops.
func (d *Delegator) Listen(event string) {
	if d.events[event] {
		return
	}
	d.events[event] = true
	d.host.AddEventListener(d.container, event, host.ListenerOptions{}, d.dispatch)
	d.logger.Debug("delegated listener installed", zap.String("event", event))
}

// Events returns the delegated event names, sorted.
func (d *Delegator) Events() []string {
	names := make([]string, 0, len(d.events))
	for name := range d.events {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close removes every container listener.
func (d *Delegator) Close() {
	for _, name := range d.Events() {
		d.host.RemoveEventListener(d.container, name, host.ListenerOptions{})
	}
	clear(d.events)
}

// Dispatch replays native through the component handlers between its
// target and the container. It is the container listener, exported for
// hosts that deliver events themselves.
func (d *Delegator) Dispatch(native host.Event) {
	d.dispatch(native)
}

func (d *Delegator) dispatch(native host.Event) {
	target := native.Target()
	if target == nil {
		d.abort(native, errors.ErrMissingTarget)
		return
	}
	path, ok := d.path(target)
	if !ok {
		d.abort(native, errors.ErrTargetOutsideRoot)
		return
	}

	ev := &SyntheticEvent{native: native, target: target}
	for i := len(path) - 1; i >= 0; i-- {
		if d.fire(path[i], ev, true) {
			return
		}
	}
	for _, n := range path {
		if d.fire(n, ev, false) {
			return
		}
	}
}

// path lists the nodes from target up to, but not including, the
// container. ok is false when the container is not an ancestor.
func (d *Delegator) path(target host.Node) (path []host.Node, ok bool) {
	for n := target; n != nil; n = d.host.Parent(n) {
		if n == d.container {
			return path, true
		}
		path = append(path, n)
	}
	return nil, false
}

// fire runs n's handler for the event's phase and reports whether
// propagation was stopped.
func (d *Delegator) fire(n host.Node, ev *SyntheticEvent, capture bool) bool {
	table := d.host.Handlers(n)
	key := host.HandlerKey{Event: ev.Type(), Capture: capture}
	h, ok := table[key]
	if !ok || h == nil || h.Fn == nil {
		return false
	}
	if h.Options.Once {
		delete(table, key)
	}
	ev.current = n
	h.Fn(ev)
	return ev.stopped
}

func (d *Delegator) abort(native host.Event, err error) {
	errors.Report(&errors.EngineError{
		Op:        "events.Dispatch",
		Kind:      errors.KindDispatch,
		Err:       err,
		Timestamp: time.Now(),
	})
	d.logger.Debug("dispatch aborted", zap.String("event", native.Type()), zap.Error(err))
}
