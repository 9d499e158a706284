package memhost

import "github.com/go-drift/loom/pkg/host"

// NativeEvent is the event object passed to native listeners.
type NativeEvent struct {
	typ     string
	target  *Node
	current *Node
	detail  any
	stopped bool
}

var _ host.Event = (*NativeEvent)(nil)

func (e *NativeEvent) Type() string { return e.typ }

func (e *NativeEvent) Target() host.Node {
	if e.target == nil {
		return nil
	}
	return e.target
}

func (e *NativeEvent) CurrentTarget() host.Node {
	if e.current == nil {
		return nil
	}
	return e.current
}

func (e *NativeEvent) Detail() any { return e.detail }

func (e *NativeEvent) StopPropagation() { e.stopped = true }

func (e *NativeEvent) PropagationStopped() bool { return e.stopped }

// Dispatch fires a native event at target. Capture listeners on the
// ancestors run from the outermost inward, then bubble listeners run from
// the target outward. Propagation stops at the first node after
// StopPropagation is called. It reports whether propagation was stopped.
func (d *Document) Dispatch(target *Node, eventType string, detail any) bool {
	ev := &NativeEvent{typ: eventType, target: target, detail: detail}

	var path []*Node
	for n := target; n != nil; n = n.parent {
		path = append(path, n)
	}

	for i := len(path) - 1; i >= 0; i-- {
		if fireListeners(path[i], ev, true) {
			return true
		}
	}
	for _, n := range path {
		if fireListeners(n, ev, false) {
			return true
		}
	}
	return false
}

// DispatchWithoutTarget fires a native event with a nil target at every
// listener on root. It models a platform event that cannot be attributed
// to a node.
func (d *Document) DispatchWithoutTarget(root *Node, eventType string) {
	ev := &NativeEvent{typ: eventType}
	fireListeners(root, ev, true)
	fireListeners(root, ev, false)
}

func fireListeners(n *Node, ev *NativeEvent, capture bool) bool {
	ev.current = n
	var fired []listener
	for _, l := range n.listeners {
		if l.event == ev.typ && l.opts.Capture == capture {
			fired = append(fired, l)
		}
	}
	for _, l := range fired {
		if l.opts.Once {
			removeOnce(n, l)
		}
		l.fn(ev)
	}
	return ev.stopped
}

func removeOnce(n *Node, target listener) {
	for i, l := range n.listeners {
		if l.event == target.event && l.opts == target.opts {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			return
		}
	}
}
