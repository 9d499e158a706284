// Package host defines the boundary between the reconciliation engine and
// the platform that owns the real renderable tree.
//
// The engine never touches platform objects directly. It asks a Host to
// create leaf (text/comment) nodes, structural (tagged) nodes and
// fragments, to patch them, and to splice them into place. A browser
// binding would implement Host over the DOM; package memhost implements it
// in memory for tests and tooling.
//
// # Prop Conventions
//
// DiffAttrs turns a pair of prop maps into an attribute patch and a
// handler table, following markup attribute rules:
//
//   - children, key, ref and target are engine props, never attributes
//   - on<Name> props are event handlers (see ParseEventName)
//   - nil removes an attribute; false removes it too
//   - special boolean attributes are written as "" when truthy
package host

// Node is an opaque handle to a host object. Only the Host that created a
// node may interpret it.
type Node any

// LeafKind distinguishes the two leaf node categories.
type LeafKind int

const (
	// LeafText is a text node.
	LeafText LeafKind = iota
	// LeafComment is a comment node.
	LeafComment
)

func (k LeafKind) String() string {
	if k == LeafComment {
		return "comment"
	}
	return "text"
}

// ListenerOptions mirrors the options of a native event listener.
type ListenerOptions struct {
	Capture bool
	Once    bool
	Passive bool
}

// Event is the view of an event seen by handlers. Native events from a
// Host and the engine's synthetic wrapper both implement it.
type Event interface {
	// Type is the event name without the "on" prefix, e.g. "click".
	Type() string
	// Target is the node the event was dispatched to.
	Target() Node
	// CurrentTarget is the node whose handler is running.
	CurrentTarget() Node
	// Detail carries an optional payload.
	Detail() any
	// StopPropagation prevents further propagation.
	StopPropagation()
	// PropagationStopped reports whether StopPropagation was called.
	PropagationStopped() bool
}

// EventHandler receives events.
type EventHandler func(Event)

// HandlerKey identifies a component-level handler on a node.
type HandlerKey struct {
	Event   string
	Capture bool
}

// Handler is a component-level callback registered on a node.
type Handler struct {
	Fn      EventHandler
	Options ListenerOptions
}

// Handlers is the per-node handler table consulted by event delegation.
type Handlers map[HandlerKey]*Handler

// Events returns the distinct event names present in the table.
func (h Handlers) Events() []string {
	seen := make(map[string]bool, len(h))
	var names []string
	for key := range h {
		if !seen[key.Event] {
			seen[key.Event] = true
			names = append(names, key.Event)
		}
	}
	return names
}

// Host is implemented by platform bindings and consumed by the committer.
//
// Insertion methods move a node that is already attached. Inserting a
// fragment moves its children into place and leaves the fragment empty.
type Host interface {
	// CreateLeaf creates a text or comment node.
	CreateLeaf(kind LeafKind, content string) Node
	// CreateStructural creates a tagged node.
	CreateStructural(tag string) Node
	// CreateFragment creates a detached grouping node.
	CreateFragment() Node
	// UpdateLeaf replaces a leaf node's content.
	UpdateLeaf(n Node, content string)
	// UpdateStructural reconciles attributes and handlers from prev to next.
	UpdateStructural(n Node, prev, next map[string]any)
	// Append adds child as the last child of parent.
	Append(parent, child Node)
	// InsertFirst adds child as the first child of parent.
	InsertFirst(parent, child Node)
	// InsertAfter places child immediately after anchor.
	InsertAfter(anchor, child Node)
	// Remove detaches n from its parent.
	Remove(n Node)
	// Parent returns n's parent, or nil when detached.
	Parent(n Node) Node
	// ID returns the node's id attribute, or "".
	ID(n Node) string
	// Handlers returns the node's handler table, or nil.
	Handlers(n Node) Handlers
	// AddEventListener installs a native listener.
	AddEventListener(n Node, event string, opts ListenerOptions, fn EventHandler)
	// RemoveEventListener removes the native listener keyed by (event, opts).
	RemoveEventListener(n Node, event string, opts ListenerOptions)
}
