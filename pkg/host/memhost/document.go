// Package memhost is an in-memory implementation of host.Host.
//
// A Document owns a tree of Nodes with markup-like semantics: fragments
// dissolve when inserted, inserting an attached node moves it, and native
// listeners see capture and bubble phases. Every mutation is appended to
// an operation log, which makes the document the instrument used to
// verify reconciliation (how many nodes were created, moved, removed).
package memhost

import (
	"fmt"

	"github.com/go-drift/loom/pkg/host"
)

// Document is an in-memory host tree. It is not safe for concurrent use;
// like the engine, it belongs to the loop goroutine.
type Document struct {
	serial int
	ops    []Op
}

var _ host.Host = (*Document)(nil)

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

func (d *Document) newNode(kind NodeKind) *Node {
	d.serial++
	return &Node{Kind: kind, serial: d.serial}
}

// NewContainer creates a detached structural node to render into. It is
// not recorded as an operation.
func (d *Document) NewContainer(tag, id string) *Node {
	n := d.newNode(ElementNode)
	n.Tag = tag
	n.Attrs = map[string]string{}
	if id != "" {
		n.Attrs["id"] = id
	}
	return n
}

func asNode(n host.Node) *Node {
	node, ok := n.(*Node)
	if !ok || node == nil {
		panic(fmt.Sprintf("memhost: foreign or nil node %T", n))
	}
	return node
}

func (d *Document) record(op Op) {
	d.ops = append(d.ops, op)
}

// CreateLeaf creates a text or comment node.
func (d *Document) CreateLeaf(kind host.LeafKind, content string) host.Node {
	n := d.newNode(TextNode)
	if kind == host.LeafComment {
		n.Kind = CommentNode
	}
	n.Content = content
	d.record(Op{Kind: OpCreateLeaf, Node: n})
	return n
}

// CreateStructural creates a tagged node.
func (d *Document) CreateStructural(tag string) host.Node {
	n := d.newNode(ElementNode)
	n.Tag = tag
	n.Attrs = map[string]string{}
	d.record(Op{Kind: OpCreateStructural, Node: n})
	return n
}

// CreateFragment creates a grouping node.
func (d *Document) CreateFragment() host.Node {
	n := d.newNode(FragmentNode)
	d.record(Op{Kind: OpCreateFragment, Node: n})
	return n
}

// UpdateLeaf replaces a leaf's content. Identical content is not recorded.
func (d *Document) UpdateLeaf(hn host.Node, content string) {
	n := asNode(hn)
	if n.Content == content {
		return
	}
	n.Content = content
	d.record(Op{Kind: OpUpdateLeaf, Node: n})
}

// UpdateStructural applies host.DiffAttrs to the node. The handler table
// is replaced silently; only attribute changes are recorded.
func (d *Document) UpdateStructural(hn host.Node, prev, next map[string]any) {
	n := asNode(hn)
	patch := host.DiffAttrs(prev, next)
	n.handlers = patch.Handlers
	if patch.Empty() {
		return
	}
	for name, v := range patch.Set {
		n.Attrs[name] = v
	}
	for _, name := range patch.Remove {
		delete(n.Attrs, name)
	}
	d.record(Op{Kind: OpUpdateAttrs, Node: n, Attrs: patch})
}

// Append adds child as the last child of parent.
func (d *Document) Append(hp, hc host.Node) {
	parent, child := asNode(hp), asNode(hc)
	child.detach()
	parent.insertAt(len(parent.children), child)
	d.record(Op{Kind: OpAppend, Node: child, Ref: parent})
}

// InsertFirst adds child as the first child of parent.
func (d *Document) InsertFirst(hp, hc host.Node) {
	parent, child := asNode(hp), asNode(hc)
	child.detach()
	parent.insertAt(0, child)
	d.record(Op{Kind: OpInsertFirst, Node: child, Ref: parent})
}

// InsertAfter places child immediately after anchor. The anchor must be
// attached.
func (d *Document) InsertAfter(ha, hc host.Node) {
	anchor, child := asNode(ha), asNode(hc)
	if anchor == child {
		return
	}
	child.detach()
	parent := anchor.parent
	if parent == nil {
		panic(fmt.Sprintf("memhost: anchor %s is detached", anchor.Label()))
	}
	parent.insertAt(parent.indexOf(anchor)+1, child)
	d.record(Op{Kind: OpInsertAfter, Node: child, Ref: anchor})
}

// Remove detaches the node.
func (d *Document) Remove(hn host.Node) {
	n := asNode(hn)
	if n.parent == nil {
		return
	}
	parent := n.parent
	n.detach()
	d.record(Op{Kind: OpRemove, Node: n, Ref: parent})
}

// Parent returns the node's parent.
func (d *Document) Parent(hn host.Node) host.Node {
	n := asNode(hn)
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// ID returns the node's id attribute.
func (d *Document) ID(hn host.Node) string {
	return asNode(hn).Attrs["id"]
}

// Handlers returns the node's handler table.
func (d *Document) Handlers(hn host.Node) host.Handlers {
	return asNode(hn).handlers
}

// AddEventListener installs a native listener, replacing any listener
// with the same (event, options) key.
func (d *Document) AddEventListener(hn host.Node, event string, opts host.ListenerOptions, fn host.EventHandler) {
	n := asNode(hn)
	d.removeListener(n, event, opts)
	n.listeners = append(n.listeners, listener{event: event, opts: opts, fn: fn})
	d.record(Op{Kind: OpAddListener, Node: n, Event: event})
}

// RemoveEventListener removes the native listener keyed by (event, options).
func (d *Document) RemoveEventListener(hn host.Node, event string, opts host.ListenerOptions) {
	n := asNode(hn)
	if d.removeListener(n, event, opts) {
		d.record(Op{Kind: OpRemoveListener, Node: n, Event: event})
	}
}

func (d *Document) removeListener(n *Node, event string, opts host.ListenerOptions) bool {
	for i, l := range n.listeners {
		if l.event == event && l.opts.Capture == opts.Capture {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			return true
		}
	}
	return false
}
