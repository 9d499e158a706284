package memhost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-drift/loom/pkg/host"
)

// OpKind identifies a recorded host operation.
type OpKind int

const (
	OpCreateLeaf OpKind = iota
	OpCreateStructural
	OpCreateFragment
	OpUpdateLeaf
	OpUpdateAttrs
	OpAppend
	OpInsertFirst
	OpInsertAfter
	OpRemove
	OpAddListener
	OpRemoveListener
)

var opNames = [...]string{
	OpCreateLeaf:       "createLeaf",
	OpCreateStructural: "createStructural",
	OpCreateFragment:   "createFragment",
	OpUpdateLeaf:       "updateLeaf",
	OpUpdateAttrs:      "updateAttrs",
	OpAppend:           "append",
	OpInsertFirst:      "insertFirst",
	OpInsertAfter:      "insertAfter",
	OpRemove:           "remove",
	OpAddListener:      "addListener",
	OpRemoveListener:   "removeListener",
}

func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return fmt.Sprintf("op(%d)", int(k))
}

// IsCreate reports whether the operation creates a node.
func (k OpKind) IsCreate() bool {
	return k == OpCreateLeaf || k == OpCreateStructural || k == OpCreateFragment
}

// IsPlacement reports whether the operation attaches or moves a node.
func (k OpKind) IsPlacement() bool {
	return k == OpAppend || k == OpInsertFirst || k == OpInsertAfter
}

// Op is one recorded host operation.
type Op struct {
	Kind OpKind
	// Node is the node operated on.
	Node *Node
	// Ref is the parent (append, insertFirst, remove) or anchor (insertAfter).
	Ref *Node
	// Attrs is the applied patch for updateAttrs.
	Attrs host.AttrPatch
	// Event is the event name for listener operations.
	Event string
}

func (o Op) String() string {
	switch o.Kind {
	case OpAppend, OpInsertFirst:
		return fmt.Sprintf("%s %s into %s", o.Kind, o.Node.Label(), o.Ref.Label())
	case OpInsertAfter:
		return fmt.Sprintf("%s %s after %s", o.Kind, o.Node.Label(), o.Ref.Label())
	case OpRemove:
		return fmt.Sprintf("%s %s from %s", o.Kind, o.Node.Label(), o.Ref.Label())
	case OpAddListener, OpRemoveListener:
		return fmt.Sprintf("%s %s on %s", o.Kind, o.Event, o.Node.Label())
	case OpUpdateAttrs:
		var parts []string
		for name, v := range o.Attrs.Set {
			parts = append(parts, fmt.Sprintf("%s=%q", name, v))
		}
		sort.Strings(parts)
		for _, name := range o.Attrs.Remove {
			parts = append(parts, "-"+name)
		}
		return fmt.Sprintf("%s %s [%s]", o.Kind, o.Node.Label(), strings.Join(parts, " "))
	default:
		return fmt.Sprintf("%s %s", o.Kind, o.Node.Label())
	}
}

// Ops returns a copy of the operation log.
func (d *Document) Ops() []Op {
	return append([]Op(nil), d.ops...)
}

// ResetOps clears the operation log.
func (d *Document) ResetOps() {
	d.ops = nil
}

// Count returns how many operations of the given kinds were recorded.
func (d *Document) Count(kinds ...OpKind) int {
	n := 0
	for _, op := range d.ops {
		for _, k := range kinds {
			if op.Kind == k {
				n++
				break
			}
		}
	}
	return n
}

// Mutations returns the number of operations that changed the tree or a
// node, excluding listener bookkeeping.
func (d *Document) Mutations() int {
	n := 0
	for _, op := range d.ops {
		if op.Kind != OpAddListener && op.Kind != OpRemoveListener {
			n++
		}
	}
	return n
}

// Filter returns the recorded operations matching pred.
func (d *Document) Filter(pred func(Op) bool) []Op {
	var out []Op
	for _, op := range d.ops {
		if pred(op) {
			out = append(out, op)
		}
	}
	return out
}
