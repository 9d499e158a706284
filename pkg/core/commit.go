package core

import (
	"time"

	"github.com/go-drift/loom/pkg/errors"
	"github.com/go-drift/loom/pkg/host"
)

// commit applies a reconciled subtree to the host in three steps: nodes
// are created and patched bottom-up, removed nodes are detached, and new
// or moved children are spliced into place top-down.
func (r *Root) commit(target *Fiber, removed []FiberID) {
	r.realize(target)
	r.detach(removed)
	r.place(target, target.status == Mounted)
}

// realize creates or patches f's own host node, after its children. A
// mounted fiber assembles its children's nodes into its node, or into its
// portal target, so the whole block is attached with one insertion.
func (r *Root) realize(f *Fiber) {
	r.arena.children(f, func(c *Fiber) {
		if !c.skip {
			r.realize(c)
		}
	})

	mounted := f.status == Mounted
	switch f.typ.Kind {
	case KindText, KindComment:
		content, _ := f.pendingProps["content"].(string)
		if mounted {
			kind := host.LeafText
			if f.typ.Kind == KindComment {
				kind = host.LeafComment
			}
			f.stateNode = r.host.CreateLeaf(kind, content)
		} else if old, _ := f.memoizedProps["content"].(string); old != content {
			r.host.UpdateLeaf(f.stateNode, content)
		}
	case KindTag:
		var prev map[string]any
		if mounted {
			f.stateNode = r.host.CreateStructural(f.typ.Tag)
		} else {
			prev = f.memoizedProps
		}
		r.host.UpdateStructural(f.stateNode, prev, f.pendingProps)
		r.listen(f.pendingProps)
	case KindFragment, KindComponent:
		if mounted {
			f.stateNode = r.host.CreateFragment()
		}
	}

	if mounted {
		parent := f.stateNode
		if f.portal {
			if f.portalTarget == nil {
				panic(&errors.EngineError{
					Op:        "core.commit",
					Kind:      errors.KindHost,
					Err:       errors.ErrNilPortalTarget,
					Fiber:     f.key,
					Timestamp: time.Now(),
				})
			}
			parent = f.portalTarget
		}
		r.arena.children(f, func(c *Fiber) {
			r.nodesOf(c, func(n host.Node) { r.host.Append(parent, n) })
		})
		if ref, ok := f.pendingProps["ref"].(func(host.Node)); ok && f.isHost() {
			ref(f.stateNode)
		}
	}

	f.prevProps = f.memoizedProps
	f.memoizedProps = f.pendingProps
	if len(f.effects) > 0 || len(f.cleanupEffects) > 0 {
		r.pending = append(r.pending, f.id)
	}
}

// nodesOf yields the host nodes c contributes to its parent, in order. A
// fiber created this pass contributes its own node, which for composites
// is a fragment holding everything below. A reused composite contributes
// its descendants' nodes. Portals contribute nothing.
func (r *Root) nodesOf(c *Fiber, fn func(host.Node)) {
	if c.portal {
		return
	}
	if c.status == Mounted || c.isHost() {
		fn(c.stateNode)
		return
	}
	r.arena.children(c, func(d *Fiber) { r.nodesOf(d, fn) })
}

// listen makes sure the delegator has a root listener for every event
// the props handle.
func (r *Root) listen(props Props) {
	for name := range props {
		if host.IsEventProp(name) {
			event, _ := host.ParseEventName(name)
			r.events.Listen(event)
		}
	}
}

// detach removes the host nodes of removed fibers. A node inside a
// removed host node goes away with it and is not removed separately.
func (r *Root) detach(removed []FiberID) {
	set := make(map[FiberID]bool, len(removed))
	for _, id := range removed {
		set[id] = true
	}
	for _, id := range removed {
		f := r.arena.get(id)
		if f == nil || !f.isHost() || f.stateNode == nil {
			continue
		}
		if !r.covered(f, set) {
			r.host.Remove(f.stateNode)
		}
	}
}

// covered reports whether a removed ancestor host node, reached without
// crossing a portal, already carries f's node away.
func (r *Root) covered(f *Fiber, removed map[FiberID]bool) bool {
	for p := r.arena.get(f.parent); p != nil; p = r.arena.get(p.parent) {
		if p.portal || !removed[p.id] {
			return false
		}
		if p.isHost() {
			return true
		}
	}
	return false
}

// place walks the tree top-down and splices children that are new or
// moved under reused parents. A child moved when its previous index is
// lower than that of a reused sibling already seen. arranged is true when
// the parent's children were already assembled by realize.
func (r *Root) place(parent *Fiber, arranged bool) {
	maxOld := -1
	r.arena.children(parent, func(c *Fiber) {
		if !arranged && !c.portal && (c.status == Mounted || c.oldIndex < maxOld) {
			r.insert(c)
		}
		if c.status != Mounted && c.oldIndex > maxOld {
			maxOld = c.oldIndex
		}
		if !c.skip {
			r.place(c, c.status == Mounted || (arranged && !c.isHost() && !c.portal))
		}
	})
}

// insert moves c's nodes to directly after the nearest preceding host
// node, or to the front of the host parent.
func (r *Root) insert(c *Fiber) {
	anchor, container := r.anchorFor(c)
	put := func(n host.Node) {
		if anchor != nil {
			r.host.InsertAfter(anchor, n)
		} else {
			r.host.InsertFirst(container, n)
		}
		anchor = n
	}

	if c.status == Mounted || c.isHost() {
		put(c.stateNode)
	} else {
		r.eachPlacedHostNode(c, put)
	}
	if c.status != Mounted {
		r.stats.Moved++
	}
}

// anchorFor finds where c's nodes go: after the last host node of a
// previous sibling, or first in the host parent. Composite parents are
// transparent, so the search continues at their level.
func (r *Root) anchorFor(c *Fiber) (anchor, container host.Node) {
	if n := r.previousHostNode(c); n != nil {
		return n, nil
	}
	parent := r.arena.get(c.parent)
	switch {
	case parent == nil:
		return nil, r.container
	case parent.portal:
		return nil, parent.portalTarget
	case parent.hostParent():
		return nil, parent.stateNode
	default:
		return r.anchorFor(parent)
	}
}

func (r *Root) previousHostNode(c *Fiber) host.Node {
	for p := r.arena.get(c.previous); p != nil; p = r.arena.get(p.previous) {
		if n := r.lastHostNode(p); n != nil {
			return n
		}
	}
	return nil
}

// lastHostNode returns the last attached host node f contributes to its
// parent. Portals contribute none.
func (r *Root) lastHostNode(f *Fiber) host.Node {
	if f.portal {
		return nil
	}
	if f.isHost() {
		return f.stateNode
	}
	for c := r.arena.get(f.last); c != nil; c = r.arena.get(c.previous) {
		if n := r.lastHostNode(c); n != nil {
			return n
		}
	}
	return nil
}

// eachPlacedHostNode yields the host nodes of a reused composite that are
// already in the host tree. Children created this pass are placed later
// by their own parent.
func (r *Root) eachPlacedHostNode(f *Fiber, fn func(host.Node)) {
	r.arena.children(f, func(c *Fiber) {
		switch {
		case c.portal || c.status == Mounted:
		case c.isHost():
			fn(c.stateNode)
		default:
			r.eachPlacedHostNode(c, fn)
		}
	})
}
