package core

import (
	"time"

	"github.com/go-drift/loom/pkg/errors"
)

// renderFiber materializes f's children and reconciles them. Host tags
// and fragments take their children from props; components run once.
func (r *Root) renderFiber(f *Fiber) {
	f.dirty = false
	f.skip = false
	var children []*Element
	switch f.typ.Kind {
	case KindTag, KindFragment, kindRoot:
		children = childElements(f.pendingProps["children"])
	case KindComponent:
		children = r.invoke(f)
	}
	r.reconcileChildren(f, children)
}

// invoke runs a component body with a fresh hook cursor. A panic is
// re-raised as an EngineError naming the fiber.
func (r *Root) invoke(f *Fiber) []*Element {
	r.stats.Rendered++
	f.hooks.reset()
	ctx := &Context{root: r, fiber: f, prev: f.memoizedProps}

	defer func() {
		if rec := recover(); rec != nil {
			panic(&errors.EngineError{
				Op:   "core.render",
				Kind: errors.KindRender,
				Err: &errors.PanicError{
					Op:    f.typ.Name(),
					Value: rec,
				},
				Fiber:      f.key,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	return childElements(f.typ.Component(ctx, f.pendingProps))
}

// reconcileChildren rebuilds parent's child list from elements, reusing
// pooled fibers by identity. Reused children whose props are deeply
// equal, and which have no pending update, are carried over without
// descending.
func (r *Root) reconcileChildren(parent *Fiber, children []*Element) {
	parent.first, parent.last = NoFiber, NoFiber
	var prev *Fiber
	for i, el := range children {
		child := r.resolveChild(parent, el, i)
		child.parent = parent.id
		child.index = i
		child.depth = parent.depth + 1
		child.previous, child.sibling = NoFiber, NoFiber
		if prev == nil {
			parent.first = child.id
		} else {
			prev.sibling = child.id
			child.previous = prev.id
		}
		parent.last = child.id
		prev = child

		if child.skip {
			r.carryOver(child)
		} else {
			r.renderFiber(child)
		}
	}
}

// resolveChild returns the fiber for el at position index under parent:
// the pooled fiber with the same identity and type, or a new one.
func (r *Root) resolveChild(parent *Fiber, el *Element, index int) *Fiber {
	key := identity(parent.key, el, index)
	if id, ok := r.pool.resolve(key); ok {
		if f := r.arena.get(id); f != nil && reusable(f, el) {
			r.pool.keep(f)
			f.oldIndex = f.index
			f.status = Updated
			f.typ = el.Type
			f.skip = !f.dirty && r.memo.props(f.memoizedProps, el.Props)
			f.pendingProps = el.Props
			return f
		}
	}

	f := r.arena.alloc()
	f.key = key
	f.typ = el.Type
	f.status = Mounted
	f.pendingProps = el.Props
	f.oldIndex = index
	if el.isPortal() {
		f.portal = true
		f.portalTarget = el.Props["target"]
	}
	r.stats.Mounted++
	return f
}

// reusable reports whether f can render el. Portals are reused only for
// the same target.
func reusable(f *Fiber, el *Element) bool {
	if !f.typ.Same(el.Type) || f.portal != el.isPortal() {
		return false
	}
	return !f.portal || sameDep(f.portalTarget, el.Props["target"])
}

// carryOver keeps a skipped subtree: every descendant is claimed from the
// pool and keeps its position.
func (r *Root) carryOver(f *Fiber) {
	r.stats.Skipped++
	r.arena.walkPre(f, func(d *Fiber) {
		d.oldIndex = d.index
		d.status = Updated
		r.pool.claim(d)
	})
}
