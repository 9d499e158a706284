package core

import (
	"strconv"

	"go.uber.org/zap"
)

// pool maps identities of the previous committed subtree to their fibers
// for the duration of one pass. Whatever is still pending when the pass
// ends was dropped from the tree.
//
// Collisions: populating is last-wins, so of two previous fibers with the
// same identity only the later one can be resolved; the other stays
// pending and is torn down. Draining is first-wins: once an identity has
// been resolved, a later sibling with the same identity gets a fresh
// fiber.
type pool struct {
	entries map[string]FiberID
	pending map[FiberID]bool
	order   []FiberID
	logger  *zap.Logger
}

func newPool(logger *zap.Logger) *pool {
	return &pool{
		entries: make(map[string]FiberID),
		pending: make(map[FiberID]bool),
		logger:  logger,
	}
}

// populate registers every descendant of root, parents before children.
// Entries left behind by an aborted pass are discarded first.
func (p *pool) populate(a *arena, root *Fiber) {
	clear(p.entries)
	clear(p.pending)
	p.order = p.order[:0]
	a.walkBFS(root, func(f *Fiber) {
		if prev, ok := p.entries[f.key]; ok {
			p.logger.Debug("duplicate fiber identity",
				zap.String("identity", f.key),
				zap.Stringer("overwritten", prev),
				zap.Stringer("fiber", f.id))
		}
		p.entries[f.key] = f.id
		p.pending[f.id] = true
		p.order = append(p.order, f.id)
	})
}

// resolve removes and returns the fiber registered under identity.
func (p *pool) resolve(identity string) (FiberID, bool) {
	id, ok := p.entries[identity]
	if !ok {
		return NoFiber, false
	}
	delete(p.entries, identity)
	return id, true
}

// keep marks a resolved fiber as surviving the pass.
func (p *pool) keep(f *Fiber) {
	delete(p.pending, f.id)
}

// claim removes a fiber carried over inside a skipped subtree.
func (p *pool) claim(f *Fiber) {
	if id, ok := p.entries[f.key]; ok && id == f.id {
		delete(p.entries, f.key)
	}
	delete(p.pending, f.id)
}

// drain returns the fibers that were not kept, in population order, and
// resets the pool.
func (p *pool) drain() []FiberID {
	var out []FiberID
	for _, id := range p.order {
		if p.pending[id] {
			out = append(out, id)
		}
	}
	clear(p.entries)
	clear(p.pending)
	p.order = p.order[:0]
	return out
}

// identity derives a child's identity from its parent's identity and
// either the explicit key or the type name and position.
func identity(parentKey string, el *Element, index int) string {
	if el.Key != "" {
		return parentKey + ":" + el.Key
	}
	return parentKey + ":" + el.Type.Name() + "_" + strconv.Itoa(index)
}
