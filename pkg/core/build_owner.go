package core

import (
	"slices"
)

// BuildOwner tracks dirty fibers that need re-rendering.
//
// BuildOwner is not safe for concurrent use; it belongs to the loop
// goroutine like the rest of a Root.
type BuildOwner struct {
	dirty    []FiberID
	dirtySet map[FiberID]bool

	// OnNeedsFlush is called when the first fiber of a batch is
	// scheduled. A Root uses it to queue one deduplicated microtask.
	OnNeedsFlush func()
}

// NewBuildOwner creates a new BuildOwner.
func NewBuildOwner() *BuildOwner {
	return &BuildOwner{dirtySet: make(map[FiberID]bool)}
}

// ScheduleBuild marks a fiber as needing a render pass.
func (b *BuildOwner) ScheduleBuild(f *Fiber) {
	f.dirty = true
	if b.dirtySet[f.id] {
		return
	}
	b.dirtySet[f.id] = true
	b.dirty = append(b.dirty, f.id)
	if b.OnNeedsFlush != nil {
		b.OnNeedsFlush()
	}
}

// NeedsWork returns true if there are dirty fibers.
func (b *BuildOwner) NeedsWork() bool {
	return len(b.dirty) > 0
}

// Pending returns the number of scheduled fibers.
func (b *BuildOwner) Pending() int {
	return len(b.dirty)
}

// FlushBuild renders all dirty fibers in depth order. Fibers re-rendered
// by an ancestor's pass are no longer dirty and are skipped, as are
// fibers that unmounted; fibers scheduled during the flush are handled
// before it returns.
func (b *BuildOwner) FlushBuild(a *arena, render func(*Fiber)) {
	for len(b.dirty) > 0 {
		dirty := make([]*Fiber, 0, len(b.dirty))
		for _, id := range b.dirty {
			if f := a.get(id); f != nil {
				dirty = append(dirty, f)
			}
		}
		b.dirty = nil
		clear(b.dirtySet)

		slices.SortStableFunc(dirty, func(x, y *Fiber) int {
			return x.depth - y.depth
		})
		ids := make([]FiberID, len(dirty))
		for i, f := range dirty {
			ids[i] = f.id
		}

		for _, id := range ids {
			f := a.get(id)
			if f == nil || f.status == Unmounted || !f.dirty {
				continue
			}
			render(f)
		}
	}
}
