package core

import (
	"fmt"

	"github.com/go-drift/loom/pkg/host"
)

// FiberID addresses a fiber in its root's arena. The generation changes
// every time a slot is released, so an ID held past unmount resolves to
// nothing instead of to whichever fiber reused the slot.
type FiberID struct {
	index uint32
	gen   uint32
}

// NoFiber is the zero ID. It never resolves.
var NoFiber FiberID

// Valid reports whether the ID was issued by an arena.
func (id FiberID) Valid() bool { return id.gen != 0 }

func (id FiberID) String() string {
	if !id.Valid() {
		return "fiber(none)"
	}
	return fmt.Sprintf("fiber(%d.%d)", id.index, id.gen)
}

// Status is a fiber's lifecycle state.
type Status uint8

const (
	// Mounted fibers were created in the current or latest pass.
	Mounted Status = iota
	// Updated fibers were reused from a previous pass.
	Updated
	// Unmounted fibers were torn down.
	Unmounted
)

func (s Status) String() string {
	switch s {
	case Mounted:
		return "mounted"
	case Updated:
		return "updated"
	default:
		return "unmounted"
	}
}

// Fiber is the persistent instance behind one tree position.
type Fiber struct {
	id       FiberID
	released bool

	key    string
	typ    Type
	status Status
	depth  int

	pendingProps  Props
	memoizedProps Props
	prevProps     Props

	index    int
	oldIndex int

	first, last       FiberID
	previous, sibling FiberID
	parent            FiberID

	stateNode    host.Node
	portalTarget host.Node
	portal       bool

	hooks          hookState
	effects        []effectJob
	cleanupEffects []func()

	skip  bool
	dirty bool
}

// ID returns the fiber's arena address.
func (f *Fiber) ID() FiberID { return f.id }

// Key returns the fiber's identity string.
func (f *Fiber) Key() string { return f.key }

// Type returns the fiber's element type.
func (f *Fiber) Type() Type { return f.typ }

// Status returns the lifecycle state.
func (f *Fiber) Status() Status { return f.status }

// Index returns the position among siblings in the latest pass.
func (f *Fiber) Index() int { return f.index }

// Node returns the owned host node. Composite fibers own a fragment.
func (f *Fiber) Node() host.Node { return f.stateNode }

// Props returns the last committed props.
func (f *Fiber) Props() Props { return f.memoizedProps }

func (f *Fiber) isHost() bool { return f.typ.isHost() }

// hostParent reports whether the fiber's node is a real parent for its
// children's nodes: a tag, or the root container.
func (f *Fiber) hostParent() bool {
	return f.typ.Kind == KindTag || f.typ.Kind == kindRoot
}

const chunkSize = 256

type chunk [chunkSize]Fiber

// arena stores fibers in fixed-size chunks so a *Fiber stays valid for as
// long as its slot is live. Released slots are recycled.
type arena struct {
	chunks []*chunk
	next   uint32
	free   []uint32
	live   int
}

func (a *arena) slot(index uint32) *Fiber {
	return &a.chunks[index/chunkSize][index%chunkSize]
}

func (a *arena) alloc() *Fiber {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = a.next
		a.next++
		if int(index/chunkSize) >= len(a.chunks) {
			a.chunks = append(a.chunks, new(chunk))
		}
	}
	f := a.slot(index)
	gen := f.id.gen + 1
	*f = Fiber{id: FiberID{index: index, gen: gen}, oldIndex: -1}
	a.live++
	return f
}

// get resolves id, returning nil for stale or unknown IDs.
func (a *arena) get(id FiberID) *Fiber {
	if !id.Valid() || id.index >= a.next {
		return nil
	}
	f := a.slot(id.index)
	if f.released || f.id != id {
		return nil
	}
	return f
}

// release frees the slot. The fiber record is cleared except for its
// generation, which the next alloc advances.
func (a *arena) release(f *Fiber) {
	if f == nil || f.released {
		return
	}
	index := f.id.index
	*f = Fiber{id: f.id, released: true, status: Unmounted}
	a.free = append(a.free, index)
	a.live--
}

// Len returns the number of live fibers.
func (a *arena) Len() int { return a.live }

// children calls fn for each child of f in sibling order.
func (a *arena) children(f *Fiber, fn func(*Fiber)) {
	for c := a.get(f.first); c != nil; c = a.get(c.sibling) {
		fn(c)
	}
}

// walkBFS visits the descendants of f level by level, parents before
// children.
func (a *arena) walkBFS(f *Fiber, fn func(*Fiber)) {
	queue := []*Fiber{f}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		a.children(cur, func(c *Fiber) {
			fn(c)
			queue = append(queue, c)
		})
	}
}

// walkPre visits the descendants of f in pre-order.
func (a *arena) walkPre(f *Fiber, fn func(*Fiber)) {
	a.children(f, func(c *Fiber) {
		fn(c)
		a.walkPre(c, fn)
	})
}
