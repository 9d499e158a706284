package core

// hookState is a fiber's slot array. The cursor is reset before every
// render, and each hook call takes the next slot, so slots line up across
// renders as long as hooks are called in the same order.
type hookState struct {
	slots  []any
	cursor int
}

func (h *hookState) reset() {
	h.cursor = 0
}

// next returns the index of the next slot, growing the array on first
// visit.
func (h *hookState) next() int {
	i := h.cursor
	h.cursor++
	if i >= len(h.slots) {
		h.slots = append(h.slots, nil)
	}
	return i
}

type stateSlot[T any] struct {
	value T
}

type effectSlot struct {
	deps    Deps
	cleanup func()
	// mountScoped cleanups run only on unmount.
	mountScoped bool
}

type effectJob struct {
	slot *effectSlot
	body func(cur, prev Deps) func()
	cur  Deps
	prev Deps
}

// cleanups returns the fiber's outstanding cleanups in the order they
// must run on unmount: queued update cleanups first, then every effect
// slot's cleanup in slot order.
func (f *Fiber) cleanups() []func() {
	out := append([]func(){}, f.cleanupEffects...)
	for _, s := range f.hooks.slots {
		if es, ok := s.(*effectSlot); ok && es.cleanup != nil {
			out = append(out, es.cleanup)
			es.cleanup = nil
		}
	}
	f.cleanupEffects = nil
	f.effects = nil
	return out
}

// Context is passed to a component while it renders. It is valid only for
// the duration of that render.
type Context struct {
	root  *Root
	fiber *Fiber
	prev  Props
}

// Props returns the props being rendered.
func (c *Context) Props() Props { return c.fiber.pendingProps }

// PrevProps returns the props of the previous render, or nil on mount.
func (c *Context) PrevProps() Props { return c.prev }

// Key returns the fiber's identity string.
func (c *Context) Key() string { return c.fiber.key }

// ID returns the fiber's arena address.
func (c *Context) ID() FiberID { return c.fiber.id }

// Root returns the root the component renders under.
func (c *Context) Root() *Root { return c.root }
