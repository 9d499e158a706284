package core

// Setter updates a state slot and schedules its fiber for re-render.
// Calls after the fiber unmounted are no-ops.
//
// Setter is NOT thread-safe. It must only be called from the loop
// goroutine. To update state from another goroutine, use Loop.Post:
//
//	go func() {
//	    result := fetch()
//	    loop.Post(func() { setData.Set(result) })
//	}()
type Setter[T any] struct {
	slot *stateSlot[T]
	root *Root
	id   FiberID
}

// Set replaces the value.
func (s Setter[T]) Set(value T) {
	s.Update(func(T) T { return value })
}

// Update applies a transformation to the current value.
func (s Setter[T]) Update(transform func(T) T) {
	if s.slot == nil || s.root == nil {
		return
	}
	f := s.root.arena.get(s.id)
	if f == nil || f.status == Unmounted {
		return
	}
	s.slot.value = transform(s.slot.value)
	s.root.scheduleRender(f)
}

// UseState returns the slot's value and a setter. The slot is initialized
// with initial on first render.
//
// Example:
//
//	func Counter(ctx *core.Context, props core.Props) any {
//	    count, setCount := core.UseState(ctx, 0)
//	    return core.Tag("button", core.Props{
//	        "onClick": func() { setCount.Update(func(n int) int { return n + 1 }) },
//	    }, count)
//	}
func UseState[T any](ctx *Context, initial T) (T, Setter[T]) {
	return UseStateFunc(ctx, func() T { return initial })
}

// UseStateFunc is UseState with a lazy initializer, called only on first
// render.
func UseStateFunc[T any](ctx *Context, init func() T) (T, Setter[T]) {
	f := ctx.fiber
	i := f.hooks.next()
	s, ok := f.hooks.slots[i].(*stateSlot[T])
	if !ok {
		s = &stateSlot[T]{value: init()}
		f.hooks.slots[i] = s
	}
	return s.value, Setter[T]{slot: s, root: ctx.root, id: f.id}
}

// UseEffect queues body to run after the render commits.
//
// deps selects when it runs: nil runs after every render, an empty Deps
// runs once after mount, and a non-empty Deps runs when any entry changed
// identity since the previous render. The cleanup returned by body runs
// before the slot's next body, or on unmount. Cleanups of mount-only
// effects run on unmount only.
func UseEffect(ctx *Context, body func() func(), deps Deps) {
	useEffect(ctx, func(Deps, Deps) func() { return body() }, deps)
}

// UseEffectDeps is UseEffect for bodies that need the current and
// previous dependency lists.
func UseEffectDeps(ctx *Context, body func(cur, prev Deps) func(), deps Deps) {
	useEffect(ctx, body, deps)
}

func useEffect(ctx *Context, body func(cur, prev Deps) func(), deps Deps) {
	f := ctx.fiber
	i := f.hooks.next()
	s, ok := f.hooks.slots[i].(*effectSlot)
	if !ok {
		s = &effectSlot{}
		f.hooks.slots[i] = s
	}
	prev := s.deps
	s.deps = deps

	var run bool
	switch {
	case deps == nil:
		run = true
	case len(deps) == 0:
		run = !ok
		s.mountScoped = true
	default:
		run = !ok || !depsEqual(deps, prev)
	}
	if !run {
		return
	}
	if s.cleanup != nil && !s.mountScoped {
		f.cleanupEffects = append(f.cleanupEffects, s.cleanup)
		s.cleanup = nil
	}
	f.effects = append(f.effects, effectJob{slot: s, body: body, cur: deps, prev: prev})
}

type storeInst[T comparable] struct {
	value       T
	getSnapshot func() T
}

func (s *storeInst[T]) changed() (changed bool) {
	defer func() {
		if recover() != nil {
			changed = true
		}
	}()
	return s.value != s.getSnapshot()
}

// UseSyncExternalStore reads a value from an external store. The snapshot
// is read on every render; the component subscribes after mount and
// re-renders whenever the snapshot changes. subscribe returns the
// unsubscribe function, called on unmount or before subscribing again
// when a different subscribe function is passed. Functions are told
// apart by code pointer, so a closure literal recreated on every render
// counts as the same subscribe.
func UseSyncExternalStore[T comparable](ctx *Context, subscribe func(onChange func()) func(), getSnapshot func() T) T {
	value := getSnapshot()
	inst, force := UseStateFunc(ctx, func() *storeInst[T] { return &storeInst[T]{} })
	inst.value = value
	inst.getSnapshot = getSnapshot

	UseEffect(ctx, func() func() {
		check := func() {
			if inst.changed() {
				force.Set(inst)
			}
		}
		check()
		return subscribe(check)
	}, Deps{subscribe})
	return value
}
