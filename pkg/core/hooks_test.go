package core

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_StateAndEffectSlotsStayApart(t *testing.T) {
	fx := newFixture(t)
	var (
		setCount Setter[int]
		effects  []string
	)
	counter := func(ctx *Context, props Props) any {
		count, set := UseState(ctx, 0)
		setCount = set
		UseEffect(ctx, func() func() {
			effects = append(effects, "effect "+strconv.Itoa(count))
			return nil
		}, Deps{count})
		label, _ := UseState(ctx, "n=")
		return Tag("span", nil, label, count)
	}

	fx.render(Create(counter, nil, ""))
	for i := 1; i <= 3; i++ {
		setCount.Update(func(n int) int { return n + 1 })
		fx.loop.RunUntilIdle()
		// An unrelated re-render must not advance the effect.
		fx.render(Create(counter, Props{"pass": i}, ""))
	}

	assert.Equal(t, "<span>n=3</span>", fx.markup())
	assert.Equal(t, []string{"effect 0", "effect 1", "effect 2", "effect 3"}, effects)
}

func TestHooks_SetterBatching(t *testing.T) {
	fx := newFixture(t)
	renders := 0
	var setA, setB Setter[int]
	comp := func(ctx *Context, props Props) any {
		renders++
		a, sa := UseState(ctx, 0)
		b, sb := UseState(ctx, 0)
		setA, setB = sa, sb
		return Text(a + b)
	}
	fx.render(Create(comp, nil, ""))
	renders = 0

	setA.Set(1)
	setB.Set(2)
	setA.Update(func(n int) int { return n * 10 })
	fx.loop.RunUntilIdle()

	assert.Equal(t, 1, renders)
	assert.Equal(t, "12", fx.markup())
}

func TestHooks_MountOnlyEffect(t *testing.T) {
	fx := newFixture(t)
	runs, cleanups := 0, 0
	comp := func(ctx *Context, props Props) any {
		UseEffect(ctx, func() func() {
			runs++
			return func() { cleanups++ }
		}, Deps{})
		return Text(props["n"])
	}

	for i := 0; i < 5; i++ {
		fx.render(Create(comp, Props{"n": i}, ""))
	}
	assert.Equal(t, 1, runs)
	assert.Zero(t, cleanups)

	fx.root.Unmount()
	fx.loop.RunUntilIdle()
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, cleanups)
}

func TestHooks_EffectEveryRenderCleansUpFirst(t *testing.T) {
	fx := newFixture(t)
	var log []string
	comp := func(ctx *Context, props Props) any {
		n := props["n"].(int)
		UseEffect(ctx, func() func() {
			log = append(log, "run "+strconv.Itoa(n))
			return func() { log = append(log, "cleanup "+strconv.Itoa(n)) }
		}, nil)
		return nil
	}

	fx.render(Create(comp, Props{"n": 1}, ""))
	fx.render(Create(comp, Props{"n": 2}, ""))
	fx.root.Unmount()
	fx.loop.RunUntilIdle()

	assert.Equal(t, []string{"run 1", "cleanup 1", "run 2", "cleanup 2"}, log)
}

func TestHooks_EffectRenderedTwiceBeforeFlush(t *testing.T) {
	fx := newFixture(t)
	var log []string
	comp := func(ctx *Context, props Props) any {
		n := props["n"].(int)
		UseEffect(ctx, func() func() {
			log = append(log, "run "+strconv.Itoa(n))
			return func() { log = append(log, "cleanup "+strconv.Itoa(n)) }
		}, nil)
		return nil
	}

	fx.root.Render(Create(comp, Props{"n": 1}, ""))
	fx.root.Render(Create(comp, Props{"n": 2}, ""))
	fx.loop.RunUntilIdle()
	fx.root.Unmount()
	fx.loop.RunUntilIdle()

	assert.Equal(t, []string{"run 1", "cleanup 1", "run 2", "cleanup 2"}, log)
}

func TestHooks_SetterBeforeEffectFlush(t *testing.T) {
	fx := newFixture(t)
	bodies, cleanups := 0, 0
	var bump Setter[int]
	comp := func(ctx *Context, props Props) any {
		n, set := UseState(ctx, 0)
		bump = set
		UseEffect(ctx, func() func() {
			bodies++
			return func() { cleanups++ }
		}, Deps{n})
		return n
	}

	fx.root.Render(Create(comp, nil, ""))
	bump.Set(1)
	fx.loop.RunUntilIdle()
	assert.Equal(t, "1", fx.markup())
	assert.Equal(t, 2, bodies)
	assert.Equal(t, 1, cleanups)

	fx.root.Unmount()
	fx.loop.RunUntilIdle()
	assert.Equal(t, bodies, cleanups)
}

func TestHooks_EffectDepsReceivesPrevious(t *testing.T) {
	fx := newFixture(t)
	var seen [][2]Deps
	comp := func(ctx *Context, props Props) any {
		UseEffectDeps(ctx, func(cur, prev Deps) func() {
			seen = append(seen, [2]Deps{cur, prev})
			return nil
		}, Deps{props["v"]})
		return nil
	}

	fx.render(Create(comp, Props{"v": "a"}, ""))
	fx.render(Create(comp, Props{"v": "a", "other": 1}, ""))
	fx.render(Create(comp, Props{"v": "b"}, ""))

	require.Len(t, seen, 2)
	assert.Nil(t, seen[0][1])
	assert.Equal(t, Deps{"b"}, seen[1][0])
	assert.Equal(t, Deps{"a"}, seen[1][1])
}

func TestHooks_UnmountCleanupOrder(t *testing.T) {
	fx := newFixture(t)
	var log []string
	var child Component
	parent := func(ctx *Context, props Props) any {
		UseEffect(ctx, func() func() { return func() { log = append(log, "parent") } }, Deps{})
		return Create(child, nil, "")
	}
	child = func(ctx *Context, props Props) any {
		UseEffect(ctx, func() func() { return func() { log = append(log, "child a") } }, Deps{})
		UseEffect(ctx, func() func() { return func() { log = append(log, "child b") } }, Deps{})
		return nil
	}

	fx.render(Create(parent, nil, ""))
	fx.root.Unmount()
	fx.loop.RunUntilIdle()

	assert.Equal(t, []string{"parent", "child a", "child b"}, log)
}

func TestHooks_SetterAfterUnmount(t *testing.T) {
	fx := newFixture(t)
	var set Setter[int]
	renders := 0
	comp := func(ctx *Context, props Props) any {
		renders++
		_, set = UseState(ctx, 0)
		return nil
	}
	fx.render(Create(comp, nil, ""))
	fx.render(Tag("p", nil))
	renders = 0

	// The slot may already belong to another fiber.
	fx.render(Tag("p", nil, "reuses", "slots"))
	set.Set(5)
	fx.loop.RunUntilIdle()

	assert.Zero(t, renders)
	assert.Equal(t, "<p>reusesslots</p>", fx.markup())
}

func TestHooks_DirtyChildOfSkippedParent(t *testing.T) {
	fx := newFixture(t)
	var setLeaf Setter[string]
	middleRenders, leafRenders := 0, 0
	leaf := func(ctx *Context, props Props) any {
		leafRenders++
		v, set := UseState(ctx, "old")
		setLeaf = set
		return v
	}
	middle := func(ctx *Context, props Props) any {
		middleRenders++
		return Tag("div", nil, Create(leaf, nil, ""))
	}
	var setTop Setter[int]
	top := func(ctx *Context, props Props) any {
		n, set := UseState(ctx, 0)
		setTop = set
		return []any{Text(n), Create(middle, Props{"fixed": true}, "")}
	}

	fx.render(Create(top, nil, ""))
	middleRenders, leafRenders = 0, 0

	setLeaf.Set("new")
	setTop.Set(1)
	fx.loop.RunUntilIdle()

	assert.Zero(t, middleRenders, "middle's props did not change")
	assert.Equal(t, 1, leafRenders)
	assert.Equal(t, "1<div>new</div>", fx.markup())
}

func TestHooks_DirtyFiberIsNotSkipped(t *testing.T) {
	fx := newFixture(t)
	var setChild Setter[int]
	childRenders := 0
	child := func(ctx *Context, props Props) any {
		childRenders++
		n, set := UseState(ctx, 0)
		setChild = set
		return n
	}
	var setParent Setter[int]
	parent := func(ctx *Context, props Props) any {
		n, set := UseState(ctx, 0)
		setParent = set
		return []any{Text(n), Create(child, nil, "")}
	}
	fx.render(Create(parent, nil, ""))
	childRenders = 0

	setChild.Set(7)
	setParent.Set(1)
	fx.loop.RunUntilIdle()

	assert.Equal(t, 1, childRenders)
	assert.Equal(t, "17", fx.markup())
}

type store struct {
	value     int
	listeners map[int]func()
	next      int
}

func (s *store) subscribe(fn func()) func() {
	if s.listeners == nil {
		s.listeners = map[int]func(){}
	}
	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *store) set(v int) {
	s.value = v
	for _, fn := range s.listeners {
		fn()
	}
}

func TestHooks_UseSyncExternalStore(t *testing.T) {
	fx := newFixture(t)
	s := &store{value: 1}
	renders := 0
	comp := func(ctx *Context, props Props) any {
		renders++
		return UseSyncExternalStore(ctx, s.subscribe, func() int { return s.value })
	}

	fx.render(Create(comp, nil, ""))
	assert.Equal(t, "1", fx.markup())
	assert.Len(t, s.listeners, 1)

	s.set(2)
	fx.loop.RunUntilIdle()
	assert.Equal(t, "2", fx.markup())

	renders = 0
	s.set(2)
	fx.loop.RunUntilIdle()
	assert.Zero(t, renders, "unchanged snapshot does not re-render")

	fx.root.Unmount()
	fx.loop.RunUntilIdle()
	assert.Empty(t, s.listeners)
}

func TestHooks_UseSyncExternalStoreResubscribes(t *testing.T) {
	fx := newFixture(t)
	a, b := &store{value: 1}, &store{value: 2}
	subA := func(fn func()) func() { return a.subscribe(fn) }
	subB := func(fn func()) func() { return b.subscribe(fn) }
	comp := func(ctx *Context, props Props) any {
		sub := props["sub"].(func(func()) func())
		from := props["from"].(*store)
		return UseSyncExternalStore(ctx, sub, func() int { return from.value })
	}

	fx.render(Create(comp, Props{"sub": subA, "from": a}, ""))
	assert.Equal(t, "1", fx.markup())
	assert.Len(t, a.listeners, 1)

	fx.render(Create(comp, Props{"sub": subB, "from": b}, ""))
	assert.Equal(t, "2", fx.markup())
	assert.Empty(t, a.listeners)
	assert.Len(t, b.listeners, 1)

	b.set(5)
	fx.loop.RunUntilIdle()
	assert.Equal(t, "5", fx.markup())
}

func TestHooks_ContextPrevProps(t *testing.T) {
	fx := newFixture(t)
	var prev []Props
	comp := func(ctx *Context, props Props) any {
		prev = append(prev, ctx.PrevProps())
		assert.Equal(t, props, ctx.Props())
		return nil
	}

	fx.render(Create(comp, Props{"v": 1}, ""))
	fx.render(Create(comp, Props{"v": 2}, ""))

	require.Len(t, prev, 2)
	assert.Nil(t, prev[0])
	assert.Equal(t, 1, prev[1]["v"])
}
