// Package core reconciles declarative element trees into a host tree.
//
// An Element describes one node of the desired tree: a tag, a text or
// comment leaf, a Fragment, or a Component. Elements are cheap and are
// rebuilt on every render. A Root keeps a persistent Fiber for every
// position of the last committed tree; each render pass matches the new
// elements against those fibers by identity, reuses what it can and asks
// the host.Host to create, patch, move or remove only what changed.
//
// # Identity
//
// A fiber's identity is its parent's identity, a colon, and either the
// element's explicit key or its type name and index:
//
//	app:List_0:ul_0:b      // keyed <li key="b">
//	app:List_0:ul_0:text_2 // third child, unkeyed text
//
// Keyed children keep their fiber (and therefore their state and host
// node) when their siblings are reordered.
//
// # Components and Hooks
//
// A Component is a plain function. It keeps local state through hooks,
// which must be called in the same order on every render:
//
//	func Counter(ctx *core.Context, props core.Props) any {
//	    count, setCount := core.UseState(ctx, 0)
//	    core.UseEffect(ctx, func() func() {
//	        log.Printf("count is %d", count)
//	        return nil
//	    }, core.Deps{count})
//	    return core.Tag("button", core.Props{
//	        "onClick": func() { setCount.Update(func(n int) int { return n + 1 }) },
//	    }, count)
//	}
//
// # Scheduling
//
// Render runs a pass synchronously. State setters only mark their fiber;
// the pending fibers are rendered in one microtask on the root's
// scheduler.Loop. Effect bodies and cleanups run later as sliced work, so
// a long effect queue never blocks a turn for more than the loop's frame
// budget.
//
// A Root and everything it creates belong to its loop goroutine. Use
// Loop.Post to deliver updates from other goroutines.
package core
