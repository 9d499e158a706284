package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/go-drift/loom/pkg/errors"
	"github.com/go-drift/loom/pkg/events"
	"github.com/go-drift/loom/pkg/host"
	"github.com/go-drift/loom/pkg/scheduler"
)

const tracerName = "github.com/go-drift/loom/pkg/core"

// Root renders element trees into a host container. It owns the fiber
// arena, the identity pool and the pending render set, so independent
// roots never share state. A Root must only be used from its loop's
// goroutine.
type Root struct {
	id        string
	container host.Node
	host      host.Host
	loop      *scheduler.Loop
	logger    *zap.Logger
	observer  PassObserver
	tracer    trace.Tracer
	events    *events.Delegator

	arena arena
	pool  *pool
	memo  equalMemo
	owner *BuildOwner
	fiber FiberID

	pass    uint64
	stats   PassStats
	pending []FiberID
}

// CreateRoot creates a root rendering into container. The root identity
// is the container's id, or a random UUID when it has none. It panics
// with an EngineError when container is nil.
func CreateRoot(container host.Node, h host.Host, opts ...Option) *Root {
	if container == nil {
		panic(&errors.EngineError{
			Op:        "core.CreateRoot",
			Kind:      errors.KindHost,
			Err:       errors.ErrNilContainer,
			Timestamp: time.Now(),
		})
	}
	r := &Root{
		container: container,
		host:      h,
		logger:    zap.NewNop(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loop == nil {
		r.loop = scheduler.New(scheduler.WithLogger(r.logger))
	}
	r.id = h.ID(container)
	if r.id == "" {
		r.id = uuid.NewString()
	}
	r.pool = newPool(r.logger)
	r.owner = NewBuildOwner()
	r.owner.OnNeedsFlush = func() {
		r.loop.QueueMicrotaskOnce(r, r.Flush)
	}
	r.events = events.NewDelegator(container, h, r.logger)

	rf := r.arena.alloc()
	rf.key = r.id
	rf.typ = Type{Kind: kindRoot}
	rf.status = Mounted
	rf.stateNode = container
	rf.pendingProps = Props{}
	r.fiber = rf.id
	return r
}

// ID returns the root identity, the prefix of every fiber identity.
func (r *Root) ID() string { return r.id }

// Loop returns the loop the root schedules on.
func (r *Root) Loop() *scheduler.Loop { return r.loop }

// Container returns the host container.
func (r *Root) Container() host.Node { return r.container }

// Events returns the root's event delegator.
func (r *Root) Events() *events.Delegator { return r.events }

// LastPass returns the statistics of the most recent pass.
func (r *Root) LastPass() PassStats { return r.stats }

// Render reconciles el against the previously committed tree in one
// synchronous pass. Effects are queued on the loop. Rendering nil removes
// everything.
func (r *Root) Render(el *Element) {
	rf := r.arena.get(r.fiber)
	if el == nil {
		rf.pendingProps = Props{}
	} else {
		rf.pendingProps = Props{"children": el}
	}
	r.performPass(rf)
}

// Flush renders every fiber with a pending state update now instead of
// waiting for the scheduled microtask.
func (r *Root) Flush() {
	r.owner.FlushBuild(&r.arena, r.performPass)
}

// Unmount removes the rendered tree, queues every cleanup and removes the
// delegated listeners from the container.
func (r *Root) Unmount() {
	r.Render(nil)
	r.events.Close()
}

func (r *Root) scheduleRender(f *Fiber) {
	r.owner.ScheduleBuild(f)
}

// performPass re-renders target and reconciles its subtree.
func (r *Root) performPass(target *Fiber) {
	start := time.Now()
	_, span := r.tracer.Start(context.Background(), "loom.pass",
		trace.WithAttributes(attribute.String("loom.target", target.key)))
	defer span.End()

	r.pass++
	r.stats = PassStats{}
	r.pending = r.pending[:0]
	r.memo.reset()
	r.pool.populate(&r.arena, target)
	if target.memoizedProps != nil {
		target.status = Updated
	}

	r.renderFiber(target)
	removed := r.pool.drain()

	r.commit(target, removed)
	r.teardown(removed)
	for _, id := range r.pending {
		r.loop.QueueWork(func() { r.flushEffects(id) })
	}
	target.status = Updated

	elapsed := time.Since(start)
	span.SetAttributes(
		attribute.Int("loom.rendered", r.stats.Rendered),
		attribute.Int("loom.mounted", r.stats.Mounted),
		attribute.Int("loom.removed", r.stats.Removed),
		attribute.Int("loom.moved", r.stats.Moved),
	)
	r.logger.Debug("render pass",
		zap.String("target", target.key),
		zap.Uint64("pass", r.pass),
		zap.Int("rendered", r.stats.Rendered),
		zap.Int("skipped", r.stats.Skipped),
		zap.Int("mounted", r.stats.Mounted),
		zap.Int("removed", r.stats.Removed),
		zap.Int("moved", r.stats.Moved),
		zap.Duration("elapsed", elapsed))
	if r.observer != nil {
		r.observer.ObservePass(target.key, elapsed, r.stats)
	}
}

// teardown unmounts removed fibers. Their cleanups are collected in
// parent-to-child order before the arena slots are released, and run in
// a single work item.
func (r *Root) teardown(removed []FiberID) {
	var cleanups []func()
	var dead []*Fiber
	for _, id := range removed {
		f := r.arena.get(id)
		if f == nil {
			continue
		}
		f.status = Unmounted
		cleanups = append(cleanups, f.cleanups()...)
		dead = append(dead, f)
	}
	for _, f := range dead {
		r.arena.release(f)
	}
	r.stats.Removed += len(dead)
	if len(cleanups) > 0 {
		r.loop.QueueWork(func() { r.runCleanups(cleanups) })
	}
}

// runCleanups runs fns in order. If one panics, the rest are queued for
// a later slice and the panic propagates.
func (r *Root) runCleanups(fns []func()) {
	i := 0
	defer func() {
		if i < len(fns) {
			if rest := fns[i+1:]; len(rest) > 0 {
				r.loop.QueueWork(func() { r.runCleanups(rest) })
			}
		}
	}()
	for ; i < len(fns); i++ {
		fns[i]()
	}
}

// flushEffects runs a fiber's queued cleanups and then its queued effect
// bodies. If a body panics, the remaining bodies are flushed in a later
// slice.
func (r *Root) flushEffects(id FiberID) {
	f := r.arena.get(id)
	if f == nil || f.status == Unmounted {
		return
	}
	defer func() {
		if len(f.effects) > 0 || len(f.cleanupEffects) > 0 {
			r.loop.QueueWork(func() { r.flushEffects(id) })
		}
	}()
	for len(f.cleanupEffects) > 0 {
		c := f.cleanupEffects[0]
		f.cleanupEffects = f.cleanupEffects[1:]
		c()
	}
	for len(f.effects) > 0 {
		job := f.effects[0]
		f.effects = f.effects[1:]
		// A job from an earlier render of this fiber may have run first
		// in this flush; its cleanup precedes the next body.
		if c := job.slot.cleanup; c != nil && !job.slot.mountScoped {
			job.slot.cleanup = nil
			c()
		}
		if cleanup := job.body(job.cur, job.prev); cleanup != nil {
			job.slot.cleanup = cleanup
		}
	}
}
