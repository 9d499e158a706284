package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/loom/pkg/errors"
)

// DefaultFrameBudget bounds how long one work slice may run before the
// remaining items are deferred to a later turn.
const DefaultFrameBudget = 8 * time.Millisecond

// Observer is notified after every work slice. pkg/metrics implements it.
type Observer interface {
	ObserveSlice(items int, elapsed time.Duration, deferred bool)
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the clock used for slice budgeting.
func WithClock(c Clock) Option {
	return func(l *Loop) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithFrameBudget sets the work slice budget. Non-positive values keep
// the default.
func WithFrameBudget(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.budget = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithObserver registers a slice observer.
func WithObserver(o Observer) Option {
	return func(l *Loop) { l.observer = o }
}

// Stats counts what the loop has run.
type Stats struct {
	Tasks      uint64
	Microtasks uint64
	WorkItems  uint64
	Slices     uint64
	Deferred   uint64
}

type microtask struct {
	key any
	fn  func()
}

// Loop is a single-goroutine cooperative event loop.
type Loop struct {
	clock    Clock
	budget   time.Duration
	logger   *zap.Logger
	observer Observer

	mu     sync.Mutex
	posted []func()
	wake   chan struct{}

	tasks     []func()
	micro     []microtask
	microKeys map[any]struct{}
	work      []func()
	// sliceQueued is true while a work slice is queued or running.
	sliceQueued bool
	stats       Stats
}

// New creates an idle loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		clock:     SystemClock,
		budget:    DefaultFrameBudget,
		logger:    zap.NewNop(),
		wake:      make(chan struct{}, 1),
		microKeys: make(map[any]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FrameBudget returns the work slice budget.
func (l *Loop) FrameBudget() time.Duration { return l.budget }

// Stats returns a snapshot of the loop counters.
func (l *Loop) Stats() Stats { return l.stats }

// Post schedules fn as a task. It is safe to call from any goroutine and
// wakes a loop blocked in Run.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// QueueTask schedules fn to run in a later turn.
func (l *Loop) QueueTask(fn func()) {
	if fn != nil {
		l.tasks = append(l.tasks, fn)
	}
}

// QueueMicrotask schedules fn to run before the next turn begins.
func (l *Loop) QueueMicrotask(fn func()) {
	if fn != nil {
		l.micro = append(l.micro, microtask{fn: fn})
	}
}

// QueueMicrotaskOnce schedules fn unless a microtask with the same key is
// already pending. The key is released when the microtask starts, so fn
// may queue itself again. It reports whether fn was queued.
func (l *Loop) QueueMicrotaskOnce(key any, fn func()) bool {
	if fn == nil {
		return false
	}
	if _, pending := l.microKeys[key]; pending {
		return false
	}
	l.microKeys[key] = struct{}{}
	l.micro = append(l.micro, microtask{key: key, fn: fn})
	return true
}

// QueueWork appends fn to the sliced work queue.
func (l *Loop) QueueWork(fn func()) {
	if fn == nil {
		return
	}
	l.work = append(l.work, fn)
	if !l.sliceQueued {
		l.sliceQueued = true
		l.tasks = append(l.tasks, l.runSlice)
	}
}

// Idle reports whether nothing is queued.
func (l *Loop) Idle() bool {
	l.mu.Lock()
	posted := len(l.posted)
	l.mu.Unlock()
	return posted == 0 && len(l.tasks) == 0 && len(l.micro) == 0 && len(l.work) == 0
}

// Pending returns the queue lengths.
func (l *Loop) Pending() (tasks, microtasks, work int) {
	l.mu.Lock()
	posted := len(l.posted)
	l.mu.Unlock()
	return len(l.tasks) + posted, len(l.micro), len(l.work)
}

// Tick runs one turn: pending microtasks, then one task followed by the
// microtasks it queued. It reports whether anything ran.
func (l *Loop) Tick() bool {
	l.takePosted()
	ran := l.drainMicrotasks()
	if len(l.tasks) == 0 {
		return ran
	}
	task := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	l.stats.Tasks++
	task()
	l.drainMicrotasks()
	return true
}

// RunUntilIdle runs turns until every queue is empty.
func (l *Loop) RunUntilIdle() {
	for l.Tick() {
	}
}

// Run drives the loop until ctx is cancelled. Panics are recovered per
// turn and reported through pkg/errors.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for l.safeTick() {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) safeTick() (ran bool) {
	defer errors.Guard("scheduler.tick", func(error) { ran = true })
	return l.Tick()
}

func (l *Loop) takePosted() {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()
	l.tasks = append(l.tasks, posted...)
}

func (l *Loop) drainMicrotasks() bool {
	ran := false
	for len(l.micro) > 0 {
		m := l.micro[0]
		l.micro[0] = microtask{}
		l.micro = l.micro[1:]
		if m.key != nil {
			delete(l.microKeys, m.key)
		}
		l.stats.Microtasks++
		ran = true
		m.fn()
	}
	return ran
}

// runSlice runs work items until the queue empties or the budget is
// spent. At least one item runs per slice.
func (l *Loop) runSlice() {
	start := l.clock.Now()
	items := 0
	defer func() {
		l.sliceQueued = false
		l.stats.Slices++
		deferred := len(l.work) > 0
		if deferred {
			l.stats.Deferred++
			l.sliceQueued = true
			l.tasks = append(l.tasks, l.runSlice)
			l.logger.Debug("work slice deferred",
				zap.Int("ran", items),
				zap.Int("remaining", len(l.work)),
				zap.Duration("budget", l.budget))
		}
		if l.observer != nil {
			l.observer.ObserveSlice(items, l.clock.Now().Sub(start), deferred)
		}
	}()
	for len(l.work) > 0 {
		item := l.work[0]
		l.work[0] = nil
		l.work = l.work[1:]
		items++
		l.stats.WorkItems++
		item()
		if l.clock.Now().Sub(start) >= l.budget {
			break
		}
	}
}
