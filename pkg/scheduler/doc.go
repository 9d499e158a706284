// Package scheduler provides the cooperative event loop the engine runs on.
//
// A Loop owns three queues, all serviced on a single goroutine:
//
//   - tasks: one task runs per turn (a macrotask)
//   - microtasks: drained completely after every task, before the next turn
//   - work: small items run in slices bounded by a frame budget
//
// State updates schedule their render pass with QueueMicrotaskOnce, so any
// number of updates in the same turn collapse into one pass. Effects are
// queued with QueueWork; when a slice exhausts its budget the remaining
// items are deferred to a later turn instead of blocking it.
//
// Only Post is safe to call from other goroutines. Everything else must be
// called from the goroutine that drives the loop (Tick, RunUntilIdle or Run).
//
// A panic raised by a task, microtask or work item propagates out of Tick.
// Items not yet run stay queued, and a pending work slice is rescheduled,
// so the next turn resumes where the failed one stopped. Run recovers
// such panics and reports them through pkg/errors.
package scheduler
