package testing

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/go-drift/loom/pkg/core"
	"github.com/go-drift/loom/pkg/host/memhost"
	"github.com/go-drift/loom/pkg/scheduler"
)

const (
	// DefaultContainerID is the id of the container the tester renders into.
	DefaultContainerID = "app"
	// DefaultMaxTurns bounds PumpAndSettle when Render drives the loop.
	DefaultMaxTurns = 1000
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its turn limit.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: loop did not go idle")

// Tester renders element trees into an in-memory document. It drives the
// same reconcile, commit and effect phases as a real host but on a loop
// it controls, with a fake clock for slice budgeting.
type Tester struct {
	doc       *memhost.Document
	container *memhost.Node
	root      *core.Root
	loop      *scheduler.Loop
	clock     *FakeClock
	budget    time.Duration
	logger    *zap.Logger
	options   []core.Option
}

// NewTester creates a tester with a fresh document. Call Cleanup when
// done, or use NewTesterWithT instead.
func NewTester() *Tester {
	doc := memhost.NewDocument()
	return &Tester{
		doc:       doc,
		container: doc.NewContainer("div", DefaultContainerID),
		clock:     NewFakeClock(),
		budget:    scheduler.DefaultFrameBudget,
		logger:    zap.NewNop(),
	}
}

// NewTesterWithT creates a tester that logs through t and cleans up via
// t.Cleanup. This is the recommended constructor for tests.
func NewTesterWithT(t testing.TB) *Tester {
	tester := NewTester()
	tester.logger = zaptest.NewLogger(t)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the tree and runs the queued cleanups.
func (t *Tester) Cleanup() {
	if t.root != nil {
		t.root.Unmount()
		t.loop.RunUntilIdle()
		t.root = nil
	}
}

// SetFrameBudget sets the work slice budget. Must be called before the
// first Render.
func (t *Tester) SetFrameBudget(d time.Duration) {
	t.budget = d
}

// SetOptions adds root options such as core.WithMetrics. Must be called
// before the first Render.
func (t *Tester) SetOptions(opts ...core.Option) {
	t.options = append(t.options, opts...)
}

// Clock returns the fake clock the loop budgets against.
func (t *Tester) Clock() *FakeClock {
	return t.clock
}

// Document returns the in-memory host.
func (t *Tester) Document() *memhost.Document {
	return t.doc
}

// Container returns the node the tree renders into.
func (t *Tester) Container() *memhost.Node {
	return t.container
}

// Root returns the root, creating it on first use.
func (t *Tester) Root() *core.Root {
	if t.root == nil {
		t.loop = scheduler.New(
			scheduler.WithClock(t.clock),
			scheduler.WithFrameBudget(t.budget),
			scheduler.WithLogger(t.logger),
		)
		opts := append([]core.Option{core.WithLoop(t.loop), core.WithLogger(t.logger)}, t.options...)
		t.root = core.CreateRoot(t.container, t.doc, opts...)
	}
	return t.root
}

// Loop returns the loop driving the root.
func (t *Tester) Loop() *scheduler.Loop {
	t.Root()
	return t.loop
}

// Render clears the operation log, reconciles el and runs the loop until
// every effect has flushed.
func (t *Tester) Render(el *core.Element) error {
	root := t.Root()
	t.doc.ResetOps()
	root.Render(el)
	return t.PumpAndSettle(DefaultMaxTurns)
}

// Pump runs a single loop turn and reports whether anything ran.
func (t *Tester) Pump() bool {
	return t.Loop().Tick()
}

// PumpAndSettle runs loop turns until the loop is idle or maxTurns turns
// have run. Returns ErrSettleTimeout if the loop does not go idle.
func (t *Tester) PumpAndSettle(maxTurns int) error {
	loop := t.Loop()
	for i := 0; i < maxTurns; i++ {
		if !loop.Tick() && loop.Idle() {
			return nil
		}
	}
	if loop.Idle() {
		return nil
	}
	return ErrSettleTimeout
}

// Markup returns the container's inner markup.
func (t *Tester) Markup() string {
	return t.container.InnerMarkup()
}

// Ops returns the host operations recorded since the last Render.
func (t *Tester) Ops() []memhost.Op {
	return t.doc.Ops()
}

// Find evaluates a finder against the current fiber tree.
func (t *Tester) Find(finder Finder) FinderResult {
	if t.root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		fibers: finder.Evaluate(t.root),
		finder: finder,
	}
}
