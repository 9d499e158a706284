package core

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/go-drift/loom/pkg/errors"
	"github.com/go-drift/loom/pkg/host/memhost"
	"github.com/go-drift/loom/pkg/scheduler"
)

type fixture struct {
	doc       *memhost.Document
	container *memhost.Node
	root      *Root
	loop      *scheduler.Loop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc := memhost.NewDocument()
	container := doc.NewContainer("div", "app")
	loop := scheduler.New()
	root := CreateRoot(container, doc, WithLoop(loop), WithLogger(zaptest.NewLogger(t)))
	return &fixture{doc: doc, container: container, root: root, loop: loop}
}

// render renders el, drains the loop and clears the operation log of
// everything that happened before.
func (fx *fixture) render(el *Element) {
	fx.doc.ResetOps()
	fx.root.Render(el)
	fx.loop.RunUntilIdle()
}

func (fx *fixture) markup() string { return fx.container.InnerMarkup() }

func (fx *fixture) ops(kind memhost.OpKind) []memhost.Op {
	return fx.doc.Filter(func(op memhost.Op) bool { return op.Kind == kind })
}

// engineError runs fn and returns the EngineError it panics with.
func engineError(t *testing.T, fn func()) (err *errors.EngineError) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		var ok bool
		err, ok = r.(*errors.EngineError)
		require.True(t, ok, "panic value %T is not an EngineError", r)
	}()
	fn()
	return nil
}
