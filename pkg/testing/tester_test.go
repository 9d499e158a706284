package testing

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/loom/pkg/core"
)

func Counter(ctx *core.Context, props core.Props) any {
	count, setCount := core.UseState(ctx, 0)
	return core.Tag("div", nil,
		core.Tag("button", core.Props{"onClick": func() {
			setCount.Update(func(n int) int { return n + 1 })
		}}, "+"),
		core.Tag("span", nil, strconv.Itoa(count)),
	)
}

func TestNewTesterWithT_Defaults(t *testing.T) {
	tester := NewTesterWithT(t)

	assert.Equal(t, "app", tester.Root().ID())
	assert.NotNil(t, tester.Clock())
	assert.False(t, tester.Find(ByTag("div")).Exists())
}

func TestRender_MountsTree(t *testing.T) {
	tester := NewTesterWithT(t)

	require.NoError(t, tester.Render(core.Create(Counter, nil, "")))
	assert.Equal(t, "<div><button>+</button><span>0</span></div>", tester.Markup())
	assert.NotEmpty(t, tester.Ops())
}

func TestTap_UpdatesState(t *testing.T) {
	tester := NewTesterWithT(t)
	require.NoError(t, tester.Render(core.Create(Counter, nil, "")))

	require.NoError(t, tester.Tap(ByTag("button")))
	require.NoError(t, tester.Tap(ByTag("button")))

	assert.True(t, tester.Find(ByText("2")).Exists())
	assert.Equal(t, "<div><button>+</button><span>2</span></div>", tester.Markup())
}

func TestTap_NoMatch(t *testing.T) {
	tester := NewTesterWithT(t)
	require.NoError(t, tester.Render(core.Text("plain")))

	err := tester.Tap(ByTag("button"))
	assert.ErrorContains(t, err, "ByTag(button)")
}

func TestCleanup_RunsEffectCleanups(t *testing.T) {
	tester := NewTester()
	cleaned := false
	comp := func(ctx *core.Context, props core.Props) any {
		core.UseEffect(ctx, func() func() {
			return func() { cleaned = true }
		}, core.Deps{})
		return nil
	}
	require.NoError(t, tester.Render(core.Create(comp, nil, "")))

	tester.Cleanup()
	assert.True(t, cleaned)
	assert.Empty(t, tester.Markup())
}

func TestPumpAndSettle_Timeout(t *testing.T) {
	tester := NewTesterWithT(t)
	loop := tester.Loop()
	remaining := 50
	var requeue func()
	requeue = func() {
		if remaining--; remaining > 0 {
			loop.QueueTask(requeue)
		}
	}
	loop.QueueTask(requeue)

	assert.ErrorIs(t, tester.PumpAndSettle(10), ErrSettleTimeout)
}

func TestFrameBudget_DefersWork(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.SetFrameBudget(5 * time.Millisecond)
	tester.Clock().SetStep(5 * time.Millisecond)

	var order []string
	effect := func(name string) core.Component {
		return func(ctx *core.Context, props core.Props) any {
			core.UseEffect(ctx, func() func() {
				order = append(order, name)
				return nil
			}, core.Deps{})
			return nil
		}
	}
	tester.Root().Render(core.Group(
		core.Create(effect("a"), nil, "a"),
		core.Create(effect("b"), nil, "b"),
	))

	assert.True(t, tester.Pump())
	assert.Len(t, order, 1)
	require.NoError(t, tester.PumpAndSettle(DefaultMaxTurns))
	assert.Len(t, order, 2)
	assert.Equal(t, uint64(1), tester.Loop().Stats().Deferred)
}

func TestFakeClock(t *testing.T) {
	clk := NewFakeClock()
	start := clk.Now()

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, clk.Now().Sub(start))

	target := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	clk.Set(target)
	assert.True(t, clk.Now().Equal(target))

	clk.SetStep(time.Second)
	first := clk.Now()
	assert.Equal(t, time.Second, clk.Now().Sub(first))
}

func TestSnapshot_MatchesGolden(t *testing.T) {
	tester := NewTesterWithT(t)
	require.NoError(t, tester.Render(core.Tag("ul", core.Props{"class": "todo"},
		core.Tag("li", core.Props{"key": "a"}, "x"),
	)))

	tester.CaptureSnapshot().MatchesGolden(t, "todo_list")
}
