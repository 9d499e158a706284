package memhost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-drift/loom/pkg/host"
)

func TestDispatch_CaptureThenBubble(t *testing.T) {
	d := NewDocument()
	root := d.NewContainer("div", "root")
	btn := d.CreateStructural("button").(*Node)
	d.Append(root, btn)

	var order []string
	record := func(name string) host.EventHandler {
		return func(e host.Event) { order = append(order, name) }
	}
	d.AddEventListener(root, "click", host.ListenerOptions{Capture: true}, record("root-capture"))
	d.AddEventListener(root, "click", host.ListenerOptions{}, record("root-bubble"))
	d.AddEventListener(btn, "click", host.ListenerOptions{}, record("btn-bubble"))

	stopped := d.Dispatch(btn, "click", nil)

	assert.False(t, stopped)
	assert.Equal(t, []string{"root-capture", "btn-bubble", "root-bubble"}, order)
}

func TestDispatch_StopPropagation(t *testing.T) {
	d := NewDocument()
	root := d.NewContainer("div", "")
	btn := d.CreateStructural("button").(*Node)
	d.Append(root, btn)

	rootCalls := 0
	d.AddEventListener(root, "click", host.ListenerOptions{}, func(host.Event) { rootCalls++ })
	d.AddEventListener(btn, "click", host.ListenerOptions{}, func(e host.Event) { e.StopPropagation() })

	assert.True(t, d.Dispatch(btn, "click", nil))
	assert.Zero(t, rootCalls)
}

func TestDispatch_OnceListener(t *testing.T) {
	d := NewDocument()
	root := d.NewContainer("div", "")
	calls := 0
	d.AddEventListener(root, "focus", host.ListenerOptions{Once: true}, func(host.Event) { calls++ })

	d.Dispatch(root, "focus", nil)
	d.Dispatch(root, "focus", nil)

	assert.Equal(t, 1, calls)
	assert.Zero(t, root.ListenerCount())
}

func TestDispatch_ReplaceAndRemoveListener(t *testing.T) {
	d := NewDocument()
	root := d.NewContainer("div", "")
	var got string
	d.AddEventListener(root, "input", host.ListenerOptions{}, func(host.Event) { got = "first" })
	d.AddEventListener(root, "input", host.ListenerOptions{}, func(e host.Event) { got = e.Detail().(string) })
	assert.Equal(t, 1, root.ListenerCount())

	d.Dispatch(root, "input", "second")
	assert.Equal(t, "second", got)

	d.RemoveEventListener(root, "input", host.ListenerOptions{})
	assert.Zero(t, root.ListenerCount())
	assert.Equal(t, 1, d.Count(OpRemoveListener))
}

func TestDispatchWithoutTarget(t *testing.T) {
	d := NewDocument()
	root := d.NewContainer("div", "")
	var target host.Node = "unset"
	d.AddEventListener(root, "click", host.ListenerOptions{}, func(e host.Event) { target = e.Target() })
	d.DispatchWithoutTarget(root, "click")
	assert.Nil(t, target)
}
