package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventName(t *testing.T) {
	tests := []struct {
		prop  string
		event string
		opts  ListenerOptions
	}{
		{"onClick", "click", ListenerOptions{}},
		{"onClickCapture", "click", ListenerOptions{Capture: true}},
		{"onClickCaptureOnce", "click", ListenerOptions{Capture: true, Once: true}},
		{"onScrollPassive", "scroll", ListenerOptions{Passive: true}},
		{"onKeyDown", "keydown", ListenerOptions{}},
	}
	for _, tt := range tests {
		t.Run(tt.prop, func(t *testing.T) {
			event, opts := ParseEventName(tt.prop)
			assert.Equal(t, tt.event, event)
			assert.Equal(t, tt.opts, opts)
		})
	}
}

func TestIsEventProp(t *testing.T) {
	assert.True(t, IsEventProp("onClick"))
	assert.False(t, IsEventProp("one"))
	assert.False(t, IsEventProp("on"))
	assert.False(t, IsEventProp("class"))
}

func TestDiffAttrs_Rules(t *testing.T) {
	prev := map[string]any{
		"class":    "a",
		"title":    "t",
		"readonly": true,
		"data-x":   "1",
	}
	next := map[string]any{
		"class":    "b",
		"title":    nil,
		"readonly": false,
		"hidden":   false,
		"ismap":    "",
		"tabindex": 3,
		"children": []any{"ignored"},
		"key":      "k",
	}
	patch := DiffAttrs(prev, next)

	assert.Equal(t, map[string]string{"class": "b", "ismap": "", "tabindex": "3"}, patch.Set)
	assert.Equal(t, []string{"data-x", "readonly", "title"}, patch.Remove)
	assert.Nil(t, patch.Handlers)
}

func TestDiffAttrs_UnchangedIsEmpty(t *testing.T) {
	props := map[string]any{"class": "a", "style": map[string]string{"color": "red"}}
	patch := DiffAttrs(props, map[string]any{"class": "a", "style": map[string]string{"color": "red"}})
	assert.True(t, patch.Empty())
}

func TestDiffAttrs_Handlers(t *testing.T) {
	calls := 0
	patch := DiffAttrs(nil, map[string]any{
		"onClick":        func() { calls++ },
		"onFocusCapture": EventHandler(func(Event) { calls += 10 }),
		"onBlur":         "not a func",
	})

	require.Len(t, patch.Handlers, 2)
	assert.True(t, patch.Empty())

	click := patch.Handlers[HandlerKey{Event: "click"}]
	require.NotNil(t, click)
	click.Fn(nil)
	focus := patch.Handlers[HandlerKey{Event: "focus", Capture: true}]
	require.NotNil(t, focus)
	assert.True(t, focus.Options.Capture)
	focus.Fn(nil)
	assert.Equal(t, 11, calls)

	assert.ElementsMatch(t, []string{"click", "focus"}, patch.Handlers.Events())
}
