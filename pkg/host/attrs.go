package host

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// reservedProps are consumed by the engine and never become attributes.
var reservedProps = map[string]bool{
	"children": true,
	"key":      true,
	"ref":      true,
	"target":   true,
}

var specialBooleanAttrs = map[string]bool{
	"itemscope":       true,
	"allowfullscreen": true,
	"formnovalidate":  true,
	"ismap":           true,
	"nomodule":        true,
	"novalidate":      true,
	"readonly":        true,
}

// IsReservedProp reports whether name is an engine prop.
func IsReservedProp(name string) bool {
	return reservedProps[name]
}

// IsSpecialBooleanAttr reports whether name is written as a bare
// attribute when truthy.
func IsSpecialBooleanAttr(name string) bool {
	return specialBooleanAttrs[name]
}

// IsEventProp reports whether name is an on<Name> handler prop.
func IsEventProp(name string) bool {
	if len(name) < 3 || !strings.HasPrefix(name, "on") {
		return false
	}
	return unicode.IsUpper(rune(name[2]))
}

var eventModifiers = []struct {
	suffix string
	apply  func(*ListenerOptions)
}{
	{"Once", func(o *ListenerOptions) { o.Once = true }},
	{"Passive", func(o *ListenerOptions) { o.Passive = true }},
	{"Capture", func(o *ListenerOptions) { o.Capture = true }},
}

// ParseEventName splits an on<Name> prop into its event name and listener
// options. Modifier suffixes may be stacked in any order:
//
//	ParseEventName("onClickCaptureOnce") // "click", {Capture: true, Once: true}
func ParseEventName(prop string) (string, ListenerOptions) {
	var opts ListenerOptions
	name := prop
	for {
		stripped := false
		for _, m := range eventModifiers {
			if len(name) > len(m.suffix)+2 && strings.HasSuffix(name, m.suffix) {
				name = strings.TrimSuffix(name, m.suffix)
				m.apply(&opts)
				stripped = true
			}
		}
		if !stripped {
			break
		}
	}
	return strings.ToLower(strings.TrimPrefix(name, "on")), opts
}

// includeBooleanAttr follows the markup rule: any value but false, nil or
// a numeric zero includes the attribute. The empty string counts as set.
func includeBooleanAttr(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return true
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}

// AttrPatch is the result of diffing two prop maps for a structural node.
type AttrPatch struct {
	// Set holds attributes to write, by name.
	Set map[string]string
	// Remove lists attributes to delete, sorted.
	Remove []string
	// Handlers is the complete handler table for the next props.
	Handlers Handlers
}

// Empty reports whether the patch changes no attributes.
func (p AttrPatch) Empty() bool {
	return len(p.Set) == 0 && len(p.Remove) == 0
}

// DiffAttrs computes the attribute patch that turns prev into next.
// Handlers are rebuilt from next on every call so the table always holds
// the latest callbacks.
func DiffAttrs(prev, next map[string]any) AttrPatch {
	patch := AttrPatch{Set: make(map[string]string)}
	removed := make(map[string]bool)

	for name, value := range next {
		if reservedProps[name] {
			continue
		}
		if IsEventProp(name) {
			fn := toEventHandler(value)
			if fn == nil {
				continue
			}
			event, opts := ParseEventName(name)
			if patch.Handlers == nil {
				patch.Handlers = make(Handlers)
			}
			patch.Handlers[HandlerKey{Event: event, Capture: opts.Capture}] = &Handler{Fn: fn, Options: opts}
			continue
		}
		old, had := prev[name]
		if had && sameValue(old, value) {
			continue
		}
		if specialBooleanAttrs[name] {
			if includeBooleanAttr(value) {
				patch.Set[name] = ""
			} else if had {
				removed[name] = true
			}
			continue
		}
		if value == nil || value == false {
			if had {
				removed[name] = true
			}
			continue
		}
		patch.Set[name] = fmt.Sprint(value)
	}

	for name := range prev {
		if reservedProps[name] || IsEventProp(name) {
			continue
		}
		if _, ok := next[name]; !ok {
			removed[name] = true
		}
	}

	for name := range removed {
		patch.Remove = append(patch.Remove, name)
	}
	sort.Strings(patch.Remove)
	return patch
}

func toEventHandler(v any) EventHandler {
	switch fn := v.(type) {
	case EventHandler:
		return fn
	case func(Event):
		return fn
	case func():
		if fn == nil {
			return nil
		}
		return func(Event) { fn() }
	default:
		return nil
	}
}

// sameValue compares attribute values without panicking on
// uncomparable types.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
