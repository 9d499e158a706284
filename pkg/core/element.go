package core

import (
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-drift/loom/pkg/host"
)

// Props is the prop map of an element. Keys follow the conventions of
// package host: children, key, ref, target and on<Name> handlers are
// interpreted by the engine, everything else becomes an attribute.
type Props map[string]any

// Kind is the resolved category of an element type.
type Kind uint8

const (
	// KindText is a text leaf; its content is Props["content"].
	KindText Kind = iota
	// KindComment is a comment leaf; its content is Props["content"].
	KindComment
	// KindTag is a structural host node.
	KindTag
	// KindFragment groups children without a host node of its own.
	KindFragment
	// KindComponent is a user component.
	KindComponent

	kindRoot
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindTag:
		return "tag"
	case KindFragment:
		return "fragment"
	case KindComponent:
		return "component"
	case kindRoot:
		return "root"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Component renders props. It may return an *Element, a string or number
// (a text child), a slice of children, or nil for no output.
type Component func(ctx *Context, props Props) any

type fragmentType struct{}

// Fragment is the element type that groups children without an
// intervening host node. Pass it to MakeElement.
var Fragment = fragmentType{}

// Type is an element type resolved once at construction.
type Type struct {
	Kind      Kind
	Tag       string
	Component Component

	name string
	pc   uintptr
}

// Name is the type name used for fallback identities: the tag, "text",
// "comment", "Fragment" or the component's function name.
func (t Type) Name() string {
	switch t.Kind {
	case KindTag:
		return t.Tag
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return t.name
	default:
		return t.Kind.String()
	}
}

// Same reports whether two types would be rendered by the same fiber.
func (t Type) Same(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindTag:
		return t.Tag == o.Tag
	case KindComponent:
		return t.pc == o.pc
	default:
		return true
	}
}

func (t Type) isHost() bool {
	return t.Kind == KindText || t.Kind == KindComment || t.Kind == KindTag
}

var (
	textType     = Type{Kind: KindText}
	commentType  = Type{Kind: KindComment}
	fragmentKind = Type{Kind: KindFragment}
)

func componentType(fn Component) Type {
	pc := reflect.ValueOf(fn).Pointer()
	return Type{Kind: KindComponent, Component: fn, name: funcName(pc), pc: pc}
}

// funcName trims a runtime function name to its package-local part,
// e.g. "github.com/acme/app/ui.List" becomes "List".
func funcName(pc uintptr) string {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "Component"
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// resolveType maps a constructor argument to a Type. ok is false for
// values that cannot be rendered.
func resolveType(typ any) (Type, bool) {
	switch t := typ.(type) {
	case string:
		switch t {
		case "text", "":
			return textType, true
		case "comment":
			return commentType, true
		default:
			return Type{Kind: KindTag, Tag: t}, true
		}
	case fragmentType:
		return fragmentKind, true
	case Component:
		if t == nil {
			return Type{}, false
		}
		return componentType(t), true
	case func(*Context, Props) any:
		if t == nil {
			return Type{}, false
		}
		return componentType(t), true
	case Type:
		return t, true
	default:
		return Type{}, false
	}
}

// Element describes one node of the desired tree for a single render
// pass. Elements are never mutated after construction.
type Element struct {
	Type  Type
	Props Props
	Key   string
}

// MakeElement builds an element. typ is a tag name, "text", "comment",
// Fragment or a Component; anything else yields an empty text element.
// When key is empty, a "key" prop is used instead. Leaf content is
// coerced to a string the same way Text does.
func MakeElement(typ any, props Props, key string) *Element {
	t, ok := resolveType(typ)
	if !ok {
		return Text("")
	}
	p := make(Props, len(props))
	for k, v := range props {
		p[k] = v
	}
	if key == "" {
		if k, ok := p["key"]; ok && k != nil {
			key = fmt.Sprint(k)
		}
	}
	if t.Kind == KindText || t.Kind == KindComment {
		p["content"] = textOf(p["content"])
	}
	return &Element{Type: t, Props: p, Key: key}
}

// Tag builds a structural element. Children are normalized lazily.
func Tag(tag string, props Props, children ...any) *Element {
	el := MakeElement(tag, props, "")
	if len(children) > 0 {
		el.Props["children"] = children
	}
	return el
}

// Text builds a text leaf. Numbers and fmt.Stringers are formatted.
func Text(content any) *Element {
	return &Element{Type: textType, Props: Props{"content": textOf(content)}}
}

// Comment builds a comment leaf.
func Comment(content string) *Element {
	return &Element{Type: commentType, Props: Props{"content": content}}
}

// Group builds a Fragment element.
func Group(children ...any) *Element {
	return &Element{Type: fragmentKind, Props: Props{"children": children}}
}

// Portal builds a Fragment whose children are mounted under target
// instead of the logical parent's host node.
func Portal(target host.Node, children ...any) *Element {
	return &Element{Type: fragmentKind, Props: Props{"children": children, "target": target}}
}

// Create builds a component element.
func Create(c Component, props Props, key string) *Element {
	return MakeElement(c, props, key)
}

// Content returns the content of a text or comment element.
func (e *Element) Content() string {
	s, _ := e.Props["content"].(string)
	return s
}

// isPortal reports whether the element is a fragment carrying a target.
func (e *Element) isPortal() bool {
	if e.Type.Kind != KindFragment {
		return false
	}
	_, ok := e.Props["target"]
	return ok
}

func textOf(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case fmt.Stringer:
		return c.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(c)
	default:
		return ""
	}
}

// normalizeChild turns one child value into an element. Slices become
// fragments; nil, booleans and unknown values become empty text.
func normalizeChild(v any) *Element {
	switch c := v.(type) {
	case nil:
		return Text("")
	case *Element:
		if c == nil {
			return Text("")
		}
		return c
	case Element:
		return &c
	case string, fmt.Stringer, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return Text(c)
	case []any:
		return Group(c...)
	case []*Element:
		return Group(elementsToAny(c)...)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return Group(sliceToAny(rv)...)
	}
	return Text("")
}

// childElements normalizes a children prop or component output. A
// top-level slice contributes one child per item; nested slices become
// fragments.
func childElements(children any) []*Element {
	var items []any
	switch c := children.(type) {
	case nil:
		return nil
	case []any:
		items = c
	case []*Element:
		items = elementsToAny(c)
	default:
		if rv := reflect.ValueOf(c); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			items = sliceToAny(rv)
		} else {
			items = []any{c}
		}
	}
	out := make([]*Element, len(items))
	for i, item := range items {
		out[i] = normalizeChild(item)
	}
	return out
}

func elementsToAny(els []*Element) []any {
	out := make([]any, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}

func sliceToAny(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
