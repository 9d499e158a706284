package memhost

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/go-drift/loom/pkg/host"
)

// NodeKind identifies the category of an in-memory node.
type NodeKind int

const (
	// ElementNode is a tagged structural node.
	ElementNode NodeKind = iota
	// TextNode is a text leaf.
	TextNode
	// CommentNode is a comment leaf.
	CommentNode
	// FragmentNode is a detached grouping node.
	FragmentNode
)

func (k NodeKind) String() string {
	switch k {
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case FragmentNode:
		return "fragment"
	default:
		return "element"
	}
}

type listener struct {
	event string
	opts  host.ListenerOptions
	fn    host.EventHandler
}

// Node is a node of the in-memory document.
type Node struct {
	Kind    NodeKind
	Tag     string
	Content string
	Attrs   map[string]string

	serial    int
	parent    *Node
	children  []*Node
	handlers  host.Handlers
	listeners []listener
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Attr returns the value of an attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Handlers returns the handler table registered on the node.
func (n *Node) Handlers() host.Handlers { return n.handlers }

// ListenerCount returns the number of native listeners attached.
func (n *Node) ListenerCount() int { return len(n.listeners) }

// Label is a short, stable description used in operation logs.
func (n *Node) Label() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case TextNode:
		return fmt.Sprintf("text(%q)", n.Content)
	case CommentNode:
		return fmt.Sprintf("comment(%q)", n.Content)
	case FragmentNode:
		return fmt.Sprintf("fragment#%d", n.serial)
	}
	if id, ok := n.Attrs["id"]; ok {
		return n.Tag + "#" + id
	}
	return fmt.Sprintf("%s@%d", n.Tag, n.serial)
}

// TextContent concatenates the content of all descendant text nodes.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.walk(func(c *Node) {
		if c.Kind == TextNode {
			sb.WriteString(c.Content)
		}
	})
	return sb.String()
}

// Walk visits n and its descendants in document order.
func (n *Node) Walk(fn func(*Node)) { n.walk(fn) }

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	p := n.parent
	if i := p.indexOf(n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}

// insertAt places child at index i of n's child list. The caller detaches
// child first. Fragments are flattened into their children.
func (n *Node) insertAt(i int, child *Node) {
	moving := []*Node{child}
	if child.Kind == FragmentNode {
		moving = child.children
		child.children = nil
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	for _, c := range moving {
		c.parent = n
	}
	tail := append([]*Node(nil), n.children[i:]...)
	n.children = append(append(n.children[:i], moving...), tail...)
}

// Markup serializes the node and its subtree.
func (n *Node) Markup() string {
	var sb strings.Builder
	n.writeMarkup(&sb)
	return sb.String()
}

// InnerMarkup serializes the node's children.
func (n *Node) InnerMarkup() string {
	var sb strings.Builder
	for _, c := range n.children {
		c.writeMarkup(&sb)
	}
	return sb.String()
}

func (n *Node) writeMarkup(sb *strings.Builder) {
	switch n.Kind {
	case TextNode:
		sb.WriteString(html.EscapeString(n.Content))
		return
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.Content)
		sb.WriteString("-->")
		return
	case FragmentNode:
		for _, c := range n.children {
			c.writeMarkup(sb)
		}
		return
	}
	sb.WriteString("<")
	sb.WriteString(n.Tag)
	names := make([]string, 0, len(n.Attrs))
	for name := range n.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(" ")
		sb.WriteString(name)
		if v := n.Attrs[name]; v != "" {
			sb.WriteString(`="`)
			sb.WriteString(html.EscapeString(v))
			sb.WriteString(`"`)
		}
	}
	sb.WriteString(">")
	for _, c := range n.children {
		c.writeMarkup(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteString(">")
}
