// Package treefile reads element trees from YAML.
//
// A tree file has a single element under "root". An element is either a
// scalar, which is shorthand for a text leaf, or a mapping with exactly
// one kind field:
//
//	root:
//	  tag: ul
//	  props: {class: todo}
//	  children:
//	    - tag: li
//	      key: a
//	      children: [first]
//	    - comment: separator
//	    - fragment:
//	        - second
//	        - third
//	    - component: List
//	      props: {items: [x, y]}
//	    - portal: modal
//	      children: [overlay]
//
// Components are looked up in a Registry; portal targets by id through
// Decoder.Target.
package treefile

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/loom/pkg/core"
	"github.com/go-drift/loom/pkg/errors"
	"github.com/go-drift/loom/pkg/host"
)

// Registry maps component names used in tree files to components.
type Registry map[string]core.Component

// Names returns the registered names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// File is the top-level document.
type File struct {
	Root yaml.Node `yaml:"root"`
}

// Decoder turns tree files into elements.
type Decoder struct {
	// Components resolves "component" fields.
	Components Registry
	// Target resolves "portal" fields to host nodes. When nil, portals
	// are rejected.
	Target func(id string) host.Node
}

var kindFields = []string{"tag", "text", "comment", "fragment", "component", "portal"}

// ReadFile decodes the tree file at path.
func (d *Decoder) ReadFile(path string) (*core.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree file: %w", err)
	}
	el, err := d.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return el, nil
}

// Decode decodes a tree file. Malformed nodes are reported as an
// EngineError of kind parsing wrapping a ParseError.
func (d *Decoder) Decode(data []byte) (*core.Element, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, parsingError(err)
	}
	if f.Root.Kind == 0 {
		return nil, parsingError(&errors.ParseError{Path: "root", DataType: "element", Got: nil})
	}
	el, err := d.element(&f.Root, "root")
	if err != nil {
		return nil, parsingError(err)
	}
	return el, nil
}

func parsingError(err error) error {
	return &errors.EngineError{
		Op:        "treefile.Decode",
		Kind:      errors.KindParsing,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// raw is the mapping form of an element.
type raw struct {
	Tag       *string        `yaml:"tag"`
	Text      *yaml.Node     `yaml:"text"`
	Comment   *string        `yaml:"comment"`
	Fragment  []yaml.Node    `yaml:"fragment"`
	Component *string        `yaml:"component"`
	Portal    *string        `yaml:"portal"`
	Key       string         `yaml:"key"`
	Props     map[string]any `yaml:"props"`
	Children  []yaml.Node    `yaml:"children"`
}

func (d *Decoder) element(n *yaml.Node, path string) (*core.Element, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return core.Text(v), nil
	case yaml.MappingNode:
	default:
		return nil, &errors.ParseError{Path: path, DataType: "element", Got: nodeValue(n)}
	}

	kinds := kindsOf(n)
	if len(kinds) != 1 {
		return nil, &errors.ParseError{Path: path, DataType: "element with one of " + fmt.Sprint(kindFields), Got: kinds}
	}
	var r raw
	if err := n.Decode(&r); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	children, err := d.children(r.Children, path+".children")
	if err != nil {
		return nil, err
	}
	props := core.Props{}
	for k, v := range r.Props {
		props[k] = v
	}
	if len(children) > 0 {
		props["children"] = children
	}

	switch kinds[0] {
	case "tag":
		if r.Tag == nil || *r.Tag == "" {
			return nil, &errors.ParseError{Path: path + ".tag", DataType: "tag name", Got: nil}
		}
		return core.MakeElement(*r.Tag, props, r.Key), nil
	case "text":
		var v any
		if r.Text != nil {
			if err := r.Text.Decode(&v); err != nil {
				return nil, fmt.Errorf("%s.text: %w", path, err)
			}
		}
		el := core.Text(v)
		el.Key = r.Key
		return el, nil
	case "comment":
		var content string
		if r.Comment != nil {
			content = *r.Comment
		}
		el := core.Comment(content)
		el.Key = r.Key
		return el, nil
	case "fragment":
		items, err := d.children(r.Fragment, path+".fragment")
		if err != nil {
			return nil, err
		}
		props["children"] = append(items, children...)
		return core.MakeElement(core.Fragment, props, r.Key), nil
	case "component":
		name := deref(r.Component)
		c, ok := d.Components[name]
		if !ok {
			return nil, &errors.ParseError{Path: path + ".component", DataType: "registered component", Got: name}
		}
		return core.Create(c, props, r.Key), nil
	default:
		id := deref(r.Portal)
		var target host.Node
		if d.Target != nil {
			target = d.Target(id)
		}
		if target == nil {
			return nil, &errors.ParseError{Path: path + ".portal", DataType: "portal target", Got: id}
		}
		el := core.Portal(target, toAny(children)...)
		el.Key = r.Key
		for k, v := range r.Props {
			el.Props[k] = v
		}
		return el, nil
	}
}

func (d *Decoder) children(nodes []yaml.Node, path string) ([]*core.Element, error) {
	out := make([]*core.Element, 0, len(nodes))
	for i := range nodes {
		el, err := d.element(&nodes[i], fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

// kindsOf lists the kind fields present in a mapping node.
func kindsOf(n *yaml.Node) []string {
	var kinds []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		if slices.Contains(kindFields, n.Content[i].Value) {
			kinds = append(kinds, n.Content[i].Value)
		}
	}
	return kinds
}

func nodeValue(n *yaml.Node) any {
	var v any
	_ = n.Decode(&v)
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toAny(els []*core.Element) []any {
	out := make([]any, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}
