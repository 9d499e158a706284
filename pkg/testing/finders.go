package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/loom/pkg/core"
	"github.com/go-drift/loom/pkg/host/memhost"
)

// Finder locates fibers in a root's tree.
type Finder interface {
	// Evaluate returns all matching fibers (depth-first pre-order).
	Evaluate(root *core.Root) []*core.Fiber
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	fibers []*core.Fiber
	finder Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *core.Fiber {
	if len(r.fibers) == 0 {
		panic(fmt.Sprintf("Finder found no fibers: %s", r.describe()))
	}
	return r.fibers[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *core.Fiber {
	if len(r.fibers) == 0 {
		return nil
	}
	return r.fibers[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *core.Fiber {
	if index < 0 || index >= len(r.fibers) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.fibers), r.describe()))
	}
	return r.fibers[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*core.Fiber {
	return r.fibers
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.fibers)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.fibers) > 0
}

// Node returns the memhost node of the first match, or nil when the
// fiber has none.
func (r FinderResult) Node() *memhost.Node {
	n, _ := r.First().Node().(*memhost.Node)
	return n
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// predicateFinder matches fibers satisfying a predicate.
type predicateFinder struct {
	fn   func(*core.Fiber) bool
	desc string
}

func (f *predicateFinder) Evaluate(root *core.Root) []*core.Fiber {
	var out []*core.Fiber
	root.Walk(func(fb *core.Fiber) {
		if f.fn(fb) {
			out = append(out, fb)
		}
	})
	return out
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches fibers satisfying fn.
func ByPredicate(fn func(*core.Fiber) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// ByTag returns a finder that matches structural fibers with the tag.
func ByTag(tag string) Finder {
	return &predicateFinder{
		fn: func(f *core.Fiber) bool {
			return f.Type().Kind == core.KindTag && f.Type().Tag == tag
		},
		desc: fmt.Sprintf("ByTag(%s)", tag),
	}
}

// ByComponent returns a finder that matches fibers rendered by c.
func ByComponent(c core.Component) Finder {
	typ := core.Create(c, nil, "").Type
	return &predicateFinder{
		fn:   func(f *core.Fiber) bool { return f.Type().Same(typ) },
		desc: fmt.Sprintf("ByComponent(%s)", typ.Name()),
	}
}

// ByKey returns a finder that matches fibers whose identity ends in key,
// whether it was given explicitly or derived from the position.
func ByKey(key string) Finder {
	return &predicateFinder{
		fn: func(f *core.Fiber) bool {
			return strings.HasSuffix(f.Key(), ":"+key)
		},
		desc: fmt.Sprintf("ByKey(%s)", key),
	}
}

// ByText returns a finder that matches text leaves with exact content.
func ByText(text string) Finder {
	return &predicateFinder{
		fn: func(f *core.Fiber) bool {
			return f.Type().Kind == core.KindText && leafContent(f) == text
		},
		desc: fmt.Sprintf("ByText(%q)", text),
	}
}

// ByTextContaining returns a finder that matches text leaves containing
// substring.
func ByTextContaining(substring string) Finder {
	return &predicateFinder{
		fn: func(f *core.Fiber) bool {
			return f.Type().Kind == core.KindText && strings.Contains(leafContent(f), substring)
		},
		desc: fmt.Sprintf("ByTextContaining(%q)", substring),
	}
}

func leafContent(f *core.Fiber) string {
	s, _ := f.Props()["content"].(string)
	return s
}

// relationFinder pairs matches of one finder with matches of another by
// identity prefix. Every fiber's identity extends its parent's.
type relationFinder struct {
	of       Finder
	matching Finder
	below    bool
}

func (f *relationFinder) Evaluate(root *core.Root) []*core.Fiber {
	anchors := f.of.Evaluate(root)
	if len(anchors) == 0 {
		return nil
	}
	var out []*core.Fiber
	for _, candidate := range f.matching.Evaluate(root) {
		for _, a := range anchors {
			inner, outer := candidate, a
			if !f.below {
				inner, outer = a, candidate
			}
			if strings.HasPrefix(inner.Key(), outer.Key()+":") {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}

func (f *relationFinder) Description() string {
	name := "Ancestor"
	if f.below {
		name = "Descendant"
	}
	return fmt.Sprintf("%s(of: %s, matching: %s)", name, f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches fibers satisfying matching
// that are descendants of fibers matching of.
func Descendant(of, matching Finder) Finder {
	return &relationFinder{of: of, matching: matching, below: true}
}

// Ancestor returns a finder that matches fibers satisfying matching that
// are ancestors of fibers matching of.
func Ancestor(of, matching Finder) Finder {
	return &relationFinder{of: of, matching: matching}
}
