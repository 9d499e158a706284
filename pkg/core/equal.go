package core

import (
	"reflect"
)

// equalMemo caches element comparisons for one pass. Entries are keyed by
// the (previous, next) element pointer pair and dropped when the next
// pass starts.
type equalMemo struct {
	pairs map[[2]*Element]bool
	hits  int
}

func (m *equalMemo) reset() {
	if m.pairs == nil {
		m.pairs = make(map[[2]*Element]bool)
	}
	clear(m.pairs)
	m.hits = 0
}

// props reports whether two prop maps are deeply equal. Functions are
// equal only when both are nil, so an element carrying a handler, a ref
// or a component-valued prop is never skipped and re-renders on every
// pass that reaches it. Closures over different variables share a code
// pointer, so funcs are not compared by pointer here. The portal target
// is compared by identity.
func (m *equalMemo) props(a, b Props) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if k == "target" {
			if !sameDep(av, bv) {
				return false
			}
			continue
		}
		if !m.equal(av, bv) {
			return false
		}
	}
	return true
}

func (m *equalMemo) elements(a, b *Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	pair := [2]*Element{a, b}
	if eq, ok := m.pairs[pair]; ok {
		m.hits++
		return eq
	}
	eq := a.Type.Same(b.Type) && a.Key == b.Key && m.props(a.Props, b.Props)
	if m.pairs == nil {
		m.pairs = make(map[[2]*Element]bool)
	}
	m.pairs[pair] = eq
	return eq
}

func (m *equalMemo) equal(a, b any) bool {
	switch x := a.(type) {
	case *Element:
		y, ok := b.(*Element)
		return ok && m.elements(x, y)
	case Props:
		y, ok := b.(Props)
		return ok && m.props(x, y)
	case map[string]any:
		y, ok := b.(map[string]any)
		return ok && m.props(x, y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !m.equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case []*Element:
		y, ok := b.([]*Element)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !m.elements(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Deps is a dependency list for UseEffect.
type Deps []any

// depsEqual compares dependency lists shallowly with identity semantics.
func depsEqual(a, b Deps) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameDep(a[i], b[i]) {
			return false
		}
	}
	return true
}

// sameDep compares by identity: reference kinds by pointer, comparable
// values with ==. It never panics.
func sameDep(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func, reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if !va.Type().Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
