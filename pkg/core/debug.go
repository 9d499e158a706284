package core

import (
	"fmt"
	"io"
	"strings"
)

// Fibers returns the number of live fibers, including the root fiber.
func (r *Root) Fibers() int { return r.arena.Len() }

// Walk calls fn for every fiber below the root fiber, parents before
// children.
func (r *Root) Walk(fn func(*Fiber)) {
	r.arena.walkPre(r.arena.get(r.fiber), fn)
}

// Lookup returns the live fiber with the given identity, or nil.
func (r *Root) Lookup(key string) *Fiber {
	rf := r.arena.get(r.fiber)
	if rf.key == key {
		return rf
	}
	var found *Fiber
	r.arena.walkPre(rf, func(f *Fiber) {
		if found == nil && f.key == key {
			found = f
		}
	})
	return found
}

// Dump writes the fiber tree, one fiber per line, indented by depth:
//
//	root [updated]
//	  ul#root:List_0:ul_0 [updated]
func (r *Root) Dump(w io.Writer) error {
	rf := r.arena.get(r.fiber)
	if _, err := fmt.Fprintf(w, "%s [%s]\n", rf.key, rf.status); err != nil {
		return err
	}
	var err error
	r.arena.walkPre(rf, func(f *Fiber) {
		if err != nil {
			return
		}
		flags := f.status.String()
		if f.portal {
			flags += ",portal"
		}
		if f.dirty {
			flags += ",dirty"
		}
		_, err = fmt.Fprintf(w, "%s%s#%s [%s]\n", strings.Repeat("  ", f.depth), f.typ.Name(), f.key, flags)
	})
	return err
}
