package testing

import "fmt"

// Tap fires a click at the host node of the first fiber matched by
// finder, then runs the loop until it settles.
func (t *Tester) Tap(finder Finder) error {
	return t.Fire(finder, "click", nil)
}

// Fire dispatches an event of the given type at the host node of the
// first fiber matched by finder, then runs the loop until it settles.
// The event reaches handlers through the root's delegated listeners.
func (t *Tester) Fire(finder Finder, event string, detail any) error {
	result := t.Find(finder)
	if !result.Exists() {
		return fmt.Errorf("Fire: finder matched no fibers: %s", finder.Description())
	}
	node := result.Node()
	if node == nil {
		return fmt.Errorf("Fire: fiber has no host node: %s", finder.Description())
	}
	t.doc.ResetOps()
	t.doc.Dispatch(node, event, detail)
	return t.PumpAndSettle(DefaultMaxTurns)
}
