// Package testing provides a harness for rendering element trees into an
// in-memory host and asserting on the result.
//
// # Quick Start
//
// Create a tester, render an element, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := loomtest.NewTesterWithT(t)
//	    tester.Render(core.Create(Counter, nil, ""))
//
//	    // Find fibers
//	    button := tester.Find(loomtest.ByTag("button")).First()
//
//	    // Fire events through the root's delegated listeners
//	    tester.Tap(loomtest.ByTag("button"))
//
//	    if !tester.Find(loomtest.ByText("1")).Exists() {
//	        t.Error("expected count 1")
//	    }
//	}
//
// # Snapshot Testing
//
// Capture the fiber tree, markup and host operations of the last render
// and compare them with a golden file under testdata/golden:
//
//	tester.CaptureSnapshot().MatchesGolden(t, "counter")
//
// Update golden files with:
//
//	go test ./... -update
//
// # Time
//
// The scheduler's work slices are budgeted against a FakeClock:
//
//	tester.Clock().SetStep(10 * time.Millisecond)
//	tester.Pump()
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import loomtest "github.com/go-drift/loom/pkg/testing"
package testing
