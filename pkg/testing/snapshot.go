package testing

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the fiber tree, the rendered markup and the host
// operations of the last Render.
type Snapshot struct {
	Fibers string
	Markup string
	Ops    []string
}

// CaptureSnapshot captures the current state of the tester.
func (t *Tester) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{Markup: t.Markup()}
	if t.root != nil {
		var buf bytes.Buffer
		// Writes to a bytes.Buffer cannot fail.
		_ = t.root.Dump(&buf)
		snap.Fibers = buf.String()
	}
	for _, op := range t.doc.Ops() {
		snap.Ops = append(snap.Ops, op.String())
	}
	return snap
}

// Bytes renders the snapshot as the text stored in golden files.
func (s *Snapshot) Bytes() []byte {
	var sb strings.Builder
	sb.WriteString("== fibers\n")
	sb.WriteString(s.Fibers)
	sb.WriteString("== markup\n")
	sb.WriteString(s.Markup)
	sb.WriteString("\n== ops\n")
	for _, op := range s.Ops {
		fmt.Fprintln(&sb, op)
	}
	return []byte(sb.String())
}

// MatchesGolden compares the snapshot against testdata/golden/<name>.golden.
// Run the tests with -update to rewrite the file.
func (s *Snapshot) MatchesGolden(t *testing.T, name string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, s.Bytes())
}
