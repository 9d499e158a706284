package cmd

import (
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/go-drift/loom/pkg/core"
	"github.com/go-drift/loom/pkg/errors"
	"github.com/go-drift/loom/pkg/host"
	"github.com/go-drift/loom/pkg/host/memhost"
	"github.com/go-drift/loom/pkg/metrics"
	"github.com/go-drift/loom/pkg/scheduler"
	"github.com/go-drift/loom/pkg/treefile"
)

// session renders tree files into one in-memory document. Portal targets
// named in tree files are created on first use as detached containers.
type session struct {
	logger    *zap.Logger
	doc       *memhost.Document
	container *memhost.Node
	targets   map[string]*memhost.Node
	loop      *scheduler.Loop
	root      *core.Root
	metrics   *metrics.Collector
	decoder   *treefile.Decoder
}

func newSession(opts *RootOptions) (*session, error) {
	cfg := opts.Config
	s := &session{
		logger:  opts.Logger,
		doc:     memhost.NewDocument(),
		targets: make(map[string]*memhost.Node),
	}
	s.container = s.doc.NewContainer("div", cfg.AppName)
	s.decoder = &treefile.Decoder{Components: builtins, Target: s.target}

	loopOpts := []scheduler.Option{
		scheduler.WithFrameBudget(cfg.FrameBudget),
		scheduler.WithLogger(s.logger),
	}
	rootOpts := []core.Option{core.WithLogger(s.logger)}
	var h host.Host = s.doc
	if cfg.Metrics {
		c, err := metrics.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		s.metrics = c
		loopOpts = append(loopOpts, scheduler.WithObserver(c))
		rootOpts = append(rootOpts, core.WithMetrics(c))
		h = c.InstrumentHost(s.doc)
	}
	s.loop = scheduler.New(loopOpts...)
	s.root = core.CreateRoot(s.container, h, append(rootOpts, core.WithLoop(s.loop))...)
	return s, nil
}

func (s *session) target(id string) host.Node {
	if n, ok := s.targets[id]; ok {
		return n
	}
	n := s.doc.NewContainer("div", id)
	s.targets[id] = n
	return n
}

// render decodes the tree file at path and renders it, running the loop
// until every effect has flushed. A panic raised while rendering is
// returned as an error.
func (s *session) render(path string) (stats core.PassStats, err error) {
	el, err := s.decoder.ReadFile(path)
	if err != nil {
		return core.PassStats{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.FromPanic("loom.render", r)
		}
	}()
	s.root.Render(el)
	s.loop.RunUntilIdle()
	s.logger.Debug("tree rendered", zap.String("path", path), zap.Int("fibers", s.root.Fibers()))
	return s.root.LastPass(), nil
}

// markup returns the outer markup of the container followed by every
// portal target, sorted by id.
func (s *session) markup() []string {
	out := []string{s.container.Markup()}
	ids := make([]string, 0, len(s.targets))
	for id := range s.targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, s.targets[id].Markup())
	}
	return out
}

func (s *session) ops() []string {
	var out []string
	for _, op := range s.doc.Ops() {
		out = append(out, op.String())
	}
	return out
}

// writeMetrics prints the collected metrics when they are enabled.
func (s *session) writeMetrics(w io.Writer) error {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.WriteText(w)
}

// passJSON is the JSON form of core.PassStats.
type passJSON struct {
	Rendered int `json:"rendered"`
	Skipped  int `json:"skipped"`
	Mounted  int `json:"mounted"`
	Removed  int `json:"removed"`
	Moved    int `json:"moved"`
}

func toPassJSON(s core.PassStats) passJSON {
	return passJSON{Rendered: s.Rendered, Skipped: s.Skipped, Mounted: s.Mounted, Removed: s.Removed, Moved: s.Moved}
}

func (p passJSON) String() string {
	return fmt.Sprintf("rendered=%d skipped=%d mounted=%d removed=%d moved=%d",
		p.Rendered, p.Skipped, p.Mounted, p.Removed, p.Moved)
}
