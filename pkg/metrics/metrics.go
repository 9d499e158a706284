// Package metrics exports Prometheus metrics for render passes, scheduler
// slices and host operations.
//
//	reg := prometheus.NewRegistry()
//	m, err := metrics.New(reg)
//	loop := scheduler.New(scheduler.WithObserver(m))
//	root := core.CreateRoot(container, m.InstrumentHost(doc), core.WithLoop(loop), core.WithMetrics(m))
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/go-drift/loom/pkg/core"
)

const namespace = "loom"

// Collector records engine metrics. It implements core.PassObserver and
// scheduler.Observer.
type Collector struct {
	passes       prometheus.Counter
	passDuration prometheus.Histogram
	fibers       *prometheus.CounterVec

	slices        *prometheus.CounterVec
	workItems     prometheus.Counter
	sliceDuration prometheus.Histogram

	hostOps *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates a collector and registers its metrics with reg. When reg
// is nil a private registry is used.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "passes_total",
			Help:      "Render passes performed.",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "pass_duration_seconds",
			Help:      "Duration of render passes, reconcile and commit included.",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		fibers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "fibers_total",
			Help:      "Fibers handled by render passes, by outcome.",
		}, []string{"outcome"}),
		slices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "slices_total",
			Help:      "Work slices run, by whether work was left for a later turn.",
		}, []string{"deferred"}),
		workItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "work_items_total",
			Help:      "Work items (effects and cleanups) run.",
		}),
		sliceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "slice_duration_seconds",
			Help:      "Duration of work slices.",
			Buckets:   []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.032},
		}),
		hostOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "operations_total",
			Help:      "Host adapter calls, by operation.",
		}, []string{"op"}),
	}

	for _, col := range []prometheus.Collector{
		c.passes, c.passDuration, c.fibers,
		c.slices, c.workItems, c.sliceDuration,
		c.hostOps,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c, nil
}

// ObservePass implements core.PassObserver. The target identity is not
// used as a label.
func (c *Collector) ObservePass(_ string, elapsed time.Duration, stats core.PassStats) {
	c.passes.Inc()
	c.passDuration.Observe(elapsed.Seconds())
	c.fibers.WithLabelValues("rendered").Add(float64(stats.Rendered))
	c.fibers.WithLabelValues("skipped").Add(float64(stats.Skipped))
	c.fibers.WithLabelValues("mounted").Add(float64(stats.Mounted))
	c.fibers.WithLabelValues("removed").Add(float64(stats.Removed))
	c.fibers.WithLabelValues("moved").Add(float64(stats.Moved))
}

// ObserveSlice implements scheduler.Observer.
func (c *Collector) ObserveSlice(items int, elapsed time.Duration, deferred bool) {
	label := "false"
	if deferred {
		label = "true"
	}
	c.slices.WithLabelValues(label).Inc()
	c.workItems.Add(float64(items))
	c.sliceDuration.Observe(elapsed.Seconds())
}

// WriteText writes every metric of the collector's registry in the
// Prometheus text exposition format. It fails when the registerer passed
// to New cannot be gathered.
func (c *Collector) WriteText(w io.Writer) error {
	if c.gatherer == nil {
		return fmt.Errorf("metrics: registerer is not a gatherer")
	}
	families, err := c.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
