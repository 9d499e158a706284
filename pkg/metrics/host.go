package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/loom/pkg/host"
)

// InstrumentHost wraps h so every mutating adapter call is counted by
// operation. Read-only calls (Parent, ID, Handlers) are not counted.
func (c *Collector) InstrumentHost(h host.Host) host.Host {
	return &countingHost{Host: h, ops: c.hostOps}
}

type countingHost struct {
	host.Host
	ops *prometheus.CounterVec
}

func (h *countingHost) inc(op string) { h.ops.WithLabelValues(op).Inc() }

func (h *countingHost) CreateLeaf(kind host.LeafKind, content string) host.Node {
	h.inc("create_leaf")
	return h.Host.CreateLeaf(kind, content)
}

func (h *countingHost) CreateStructural(tag string) host.Node {
	h.inc("create_structural")
	return h.Host.CreateStructural(tag)
}

func (h *countingHost) CreateFragment() host.Node {
	h.inc("create_fragment")
	return h.Host.CreateFragment()
}

func (h *countingHost) UpdateLeaf(n host.Node, content string) {
	h.inc("update_leaf")
	h.Host.UpdateLeaf(n, content)
}

func (h *countingHost) UpdateStructural(n host.Node, prev, next map[string]any) {
	h.inc("update_structural")
	h.Host.UpdateStructural(n, prev, next)
}

func (h *countingHost) Append(parent, child host.Node) {
	h.inc("append")
	h.Host.Append(parent, child)
}

func (h *countingHost) InsertFirst(parent, child host.Node) {
	h.inc("insert_first")
	h.Host.InsertFirst(parent, child)
}

func (h *countingHost) InsertAfter(anchor, child host.Node) {
	h.inc("insert_after")
	h.Host.InsertAfter(anchor, child)
}

func (h *countingHost) Remove(n host.Node) {
	h.inc("remove")
	h.Host.Remove(n)
}

func (h *countingHost) AddEventListener(n host.Node, event string, opts host.ListenerOptions, fn host.EventHandler) {
	h.inc("add_listener")
	h.Host.AddEventListener(n, event, opts, fn)
}

func (h *countingHost) RemoveEventListener(n host.Node, event string, opts host.ListenerOptions) {
	h.inc("remove_listener")
	h.Host.RemoveEventListener(n, event, opts)
}
