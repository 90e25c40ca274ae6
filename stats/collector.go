package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

var counterHelp = map[string]string{
	BytesBuffered:  "Bytes written into writer buffers.",
	BytesSent:      "Bytes handed to the connection by successful flushes.",
	ConnectionLost: "Flushes refused because the connection was closed or shut down.",
	EmptyFlushes:   "Flushes skipped because nothing was buffered.",
	Flushes:        "Flushes that sent a message.",
	Messages:       "Syslog records sent.",
	SendErrors:     "Flushes whose send failed after the buffer was taken.",
}

// Collector exports a Stats instance as prometheus counters.
type Collector struct {
	s     *Stats
	descs map[string]*prometheus.Desc
}

// NewCollector returns a collector for s. Metric names are
// <namespace>_<key>_total.
func NewCollector(namespace string, s *Stats) *Collector {
	c := &Collector{
		s:     s,
		descs: make(map[string]*prometheus.Desc, len(allStatKeys)),
	}
	for _, k := range allStatKeys {
		c.descs[k] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", k+"_total"),
			counterHelp[k],
			nil, nil,
		)
	}
	return c
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, k := range allStatKeys {
		ch <- c.descs[k]
	}
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.s.Snapshot()
	for _, k := range allStatKeys {
		ch <- prometheus.MustNewConstMetric(c.descs[k], prometheus.CounterValue, float64(snap[k]))
	}
}
