// Package prom exports bcache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/bufcache/bcache"
)

// Adapter implements bcache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	evicts  prometheus.Counter
	reads   prometheus.Counter
	writes  prometheus.Counter
	liveBuf prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Block lookups served from a resident buffer",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Block lookups that required admission",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Buffers relabelled away from their previous block",
			ConstLabels: constLabels,
		}),
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "disk_reads_total",
			Help:        "Device block reads issued by the cache",
			ConstLabels: constLabels,
		}),
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "disk_writes_total",
			Help:        "Device block writes issued by the cache",
			ConstLabels: constLabels,
		}),
		liveBuf: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "live_buffers",
			Help:        "Buffer slots with live references",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.reads, a.writes, a.liveBuf)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// DiskRead increments the device-read counter.
func (a *Adapter) DiskRead() { a.reads.Inc() }

// DiskWrite increments the device-write counter.
func (a *Adapter) DiskWrite() { a.writes.Inc() }

// Live updates the live-buffers gauge.
func (a *Adapter) Live(n int) { a.liveBuf.Set(float64(n)) }

// Compile-time check: ensure Adapter implements bcache.Metrics.
var _ bcache.Metrics = (*Adapter)(nil)
