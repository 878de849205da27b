// Package metrics exports cache activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load results used as the "result" label of loads_total.
const (
	resultSuccess = "success"
	resultError   = "error"
)

// CacheMetrics holds the Prometheus collectors for one cache.
// It implements port.CacheObserver.
type CacheMetrics struct {
	Hits         prometheus.Counter
	Misses       prometheus.Counter
	Joins        prometheus.Counter
	Loads        *prometheus.CounterVec
	LoadDuration prometheus.Histogram
	Evictions    prometheus.Counter
	Entries      prometheus.Gauge
}

// NewCacheMetrics registers the cache collectors on reg under namespace.
// The cache label distinguishes several caches sharing one registry.
func NewCacheMetrics(reg prometheus.Registerer, namespace, cache string) *CacheMetrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"cache": cache}

	return &CacheMetrics{
		Hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_hits_total",
			Help:        "Lookups served from memory",
			ConstLabels: labels,
		}),
		Misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_misses_total",
			Help:        "Lookups that had to wait for a load",
			ConstLabels: labels,
		}),
		Joins: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_coalesced_total",
			Help:        "Misses that joined a load already in flight",
			ConstLabels: labels,
		}),
		Loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_loads_total",
			Help:        "Loader invocations by result",
			ConstLabels: labels,
		}, []string{"result"}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "cache_load_duration_seconds",
			Help:        "Loader latency in seconds",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		Evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_evictions_total",
			Help:        "Entries evicted to stay within capacity",
			ConstLabels: labels,
		}),
		Entries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "cache_entries",
			Help:        "Current number of cached entries",
			ConstLabels: labels,
		}),
	}
}

func (m *CacheMetrics) Hit()       { m.Hits.Inc() }
func (m *CacheMetrics) Miss()      { m.Misses.Inc() }
func (m *CacheMetrics) Coalesced() { m.Joins.Inc() }

// Loaded records one loader invocation.
func (m *CacheMetrics) Loaded(d time.Duration, err error) {
	m.LoadDuration.Observe(d.Seconds())
	if err != nil {
		m.Loads.WithLabelValues(resultError).Inc()
		return
	}
	m.Loads.WithLabelValues(resultSuccess).Inc()
}

func (m *CacheMetrics) Evicted(n int) { m.Evictions.Add(float64(n)) }
func (m *CacheMetrics) Size(n int)    { m.Entries.Set(float64(n)) }
