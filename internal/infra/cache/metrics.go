package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder counts store traffic. The interface exists so tests
// can inject a recording fake instead of the Prometheus registry.
type MetricsRecorder interface {
	// RecordHit increments the hit counter: a chapter resolved with no model call.
	RecordHit()

	// RecordMiss increments the miss counter.
	RecordMiss()

	// RecordWrite increments the committed-entry counter.
	RecordWrite()
}

// PrometheusStoreMetrics implements MetricsRecorder against the default
// Prometheus registry.
type PrometheusStoreMetrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
	writes prometheus.Counter
}

var (
	storeMetricsInstance *PrometheusStoreMetrics
	storeMetricsOnce     sync.Once
)

// NewPrometheusStoreMetrics creates (once) the Prometheus-backed store
// metrics. The singleton avoids duplicate registration when several
// stores are opened in one process, as happens in tests.
func NewPrometheusStoreMetrics() *PrometheusStoreMetrics {
	storeMetricsOnce.Do(func() {
		storeMetricsInstance = &PrometheusStoreMetrics{
			hits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "booksum_cache_hits_total",
				Help: "Total summaries served from the store without a model call",
			}),
			misses: promauto.NewCounter(prometheus.CounterOpts{
				Name: "booksum_cache_misses_total",
				Help: "Total store lookups that required a model call",
			}),
			writes: promauto.NewCounter(prometheus.CounterOpts{
				Name: "booksum_cache_writes_total",
				Help: "Total summary entries committed to the store",
			}),
		}
	})
	return storeMetricsInstance
}

// RecordHit implements MetricsRecorder.
func (p *PrometheusStoreMetrics) RecordHit() { p.hits.Inc() }

// RecordMiss implements MetricsRecorder.
func (p *PrometheusStoreMetrics) RecordMiss() { p.misses.Inc() }

// RecordWrite implements MetricsRecorder.
func (p *PrometheusStoreMetrics) RecordWrite() { p.writes.Inc() }
