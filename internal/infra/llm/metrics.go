package llm

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InvocationMetricsRecorder records model invocation telemetry. The
// interface lets tests inject a recording fake instead of the global
// Prometheus registry.
type InvocationMetricsRecorder interface {
	// RecordDuration records the wall time of one invocation.
	RecordDuration(duration time.Duration)

	// RecordFailure increments the failed-invocation counter.
	RecordFailure()

	// RecordPromptLength records the rendered prompt size in runes.
	RecordPromptLength(length int)
}

// PrometheusInvocationMetrics implements InvocationMetricsRecorder
// against the default Prometheus registry.
type PrometheusInvocationMetrics struct {
	duration     prometheus.Histogram
	failures     prometheus.Counter
	promptLength prometheus.Histogram
}

var (
	invocationMetricsInstance *PrometheusInvocationMetrics
	invocationMetricsOnce     sync.Once
)

// NewPrometheusInvocationMetrics creates (once) the Prometheus-backed
// invocation metrics. Singleton to avoid duplicate registration when
// multiple clients are constructed in one process.
func NewPrometheusInvocationMetrics() *PrometheusInvocationMetrics {
	invocationMetricsOnce.Do(func() {
		invocationMetricsInstance = &PrometheusInvocationMetrics{
			duration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "booksum_model_invocation_duration_seconds",
				Help:    "Wall time of a single model invocation",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			}),
			failures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "booksum_model_invocation_failures_total",
				Help: "Total model invocations that returned an error",
			}),
			promptLength: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "booksum_model_prompt_length_runes",
				Help:    "Rendered prompt length in Unicode runes",
				Buckets: []float64{500, 1000, 2000, 4000, 8000, 16000, 32000, 64000},
			}),
		}
	})
	return invocationMetricsInstance
}

// RecordDuration implements InvocationMetricsRecorder.
func (p *PrometheusInvocationMetrics) RecordDuration(duration time.Duration) {
	p.duration.Observe(duration.Seconds())
}

// RecordFailure implements InvocationMetricsRecorder.
func (p *PrometheusInvocationMetrics) RecordFailure() {
	p.failures.Inc()
}

// RecordPromptLength implements InvocationMetricsRecorder.
func (p *PrometheusInvocationMetrics) RecordPromptLength(length int) {
	p.promptLength.Observe(float64(length))
}
