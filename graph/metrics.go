package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics collects engine execution metrics for production
// monitoring.
//
// Metrics exposed (all namespaced "researchgraph"):
//
//  1. step_latency_ms (histogram): step execution duration in milliseconds.
//     Labels: step_id, status (success/error). Buckets 1ms to 10m, sized for
//     steps that block on external LLM and search calls.
//  2. steps_total (counter): completed step executions.
//     Labels: step_id, status.
//  3. checkpoint_writes_total (counter): persisted checkpoints.
//  4. inflight_threads (gauge): threads currently executing (see Pool).
//
// Thread-safe; the underlying Prometheus collectors handle concurrency.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := graph.NewPrometheusMetrics(registry)
//	exec := graph.NewExecutor(g, reduce, stageOf, st, emitter, graph.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
type PrometheusMetrics struct {
	stepLatency     *prometheus.HistogramVec
	steps           *prometheus.CounterVec
	checkpoints     prometheus.Counter
	inflightThreads prometheus.Gauge
}

// NewPrometheusMetrics creates and registers all engine metrics with the
// provided registry. A nil registry falls back to the Prometheus default
// registerer.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &PrometheusMetrics{
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "researchgraph",
			Name:      "step_latency_ms",
			Help:      "Step execution duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000, 300000, 600000},
		}, []string{"step_id", "status"}),
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "researchgraph",
			Name:      "steps_total",
			Help:      "Completed step executions",
		}, []string{"step_id", "status"}),
		checkpoints: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "researchgraph",
			Name:      "checkpoint_writes_total",
			Help:      "Checkpoints persisted",
		}),
		inflightThreads: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "researchgraph",
			Name:      "inflight_threads",
			Help:      "Workflow threads currently executing",
		}),
	}
}

// RecordStep observes one step execution: latency into the histogram and a
// count into steps_total. Status is "success" or "error". Thread ids are
// deliberately not labels; their cardinality is unbounded.
func (pm *PrometheusMetrics) RecordStep(stepID string, latency time.Duration, status string) {
	pm.stepLatency.WithLabelValues(stepID, status).Observe(float64(latency.Milliseconds()))
	pm.steps.WithLabelValues(stepID, status).Inc()
}

// IncrementCheckpoints counts one persisted checkpoint.
func (pm *PrometheusMetrics) IncrementCheckpoints() {
	pm.checkpoints.Inc()
}

// ThreadStarted increments the in-flight threads gauge.
func (pm *PrometheusMetrics) ThreadStarted() {
	pm.inflightThreads.Inc()
}

// ThreadFinished decrements the in-flight threads gauge.
func (pm *PrometheusMetrics) ThreadFinished() {
	pm.inflightThreads.Dec()
}
