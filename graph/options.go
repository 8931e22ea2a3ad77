package graph

import "time"

// Options configures Executor behavior. Zero values fall back to defaults.
type Options struct {
	// MaxSteps limits the number of steps in one run to prevent infinite
	// routing loops. If 0, DefaultMaxSteps applies.
	MaxSteps int

	// StepTimeout bounds each step's execution, covering blocking calls to
	// external collaborators. If 0, DefaultStepTimeout applies. Negative
	// disables the per-step timeout entirely.
	StepTimeout time.Duration

	// Metrics, when set, receives step latency and counter observations.
	Metrics *PrometheusMetrics
}

// Option is a functional option for configuring an Executor.
//
// Example:
//
//	exec := graph.NewExecutor(
//	    g, reduce, stageOf, st, emitter,
//	    graph.WithMaxSteps(50),
//	    graph.WithStepTimeout(30*time.Second),
//	)
type Option func(*Options)

// WithMaxSteps limits a run to n steps.
//
// Retry loops are legitimate in stage-routed workflows, so size this as
// workflow depth times the maximum expected retries, with headroom.
// When exceeded, Run returns ErrMaxSteps.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithStepTimeout sets the per-step execution timeout.
//
// The timeout covers a single step including its external calls. A step
// that exceeds it fails like any other fatal step error: the run stops and
// the previous checkpoint remains resumable. Pass a negative duration to
// disable the timeout.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.StepTimeout = d
	}
}

// WithMetrics enables Prometheus metrics collection.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	metrics := graph.NewPrometheusMetrics(registry)
//	exec := graph.NewExecutor(g, reduce, stageOf, st, emitter, graph.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
func WithMetrics(metrics *PrometheusMetrics) Option {
	return func(o *Options) {
		o.Metrics = metrics
	}
}
