// Package metrics exports Prometheus metrics for drag-and-drop interactions.
//
// The Observer plugs into a coordinator:
//
//	obs := metrics.New(metrics.WithNamespace("myapp"))
//	coord := dnd.New(dnd.WithObserver(obs))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
//
// Metrics collected (default namespace "dndlist"):
//   - dndlist_interactions_started_total: Counter by notified ("true"/"false")
//   - dndlist_interactions_ended_total: Counter by outcome
//   - dndlist_interaction_duration_seconds: Histogram of start-to-end time
//   - dndlist_interaction_active: Gauge, 1 while an interaction is in flight
//   - dndlist_clone_failures_total: Counter of rejected payloads
//   - dndlist_signals_total: Counter of bus signals by name
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/dndlist/pkg/dnd"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "dndlist").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for interaction duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "dndlist",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer records interaction lifecycle metrics. It implements
// dnd.Observer.
type Observer struct {
	started       *prometheus.CounterVec
	ended         *prometheus.CounterVec
	duration      prometheus.Histogram
	active        prometheus.Gauge
	cloneFailures prometheus.Counter
	signals       *prometheus.CounterVec

	now func() time.Time
}

var _ dnd.Observer = (*Observer)(nil)

// New registers the metrics and returns the observer. Registering twice
// against the same registry panics, as with promauto.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		started: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "interactions_started_total",
			Help:        "Total number of drag interactions started",
			ConstLabels: config.ConstLabels,
		}, []string{"notified"}),

		ended: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "interactions_ended_total",
			Help:        "Total number of drag interactions ended, by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "interaction_duration_seconds",
			Help:        "Time from drag start to end in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "interaction_active",
			Help:        "1 while a drag interaction is in flight",
			ConstLabels: config.ConstLabels,
		}),

		cloneFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "clone_failures_total",
			Help:        "Total number of drag payloads that could not be cloned",
			ConstLabels: config.ConstLabels,
		}),

		signals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signals_total",
			Help:        "Total number of coordination signals emitted",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		now: time.Now,
	}
}

// InteractionStarted implements dnd.Observer.
func (o *Observer) InteractionStarted(i dnd.Interaction) {
	o.started.WithLabelValues(strconv.FormatBool(i.Notified)).Inc()
	o.active.Set(1)
}

// InteractionEnded implements dnd.Observer.
func (o *Observer) InteractionEnded(i dnd.Interaction, outcome dnd.Outcome) {
	o.ended.WithLabelValues(string(outcome)).Inc()
	if !i.StartedAt.IsZero() {
		o.duration.Observe(o.now().Sub(i.StartedAt).Seconds())
	}
	o.active.Set(0)
}

// CloneFailed implements dnd.Observer.
func (o *Observer) CloneFailed(string, error) {
	o.cloneFailures.Inc()
}

// SignalEmitted implements dnd.Observer.
func (o *Observer) SignalEmitted(sig dnd.Signal) {
	o.signals.WithLabelValues(string(sig.Name)).Inc()
}
