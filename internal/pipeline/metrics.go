package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the queue collectors. One value may be shared by every queue
// in a process so a registry only sees each series once.
type Metrics struct {
	sent     prometheus.Counter
	received prometheus.Counter
	full     prometheus.Counter
	depth    prometheus.Gauge
}

// NewMetrics builds the queue collectors. A nil registerer leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Subsystem: "queue",
			Name:      "sent_total",
			Help:      "Total values pushed onto the telemetry queue",
		}),
		received: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Subsystem: "queue",
			Name:      "received_total",
			Help:      "Total values taken off the telemetry queue by the consumer",
		}),
		full: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Subsystem: "queue",
			Name:      "full_total",
			Help:      "Sends that found the queue full and had to wait for the consumer",
		}),
		depth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "searchkit",
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Values currently buffered in the telemetry queue",
		}),
	}
}

// WithRegisterer registers a fresh set of collectors on reg. Use WithMetrics
// when more than one queue reports to the same registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.metrics = NewMetrics(reg)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
