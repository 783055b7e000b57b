package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"searchkit/internal/model"
	"searchkit/internal/score"
)

// SearchMetrics are the collectors behind Metrics. Create them once per
// registry and share them between runs.
type SearchMetrics struct {
	samples      prometheus.Counter
	improvements prometheus.Counter
	lastIndex    prometheus.Gauge
}

// NewSearchMetrics leaves the collectors unregistered when reg is nil.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	factory := promauto.With(reg)
	return &SearchMetrics{
		samples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "samples_total",
			Help:      "Sample records observed by the processor chain",
		}),
		improvements: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "improvements_total",
			Help:      "Records that strictly improved on the best score seen so far",
		}),
		lastIndex: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "searchkit",
			Name:      "last_index",
			Help:      "Sample index of the most recently observed record",
		}),
	}
}

// Metrics exports the record stream as Prometheus series.
type Metrics[G any, S score.Comparable[S]] struct {
	*SearchMetrics

	best    S
	hasBest bool
}

func NewMetrics[G any, S score.Comparable[S]](collectors *SearchMetrics) *Metrics[G, S] {
	if collectors == nil {
		collectors = NewSearchMetrics(nil)
	}
	return &Metrics[G, S]{SearchMetrics: collectors}
}

func (m *Metrics[G, S]) Process(record model.SampleRecord[G, S]) {
	m.samples.Inc()
	m.lastIndex.Set(float64(record.Index))
	if !m.hasBest || score.Improves(record.Score, m.best) {
		m.best = record.Score
		m.hasBest = true
		m.improvements.Inc()
	}
}
