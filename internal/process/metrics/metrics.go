package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the sync pipeline.
type Metrics struct {
	ProcessesDiscovered prometheus.Counter
	RefreshesTotal      *prometheus.CounterVec
	EventsExtracted     prometheus.Counter
	PartiesExtracted    prometheus.Counter
	RefreshDuration     prometheus.Histogram
}

// New creates and registers all pipeline metrics.
func New() *Metrics {
	return &Metrics{
		ProcessesDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "procsync_processes_discovered_total",
			Help: "Total number of new processes created by discovery",
		}),
		RefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "procsync_refreshes_total",
			Help: "Total refresh runs by outcome",
		}, []string{"outcome"}),
		EventsExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "procsync_events_extracted_total",
			Help: "Total events appended by extraction",
		}),
		PartiesExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "procsync_parties_extracted_total",
			Help: "Total parties written by extraction",
		}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "procsync_refresh_duration_seconds",
			Help:    "Wall time of one refresh run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveRefresh records one finished refresh run.
func (m *Metrics) ObserveRefresh(outcome string, seconds float64) {
	m.RefreshesTotal.WithLabelValues(outcome).Inc()
	m.RefreshDuration.Observe(seconds)
}
