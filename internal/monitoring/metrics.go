package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PagesFetched      *prometheus.CounterVec
	ListingsExtracted prometheus.Counter
	ListingsDiscarded prometheus.Counter
	ErrorsTotal       *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// NewMetrics registers the metrics with reg. A nil reg uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_pages_fetched_total",
			Help: "The total number of search result pages requested",
		}, []string{"status"}), // "ok", "empty", "failed"
		ListingsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "harvester_listings_extracted_total",
			Help: "The total number of listings extracted",
		}),
		ListingsDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "harvester_listings_discarded_total",
			Help: "The total number of listing fragments discarded for missing fields",
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "harvester_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. 'fetch_failed', 'parse_failed', 'output_failed'
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "harvester_run_duration_seconds",
			Help:    "Duration of complete harvest runs.",
			Buckets: []float64{30, 60, 120, 300, 600, 1200, 2400},
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncPagesFetched(status string) {
	m.PagesFetched.WithLabelValues(status).Inc()
}

func (m *Metrics) IncListingsExtracted() {
	m.ListingsExtracted.Inc()
}

func (m *Metrics) IncListingsDiscarded() {
	m.ListingsDiscarded.Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) ObserveRunDuration(seconds float64) {
	m.RunDuration.Observe(seconds)
}
