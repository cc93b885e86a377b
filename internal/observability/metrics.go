package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flight_dashboard"

// Metrics holds the Prometheus collectors for the dashboard.
type Metrics struct {
	DatasetRows         prometheus.Gauge
	DatasetLoadDuration prometheus.Histogram

	OverviewRequests *prometheus.CounterVec // labels: outcome={success,error}

	// Prediction metrics.
	Predictions       *prometheus.CounterVec // labels: outcome={delayed,on_time,invalid,error}
	InferenceDuration prometheus.Histogram

	// Served model metrics.
	ModelRequests    *prometheus.CounterVec // labels: outcome={success,error}
	ModelAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.DatasetRows,
		m.DatasetLoadDuration,
		m.OverviewRequests,
		m.Predictions,
		m.InferenceDuration,
		m.ModelRequests,
		m.ModelAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Number of flight records in the loaded table.",
		}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent reading and normalizing the flight table.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		OverviewRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overview_requests_total",
			Help:      "Filter-and-summarize requests by outcome.",
		}, []string{"outcome"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Duration of a single classifier call.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		ModelRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Served model HTTP requests by outcome.",
		}, []string{"outcome"}),
		ModelAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_api_duration_seconds",
			Help:      "Served model request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}
