package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// monitoring service.
type Metrics struct {
	FetchesTotal     *prometheus.CounterVec // labels: outcome={success,error}
	CatalogSize      prometheus.Histogram
	AnalysisDuration prometheus.Histogram

	AnomaliesDetected  prometheus.Counter
	AlertsTriggered    prometheus.Counter
	SummariesPublished prometheus.Counter

	MonitorRunning prometheus.Gauge

	// Latest analysis results, for at-a-glance dashboards.
	LastBValue                prometheus.Gauge
	LastClusteringCoefficient prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seismoalert",
			Name:      "fetches_total",
			Help:      "Catalog fetches from the USGS API by outcome.",
		}, []string{"outcome"}),
		CatalogSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seismoalert",
			Name:      "catalog_size",
			Help:      "Number of events per fetched catalog snapshot.",
			Buckets:   []float64{1, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seismoalert",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete fetch-analyze-alert cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		AnomaliesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seismoalert",
			Name:      "anomalies_detected_total",
			Help:      "Total anomalous rate periods detected.",
		}),
		AlertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seismoalert",
			Name:      "alerts_triggered_total",
			Help:      "Total alert rule triggers.",
		}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seismoalert",
			Name:      "summaries_published_total",
			Help:      "Total analysis summaries published to the sink topic.",
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seismoalert",
			Name:      "monitor_running",
			Help:      "1 when the monitor loop is active, 0 when shut down.",
		}),
		LastBValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seismoalert",
			Name:      "last_b_value",
			Help:      "b-value of the most recent Gutenberg-Richter fit.",
		}),
		LastClusteringCoefficient: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seismoalert",
			Name:      "last_clustering_coefficient",
			Help:      "Spatio-temporal clustering coefficient of the most recent cycle.",
		}),
	}

	prometheus.MustRegister(
		m.FetchesTotal,
		m.CatalogSize,
		m.AnalysisDuration,
		m.AnomaliesDetected,
		m.AlertsTriggered,
		m.SummariesPublished,
		m.MonitorRunning,
		m.LastBValue,
		m.LastClusteringCoefficient,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FetchesTotal:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "seismoalert", Name: "fetches_total"}, []string{"outcome"}),
		CatalogSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "seismoalert", Name: "catalog_size"}),
		AnalysisDuration:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "seismoalert", Name: "analysis_duration_seconds"}),
		AnomaliesDetected:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "seismoalert", Name: "anomalies_detected_total"}),
		AlertsTriggered:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "seismoalert", Name: "alerts_triggered_total"}),
		SummariesPublished:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "seismoalert", Name: "summaries_published_total"}),
		MonitorRunning:            prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "seismoalert", Name: "monitor_running"}),
		LastBValue:                prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "seismoalert", Name: "last_b_value"}),
		LastClusteringCoefficient: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "seismoalert", Name: "last_clustering_coefficient"}),
	}
}
