package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// signal pipeline.
type Metrics struct {
	CyclesTotal     prometheus.Counter
	CycleDuration   prometheus.Histogram
	PipelineRunning prometheus.Gauge

	// Ingestion metrics.
	FetchRequests   *prometheus.CounterVec // labels: source, outcome={success,error}
	ArticlesFetched prometheus.Counter
	WeatherReadings prometheus.Counter

	// Core engine metrics.
	EvidenceExtracted prometheus.Counter
	UpdatesFused      prometheus.Counter

	// Persistence metrics.
	Upserts *prometheus.CounterVec // labels: outcome={inserted,merged,error}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.PipelineRunning,
		m.FetchRequests,
		m.ArticlesFetched,
		m.WeatherReadings,
		m.EvidenceExtracted,
		m.UpdatesFused,
		m.Upserts,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holiday_signal",
			Name:      "cycles_total",
			Help:      "Total completed fetch-extract-fuse-save cycles.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "holiday_signal",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete pipeline cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "holiday_signal",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holiday_signal",
			Name:      "fetch_requests_total",
			Help:      "Upstream fetch attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		ArticlesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holiday_signal",
			Name:      "articles_fetched_total",
			Help:      "Total articles returned by all text sources.",
		}),
		WeatherReadings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holiday_signal",
			Name:      "weather_readings_total",
			Help:      "Total normalized weather readings.",
		}),
		EvidenceExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holiday_signal",
			Name:      "evidence_extracted_total",
			Help:      "Total evidence items emitted by the extractor.",
		}),
		UpdatesFused: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "holiday_signal",
			Name:      "updates_fused_total",
			Help:      "Total actionable updates produced by fusion.",
		}),
		Upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holiday_signal",
			Name:      "upserts_total",
			Help:      "Store upsert attempts by outcome.",
		}, []string{"outcome"}),
	}
}
