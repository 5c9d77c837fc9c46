package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared across the pipeline and
// the HTTP surface. Register one instance per process.
type Metrics struct {
	StageDuration    *prometheus.HistogramVec
	StageFailures    *prometheus.CounterVec
	PipelineRuns     *prometheus.CounterVec
	BackendRequests  *prometheus.CounterVec
	BackendDuration  *prometheus.HistogramVec
	DatasetRows      prometheus.Histogram
	PrivacyRejects   prometheus.Counter
	ActiveOperations prometheus.Gauge
}

// NewMetrics creates and registers the collectors on the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use a private
// registry so parallel tests do not collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tableone",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tableone",
			Subsystem: "pipeline",
			Name:      "stage_failures_total",
			Help:      "Stage failures by stage and error code.",
		}, []string{"stage", "code"}),
		PipelineRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tableone",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		BackendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tableone",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Requests to the statistics backend by endpoint and status.",
		}, []string{"endpoint", "status"}),
		BackendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tableone",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of statistics backend calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"endpoint"}),
		DatasetRows: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tableone",
			Subsystem: "dataset",
			Name:      "rows",
			Help:      "Row counts of accepted datasets.",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000},
		}),
		PrivacyRejects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tableone",
			Subsystem: "privacy",
			Name:      "rejects_total",
			Help:      "Datasets rejected by the sensitive-column gate.",
		}),
		ActiveOperations: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tableone",
			Subsystem: "pipeline",
			Name:      "active_operations",
			Help:      "Pipeline runs currently in flight.",
		}),
	}
}
