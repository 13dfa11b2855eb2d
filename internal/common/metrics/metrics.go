// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_requests_total",
			Help: "Total number of report requests by outcome",
		},
		[]string{"outcome"},
	)

	ReportStageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_stage_failures_total",
			Help: "Total number of pipeline failures by stage",
		},
		[]string{"stage", "error_code"},
	)

	ReportStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	ReportArtifactBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_artifact_bytes",
			Help:    "Size of rendered report documents in bytes",
			Buckets: prometheus.ExponentialBuckets(32*1024, 2, 10),
		},
	)

	ReportsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "report_requests_in_flight",
			Help: "Number of report requests currently being processed",
		},
	)
)
