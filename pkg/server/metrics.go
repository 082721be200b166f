package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics collects Prometheus metrics for the dashboard API.
type metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstreamHealthy  prometheus.Gauge
	modelSelections  prometheus.Counter
	preferenceWrites prometheus.Counter
}

var (
	metricsOnce sync.Once
	metricsInst *metrics
)

// newMetrics returns the process-wide metrics collector. Registration with
// the default registry must only happen once even if multiple servers are
// constructed (tests).
func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInst = &metrics{
			requestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "gridscope_requests_total",
					Help: "Total number of API requests processed",
				},
				[]string{"route", "status"},
			),
			requestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "gridscope_request_duration_seconds",
					Help:    "API request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"route"},
			),
			upstreamHealthy: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "gridscope_forecast_upstream_healthy",
					Help: "Whether the last forecast service request succeeded (1) or failed (0)",
				},
			),
			modelSelections: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "gridscope_model_selections_total",
					Help: "Total number of successful model selections",
				},
			),
			preferenceWrites: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "gridscope_preference_writes_total",
					Help: "Total number of preference updates persisted",
				},
			),
		}
	})
	return metricsInst
}

// observeUpstream flips the upstream health gauge based on the outcome of a
// forecast service call.
func (m *metrics) observeUpstream(err error) {
	if err != nil {
		m.upstreamHealthy.Set(0)
		return
	}
	m.upstreamHealthy.Set(1)
}
