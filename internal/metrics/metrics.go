// Package metrics defines the Prometheus collectors for `copycheck serve`
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. Each instance owns its registry so tests and
// multiple servers in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	DetectionsTotal     *prometheus.CounterVec
	DetectionDuration   prometheus.Histogram
	FlaggedReferences   prometheus.Histogram
	ReferenceDocuments  prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copycheck_http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "copycheck_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		DetectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copycheck_detections_total",
				Help: "Detection requests by outcome (plagiarized, clean, error).",
			},
			[]string{"outcome"},
		),
		DetectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "copycheck_detection_duration_seconds",
				Help:    "Time spent building the vector space and matching phrases.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		FlaggedReferences: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "copycheck_flagged_references",
				Help:    "Number of references flagged per detection.",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),
		ReferenceDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "copycheck_reference_documents",
				Help: "Number of reference documents loaded at startup.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DetectionsTotal,
		m.DetectionDuration,
		m.FlaggedReferences,
		m.ReferenceDocuments,
	)

	return m
}

// ObserveDetection records one finished detection.
func (m *Metrics) ObserveDetection(seconds float64, flagged int, err error) {
	switch {
	case err != nil:
		m.DetectionsTotal.WithLabelValues("error").Inc()
		return
	case flagged > 0:
		m.DetectionsTotal.WithLabelValues("plagiarized").Inc()
	default:
		m.DetectionsTotal.WithLabelValues("clean").Inc()
	}
	m.DetectionDuration.Observe(seconds)
	m.FlaggedReferences.Observe(float64(flagged))
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
