// Package metrics exposes Prometheus collectors for the classification API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for the requests counter.
const (
	OutcomeValid       = "valid"
	OutcomeInvalid     = "invalid"
	OutcomeFormat      = "format"
	OutcomeNotFound    = "not_found"
	OutcomeSchema      = "schema"
	OutcomeRateLimited = "rate_limited"
	OutcomeInternal    = "internal"
)

// Metrics owns a registry with the service collectors.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	duration  prometheus.Histogram
	buildInfo *prometheus.GaugeVec
}

// New registers the service collectors plus the Go and process collectors on
// a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dupscore_requests_total",
				Help: "Classification requests by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dupscore_request_duration_seconds",
				Help:    "Time spent handling classification requests",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dupscore_build_info",
				Help: "Build information for the dupscore server",
			},
			[]string{"version", "model", "store"},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// SetBuildInfo publishes the running version and collaborators.
func (m *Metrics) SetBuildInfo(version, model, store string) {
	m.buildInfo.WithLabelValues(version, model, store).Set(1)
}

// Observe records one finished request.
func (m *Metrics) Observe(outcome string, elapsed time.Duration) {
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
