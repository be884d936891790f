// Package metrics defines the Prometheus metric collectors used across the
// platform and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	OriginRequestsTotal  *prometheus.CounterVec
	OriginRequestLatency *prometheus.HistogramVec
	EnrichmentTotal      *prometheus.CounterVec
	RenderCacheHits      prometheus.Counter
	RenderCacheMisses    prometheus.Counter
	RevalidationsTotal   *prometheus.CounterVec
	WarmupsTotal         *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		OriginRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "origin_requests_total",
				Help: "Total requests to the WordPress origin by resource and outcome (ok, error, cached).",
			},
			[]string{"resource", "outcome"},
		),
		OriginRequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "origin_request_duration_seconds",
				Help:    "WordPress origin fetch latency in seconds.",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"resource"},
		),
		EnrichmentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_enrichment_total",
				Help: "Sub-resource resolutions by field (image, author, category) and source (embedded, fetched, default).",
			},
			[]string{"field", "source"},
		),
		RenderCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "render_cache_hits_total",
				Help: "Total number of render cache hits.",
			},
		),
		RenderCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "render_cache_misses_total",
				Help: "Total number of render cache misses.",
			},
		),
		RevalidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revalidations_total",
				Help: "Revalidation requests handled by kind (post, page, path, tag, full_refresh).",
			},
			[]string{"kind"},
		),
		WarmupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_warmups_total",
				Help: "Cache warm-up attempts after invalidation, by status.",
			},
			[]string{"status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.OriginRequestsTotal,
		m.OriginRequestLatency,
		m.EnrichmentTotal,
		m.RenderCacheHits,
		m.RenderCacheMisses,
		m.RevalidationsTotal,
		m.WarmupsTotal,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
