package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application's Prometheus collectors. A nil *Metrics is
// valid and records nothing, so services can be built without it in tests.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SearchDuration      prometheus.Histogram
	SearchResults       prometheus.Histogram
	LedgerTransitions   *prometheus.CounterVec
	GameMutations       *prometheus.CounterVec
	AuthAttempts        *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "game_search_duration_seconds",
				Help:    "Latency of the game search query",
				Buckets: prometheus.DefBuckets,
			},
		),
		SearchResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "game_search_results",
				Help:    "Number of games matched by a search before pagination",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		LedgerTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transitions_total",
				Help: "Owned/wishlist operations by outcome",
			},
			[]string{"operation", "result"},
		),
		GameMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_mutations_total",
				Help: "Game create/edit/delete operations by outcome",
			},
			[]string{"operation", "result"},
		),
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SearchDuration,
		m.SearchResults,
		m.LedgerTransitions,
		m.GameMutations,
		m.AuthAttempts,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSearch(elapsed time.Duration, matched int) {
	if m == nil {
		return
	}
	m.SearchDuration.Observe(elapsed.Seconds())
	m.SearchResults.Observe(float64(matched))
}

func (m *Metrics) CountLedger(operation, result string) {
	if m == nil {
		return
	}
	m.LedgerTransitions.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) CountGameMutation(operation, result string) {
	if m == nil {
		return
	}
	m.GameMutations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) CountAuth(status string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(status).Inc()
}
