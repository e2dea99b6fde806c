package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	recipeWrites  *prometheus.CounterVec
	searches      *prometheus.CounterVec
	searchHits    prometheus.Histogram
	exports       *prometheus.CounterVec
	authEvents    *prometheus.CounterVec
	breakerStates *prometheus.GaugeVec
}

func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total API requests by method/route/status.",
			},
			[]string{"method", "route", "status"},
		),
		apiLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request latency in seconds by method/route/status.",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_inflight_requests",
			Help:      "In-flight API requests.",
		}),
		recipeWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recipe_writes_total",
				Help:      "Recipe writes by operation (create/update/delete).",
			},
			[]string{"op"},
		),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingredient_searches_total",
				Help:      "Ingredient searches by mode and outcome.",
			},
			[]string{"mode", "outcome"},
		),
		searchHits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingredient_search_hits",
			Help:      "Number of recipes returned per ingredient search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Rendered exports by format (pdf/png) and status.",
			},
			[]string{"format", "status"},
		),
		authEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_events_total",
				Help:      "Auth events by kind (register/login/refresh/logout) and outcome.",
			},
			[]string{"event", "outcome"},
		),
		breakerStates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
			},
			[]string{"name"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.recipeWrites,
		m.searches,
		m.searchHits,
		m.exports,
		m.authEvents,
		m.breakerStates,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncRecipeWrite(op string) {
	if m == nil {
		return
	}
	m.recipeWrites.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveSearch(mode string, hits int, err error) {
	if m == nil {
		return
	}
	outcome := "hit"
	switch {
	case err != nil:
		outcome = "error"
	case hits == 0:
		outcome = "miss"
	}
	m.searches.WithLabelValues(mode, outcome).Inc()
	if err == nil {
		m.searchHits.Observe(float64(hits))
	}
}

func (m *Metrics) IncExport(format string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.exports.WithLabelValues(format, status).Inc()
}

func (m *Metrics) IncAuthEvent(event string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.authEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerStates.WithLabelValues(name).Set(state)
}
