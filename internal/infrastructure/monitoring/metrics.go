// Package monitoring provides Prometheus metrics and OpenTelemetry setup
package monitoring

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
)

const namespace = "mealplan"

// NewRegistry creates a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RegisterDBStats exports connection pool statistics for db
func RegisterDBStats(reg prometheus.Registerer, db *sql.DB, name string) error {
	if err := reg.Register(collectors.NewDBStatsCollector(db, name)); err != nil {
		return fmt.Errorf("failed to register db stats collector: %w", err)
	}
	return nil
}

// Metrics implements outbound.MetricsRecorder on Prometheus and also
// instruments HTTP traffic
type Metrics struct {
	gatherer prometheus.Gatherer

	recipesAdded  prometheus.Counter
	shortfalls    *prometheus.CounterVec
	snapshots     *prometheus.CounterVec
	scalingFactor prometheus.Histogram
	aiCalls       *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ outbound.MetricsRecorder = (*Metrics)(nil)

// NewMetrics registers the collectors on reg
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		recipesAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipes_added_total",
			Help:      "Recipes placed into meal plan days by auto-generation",
		}),
		shortfalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shortfalls_total",
			Help:      "Slots auto-generation could not fill, by category",
		}, []string{"category"}),
		snapshots: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Per-person recipe snapshots written, by outcome",
		}, []string{"outcome"}),
		scalingFactor: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scaling_factor",
			Help:      "Portion factors applied to scaled recipes",
			Buckets:   []float64{0.25, 0.5, 0.75, 0.9, 1.0, 1.1, 1.25, 1.5, 2, 3},
		}),
		aiCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_calls_total",
			Help:      "Text generation calls, by operation and outcome",
		}, []string{"operation", "outcome"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status_code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 180},
		}, []string{"method", "route"}),
	}
}

// RecipesAdded counts recipes placed by auto-generation
func (m *Metrics) RecipesAdded(n int) {
	if n > 0 {
		m.recipesAdded.Add(float64(n))
	}
}

// Shortfall counts unfilled slots for a category
func (m *Metrics) Shortfall(category string, missing int) {
	if missing > 0 {
		m.shortfalls.WithLabelValues(category).Add(float64(missing))
	}
}

// Snapshot counts one snapshot write
func (m *Metrics) Snapshot(outcome string) {
	m.snapshots.WithLabelValues(outcome).Inc()
}

// ScalingFactor observes an applied portion factor
func (m *Metrics) ScalingFactor(factor float64) {
	m.scalingFactor.Observe(factor)
}

// AICall counts one text generation call
func (m *Metrics) AICall(operation, outcome string) {
	m.aiCalls.WithLabelValues(operation, outcome).Inc()
}

// HTTPMiddleware records request count and latency per chi route pattern
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
