package monitoring

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
)

func TestMetricsRecorder(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecipesAdded(3)
	m.RecipesAdded(0)
	m.Shortfall("dinner", 2)
	m.Shortfall("dessert", 0)
	m.Snapshot(outbound.OutcomeScaled)
	m.Snapshot(outbound.OutcomeScaled)
	m.Snapshot(outbound.OutcomeVerbatim)
	m.ScalingFactor(1.2)
	m.AICall("scale_ingredients", "success")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.recipesAdded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.shortfalls.WithLabelValues("dinner")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.shortfalls))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.snapshots.WithLabelValues(outbound.OutcomeScaled)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshots.WithLabelValues(outbound.OutcomeVerbatim)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.scalingFactor))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiCalls.WithLabelValues("scale_ingredients", "success")))
}

func TestHTTPMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Get("/plans/{planID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/plans/{planID}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `mealplan_http_requests_total{method="GET",route="/plans/{planID}",status_code="404"} 2`))
}

func TestRegisterDBStats(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	reg := NewRegistry()
	require.NoError(t, RegisterDBStats(reg, db, "primary"))
	assert.Error(t, RegisterDBStats(reg, db, "primary"))

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "go_sql_open_connections" {
			found = true
		}
	}
	assert.True(t, found)
}
