package healthcheck

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func staticChecker(status Status) Checker {
	return NewCustomChecker("static", func(context.Context) (Status, string, interface{}) {
		return status, string(status), nil
	})
}

func TestCheckAggregatesStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New("test", zaptest.NewLogger(t))
			for i, s := range tc.statuses {
				h.Register(string(rune('a'+i)), staticChecker(s))
			}

			resp := h.Check(context.Background())
			assert.Equal(t, tc.want, resp.Status)
			require.Len(t, resp.Checks, len(tc.statuses))
			assert.Equal(t, "a", resp.Checks[0].Name)
		})
	}
}

func TestCheckIsCached(t *testing.T) {
	calls := 0
	h := New("test", zaptest.NewLogger(t))
	h.Register("counting", NewCustomChecker("counting", func(context.Context) (Status, string, interface{}) {
		calls++
		return StatusHealthy, "", nil
	}))

	h.Check(context.Background())
	h.Check(context.Background())
	assert.Equal(t, 1, calls)

	h.SetCacheTTL(0)
	h.Check(context.Background())
	assert.Equal(t, 2, calls)
}

func TestHandlers(t *testing.T) {
	h := New("1.2.3", zaptest.NewLogger(t))
	h.Register("ai", staticChecker(StatusUnhealthy))

	rec := httptest.NewRecorder()
	h.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])

	rec = httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDatabaseChecker(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	check := NewDatabaseChecker(db).Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status)
	assert.NotNil(t, check.Metadata)

	require.NoError(t, db.Close())
	check = NewDatabaseChecker(db).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, check.Status)
}

func TestRedisCheckerUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	check := NewRedisChecker(client).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, check.Status)
	assert.NotEmpty(t, check.Message)
}
