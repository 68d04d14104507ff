// Package middleware provides the chi middleware chain for the API
package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alchemorsel/mealplan/internal/infrastructure/config"
	"github.com/alchemorsel/mealplan/pkg/errors"
)

// Middleware provides the request logging, recovery and rate limiting handlers
type Middleware struct {
	config  *config.Config
	logger  *zap.Logger
	limiter *rate.Limiter
}

// New creates a new middleware instance
func New(cfg *config.Config, logger *zap.Logger) *Middleware {
	limit := rate.Inf
	if cfg.RateLimit.RequestsPerMin > 0 {
		limit = rate.Limit(float64(cfg.RateLimit.RequestsPerMin) / 60)
	}

	return &Middleware{
		config:  cfg,
		logger:  logger.Named("http"),
		limiter: rate.NewLimiter(limit, cfg.RateLimit.BurstSize),
	}
}

// Logger logs every request except health checks
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		if r.URL.Path == m.config.Monitoring.HealthCheckPath {
			return
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		path := r.URL.Path
		if r.URL.RawQuery != "" {
			path += "?" + r.URL.RawQuery
		}

		fields := []zap.Field{
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", path),
			zap.String("ip", r.RemoteAddr),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("latency", time.Since(start)),
		}

		switch {
		case status >= 500:
			m.logger.Error("Server error", fields...)
		case status >= 400:
			m.logger.Warn("Client error", fields...)
		default:
			m.logger.Info("Request completed", fields...)
		}
	})
}

// Recovery turns a panic into a 500 error response
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				requestID := chimiddleware.GetReqID(r.Context())
				m.logger.Error("Panic recovered",
					zap.String("request_id", requestID),
					zap.Any("error", rec),
					zap.String("stack", string(debug.Stack())),
				)

				WriteError(w, errors.NewInternalError(""), requestID)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// RateLimit rejects requests over the configured rate with 429
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.RateLimit.Enable || m.limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := time.Minute
		if m.config.RateLimit.RequestsPerMin > 0 {
			retryAfter = time.Minute / time.Duration(m.config.RateLimit.RequestsPerMin)
		}
		if retryAfter < time.Second {
			retryAfter = time.Second
		}

		w.Header().Set("Retry-After", retryAfterHeader(retryAfter))
		WriteError(w, errors.NewRateLimitedError(retryAfter), chimiddleware.GetReqID(r.Context()))
	})
}

// Security sets the response headers for a JSON API
func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// WriteError writes err as a JSON error response. Errors that are not
// AppErrors become INTERNAL_ERROR.
func WriteError(w http.ResponseWriter, err error, requestID string) {
	appErr := errors.Wrap(err, "")
	if appErr == nil {
		appErr = errors.NewInternalError("")
	}
	if requestID != "" {
		w.Header().Set(chimiddleware.RequestIDHeader, requestID)
	}
	WriteJSON(w, appErr.StatusCode(), errors.ToErrorResponse(appErr, requestID))
}

// WriteJSON writes v with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func retryAfterHeader(d time.Duration) string {
	return strconv.Itoa(int(d.Round(time.Second).Seconds()))
}
