package ai

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HealthStatus reports the state of the configured AI backend
type HealthStatus struct {
	Status    string    `json:"status"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	Error     string    `json:"error,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

// Health status values
const (
	StatusHealthy       = "healthy"
	StatusUnhealthy     = "unhealthy"
	StatusNotConfigured = "not_configured"
)

// HealthChecker pings the active generator
type HealthChecker struct {
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewHealthChecker creates a checker. A nil generator reports not_configured.
func NewHealthChecker(generator Generator, timeout time.Duration, logger *zap.Logger) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthChecker{
		generator: generator,
		timeout:   timeout,
		logger:    logger.Named("ai-health"),
	}
}

// CheckHealth pings the backend within the checker's timeout
func (h *HealthChecker) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{LastCheck: time.Now()}

	if h.generator == nil {
		status.Status = StatusNotConfigured
		return status
	}

	status.Provider = string(h.generator.Provider())
	status.Model = h.generator.Model()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.generator.Ping(ctx); err != nil {
		h.logger.Warn("AI provider health check failed",
			zap.String("provider", status.Provider),
			zap.Error(err),
		)
		status.Status = StatusUnhealthy
		status.Error = err.Error()
		return status
	}

	status.Status = StatusHealthy
	return status
}
