package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultMinCallInterval is the pause enforced between consecutive provider calls
const DefaultMinCallInterval = 4 * time.Second

// RateLimitedGenerator spaces out calls to a TextGenerator so consecutive
// requests respect provider rate limits
type RateLimitedGenerator struct {
	next    outbound.TextGenerator
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewRateLimitedGenerator wraps next. A non-positive interval disables the delay.
func NewRateLimitedGenerator(next outbound.TextGenerator, interval time.Duration, logger *zap.Logger) *RateLimitedGenerator {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("ai-rate-limiter"),
	}
}

// Provider returns the wrapped provider
func (g *RateLimitedGenerator) Provider() outbound.AIProvider {
	return g.next.Provider()
}

// Model returns the wrapped model name
func (g *RateLimitedGenerator) Model() string {
	return g.next.Model()
}

// GenerateJSON waits for the limiter before delegating
func (g *RateLimitedGenerator) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	reservation := g.limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		g.logger.Debug("Delaying AI call", zap.Duration("delay", delay))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			reservation.Cancel()
			return "", fmt.Errorf("waiting for AI rate limit: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return g.next.GenerateJSON(ctx, system, prompt)
}
