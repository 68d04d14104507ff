// Package redis provides Redis-backed adapters
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alchemorsel/mealplan/internal/infrastructure/config"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the lease only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript renews the lease only while it still holds our token
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// NewClient creates a Redis client and verifies the connection
func NewClient(ctx context.Context, cfg config.RedisConfig, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// PlanLocker is a per-plan lease shared by every instance using the same Redis.
// The holder renews the lease every TTL/3 until release, so the TTL only
// bounds how long a crashed holder blocks the plan.
type PlanLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewPlanLocker creates a Redis plan locker
func NewPlanLocker(client redis.UniversalClient, prefix string, ttl time.Duration, logger *zap.Logger) *PlanLocker {
	return &PlanLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.Named("plan-locker"),
	}
}

var _ outbound.PlanLocker = (*PlanLocker)(nil)

func (l *PlanLocker) key(planID uuid.UUID) string {
	return l.prefix + planID.String()
}

// Acquire sets the lease with NX or fails with outbound.ErrLockHeld
func (l *PlanLocker) Acquire(ctx context.Context, planID uuid.UUID) (func(), error) {
	key := l.key(planID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire plan lock: %w", err)
	}
	if !ok {
		return nil, outbound.ErrLockHeld
	}

	renewCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go l.keepAlive(renewCtx, key, token, planID, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			<-done
			l.release(key, token, planID)
		})
	}, nil
}

// keepAlive extends the lease until ctx is cancelled or the lease is lost
func (l *PlanLocker) keepAlive(ctx context.Context, key, token string, planID uuid.UUID, done chan<- struct{}) {
	defer close(done)

	interval := l.ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			extended, err := extendScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Warn("Failed to extend plan lock",
					zap.String("plan_id", planID.String()),
					zap.Error(err),
				)
				continue
			}
			if extended == 0 {
				l.logger.Warn("Plan lock lease lost",
					zap.String("plan_id", planID.String()),
				)
				return
			}
		}
	}
}

func (l *PlanLocker) release(key, token string, planID uuid.UUID) {
	// The caller's context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.Warn("Failed to release plan lock",
			zap.String("plan_id", planID.String()),
			zap.Error(err),
		)
	}
}
