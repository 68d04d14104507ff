package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
)

// Config configures the recipe cache
type Config struct {
	LocalSize int
	TTL       time.Duration
	Prefix    string
}

const (
	tierLocal = "local"
	tierRedis = "redis"

	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// RecipeCache decorates a RecipeRepository with a read-through cache for
// FindByID: an in-process LRU in front of an optional shared Redis tier.
// Candidate queries are random samples and always reach the store.
type RecipeCache struct {
	next     outbound.RecipeRepository
	local    *LocalCache[recipe.Snapshot]
	redis    redis.UniversalClient
	ttl      time.Duration
	prefix   string
	requests *prometheus.CounterVec
	logger   *zap.Logger
}

// NewRecipeCache wraps next. client may be nil to keep the cache process-local.
func NewRecipeCache(next outbound.RecipeRepository, client redis.UniversalClient, cfg Config, reg prometheus.Registerer, logger *zap.Logger) *RecipeCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "mealplan:recipe:"
	}

	return &RecipeCache{
		next:   next,
		local:  NewLocalCache[recipe.Snapshot](cfg.LocalSize),
		redis:  client,
		ttl:    cfg.TTL,
		prefix: cfg.Prefix,
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mealplan_recipe_cache_requests_total",
			Help: "Recipe cache lookups by tier and result",
		}, []string{"tier", "result"}),
		logger: logger.Named("recipe-cache"),
	}
}

// Create stores the recipe; new ids have nothing to invalidate
func (c *RecipeCache) Create(ctx context.Context, r *recipe.Recipe) error {
	return c.next.Create(ctx, r)
}

// FindByID returns a fresh copy of the recipe on every call
func (c *RecipeCache) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	key := c.prefix + id.String()

	if snap, ok := c.local.Get(key); ok {
		c.requests.WithLabelValues(tierLocal, resultHit).Inc()
		return recipe.Reconstitute(snap), nil
	}
	c.requests.WithLabelValues(tierLocal, resultMiss).Inc()

	if snap, ok := c.fromRedis(ctx, key); ok {
		c.local.Set(key, snap, c.ttl)
		return recipe.Reconstitute(snap), nil
	}

	r, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := r.ToSnapshot()
	c.local.Set(key, snap, c.ttl)
	c.toRedis(ctx, key, snap)
	return r, nil
}

// Delete removes the recipe from the store, then from both tiers
func (c *RecipeCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}

	key := c.prefix + id.String()
	c.local.Delete(key)
	if c.redis != nil {
		if err := c.redis.Del(ctx, key).Err(); err != nil {
			c.logger.Warn("Failed to evict recipe from Redis", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

// RandomByCategory is not cached
func (c *RecipeCache) RandomByCategory(ctx context.Context, category recipe.Category, count int, exclude []uuid.UUID) ([]*recipe.Recipe, error) {
	return c.next.RandomByCategory(ctx, category, count, exclude)
}

// FindByCategoryAndCalorieRange is not cached
func (c *RecipeCache) FindByCategoryAndCalorieRange(ctx context.Context, category recipe.Category, minCal, maxCal int, exclude []uuid.UUID) ([]*recipe.Recipe, error) {
	return c.next.FindByCategoryAndCalorieRange(ctx, category, minCal, maxCal, exclude)
}

func (c *RecipeCache) fromRedis(ctx context.Context, key string) (recipe.Snapshot, bool) {
	if c.redis == nil {
		return recipe.Snapshot{}, false
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case stderrors.Is(err, redis.Nil):
		c.requests.WithLabelValues(tierRedis, resultMiss).Inc()
		return recipe.Snapshot{}, false
	case err != nil:
		c.requests.WithLabelValues(tierRedis, resultError).Inc()
		c.logger.Warn("Redis lookup failed, reading from store", zap.String("key", key), zap.Error(err))
		return recipe.Snapshot{}, false
	}

	var snap recipe.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.requests.WithLabelValues(tierRedis, resultError).Inc()
		c.logger.Warn("Discarding undecodable cached recipe", zap.String("key", key), zap.Error(err))
		return recipe.Snapshot{}, false
	}

	c.requests.WithLabelValues(tierRedis, resultHit).Inc()
	return snap, true
}

func (c *RecipeCache) toRedis(ctx context.Context, key string, snap recipe.Snapshot) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("Failed to encode recipe for Redis", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache recipe in Redis", zap.String("key", key), zap.Error(err))
	}
}

var _ outbound.RecipeRepository = (*RecipeCache)(nil)
