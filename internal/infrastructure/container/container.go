// Package container wires the application with Uber FX
package container

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appai "github.com/alchemorsel/mealplan/internal/application/ai"
	appmealplan "github.com/alchemorsel/mealplan/internal/application/mealplan"
	"github.com/alchemorsel/mealplan/internal/application/planner"
	apprecipe "github.com/alchemorsel/mealplan/internal/application/recipe"
	"github.com/alchemorsel/mealplan/internal/application/scaling"
	"github.com/alchemorsel/mealplan/internal/application/shopping"
	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	infraai "github.com/alchemorsel/mealplan/internal/infrastructure/ai"
	"github.com/alchemorsel/mealplan/internal/infrastructure/cache"
	"github.com/alchemorsel/mealplan/internal/infrastructure/config"
	"github.com/alchemorsel/mealplan/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/mealplan/internal/infrastructure/http/server"
	"github.com/alchemorsel/mealplan/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/mealplan/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/alchemorsel/mealplan/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/healthcheck"
	"github.com/alchemorsel/mealplan/pkg/logger"
)

// ConfigPath is the config file to load. Empty searches the default locations.
type ConfigPath string

// WithConfigPath supplies the config file location
func WithConfigPath(path string) fx.Option {
	return fx.Supply(ConfigPath(path))
}

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	RepositoryModule,
	LockModule,
	AIModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Name:        cfg.App.Name,
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// MonitoringModule provides the metrics registry, the metrics recorder and telemetry
var MonitoringModule = fx.Provide(
	monitoring.NewRegistry,
	monitoring.NewMetrics,
	func(m *monitoring.Metrics) outbound.MetricsRecorder { return m },
	func(lc fx.Lifecycle, cfg *config.Config, reg *prometheus.Registry, log *zap.Logger) (*monitoring.Telemetry, error) {
		tel, err := monitoring.NewTelemetry(context.Background(), monitoring.TelemetryConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			TracingEnabled: cfg.Monitoring.EnableTracing,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			OTLPInsecure:   cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
		}, reg, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(tel.Shutdown))
		return tel, nil
	},
)

// Database is the open store with its underlying pool
type Database struct {
	Gorm *gorm.DB
	SQL  *sql.DB
}

// DatabaseModule opens SQLite or PostgreSQL, applies the schema and
// instruments queries
var DatabaseModule = fx.Provide(
	NewDatabase,
	func(db *Database) *gorm.DB { return db.Gorm },
)

// NewDatabase opens the configured driver
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, reg *prometheus.Registry, log *zap.Logger) (*Database, error) {
	var (
		gdb *gorm.DB
		err error
	)

	switch cfg.Database.Driver {
	case "postgres":
		cm, cmErr := postgres.NewConnectionManager(cfg.Database, log)
		if cmErr != nil {
			return nil, cmErr
		}
		if cfg.Database.AutoMigrate {
			migrator, mErr := migrations.New(cm.SQLDB(), cfg.Database.Database, log)
			if mErr != nil {
				_ = cm.Close()
				return nil, mErr
			}
			if mErr := migrator.Up(); mErr != nil {
				_ = cm.Close()
				return nil, mErr
			}
		}
		gdb = cm.DB()
	default:
		gdb, err = sqlite.SetupDatabase(cfg.Database.Path, cfg.Database.LogLevel, log)
		if err != nil {
			return nil, err
		}
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	monitor, err := gormRepo.NewQueryMonitor(reg, cfg.Database.SlowThreshold, log)
	if err != nil {
		return nil, err
	}
	if err := monitor.Install(gdb); err != nil {
		return nil, err
	}
	if err := monitoring.RegisterDBStats(reg, sqlDB, cfg.Database.Driver); err != nil {
		return nil, err
	}

	if cfg.Database.Seed {
		if err := sqlite.SeedDatabase(context.Background(), gdb); err != nil {
			log.Warn("Failed to seed database", zap.Error(err))
		}
	}

	lc.Append(fx.StopHook(func() error {
		return sqlDB.Close()
	}))

	return &Database{Gorm: gdb, SQL: sqlDB}, nil
}

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	NewRecipeRepository,
	gormRepo.NewMealPlanRepository,
	gormRepo.NewPersonRepository,
	gormRepo.NewSnapshotRepository,
	gormRepo.NewShoppingListRepository,
)

// RecipeRepositoryInputs are the dependencies of the recipe store
type RecipeRepositoryInputs struct {
	fx.In

	DB       *gorm.DB
	Config   *config.Config
	Registry *prometheus.Registry
	Redis    goredis.UniversalClient `optional:"true"`
	Logger   *zap.Logger
}

// NewRecipeRepository returns the gorm recipe store, behind the lookup cache when enabled
func NewRecipeRepository(in RecipeRepositoryInputs) outbound.RecipeRepository {
	store := gormRepo.NewRecipeRepository(in.DB)
	if !in.Config.Cache.Enable {
		return store
	}

	in.Logger.Info("Recipe cache enabled",
		zap.Int("local_size", in.Config.Cache.LocalSize),
		zap.Duration("ttl", in.Config.Cache.TTL),
		zap.Bool("redis", in.Redis != nil),
	)
	return cache.NewRecipeCache(store, in.Redis, cache.Config{
		LocalSize: in.Config.Cache.LocalSize,
		TTL:       in.Config.Cache.TTL,
		Prefix:    in.Config.Cache.Prefix,
	}, in.Registry, in.Logger)
}

// LockModule provides the per-plan lock. The redis backend also provides its
// client to the health checks.
var LockModule = fx.Provide(
	NewPlanLocker,
)

// Locker is the plan lock with its optional Redis client
type Locker struct {
	fx.Out

	PlanLocker outbound.PlanLocker
	Redis      goredis.UniversalClient
}

// NewPlanLocker selects the lock backend
func NewPlanLocker(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (Locker, error) {
	if cfg.Lock.Backend != "redis" {
		log.Info("Using in-process plan locks")
		return Locker{PlanLocker: memory.NewPlanLocker()}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redisRepo.NewClient(ctx, cfg.Redis, cfg.RedisAddr())
	if err != nil {
		return Locker{}, err
	}
	lc.Append(fx.StopHook(client.Close))

	log.Info("Using Redis plan locks", zap.String("addr", cfg.RedisAddr()))
	return Locker{
		PlanLocker: redisRepo.NewPlanLocker(client, cfg.Lock.Prefix, cfg.Lock.TTL, log),
		Redis:      client,
	}, nil
}

// AIModule provides the text generator and the AI adapters built on it
var AIModule = fx.Provide(
	NewTextGenerator,
	func(gen outbound.TextGenerator, metrics outbound.MetricsRecorder, log *zap.Logger) outbound.IngredientScaler {
		return appai.NewIngredientScaler(gen, metrics, log)
	},
	func(cfg *config.Config, gen outbound.TextGenerator, metrics outbound.MetricsRecorder, log *zap.Logger) outbound.ShoppingListGenerator {
		return appai.NewShoppingListGenerator(gen, cfg.AI.ShoppingChunkDays, metrics, log)
	},
)

// Generators carries the rate-limited generator and the raw client used for pings.
// Both are nil when no provider is configured.
type Generators struct {
	fx.Out

	Text   outbound.TextGenerator
	Health *infraai.HealthChecker
}

// NewTextGenerator builds the configured provider. A missing provider or key
// leaves scaling and shopping lists unavailable instead of failing startup.
func NewTextGenerator(cfg *config.Config, log *zap.Logger) (Generators, error) {
	raw, err := infraai.NewGenerator(context.Background(), cfg.AI, log)
	switch {
	case err == nil:
	case stderrors.Is(err, outbound.ErrNoAIProvider), stderrors.Is(err, outbound.ErrMissingAPIKey):
		log.Warn("AI provider unavailable, scaling and shopping lists are disabled", zap.Error(err))
		return Generators{Health: infraai.NewHealthChecker(nil, 0, log)}, nil
	default:
		return Generators{}, err
	}

	return Generators{
		Text:   appai.NewRateLimitedGenerator(raw, cfg.AI.MinCallInterval, log),
		Health: infraai.NewHealthChecker(raw, 0, log),
	}, nil
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(cfg *config.Config) mealplan.ScalingCalculator {
		return mealplan.NewScalingCalculator(cfg.Scaling.ToleranceKcal)
	},
	scaling.NewOrchestrator,
	planner.NewCandidateSelector,
	func(cfg *config.Config, selector *planner.CandidateSelector, plans outbound.MealPlanRepository, log *zap.Logger) *planner.DayFiller {
		filler := planner.NewDayFiller(selector, plans, rand.New(rand.NewSource(time.Now().UnixNano())), log)
		filler.SetSampling(cfg.Planner.FallbackSampleSize, cfg.Planner.TopK)
		return filler
	},
	func(cfg *config.Config, persons outbound.PersonRepository, filler *planner.DayFiller, orchestrator *scaling.Orchestrator, metrics outbound.MetricsRecorder, log *zap.Logger) *planner.Generator {
		return planner.NewGenerator(persons, filler, orchestrator, PlannerDefaults(cfg.Planner, log), metrics, log)
	},
	shopping.NewAggregator,
	func(recipes outbound.RecipeRepository, plans outbound.MealPlanRepository, persons outbound.PersonRepository, snapshots outbound.SnapshotRepository) appmealplan.Repositories {
		return appmealplan.Repositories{Recipes: recipes, Plans: plans, Persons: persons, Snapshots: snapshots}
	},
	appmealplan.NewService,
	apprecipe.NewRecipeService,
)

// PlannerDefaults converts planner config into generation defaults. Unknown
// categories are dropped with a warning.
func PlannerDefaults(cfg config.PlannerConfig, log *zap.Logger) planner.Defaults {
	d := planner.DefaultDefaults()

	if len(cfg.Categories) > 0 {
		categories := make([]recipe.Category, 0, len(cfg.Categories))
		for _, name := range cfg.Categories {
			c, err := recipe.ParseCategory(name)
			if err != nil {
				log.Warn("Ignoring unknown planner category", zap.String("category", name))
				continue
			}
			categories = append(categories, c)
		}
		if len(categories) > 0 {
			d.Categories = categories
		}
	}
	if cfg.PerDay > 0 {
		d.PerDay = cfg.PerDay
	}
	if cfg.CalorieMargin > 0 {
		d.CalorieMargin = cfg.CalorieMargin
	}
	if cfg.TargetCalories > 0 {
		d.TargetCalories = cfg.TargetCalories
	}
	return d
}

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	handlers.NewAPIHandlers,
	NewHealthCheck,
	server.NewServer,
)

// HealthInputs are the dependencies checked by /health
type HealthInputs struct {
	fx.In

	Config *config.Config
	DB     *Database
	Redis  goredis.UniversalClient `optional:"true"`
	AI     *infraai.HealthChecker
	Logger *zap.Logger
}

// NewHealthCheck registers the database, Redis and AI checks. An unconfigured
// AI provider reports degraded since plan editing still works.
func NewHealthCheck(in HealthInputs) *healthcheck.HealthCheck {
	h := healthcheck.New(in.Config.App.Version, in.Logger)

	h.Register("database", healthcheck.NewDatabaseChecker(in.DB.SQL))
	if in.Redis != nil {
		h.Register("redis", healthcheck.NewRedisChecker(in.Redis))
	}
	h.Register("ai", healthcheck.NewCustomChecker("ai", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		status := in.AI.CheckHealth(ctx)
		switch status.Status {
		case infraai.StatusHealthy:
			return healthcheck.StatusHealthy, "", status
		case infraai.StatusNotConfigured:
			return healthcheck.StatusDegraded, "no AI provider configured", status
		default:
			return healthcheck.StatusDegraded, status.Error, status
		}
	}))

	return h
}

// LifecycleModule registers startup hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
	WatchConfig,
)

// RegisterLifecycleHooks starts and stops the HTTP server
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	_ *monitoring.Telemetry,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting meal plan service",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
				zap.String("ai_provider", cfg.AI.Provider),
			)

			go func() {
				if err := srv.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down meal plan service")

			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}

// WatchConfig applies planner tuning from config file changes without a restart
func WatchConfig(path ConfigPath, generator *planner.Generator, filler *planner.DayFiller, log *zap.Logger) {
	_, err := config.Watch(string(path), func(cfg *config.Config) {
		generator.SetDefaults(PlannerDefaults(cfg.Planner, log))
		filler.SetSampling(cfg.Planner.FallbackSampleSize, cfg.Planner.TopK)
		log.Info("Planner configuration reloaded")
	}, func(err error) {
		log.Warn("Ignoring invalid configuration reload", zap.Error(err))
	})

	switch {
	case err == nil:
	case stderrors.Is(err, config.ErrNoConfigFile):
		log.Debug("No config file to watch")
	default:
		log.Warn("Config watch disabled", zap.Error(err))
	}
}
