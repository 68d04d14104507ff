// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ErrNoConfigFile is returned by Watch when no config file was found
var ErrNoConfigFile = errors.New("no config file to watch")

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	AI         AIConfig         `mapstructure:"ai"`
	Planner    PlannerConfig    `mapstructure:"planner"`
	Scaling    ScalingConfig    `mapstructure:"scaling"`
	Lock       LockConfig       `mapstructure:"lock"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database configuration.
// Driver is "sqlite" (Path) or "postgres" (Host..SSLMode).
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	ReadReplicas    []string      `mapstructure:"read_replicas"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	Seed            bool          `mapstructure:"seed"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig configures the recipe lookup cache. The Redis tier is used
// whenever a Redis client exists, which is when lock.backend is redis.
type CacheConfig struct {
	Enable    bool          `mapstructure:"enable"`
	LocalSize int           `mapstructure:"local_size"`
	TTL       time.Duration `mapstructure:"ttl"`
	Prefix    string        `mapstructure:"prefix"`
}

// AIConfig contains AI provider configuration.
// An empty Provider disables scaling and shopping-list generation.
type AIConfig struct {
	Provider          string        `mapstructure:"provider"`
	OpenAIKey         string        `mapstructure:"openai_key"`
	OpenAIModel       string        `mapstructure:"openai_model"`
	OpenAIBaseURL     string        `mapstructure:"openai_base_url"`
	GeminiKey         string        `mapstructure:"gemini_key"`
	GeminiModel       string        `mapstructure:"gemini_model"`
	OllamaBaseURL     string        `mapstructure:"ollama_base_url"`
	OllamaModel       string        `mapstructure:"ollama_model"`
	Temperature       float64       `mapstructure:"temperature"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MinCallInterval   time.Duration `mapstructure:"min_call_interval"`
	ShoppingChunkDays int           `mapstructure:"shopping_chunk_days"`
}

// PlannerConfig holds auto-generation tuning
type PlannerConfig struct {
	Categories         []string `mapstructure:"categories"`
	PerDay             int      `mapstructure:"per_day"`
	CalorieMargin      int      `mapstructure:"calorie_margin"`
	TargetCalories     int      `mapstructure:"target_calories"`
	FallbackSampleSize int      `mapstructure:"fallback_sample_size"`
	TopK               int      `mapstructure:"top_k"`
}

// ScalingConfig holds scaling tuning
type ScalingConfig struct {
	ToleranceKcal int `mapstructure:"tolerance_kcal"`
}

// LockConfig selects the per-plan lock backend
type LockConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics   bool    `mapstructure:"enable_metrics"`
	MetricsPath     string  `mapstructure:"metrics_path"`
	EnableTracing   bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure    bool    `mapstructure:"otlp_insecure"`
	SamplingRate    float64 `mapstructure:"sampling_rate"`
	HealthCheckPath string  `mapstructure:"health_check_path"`
}

// RateLimitConfig contains HTTP rate limiting configuration
type RateLimitConfig struct {
	Enable         bool `mapstructure:"enable"`
	RequestsPerMin int  `mapstructure:"requests_per_min"`
	BurstSize      int  `mapstructure:"burst_size"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// Watch loads configuration and calls onChange with every valid reload of
// the config file. Invalid reloads are passed to onError and otherwise ignored.
func Watch(configPath string, onChange func(*Config), onError func(error)) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if v.ConfigFileUsed() == "" {
		return cfg, ErrNoConfigFile
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(next)
	})
	v.WatchConfig()

	return cfg, nil
}

func newViper(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mealplan")
	}

	v.SetEnvPrefix("MEALPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Defaults cover a missing file
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// setDefaults sets default configuration values. Every key is registered so
// that environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "mealplan")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	// AI-backed operations run sequential provider calls
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "mealplan.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "mealplan")
	v.SetDefault("database.username", "mealplan")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.read_replicas", []string{})
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.slow_threshold", "200ms")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.seed", false)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.local_size", 500)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.prefix", "mealplan:recipe:")

	// AI defaults
	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.openai_key", "")
	v.SetDefault("ai.openai_model", "gpt-4o-mini")
	v.SetDefault("ai.openai_base_url", "")
	v.SetDefault("ai.gemini_key", "")
	v.SetDefault("ai.gemini_model", "gemini-2.0-flash")
	v.SetDefault("ai.ollama_base_url", "http://localhost:11434/v1")
	v.SetDefault("ai.ollama_model", "llama3.2")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.timeout", "90s")
	v.SetDefault("ai.min_call_interval", "4s")
	v.SetDefault("ai.shopping_chunk_days", 3)

	// Planner defaults
	v.SetDefault("planner.categories", []string{"breakfast", "lunch", "dinner"})
	v.SetDefault("planner.per_day", 1)
	v.SetDefault("planner.calorie_margin", 200)
	v.SetDefault("planner.target_calories", 2000)
	v.SetDefault("planner.fallback_sample_size", 20)
	v.SetDefault("planner.top_k", 3)

	v.SetDefault("scaling.tolerance_kcal", 50)

	// Lock defaults
	v.SetDefault("lock.backend", "memory")
	v.SetDefault("lock.ttl", "15m")
	v.SetDefault("lock.prefix", "mealplan:lock:")

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.otlp_insecure", true)
	v.SetDefault("monitoring.sampling_rate", 0.1)
	v.SetDefault("monitoring.health_check_path", "/health")

	// Rate limit defaults
	v.SetDefault("rate_limit.enable", true)
	v.SetDefault("rate_limit.requests_per_min", 120)
	v.SetDefault("rate_limit.burst_size", 20)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	switch c.Lock.Backend {
	case "memory":
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("redis.host is required for the redis lock backend")
		}
		if c.Lock.TTL <= 0 {
			return fmt.Errorf("lock.ttl must be positive")
		}
	default:
		return fmt.Errorf("lock.backend must be memory or redis, got %q", c.Lock.Backend)
	}

	if c.Planner.PerDay < 1 {
		return fmt.Errorf("planner.per_day must be at least 1")
	}
	if c.Planner.CalorieMargin < 0 {
		return fmt.Errorf("planner.calorie_margin must not be negative")
	}
	if c.Planner.TargetCalories < 1 {
		return fmt.Errorf("planner.target_calories must be positive")
	}
	if c.Planner.FallbackSampleSize < 1 || c.Planner.TopK < 1 {
		return fmt.Errorf("planner.fallback_sample_size and planner.top_k must be at least 1")
	}
	if c.Scaling.ToleranceKcal < 0 {
		return fmt.Errorf("scaling.tolerance_kcal must not be negative")
	}
	if c.AI.ShoppingChunkDays < 1 {
		return fmt.Errorf("ai.shopping_chunk_days must be at least 1")
	}
	if c.AI.MinCallInterval < 0 {
		return fmt.Errorf("ai.min_call_interval must not be negative")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDSN returns the postgres connection string
func (c *Config) GetDSN() string {
	return c.Database.DSN(c.Database.Host)
}

// DSN returns a postgres connection string for host, which lets read
// replicas share credentials with the primary
func (d DatabaseConfig) DSN(host string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, d.Port, d.Username, d.Password, d.Database, d.SSLMode)
}

// MigrationURL returns the postgres URL form used by golang-migrate
func (d DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
