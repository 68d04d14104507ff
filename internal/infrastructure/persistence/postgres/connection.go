// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alchemorsel/mealplan/internal/infrastructure/config"
	gormModels "github.com/alchemorsel/mealplan/internal/infrastructure/persistence/gorm"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// ConnectionManager owns the primary connection and optional read replicas.
// Candidate queries are reads and go to a replica when one is configured.
type ConnectionManager struct {
	cfg     config.DatabaseConfig
	logger  *zap.Logger
	db      *gorm.DB
	writeDB *sql.DB
}

// NewConnectionManager connects to the primary and registers read replicas
func NewConnectionManager(cfg config.DatabaseConfig, log *zap.Logger) (*ConnectionManager, error) {
	cm := &ConnectionManager{
		cfg:    cfg,
		logger: log.Named("postgres"),
	}

	if err := cm.initializePrimaryConnection(); err != nil {
		return nil, fmt.Errorf("failed to initialize primary connection: %w", err)
	}

	if err := cm.initializeReadReplicas(); err != nil {
		cm.logger.Warn("Failed to initialize read replicas", zap.Error(err))
	}

	cm.logger.Info("Database connection manager initialized",
		zap.String("host", cfg.Host),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("read_replicas", len(cfg.ReadReplicas)),
		zap.Duration("slow_threshold", cfg.SlowThreshold),
	)

	return cm, nil
}

func (cm *ConnectionManager) initializePrimaryConnection() error {
	db, err := gorm.Open(postgres.Open(cm.cfg.DSN(cm.cfg.Host)), &gorm.Config{
		Logger:                 gormModels.NewLogger(cm.logger, cm.cfg.LogLevel, cm.cfg.SlowThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cm.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cm.cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cm.cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cm.cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cm.db = db
	cm.writeDB = sqlDB
	return nil
}

func (cm *ConnectionManager) initializeReadReplicas() error {
	if len(cm.cfg.ReadReplicas) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, len(cm.cfg.ReadReplicas))
	for i, host := range cm.cfg.ReadReplicas {
		replicas[i] = postgres.Open(cm.cfg.DSN(host))
	}

	err := cm.db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}).
		SetMaxOpenConns(cm.cfg.MaxOpenConns).
		SetMaxIdleConns(cm.cfg.MaxIdleConns).
		SetConnMaxLifetime(cm.cfg.ConnMaxLifetime))
	if err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}

	return nil
}

// DB returns the GORM handle
func (cm *ConnectionManager) DB() *gorm.DB {
	return cm.db
}

// SQLDB returns the primary connection pool
func (cm *ConnectionManager) SQLDB() *sql.DB {
	return cm.writeDB
}

// HealthCheck pings the primary
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.writeDB.PingContext(ctx); err != nil {
		return fmt.Errorf("primary database ping failed: %w", err)
	}
	return nil
}

// Close closes the primary pool
func (cm *ConnectionManager) Close() error {
	if cm.writeDB == nil {
		return nil
	}
	if err := cm.writeDB.Close(); err != nil {
		cm.logger.Error("Failed to close primary database", zap.Error(err))
		return err
	}
	return nil
}
