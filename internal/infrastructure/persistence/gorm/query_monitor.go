package gorm

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "query_monitor:start"

// QueryMonitor records the duration and failures of every GORM statement
type QueryMonitor struct {
	logger        *zap.Logger
	slowThreshold time.Duration
	duration      *prometheus.HistogramVec
	failures      *prometheus.CounterVec
}

// NewQueryMonitor creates a query monitor registered with reg
func NewQueryMonitor(reg prometheus.Registerer, slowThreshold time.Duration, logger *zap.Logger) (*QueryMonitor, error) {
	qm := &QueryMonitor{
		logger:        logger.Named("query-monitor"),
		slowThreshold: slowThreshold,
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mealplan_db_query_duration_seconds",
			Help:    "Duration of database statements by operation and table",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation", "table"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealplan_db_query_errors_total",
			Help: "Failed database statements by operation and table",
		}, []string{"operation", "table"}),
	}

	for _, c := range []prometheus.Collector{qm.duration, qm.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return qm, nil
}

// Install registers before/after callbacks on the statement kinds of db
func (qm *QueryMonitor) Install(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []struct {
		name  string
		apply func() error
	}{
		{"query", func() error {
			if err := cb.Query().Before("gorm:query").Register("monitor:before_query", qm.before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("monitor:after_query", qm.after("query"))
		}},
		{"create", func() error {
			if err := cb.Create().Before("gorm:create").Register("monitor:before_create", qm.before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("monitor:after_create", qm.after("create"))
		}},
		{"update", func() error {
			if err := cb.Update().Before("gorm:update").Register("monitor:before_update", qm.before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("monitor:after_update", qm.after("update"))
		}},
		{"delete", func() error {
			if err := cb.Delete().Before("gorm:delete").Register("monitor:before_delete", qm.before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("monitor:after_delete", qm.after("delete"))
		}},
	}

	for _, r := range registrations {
		if err := r.apply(); err != nil {
			return fmt.Errorf("register %s callbacks: %w", r.name, err)
		}
	}
	return nil
}

func (qm *QueryMonitor) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (qm *QueryMonitor) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}

		table := "unknown"
		if db.Statement != nil && db.Statement.Table != "" {
			table = db.Statement.Table
		}

		elapsed := time.Since(start)
		qm.duration.WithLabelValues(operation, table).Observe(elapsed.Seconds())

		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			qm.failures.WithLabelValues(operation, table).Inc()
		}

		if qm.slowThreshold > 0 && elapsed > qm.slowThreshold {
			qm.logger.Warn("Slow query detected",
				zap.String("operation", operation),
				zap.String("table", table),
				zap.Duration("duration", elapsed),
			)
		}
	}
}
