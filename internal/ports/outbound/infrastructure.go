package outbound

import (
	"context"
	"errors"
	"reflect"

	"github.com/google/uuid"
)

// ErrLockHeld is returned when another operation holds the plan lock
var ErrLockHeld = errors.New("meal plan is locked by another operation")

// PlanLocker provides mutual exclusion per meal plan
type PlanLocker interface {
	// Acquire takes the lock for planID or returns ErrLockHeld.
	// The returned release func is safe to call more than once.
	Acquire(ctx context.Context, planID uuid.UUID) (release func(), err error)
}

// Snapshot outcomes reported to MetricsRecorder
const (
	OutcomeScaled   = "scaled"
	OutcomeVerbatim = "verbatim"
	OutcomeFallback = "fallback"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// MetricsRecorder receives business metrics from the engine
type MetricsRecorder interface {
	RecipesAdded(n int)
	Shortfall(category string, missing int)
	Snapshot(outcome string)
	ScalingFactor(factor float64)
	AICall(operation, outcome string)
}

// NopMetrics discards every metric
type NopMetrics struct{}

func (NopMetrics) RecipesAdded(int)      {}
func (NopMetrics) Shortfall(string, int) {}
func (NopMetrics) Snapshot(string)       {}
func (NopMetrics) ScalingFactor(float64) {}
func (NopMetrics) AICall(string, string) {}

// MetricsOrNop returns m, or NopMetrics when m is nil or a nil pointer
// wrapped in the interface.
func MetricsOrNop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return NopMetrics{}
	}
	if v := reflect.ValueOf(m); v.Kind() == reflect.Ptr && v.IsNil() {
		return NopMetrics{}
	}
	return m
}
