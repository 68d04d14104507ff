// Package memory provides in-process adapters for single-instance deployments and tests
package memory

import (
	"context"
	"sync"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
)

// PlanLocker is a keyed, non-blocking mutex over plan ids
type PlanLocker struct {
	mu     sync.Mutex
	locked map[uuid.UUID]struct{}
}

// NewPlanLocker creates an in-process plan locker
func NewPlanLocker() *PlanLocker {
	return &PlanLocker{locked: make(map[uuid.UUID]struct{})}
}

var _ outbound.PlanLocker = (*PlanLocker)(nil)

// Acquire takes the plan's lock or fails with outbound.ErrLockHeld
func (l *PlanLocker) Acquire(ctx context.Context, planID uuid.UUID) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.locked[planID]; held {
		return nil, outbound.ErrLockHeld
	}
	l.locked[planID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.locked, planID)
			l.mu.Unlock()
		})
	}, nil
}
