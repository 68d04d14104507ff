package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanLockerExclusivePerPlan(t *testing.T) {
	ctx := context.Background()
	locker := NewPlanLocker()
	planA, planB := uuid.New(), uuid.New()

	release, err := locker.Acquire(ctx, planA)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, planA)
	assert.ErrorIs(t, err, outbound.ErrLockHeld)

	releaseB, err := locker.Acquire(ctx, planB)
	require.NoError(t, err)
	releaseB()

	release()
	release() // second call is a no-op

	again, err := locker.Acquire(ctx, planA)
	require.NoError(t, err)
	again()
}

func TestPlanLockerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPlanLocker().Acquire(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlanLockerConcurrentAcquire(t *testing.T) {
	locker := NewPlanLocker()
	planID := uuid.New()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		start   = make(chan struct{})
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := locker.Acquire(context.Background(), planID); err == nil {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
