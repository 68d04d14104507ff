package ai

import (
	"context"
	"testing"
	"time"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRateLimitedGeneratorSpacesCalls(t *testing.T) {
	gen := &testutils.MockTextGenerator{}
	gen.On("GenerateJSON", mock.Anything, "sys", "prompt").Return("{}", nil)

	limited := NewRateLimitedGenerator(gen, 50*time.Millisecond, zaptest.NewLogger(t))
	assert.Equal(t, outbound.AIProviderOllama, limited.Provider())
	assert.Equal(t, "mock-model", limited.Model())

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := limited.GenerateJSON(context.Background(), "sys", "prompt")
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	gen.AssertNumberOfCalls(t, "GenerateJSON", 3)
}

func TestRateLimitedGeneratorHonoursContext(t *testing.T) {
	gen := &testutils.MockTextGenerator{}
	gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return("{}", nil)

	limited := NewRateLimitedGenerator(gen, time.Hour, zaptest.NewLogger(t))
	_, err := limited.GenerateJSON(context.Background(), "s", "p")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = limited.GenerateJSON(ctx, "s", "p")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	gen.AssertNumberOfCalls(t, "GenerateJSON", 1)
}

func TestRateLimitedGeneratorDisabled(t *testing.T) {
	gen := &testutils.MockTextGenerator{}
	gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return("{}", nil)

	limited := NewRateLimitedGenerator(gen, 0, zaptest.NewLogger(t))

	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := limited.GenerateJSON(context.Background(), "s", "p")
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), time.Second)
}
