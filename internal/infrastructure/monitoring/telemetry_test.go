package monitoring

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTelemetryBridgesMetersToPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()

	tel, err := NewTelemetry(context.Background(), TelemetryConfig{
		ServiceName:    "mealplan",
		ServiceVersion: "test",
		Environment:    "test",
	}, reg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, tel.Shutdown(context.Background())) }()

	assert.False(t, tel.TracingEnabled())

	counter, err := tel.MeterProvider().Meter("test").Int64Counter("mealplan_test_events")
	require.NoError(t, err)
	counter.Add(context.Background(), 4)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "mealplan_test_events") {
			found = true
			require.NotEmpty(t, f.GetMetric())
			assert.Equal(t, 4.0, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

func TestTelemetryWithTracing(t *testing.T) {
	tel, err := NewTelemetry(context.Background(), TelemetryConfig{
		ServiceName:    "mealplan",
		TracingEnabled: true,
		OTLPEndpoint:   "localhost:4318",
		OTLPInsecure:   true,
		SamplingRate:   1,
	}, prometheus.NewRegistry(), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.True(t, tel.TracingEnabled())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing was recorded so shutdown has nothing to export
	_ = tel.Shutdown(ctx)
}
