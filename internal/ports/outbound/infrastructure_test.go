package outbound_test

import (
	"testing"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/test/testutils"
	"github.com/stretchr/testify/assert"
)

func TestMetricsOrNop(t *testing.T) {
	var typedNil *testutils.RecordingMetrics
	recorder := testutils.NewRecordingMetrics()

	tests := []struct {
		name string
		in   outbound.MetricsRecorder
		nop  bool
	}{
		{name: "untyped nil", in: nil, nop: true},
		{name: "nil pointer", in: typedNil, nop: true},
		{name: "recorder", in: recorder, nop: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outbound.MetricsOrNop(tt.in)
			if tt.nop {
				assert.Equal(t, outbound.NopMetrics{}, got)
				assert.NotPanics(t, func() { got.Snapshot(outbound.OutcomeScaled) })
				return
			}
			assert.Same(t, recorder, got)
		})
	}
}
