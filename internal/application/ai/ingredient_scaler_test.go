package ai

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/alchemorsel/mealplan/internal/domain/recipe"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func scaleRequest() outbound.ScaleRequest {
	r := testutils.NewRecipeBuilder().
		WithName("Pancakes").
		WithCategory(recipe.CategoryBreakfast).
		WithIngredients("200 g flour", "2 eggs", "salt").
		Build()
	return outbound.ScaleRequest{Recipe: r, Factor: 1.5, Category: recipe.CategoryBreakfast}
}

func TestIngredientScalerParsesReplies(t *testing.T) {
	cases := []struct {
		name  string
		reply string
	}{
		{"object", `{"ingredients": ["300 g flour", "3 eggs", "salt"]}`},
		{"array", `["300 g flour", "3 eggs", "salt"]`},
		{"fenced", "```json\n{\"ingredients\": [\"300 g flour\", \"3 eggs\", \"\", \"salt\"]}\n```"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &testutils.MockTextGenerator{}
			gen.On("GenerateJSON", mock.Anything, scaleSystemPrompt, mock.Anything).Return(tc.reply, nil).Once()
			metrics := testutils.NewRecordingMetrics()
			scaler := NewIngredientScaler(gen, metrics, zaptest.NewLogger(t))

			lines, err := scaler.ScaleIngredients(context.Background(), scaleRequest())

			require.NoError(t, err)
			assert.Equal(t, []string{"300 g flour", "3 eggs", "salt"}, lines)
			assert.Equal(t, 1, metrics.AICalls["scale_ingredients/success"])
			gen.AssertExpectations(t)
		})
	}
}

func TestIngredientScalerPromptCarriesFactor(t *testing.T) {
	gen := &testutils.MockTextGenerator{}
	gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return containsAll(prompt, "Recipe: Pancakes", "Factor: 1.50", "- 200 g flour", "- salt")
	})).Return(`["x"]`, nil)

	_, err := NewIngredientScaler(gen, nil, zaptest.NewLogger(t)).ScaleIngredients(context.Background(), scaleRequest())

	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestIngredientScalerFailures(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		scaler := NewIngredientScaler(nil, nil, zaptest.NewLogger(t))
		assert.ErrorIs(t, scaler.Ready(), outbound.ErrNoAIProvider)

		_, err := scaler.ScaleIngredients(context.Background(), scaleRequest())
		assertScaleReason(t, err, outbound.ScaleReasonProvider)
	})

	t.Run("provider error", func(t *testing.T) {
		gen := &testutils.MockTextGenerator{}
		gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return("", stderrors.New("429"))

		_, err := NewIngredientScaler(gen, nil, zaptest.NewLogger(t)).ScaleIngredients(context.Background(), scaleRequest())
		assertScaleReason(t, err, outbound.ScaleReasonProvider)
	})

	t.Run("unparseable", func(t *testing.T) {
		gen := &testutils.MockTextGenerator{}
		gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return("Sorry, I can't.", nil)

		_, err := NewIngredientScaler(gen, nil, zaptest.NewLogger(t)).ScaleIngredients(context.Background(), scaleRequest())
		assertScaleReason(t, err, outbound.ScaleReasonParse)
	})

	t.Run("empty", func(t *testing.T) {
		gen := &testutils.MockTextGenerator{}
		gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(`{"ingredients": ["  "]}`, nil)

		_, err := NewIngredientScaler(gen, nil, zaptest.NewLogger(t)).ScaleIngredients(context.Background(), scaleRequest())
		assertScaleReason(t, err, outbound.ScaleReasonEmpty)
	})
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

func assertScaleReason(t *testing.T, err error, reason outbound.ScaleFailureReason) {
	t.Helper()
	var scaleErr *outbound.ScaleError
	require.True(t, stderrors.As(err, &scaleErr), "expected ScaleError, got %v", err)
	assert.Equal(t, reason, scaleErr.Reason)
	assert.Equal(t, "Pancakes", scaleErr.Recipe)
}
