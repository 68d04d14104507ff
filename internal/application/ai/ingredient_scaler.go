package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"go.uber.org/zap"
)

const scaleSystemPrompt = `You adjust recipe ingredient quantities.
Multiply every quantity by the given factor, keep the units, round to amounts a cook can measure,
and keep one ingredient per line in the original order. Items without a quantity stay unchanged.
Reply with JSON only: {"ingredients": ["<line>", ...]}`

// IngredientScaler rewrites ingredient lines through a TextGenerator.
// Every failure is a *outbound.ScaleError; deciding on a fallback is the caller's job.
type IngredientScaler struct {
	generator outbound.TextGenerator
	metrics   outbound.MetricsRecorder
	logger    *zap.Logger
}

// NewIngredientScaler creates a scaler. generator may be nil when no provider
// is configured, in which case Ready reports the problem.
func NewIngredientScaler(generator outbound.TextGenerator, metrics outbound.MetricsRecorder, logger *zap.Logger) *IngredientScaler {
	metrics = outbound.MetricsOrNop(metrics)
	return &IngredientScaler{
		generator: generator,
		metrics:   metrics,
		logger:    logger.Named("ingredient-scaler"),
	}
}

// Ready reports whether a provider is configured
func (s *IngredientScaler) Ready() error {
	if s.generator == nil {
		return outbound.ErrNoAIProvider
	}
	return nil
}

// ScaleIngredients asks the provider for the recipe's lines at req.Factor
func (s *IngredientScaler) ScaleIngredients(ctx context.Context, req outbound.ScaleRequest) ([]string, error) {
	name := req.Recipe.Name()
	if err := s.Ready(); err != nil {
		return nil, &outbound.ScaleError{Reason: outbound.ScaleReasonProvider, Recipe: name, Err: err}
	}

	reply, err := s.generator.GenerateJSON(ctx, scaleSystemPrompt, buildScalePrompt(req))
	if err != nil {
		s.metrics.AICall("scale_ingredients", "error")
		return nil, &outbound.ScaleError{Reason: outbound.ScaleReasonProvider, Recipe: name, Err: err}
	}

	lines, err := parseScaledLines(reply)
	if err != nil {
		s.metrics.AICall("scale_ingredients", "invalid")
		s.logger.Debug("Unparseable scaling reply", zap.String("recipe", name), zap.String("reply", reply))
		return nil, &outbound.ScaleError{Reason: outbound.ScaleReasonParse, Recipe: name, Err: err}
	}
	if len(lines) == 0 {
		s.metrics.AICall("scale_ingredients", "empty")
		return nil, &outbound.ScaleError{Reason: outbound.ScaleReasonEmpty, Recipe: name}
	}

	s.metrics.AICall("scale_ingredients", "success")
	return lines, nil
}

func buildScalePrompt(req outbound.ScaleRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recipe: %s\n", req.Recipe.Name())
	fmt.Fprintf(&b, "Meal: %s\n", req.Category)
	fmt.Fprintf(&b, "Factor: %.2f\n", req.Factor)
	b.WriteString("Ingredients:\n")
	for _, line := range req.Recipe.IngredientLines() {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

// parseScaledLines accepts {"ingredients": [...]} or a bare array
func parseScaledLines(reply string) ([]string, error) {
	raw, err := extractJSON(reply)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(raw, "[") {
		var lines []string
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			return nil, fmt.Errorf("decode reply: %w", err)
		}
		return cleanLines(lines), nil
	}

	var payload struct {
		Ingredients []string `json:"ingredients"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return cleanLines(payload.Ingredients), nil
}
