package outbound

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/recipe"
)

// ScaleRequest asks for a recipe's ingredient lines resized by Factor
type ScaleRequest struct {
	Recipe   *recipe.Recipe
	Factor   float64
	Category recipe.Category
}

// ScaleFailureReason classifies a failed scaling call
type ScaleFailureReason string

const (
	ScaleReasonEmpty    ScaleFailureReason = "empty"
	ScaleReasonProvider ScaleFailureReason = "provider"
	ScaleReasonParse    ScaleFailureReason = "parse"
)

// ScaleError is returned by IngredientScaler when no usable lines were produced
type ScaleError struct {
	Reason ScaleFailureReason
	Recipe string
	Err    error
}

func (e *ScaleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scaling %q failed (%s): %v", e.Recipe, e.Reason, e.Err)
	}
	return fmt.Sprintf("scaling %q failed (%s)", e.Recipe, e.Reason)
}

func (e *ScaleError) Unwrap() error {
	return e.Err
}

// IngredientScaler rewrites ingredient quantities for a scaling factor
type IngredientScaler interface {
	// Ready reports whether a provider with credentials is configured
	Ready() error
	ScaleIngredients(ctx context.Context, req ScaleRequest) ([]string, error)
}

// ShoppingListGenerator aggregates recipes, keyed by day ordinal, into shopping items
type ShoppingListGenerator interface {
	Ready() error
	GenerateShoppingList(ctx context.Context, days map[int][]mealplan.PseudoRecipe) ([]mealplan.ShoppingItem, error)
}

// AIProvider selects the text generation backend
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderGemini AIProvider = "gemini"
	AIProviderOllama AIProvider = "ollama"
)

var (
	// ErrNoAIProvider is returned when no text generator is configured
	ErrNoAIProvider = errors.New("no AI provider configured")
	// ErrMissingAPIKey is returned when the selected provider needs a key
	ErrMissingAPIKey = errors.New("AI provider API key is not set")
)

// ParseAIProvider parses a provider name. "google" is accepted for Gemini.
func ParseAIProvider(name string) (AIProvider, error) {
	switch p := AIProvider(strings.ToLower(strings.TrimSpace(name))); p {
	case AIProviderOpenAI, AIProviderGemini, AIProviderOllama:
		return p, nil
	case "google":
		return AIProviderGemini, nil
	case "":
		return "", ErrNoAIProvider
	default:
		return "", fmt.Errorf("unknown AI provider %q", name)
	}
}

// TextGenerator sends one system + user prompt pair and returns the model's
// reply, which the caller expects to contain JSON
type TextGenerator interface {
	Provider() AIProvider
	Model() string
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
}
