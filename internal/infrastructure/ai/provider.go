// Package ai selects and builds the text generation backend used for
// ingredient scaling and shopping lists
package ai

import (
	"context"
	"fmt"

	"github.com/alchemorsel/mealplan/internal/infrastructure/ai/gemini"
	"github.com/alchemorsel/mealplan/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/mealplan/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/mealplan/internal/infrastructure/config"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"go.uber.org/zap"
)

// Generator is a TextGenerator that can verify its backend is reachable
type Generator interface {
	outbound.TextGenerator
	Ping(ctx context.Context) error
}

// NewGenerator builds the generator for cfg.Provider. It returns
// outbound.ErrNoAIProvider when no provider is configured and
// outbound.ErrMissingAPIKey when a hosted provider has no key.
func NewGenerator(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (Generator, error) {
	provider, err := outbound.ParseAIProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	switch provider {
	case outbound.AIProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("openai: %w", outbound.ErrMissingAPIKey)
		}
		return openai.NewClient(openai.Config{
			Provider:    provider,
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			MaxRetries:  2,
		}, logger), nil

	case outbound.AIProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("gemini: %w", outbound.ErrMissingAPIKey)
		}
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.GeminiKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)

	case outbound.AIProviderOllama:
		return ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Temperature, cfg.Timeout, logger), nil
	}

	return nil, fmt.Errorf("unsupported AI provider %q", provider)
}
