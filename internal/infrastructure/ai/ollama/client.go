// Package ollama connects to a local Ollama server through its
// OpenAI-compatible endpoint
package ollama

import (
	"time"

	"github.com/alchemorsel/mealplan/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"go.uber.org/zap"
)

// DefaultBaseURL is Ollama's OpenAI-compatible API on the default port
const DefaultBaseURL = "http://localhost:11434/v1"

// NewClient creates a TextGenerator for an Ollama model. Ollama ignores the
// API key but the client requires one.
func NewClient(baseURL, model string, temperature float64, timeout time.Duration, logger *zap.Logger) *openai.Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return openai.NewClient(openai.Config{
		Provider:    outbound.AIProviderOllama,
		APIKey:      "ollama",
		BaseURL:     baseURL,
		Model:       model,
		Temperature: temperature,
		Timeout:     timeout,
		MaxRetries:  1,
	}, logger.Named("ollama"))
}
