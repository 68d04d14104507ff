// Package openai provides a TextGenerator on the OpenAI chat completions API.
// Any OpenAI-compatible endpoint (Ollama included) works through BaseURL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// Config holds the client settings
type Config struct {
	Provider    outbound.AIProvider
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// Client implements outbound.TextGenerator
type Client struct {
	client   openai.Client
	provider outbound.AIProvider
	model    string
	temp     float64
	logger   *zap.Logger
}

// NewClient creates a chat completions client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	provider := cfg.Provider
	if provider == "" {
		provider = outbound.AIProviderOpenAI
	}

	logger.Info("OpenAI-compatible client initialized",
		zap.String("provider", string(provider)),
		zap.String("model", cfg.Model),
		zap.String("base_url", cfg.BaseURL),
	)

	return &Client{
		client:   openai.NewClient(opts...),
		provider: provider,
		model:    cfg.Model,
		temp:     cfg.Temperature,
		logger:   logger.Named("openai"),
	}
}

// Provider returns the configured provider
func (c *Client) Provider() outbound.AIProvider {
	return c.provider
}

// Model returns the model name
func (c *Client) Model() string {
	return c.model
}

// GenerateJSON sends one system and one user message and returns the reply text
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temp),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%s chat completion failed with status %d: %w", c.provider, apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("%s chat completion failed: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.provider)
	}

	c.logger.Debug("Chat completion finished",
		zap.String("model", c.model),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return resp.Choices[0].Message.Content, nil
}

// Ping verifies the endpoint knows the configured model
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.Models.Get(ctx, c.model); err != nil {
		return fmt.Errorf("%s model %q unavailable: %w", c.provider, c.model, err)
	}
	return nil
}
