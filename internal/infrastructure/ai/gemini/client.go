// Package gemini provides a TextGenerator on the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Config holds the client settings
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	// BaseURL overrides the API endpoint, mainly for tests
	BaseURL string
}

// Client implements outbound.TextGenerator
type Client struct {
	client *genai.Client
	model  string
	temp   float32
	logger *zap.Logger
}

// NewClient creates a Gemini client
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	httpOptions := genai.HTTPOptions{BaseURL: cfg.BaseURL}
	if cfg.Timeout > 0 {
		httpOptions.Timeout = genai.Ptr(cfg.Timeout)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("Gemini client initialized", zap.String("model", cfg.Model))

	return &Client{
		client: client,
		model:  cfg.Model,
		temp:   float32(cfg.Temperature),
		logger: logger.Named("gemini"),
	}, nil
}

// Provider returns gemini
func (c *Client) Provider() outbound.AIProvider {
	return outbound.AIProviderGemini
}

// Model returns the model name
func (c *Client) Model() string {
	return c.model
}

// GenerateJSON sends the prompt with a system instruction and a JSON response type
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()

	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(c.temp),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}

	c.logger.Debug("Gemini generation finished",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}

// Ping verifies the configured model exists
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.Models.Get(ctx, c.model, nil); err != nil {
		return fmt.Errorf("gemini model %q unavailable: %w", c.model, err)
	}
	return nil
}
