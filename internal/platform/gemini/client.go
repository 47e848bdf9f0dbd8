package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/config"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/embedding"
)

// NewClient creates a Gemini API client from the LLM configuration.
func NewClient(ctx context.Context, cfg config.LLMConfig) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", embedding.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			embedding.ErrInvalidConfig, err)
	}

	return client, nil
}
