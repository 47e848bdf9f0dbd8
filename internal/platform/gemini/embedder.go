package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/embedding"
)

// Embedder implements the embedding.Embedder interface using the Gemini
// embedding API. It performs exactly one API call per Embed invocation:
// retry policy belongs to the caller (transport redelivery for the
// event-driven consumers, backoff in the backfill reconciler).
type Embedder struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewEmbedder creates an Embedder backed by the given client and model.
func NewEmbedder(client *genai.Client, model string, logger *slog.Logger) (*Embedder, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", embedding.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: embedding model cannot be empty", embedding.ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Embedder{
		client: client,
		model:  model,
		logger: logger.With("component", "gemini_embedder"),
	}, nil
}

// Embed requests a vector of the given dimensionality for the text.
func (e *Embedder) Embed(ctx context.Context, text string, dimensions int) ([]float32, error) {
	if text == "" {
		return nil, embedding.ErrEmptyText
	}
	if dimensions <= 0 {
		return nil, embedding.ErrInvalidDimensions
	}

	e.logger.DebugContext(ctx, "requesting embedding",
		"model", e.model,
		"text_length", len(text),
		"dimensions", dimensions)

	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		genai.Text(text),
		&genai.EmbedContentConfig{
			OutputDimensionality: genai.Ptr(int32(dimensions)),
		})
	if err != nil {
		// Provider errors are assumed transient; the caller decides whether
		// and how to retry.
		return nil, fmt.Errorf("%w: %v", embedding.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("%w: no embedding in response", embedding.ErrInvalidResponse)
	}

	values := resp.Embeddings[0].Values
	if len(values) != dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d",
			embedding.ErrInvalidResponse, dimensions, len(values))
	}

	return values, nil
}

// Compile-time interface check.
var _ embedding.Embedder = (*Embedder)(nil)
