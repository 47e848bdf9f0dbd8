package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/embedding"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/store"
)

// FieldDimensions maps each embeddable field to the dimensionality of its
// vector space. Title and description use independent spaces; distances
// between vectors from different spaces are meaningless and never computed.
type FieldDimensions struct {
	Title       int
	Description int
}

// For returns the configured dimensionality for the given field.
func (d FieldDimensions) For(f domain.Field) (int, error) {
	switch f {
	case domain.FieldTitle:
		return d.Title, nil
	case domain.FieldDescription:
		return d.Description, nil
	default:
		return 0, fmt.Errorf("no dimensionality configured for field %q", f)
	}
}

// EmbeddingService regenerates the stored vectors for a task after its
// content changed. Each embeddable field is handled independently: non-empty
// content is embedded and upserted, empty content clears the stored vector.
type EmbeddingService struct {
	taskReader store.TaskReader
	embeddings store.EmbeddingStore
	embedder   embedding.Embedder
	dims       FieldDimensions
	logger     *slog.Logger
}

// NewEmbeddingService creates a new EmbeddingService.
func NewEmbeddingService(
	taskReader store.TaskReader,
	embeddings store.EmbeddingStore,
	embedder embedding.Embedder,
	dims FieldDimensions,
	logger *slog.Logger,
) *EmbeddingService {
	return &EmbeddingService{
		taskReader: taskReader,
		embeddings: embeddings,
		embedder:   embedder,
		dims:       dims,
		logger:     logger.With("component", "embedding_service"),
	}
}

// GenerateForTask embeds every changed embeddable field of the task and
// upserts the result. The operation is idempotent: re-running it for
// unchanged content re-upserts the same vectors.
//
// A task that no longer exists is treated as a stale event and skipped
// without error. Oracle and persistence failures propagate so the transport
// can redeliver the originating event.
func (s *EmbeddingService) GenerateForTask(
	ctx context.Context,
	taskID int64,
	fields domain.FieldSet,
) error {
	if taskID <= 0 {
		return domain.ErrInvalidTaskID
	}

	task, err := s.taskReader.GetTask(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.logger.Info("task no longer exists, skipping embedding generation",
				"task_id", taskID)
			return nil
		}
		return fmt.Errorf("failed to load task: %w", err)
	}

	for _, field := range domain.EmbeddableFields {
		if !fields.Has(field) {
			continue
		}

		if !task.HasContent(field) {
			// The field was edited down to nothing; its vector must go too,
			// or stale similarity results would outlive the content.
			if err := s.embeddings.UpsertVector(ctx, taskID, field, nil); err != nil {
				return fmt.Errorf("failed to clear %s vector: %w", field, err)
			}
			s.logger.Debug("cleared vector for empty field",
				"task_id", taskID,
				"field", field)
			continue
		}

		dimensions, err := s.dims.For(field)
		if err != nil {
			return err
		}

		vector, err := s.embedder.Embed(ctx, task.Content(field), dimensions)
		if err != nil {
			return fmt.Errorf("failed to embed %s: %w", field, err)
		}

		// A cancellation observed here must not turn into a partial write.
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("embedding generation cancelled: %w", err)
		}

		if err := s.embeddings.UpsertVector(ctx, taskID, field, vector); err != nil {
			return fmt.Errorf("failed to upsert %s vector: %w", field, err)
		}

		s.logger.Debug("upserted vector",
			"task_id", taskID,
			"field", field,
			"dimensions", dimensions)
	}

	return nil
}
