package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/store"
)

// RelatedTasksService answers related-task queries against the vector store.
// Results may cross project boundaries; only the duplicate detector scopes
// its search to a single project.
type RelatedTasksService struct {
	embeddings store.EmbeddingStore
	logger     *slog.Logger
}

// NewRelatedTasksService creates a new RelatedTasksService.
func NewRelatedTasksService(embeddings store.EmbeddingStore, logger *slog.Logger) *RelatedTasksService {
	return &RelatedTasksService{
		embeddings: embeddings,
		logger:     logger.With("component", "related_tasks_service"),
	}
}

// FindRelated returns up to count task IDs most similar to the subject task,
// ordered by ascending cosine distance.
//
// A task with no embedding record yet returns the Processing state with no
// IDs; the caller is expected to poll. A task whose record exists returns
// Ready, possibly with an empty list when no other task has a vector in the
// same field's space. The query vector prefers the description vector and
// falls back to the title vector, and candidates are only ever compared
// within that same field's space.
func (s *RelatedTasksService) FindRelated(
	ctx context.Context,
	taskID int64,
	count int,
) (domain.RelatedTasks, error) {
	if count <= 0 {
		return domain.RelatedTasks{}, fmt.Errorf("%w: %d", domain.ErrInvalidCount, count)
	}
	if taskID <= 0 {
		return domain.RelatedTasks{}, domain.ErrInvalidTaskID
	}

	record, err := s.embeddings.GetRecord(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.logger.Debug("no embedding record yet, reporting processing",
				"task_id", taskID)
			return domain.RelatedTasks{
				State:   domain.RelatedStateProcessing,
				TaskIDs: []int64{},
			}, nil
		}
		return domain.RelatedTasks{}, fmt.Errorf("failed to load embedding record: %w", err)
	}

	field, ok := record.QueryField()
	if !ok {
		// Record exists but both vectors were cleared; there is nothing to
		// compare, which is a terminal state distinct from Processing.
		return domain.RelatedTasks{
			State:   domain.RelatedStateReady,
			TaskIDs: []int64{},
		}, nil
	}

	candidates, err := s.embeddings.KNearest(ctx, store.KNearestQuery{
		Vector:        record.Vector(field),
		Field:         field,
		ExcludeTaskID: taskID,
		ProjectID:     nil, // related tasks may cross projects
		K:             count,
	})
	if err != nil {
		return domain.RelatedTasks{}, fmt.Errorf("failed to query nearest neighbors: %w", err)
	}

	taskIDs := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		taskIDs = append(taskIDs, c.TaskID)
	}

	s.logger.Debug("related tasks query answered",
		"task_id", taskID,
		"field", field,
		"requested", count,
		"returned", len(taskIDs))

	return domain.RelatedTasks{
		State:   domain.RelatedStateReady,
		TaskIDs: taskIDs,
	}, nil
}
