package store

import (
	"context"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
)

// TaskReader provides read-only access to task content snapshots. The
// similarity pipeline never writes task fields; mutations are owned by the
// task-management core.
type TaskReader interface {
	// GetTask returns the content snapshot for a task, including its project.
	// Returns ErrTaskNotFound when the task does not exist.
	GetTask(ctx context.Context, taskID int64) (*domain.Task, error)
}

// KNearestQuery describes one nearest-neighbor search over stored vectors.
type KNearestQuery struct {
	// Vector is the query vector.
	Vector []float32

	// Field selects which stored column candidates are compared on. Only
	// candidates with a non-null vector for this field are considered, so the
	// query never mixes vector spaces.
	Field domain.Field

	// ExcludeTaskID removes the subject task from the results.
	ExcludeTaskID int64

	// ProjectID, when non-nil, scopes candidates to a single project.
	// Nil means unscoped.
	ProjectID *int64

	// K caps the number of results.
	K int
}

// EmbeddingStore persists one embedding record per task and answers
// nearest-neighbor queries over the stored vectors.
type EmbeddingStore interface {
	// GetRecord returns the embedding record for a task, or
	// ErrEmbeddingNotFound when none exists yet.
	GetRecord(ctx context.Context, taskID int64) (*domain.EmbeddingRecord, error)

	// UpsertVector stores the vector for one field of a task, creating the
	// record when missing. A nil vector clears the field. Idempotent; at most
	// one record per task exists under concurrent writers.
	UpsertVector(ctx context.Context, taskID int64, field domain.Field, vector []float32) error

	// KNearest returns up to q.K candidates ordered by ascending distance.
	KNearest(ctx context.Context, q KNearestQuery) ([]domain.SimilarityCandidate, error)

	// TasksWithoutRecord returns up to limit task IDs greater than afterTaskID
	// that have no embedding record at all, in ascending ID order. Tasks with
	// a partial record (any non-null vector) are not reported; the backfill
	// sweep is a safety net for total misses, not a completeness auditor.
	TasksWithoutRecord(ctx context.Context, afterTaskID int64, limit int) ([]int64, error)
}
