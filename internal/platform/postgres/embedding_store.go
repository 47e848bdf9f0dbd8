package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/store"
)

// EmbeddingStore implements the store.EmbeddingStore interface using
// PostgreSQL with the pgvector extension. One row per task; the title and
// description columns are independently nullable.
type EmbeddingStore struct {
	db store.DBTX
}

// NewEmbeddingStore creates a new EmbeddingStore.
func NewEmbeddingStore(db store.DBTX) *EmbeddingStore {
	return &EmbeddingStore{db: db}
}

// vectorColumn maps a task field onto its storage column. The column name is
// interpolated into SQL, so it must come from this closed mapping and never
// from caller input.
func vectorColumn(f domain.Field) (string, error) {
	switch f {
	case domain.FieldTitle:
		return "title_vector", nil
	case domain.FieldDescription:
		return "description_vector", nil
	default:
		return "", fmt.Errorf("unknown embeddable field: %q", f)
	}
}

// GetRecord returns the embedding record for a task.
func (s *EmbeddingStore) GetRecord(ctx context.Context, taskID int64) (*domain.EmbeddingRecord, error) {
	query := `
		SELECT task_id, title_vector::text, description_vector::text, updated_at
		FROM task_embeddings
		WHERE task_id = $1
	`

	var (
		record    domain.EmbeddingRecord
		titleText sql.NullString
		descText  sql.NullString
		updatedAt time.Time
	)

	err := s.db.QueryRowContext(ctx, query, taskID).
		Scan(&record.TaskID, &titleText, &descText, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: task %d", store.ErrEmbeddingNotFound, taskID)
		}
		return nil, fmt.Errorf("failed to get embedding record for task %d: %w", taskID, MapError(err))
	}

	record.UpdatedAt = updatedAt

	if titleText.Valid {
		record.TitleVector, err = parseVector(titleText.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse title vector for task %d: %w", taskID, err)
		}
	}
	if descText.Valid {
		record.DescriptionVector, err = parseVector(descText.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse description vector for task %d: %w", taskID, err)
		}
	}

	return &record, nil
}

// UpsertVector stores or clears the vector for one field of a task. The
// insert-or-update is a single statement, so concurrent writers for the same
// task cannot create a second row; the later write wins.
func (s *EmbeddingStore) UpsertVector(ctx context.Context, taskID int64, field domain.Field, vector []float32) error {
	column, err := vectorColumn(field)
	if err != nil {
		return err
	}

	var value sql.NullString
	if vector != nil {
		value = sql.NullString{String: encodeVector(vector), Valid: true}
	}

	query := fmt.Sprintf(`
		INSERT INTO task_embeddings (task_id, %[1]s, updated_at)
		VALUES ($1, $2::vector, $3)
		ON CONFLICT (task_id)
		DO UPDATE SET %[1]s = EXCLUDED.%[1]s, updated_at = EXCLUDED.updated_at
	`, column)

	if _, err := s.db.ExecContext(ctx, query, taskID, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert %s for task %d: %w", column, taskID, MapError(err))
	}

	return nil
}

// KNearest returns the closest stored vectors to the query vector, ordered by
// ascending cosine distance with the task ID as a deterministic tie-break.
func (s *EmbeddingStore) KNearest(ctx context.Context, q store.KNearestQuery) ([]domain.SimilarityCandidate, error) {
	if q.K <= 0 {
		return nil, nil
	}

	column, err := vectorColumn(q.Field)
	if err != nil {
		return nil, err
	}

	queryVector := encodeVector(q.Vector)

	var (
		query string
		args  []any
	)

	if q.ProjectID != nil {
		query = fmt.Sprintf(`
			SELECT e.task_id, e.%[1]s <=> $1::vector AS distance
			FROM task_embeddings e
			JOIN tasks t ON t.id = e.task_id
			WHERE e.task_id <> $2
			  AND e.%[1]s IS NOT NULL
			  AND t.project_id = $3
			ORDER BY distance ASC, e.task_id ASC
			LIMIT $4
		`, column)
		args = []any{queryVector, q.ExcludeTaskID, *q.ProjectID, q.K}
	} else {
		query = fmt.Sprintf(`
			SELECT e.task_id, e.%[1]s <=> $1::vector AS distance
			FROM task_embeddings e
			WHERE e.task_id <> $2
			  AND e.%[1]s IS NOT NULL
			ORDER BY distance ASC, e.task_id ASC
			LIMIT $3
		`, column)
		args = []any{queryVector, q.ExcludeTaskID, q.K}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run nearest-neighbor query: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var candidates []domain.SimilarityCandidate
	for rows.Next() {
		var c domain.SimilarityCandidate
		if err := rows.Scan(&c.TaskID, &c.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidate rows: %w", err)
	}

	return candidates, nil
}

// TasksWithoutRecord returns task IDs with no embedding row, keyset-paginated
// by task ID so an interrupted sweep resumes where it left off.
func (s *EmbeddingStore) TasksWithoutRecord(ctx context.Context, afterTaskID int64, limit int) ([]int64, error) {
	query := `
		SELECT t.id
		FROM tasks t
		LEFT JOIN task_embeddings e ON e.task_id = t.id
		WHERE e.task_id IS NULL
		  AND t.id > $1
		ORDER BY t.id ASC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, afterTaskID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for tasks without embeddings: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var taskIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan task id: %w", err)
		}
		taskIDs = append(taskIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task ids: %w", err)
	}

	return taskIDs, nil
}

// Compile-time interface check.
var _ store.EmbeddingStore = (*EmbeddingStore)(nil)
