package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/store"
)

// TaskReader implements the store.TaskReader interface using PostgreSQL.
// The tasks table is owned by the task-management core; this reader only
// selects the content fields the pipeline derives vectors from.
type TaskReader struct {
	db store.DBTX
}

// NewTaskReader creates a new TaskReader.
func NewTaskReader(db store.DBTX) *TaskReader {
	return &TaskReader{db: db}
}

// GetTask returns the content snapshot for a task.
func (r *TaskReader) GetTask(ctx context.Context, taskID int64) (*domain.Task, error) {
	query := `
		SELECT id, project_id, title, COALESCE(description, '')
		FROM tasks
		WHERE id = $1
	`

	var t domain.Task
	err := r.db.QueryRowContext(ctx, query, taskID).
		Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", store.ErrTaskNotFound, taskID)
		}
		return nil, fmt.Errorf("failed to get task %d: %w", taskID, MapError(err))
	}

	return &t, nil
}

// Compile-time interface check.
var _ store.TaskReader = (*TaskReader)(nil)
