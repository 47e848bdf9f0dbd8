package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/platform/logger"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/store"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/worker"
)

// TaskRebuilder reconstructs a concrete task from its persisted form.
// Implemented by *worker.TaskFactory.
type TaskRebuilder interface {
	Rebuild(id uuid.UUID, taskType string, payload []byte) (worker.Task, error)
}

// WorkerTaskStore implements the worker.TaskStore interface using PostgreSQL.
// Task rows outlive the process so that queued work survives restarts.
type WorkerTaskStore struct {
	db      store.DBTX
	factory TaskRebuilder
}

// NewWorkerTaskStore creates a new WorkerTaskStore. The factory is used to
// turn recovered rows back into executable tasks.
func NewWorkerTaskStore(db store.DBTX, factory TaskRebuilder) *WorkerTaskStore {
	return &WorkerTaskStore{
		db:      db,
		factory: factory,
	}
}

// SaveTask persists a task to the database.
func (s *WorkerTaskStore) SaveTask(ctx context.Context, task worker.Task) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO worker_tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		task.ID(),
		task.Type(),
		task.Payload(),
		task.Status(),
		now,
		now,
	)

	if err != nil {
		log.Error("failed to save task",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
		return fmt.Errorf("failed to save task to database: %w", err)
	}

	return nil
}

// UpdateTaskStatus updates the status of a task in the database.
func (s *WorkerTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status worker.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE worker_tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		time.Now().UTC(),
		taskID,
	)

	if err != nil {
		log.Error("failed to update task status",
			"task_id", taskID,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Warn("no task found with ID to update status", "task_id", taskID)
		return nil // Task not found, treat as no-op
	}

	return nil
}

// GetPendingTasks retrieves all tasks with "pending" status.
func (s *WorkerTaskStore) GetPendingTasks(ctx context.Context) ([]worker.Task, error) {
	return s.getTasksByStatus(ctx, worker.TaskStatusPending, 0)
}

// GetProcessingTasks retrieves tasks with "processing" status, optionally
// restricted to tasks last updated more than olderThan ago.
func (s *WorkerTaskStore) GetProcessingTasks(
	ctx context.Context,
	olderThan time.Duration,
) ([]worker.Task, error) {
	return s.getTasksByStatus(ctx, worker.TaskStatusProcessing, olderThan)
}

func (s *WorkerTaskStore) getTasksByStatus(
	ctx context.Context,
	status worker.TaskStatus,
	olderThan time.Duration,
) ([]worker.Task, error) {
	log := logger.FromContext(ctx)

	var query string
	var args []interface{}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload
			FROM worker_tasks
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = []interface{}{status, time.Now().UTC().Add(-olderThan)}
	} else {
		query = `
			SELECT id, type, payload
			FROM worker_tasks
			WHERE status = $1
			ORDER BY created_at ASC
		`
		args = []interface{}{status}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status",
			"status", status,
			"error", err)
		return nil, fmt.Errorf("failed to query tasks by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []worker.Task

	for rows.Next() {
		var id uuid.UUID
		var taskType string
		var payload []byte

		if err := rows.Scan(&id, &taskType, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}

		task, err := s.factory.Rebuild(id, taskType, payload)
		if err != nil {
			// A row we cannot rebuild (unknown type, corrupt payload) would
			// fail forever; skip it rather than poison the queue.
			log.Warn("skipping unrecoverable task row",
				"task_id", id,
				"task_type", taskType,
				"error", err)
			continue
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// Compile-time interface check.
var _ worker.TaskStore = (*WorkerTaskStore)(nil)
