package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/events"
)

// Common errors
var (
	ErrNilEmbeddingService = errors.New("embedding service cannot be nil")
	ErrNilDetector         = errors.New("duplicate detector cannot be nil")
	ErrNilEmitter          = errors.New("event emitter cannot be nil")
	ErrNilLogger           = errors.New("logger cannot be nil")
	ErrInvalidSubjectTask  = errors.New("subject task ID must be greater than zero")
)

// EmbeddingService regenerates and upserts the vectors for one task.
type EmbeddingService interface {
	// GenerateForTask embeds every changed, non-empty field of the task and
	// upserts the result. Empty changed fields are cleared.
	GenerateForTask(ctx context.Context, taskID int64, fields domain.FieldSet) error
}

// embedPayload represents the serialized data stored in the task.
type embedPayload struct {
	TaskID        int64    `json:"task_id"`
	ProjectID     int64    `json:"project_id"`
	ActorID       int64    `json:"actor_id"`
	ChangedFields []string `json:"changed_fields"`
}

// EmbedTask implements the Task interface for regenerating the vectors of a
// single task after its content changed. On success it emits an
// embedding-completed event that fans out to the duplicate detector.
type EmbedTask struct {
	id        uuid.UUID
	taskID    int64
	projectID int64
	actorID   int64
	fields    domain.FieldSet
	service   EmbeddingService
	emitter   events.Emitter
	logger    *slog.Logger
	status    TaskStatus
}

// NewEmbedTask creates a new embed task for the given subject task.
func NewEmbedTask(
	taskID int64,
	projectID int64,
	actorID int64,
	fields domain.FieldSet,
	service EmbeddingService,
	emitter events.Emitter,
	logger *slog.Logger,
) (*EmbedTask, error) {
	if service == nil {
		return nil, ErrNilEmbeddingService
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if taskID <= 0 {
		return nil, ErrInvalidSubjectTask
	}

	return &EmbedTask{
		id:        uuid.New(),
		taskID:    taskID,
		projectID: projectID,
		actorID:   actorID,
		fields:    fields,
		service:   service,
		emitter:   emitter,
		logger:    logger.With("task_type", TaskTypeEmbed, "subject_task_id", taskID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *EmbedTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *EmbedTask) Type() string {
	return TaskTypeEmbed
}

// Payload returns the task data as a byte slice.
func (t *EmbedTask) Payload() []byte {
	fields := make([]string, 0, len(t.fields))
	for f := range t.fields {
		fields = append(fields, string(f))
	}

	data, err := json.Marshal(embedPayload{
		TaskID:        t.taskID,
		ProjectID:     t.projectID,
		ActorID:       t.actorID,
		ChangedFields: fields,
	})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status.
func (t *EmbedTask) Status() TaskStatus {
	return t.status
}

// Execute regenerates the subject task's vectors and signals completion.
// Returning an error leaves the stored record untouched for the failed
// field(s) and lets the transport redeliver the originating event.
func (t *EmbedTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting embed task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	if err := t.service.GenerateForTask(ctx, t.taskID, t.fields); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to generate embeddings", "error", err)
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	event, err := events.NewEvent(events.TypeEmbeddingCompleted, events.EmbeddingCompletedPayload{
		TaskID:    t.taskID,
		ProjectID: t.projectID,
		ActorID:   t.actorID,
	})
	if err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to build embedding-completed event: %w", err)
	}

	// The upsert already succeeded; a failed fan-out only delays duplicate
	// detection until the backstop (event redelivery or backfill), so the
	// task itself still completes.
	if err := t.emitter.EmitEvent(ctx, event); err != nil {
		t.logger.Error("failed to emit embedding-completed event", "error", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("embed task completed successfully")
	return nil
}

// Compile-time interface check.
var _ Task = (*EmbedTask)(nil)
