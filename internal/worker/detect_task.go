package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// DuplicateDetector runs one duplicate-detection pass for a freshly
// embedded task.
type DuplicateDetector interface {
	// DetectDuplicates finds nearest neighbors within the project and
	// evaluates them pairwise until one duplicate is confirmed or candidates
	// are exhausted.
	DetectDuplicates(ctx context.Context, taskID, projectID, actorID int64) error
}

// detectPayload represents the serialized data stored in the task.
type detectPayload struct {
	TaskID    int64 `json:"task_id"`
	ProjectID int64 `json:"project_id"`
	ActorID   int64 `json:"actor_id"`
}

// DetectDuplicatesTask implements the Task interface for running duplicate
// detection after a task's embeddings become available.
type DetectDuplicatesTask struct {
	id        uuid.UUID
	taskID    int64
	projectID int64
	actorID   int64
	detector  DuplicateDetector
	logger    *slog.Logger
	status    TaskStatus
}

// NewDetectDuplicatesTask creates a new duplicate-detection task.
func NewDetectDuplicatesTask(
	taskID int64,
	projectID int64,
	actorID int64,
	detector DuplicateDetector,
	logger *slog.Logger,
) (*DetectDuplicatesTask, error) {
	if detector == nil {
		return nil, ErrNilDetector
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if taskID <= 0 {
		return nil, ErrInvalidSubjectTask
	}

	return &DetectDuplicatesTask{
		id:        uuid.New(),
		taskID:    taskID,
		projectID: projectID,
		actorID:   actorID,
		detector:  detector,
		logger:    logger.With("task_type", TaskTypeDetectDuplicates, "subject_task_id", taskID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *DetectDuplicatesTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *DetectDuplicatesTask) Type() string {
	return TaskTypeDetectDuplicates
}

// Payload returns the task data as a byte slice.
func (t *DetectDuplicatesTask) Payload() []byte {
	data, err := json.Marshal(detectPayload{
		TaskID:    t.taskID,
		ProjectID: t.projectID,
		ActorID:   t.actorID,
	})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status.
func (t *DetectDuplicatesTask) Status() TaskStatus {
	return t.status
}

// Execute runs one duplicate-detection pass. A run that finds nothing is a
// success; only oracle or store failures surface as errors, letting the
// transport redeliver.
func (t *DetectDuplicatesTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting duplicate detection task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	if err := t.detector.DetectDuplicates(ctx, t.taskID, t.projectID, t.actorID); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("duplicate detection failed", "error", err)
		return fmt.Errorf("duplicate detection failed: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("duplicate detection task completed")
	return nil
}

// Compile-time interface check.
var _ Task = (*DetectDuplicatesTask)(nil)
