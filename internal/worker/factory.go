package worker

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/events"
)

// TaskFactory rebuilds concrete task instances from their persisted type and
// payload. It is used on startup to recover tasks that were pending or
// interrupted when the previous process exited.
type TaskFactory struct {
	embeddingService EmbeddingService
	detector         DuplicateDetector
	emitter          events.Emitter
	logger           *slog.Logger
}

// NewTaskFactory creates a factory wired to the services the rebuilt tasks
// will execute against.
func NewTaskFactory(
	embeddingService EmbeddingService,
	detector DuplicateDetector,
	emitter events.Emitter,
	logger *slog.Logger,
) (*TaskFactory, error) {
	if embeddingService == nil {
		return nil, ErrNilEmbeddingService
	}
	if detector == nil {
		return nil, ErrNilDetector
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &TaskFactory{
		embeddingService: embeddingService,
		detector:         detector,
		emitter:          emitter,
		logger:           logger,
	}, nil
}

// Rebuild reconstructs a concrete task from its persisted form, preserving
// the stored task ID so status updates target the original row. It returns
// an error for unknown task types or malformed payloads.
func (f *TaskFactory) Rebuild(id uuid.UUID, taskType string, payload []byte) (Task, error) {
	switch taskType {
	case TaskTypeEmbed:
		var p embedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embed task payload: %w", err)
		}

		fields := make(domain.FieldSet, len(p.ChangedFields))
		for _, name := range p.ChangedFields {
			fields[domain.Field(name)] = struct{}{}
		}

		task, err := NewEmbedTask(
			p.TaskID, p.ProjectID, p.ActorID, fields,
			f.embeddingService, f.emitter, f.logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild embed task: %w", err)
		}
		task.id = id
		return task, nil

	case TaskTypeDetectDuplicates:
		var p detectPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal duplicate detection task payload: %w", err)
		}

		task, err := NewDetectDuplicatesTask(
			p.TaskID, p.ProjectID, p.ActorID,
			f.detector, f.logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild duplicate detection task: %w", err)
		}
		task.id = id
		return task, nil

	default:
		return nil, fmt.Errorf("unknown task type: %q", taskType)
	}
}
