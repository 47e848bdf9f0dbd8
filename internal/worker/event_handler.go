package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/events"
)

// TaskSubmitter accepts background tasks for execution. Satisfied by *Runner.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// PipelineEventHandler implements the events.Handler interface for the
// similarity pipeline. It translates incoming events into background tasks:
// content changes become embed tasks, completed embeddings become duplicate
// detection tasks. One handler instance serves every event kind, dispatching
// on the event type at this boundary.
type PipelineEventHandler struct {
	embeddingService EmbeddingService
	detector         DuplicateDetector
	emitter          events.Emitter
	submitter        TaskSubmitter
	logger           *slog.Logger
}

// NewPipelineEventHandler creates an event handler that builds pipeline
// tasks and submits them to the provided task submitter.
func NewPipelineEventHandler(
	embeddingService EmbeddingService,
	detector DuplicateDetector,
	emitter events.Emitter,
	submitter TaskSubmitter,
	logger *slog.Logger,
) (*PipelineEventHandler, error) {
	if embeddingService == nil {
		return nil, ErrNilEmbeddingService
	}
	if detector == nil {
		return nil, ErrNilDetector
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}
	if submitter == nil {
		return nil, fmt.Errorf("task submitter cannot be nil")
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &PipelineEventHandler{
		embeddingService: embeddingService,
		detector:         detector,
		emitter:          emitter,
		submitter:        submitter,
		logger:           logger.With("component", "pipeline_event_handler"),
	}, nil
}

// HandleEvent processes pipeline events by creating and submitting tasks.
func (h *PipelineEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeContentChanged:
		return h.handleContentChanged(ctx, event)
	case events.TypeEmbeddingCompleted:
		return h.handleEmbeddingCompleted(ctx, event)
	default:
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}
}

func (h *PipelineEventHandler) handleContentChanged(ctx context.Context, event *events.Event) error {
	var payload events.ContentChangedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	fields := payload.FieldSet()

	// Updates to unrelated fields (status, assignee, due date) must not cost
	// an oracle call; they are dropped before any task exists.
	if !fields.TouchesEmbedded() {
		h.logger.Debug("content change touches no embeddable field, skipping",
			"subject_task_id", payload.TaskID,
			"changed_fields", payload.ChangedFields,
			"event_id", event.ID)
		return nil
	}

	task, err := NewEmbedTask(
		payload.TaskID,
		payload.ProjectID,
		payload.ActorID,
		fields,
		h.embeddingService,
		h.emitter,
		h.logger,
	)
	if err != nil {
		h.logger.Error("failed to create embed task",
			"error", err,
			"subject_task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create embed task: %w", err)
	}

	return h.submit(ctx, task, event)
}

func (h *PipelineEventHandler) handleEmbeddingCompleted(ctx context.Context, event *events.Event) error {
	var payload events.EmbeddingCompletedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	task, err := NewDetectDuplicatesTask(
		payload.TaskID,
		payload.ProjectID,
		payload.ActorID,
		h.detector,
		h.logger,
	)
	if err != nil {
		h.logger.Error("failed to create duplicate detection task",
			"error", err,
			"subject_task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create duplicate detection task: %w", err)
	}

	return h.submit(ctx, task, event)
}

func (h *PipelineEventHandler) submit(ctx context.Context, task Task, event *events.Event) error {
	h.logger.Debug("submitting task to runner",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"event_id", event.ID)

	if err := h.submitter.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"event_id", event.ID)
	return nil
}

// Ensure PipelineEventHandler implements events.Handler
var _ events.Handler = (*PipelineEventHandler)(nil)
