package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
)

// Event types flowing through the similarity pipeline.
const (
	// TypeContentChanged is delivered by the task-management core whenever a
	// task is created or its content is updated.
	TypeContentChanged = "task.content_changed"

	// TypeEmbeddingCompleted is emitted internally after a successful vector
	// upsert; it fans out to the duplicate detector.
	TypeEmbeddingCompleted = "embedding.completed"

	// TypeDuplicateDetected is published when the detector confirms a
	// duplicate pair.
	TypeDuplicateDetected = "task.duplicate_detected"
)

// Event is the envelope for all pipeline events. The transport guarantees
// at-least-once delivery, so every handler must tolerate redelivery.
type Event struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants.
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event of the given type with the payload serialized
// as JSON.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ContentChangedPayload describes a task mutation that may require vector
// regeneration. ChangedFields names every field touched by the mutation, not
// just the embeddable ones; the consumer filters.
type ContentChangedPayload struct {
	TaskID        int64    `json:"task_id"`
	ProjectID     int64    `json:"project_id"`
	ActorID       int64    `json:"actor_id"`
	ChangedFields []string `json:"changed_fields"`
}

// FieldSet converts the payload's changed-field names into a domain.FieldSet.
// Names that do not correspond to embeddable fields are carried through
// unchanged; domain.FieldSet.TouchesEmbedded ignores them.
func (p *ContentChangedPayload) FieldSet() domain.FieldSet {
	s := make(domain.FieldSet, len(p.ChangedFields))
	for _, f := range p.ChangedFields {
		s[domain.Field(f)] = struct{}{}
	}
	return s
}

// EmbeddingCompletedPayload signals that a task's vectors were upserted and
// the record is available to downstream consumers.
type EmbeddingCompletedPayload struct {
	TaskID    int64 `json:"task_id"`
	ProjectID int64 `json:"project_id"`
	ActorID   int64 `json:"actor_id"`
}

// DuplicateDetectedPayload reports one confirmed duplicate pair. A detection
// run emits at most one of these; redelivered runs may emit it again, so
// consumers must be idempotent.
type DuplicateDetectedPayload struct {
	SubjectTaskID int64     `json:"subject_task_id"`
	RelatedTaskID int64     `json:"related_task_id"`
	ProjectID     int64     `json:"project_id"`
	ActorID       int64     `json:"actor_id"`
	DetectedAt    time.Time `json:"detected_at"`
}

// Handler defines an interface for components that can handle events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// Emitter defines an interface for components that can publish events.
// This allows services to publish events without direct knowledge of
// handlers.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
