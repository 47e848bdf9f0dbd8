package domain

import "strings"

// Task is a read-only snapshot of a task's embeddable content, owned by the
// task-management core. The similarity pipeline derives vectors from it and
// never writes it back.
type Task struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Field identifies one of the embeddable text fields of a task.
type Field string

// Embeddable task fields.
const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
)

// EmbeddableFields lists the fields the pipeline derives vectors from,
// in the order they are processed.
var EmbeddableFields = []Field{FieldTitle, FieldDescription}

// FieldSet is a set of task fields, as carried by content-change events.
type FieldSet map[Field]struct{}

// NewFieldSet builds a FieldSet from the given fields.
func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the given field.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// TouchesEmbedded reports whether the set contains any embeddable field.
// Events that touch only unrelated fields (status, assignee, due date)
// must not trigger regeneration, since the oracle call dominates cost.
func (s FieldSet) TouchesEmbedded() bool {
	return s.Has(FieldTitle) || s.Has(FieldDescription)
}

// Content returns the task's text for the given field. Unknown fields
// return the empty string.
func (t *Task) Content(f Field) string {
	switch f {
	case FieldTitle:
		return t.Title
	case FieldDescription:
		return t.Description
	default:
		return ""
	}
}

// HasContent reports whether the field carries embeddable text.
// Whitespace-only text counts as empty and clears the stored vector.
func (t *Task) HasContent(f Field) bool {
	return strings.TrimSpace(t.Content(f)) != ""
}
