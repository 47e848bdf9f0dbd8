package domain

import "time"

// EmbeddingRecord holds the vectors derived from a task's text. There is at
// most one record per task; upserts replace the stored vector for a field
// entirely. A nil vector means the field has no embedding — either the field
// is empty or it has not been processed yet.
type EmbeddingRecord struct {
	TaskID            int64     `json:"task_id"`
	TitleVector       []float32 `json:"title_vector,omitempty"`
	DescriptionVector []float32 `json:"description_vector,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Vector returns the stored vector for the given field, or nil.
func (r *EmbeddingRecord) Vector(f Field) []float32 {
	switch f {
	case FieldTitle:
		return r.TitleVector
	case FieldDescription:
		return r.DescriptionVector
	default:
		return nil
	}
}

// HasAnyVector reports whether at least one field has a stored vector.
// Readiness of the similarity pipeline is derived from this, not from a
// separate handoff signal.
func (r *EmbeddingRecord) HasAnyVector() bool {
	return len(r.TitleVector) > 0 || len(r.DescriptionVector) > 0
}

// QueryField picks the field used as the query side of a nearest-neighbor
// search: description when present, title otherwise. Candidates are always
// compared on the same field so distances stay within one vector space.
func (r *EmbeddingRecord) QueryField() (Field, bool) {
	if len(r.DescriptionVector) > 0 {
		return FieldDescription, true
	}
	if len(r.TitleVector) > 0 {
		return FieldTitle, true
	}
	return "", false
}
