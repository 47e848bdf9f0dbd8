package domain

import "errors"

// RelatedState tells a caller whether a related-tasks result is usable yet.
type RelatedState string

// Possible related-tasks result states.
const (
	// RelatedStateProcessing means no embedding record exists for the subject
	// task yet. Callers are expected to poll again later.
	RelatedStateProcessing RelatedState = "processing"

	// RelatedStateReady means the result is final for the current data. An
	// empty TaskIDs list is a valid terminal state, distinct from processing.
	RelatedStateReady RelatedState = "ready"
)

// Common validation errors for related-tasks queries.
var (
	ErrInvalidCount  = errors.New("count must be greater than zero")
	ErrInvalidTaskID = errors.New("task ID must be greater than zero")
)

// RelatedTasks is the result of a related-tasks query. TaskIDs is ordered by
// ascending distance (most similar first).
type RelatedTasks struct {
	State   RelatedState `json:"state"`
	TaskIDs []int64      `json:"task_ids"`
}

// SimilarityCandidate is a single nearest-neighbor hit, produced only during
// a query and never persisted. Smaller distance means more similar.
type SimilarityCandidate struct {
	TaskID   int64   `json:"task_id"`
	Distance float64 `json:"distance"`
}
