package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/events"
)

func newTestHandler(t *testing.T, submitter *mockSubmitter) *PipelineEventHandler {
	t.Helper()
	handler, err := NewPipelineEventHandler(
		&mockEmbeddingService{}, &mockDetector{}, &mockEmitter{}, submitter, testLogger())
	require.NoError(t, err)
	return handler
}

func mustEvent(t *testing.T, eventType string, payload any) *events.Event {
	t.Helper()
	event, err := events.NewEvent(eventType, payload)
	require.NoError(t, err)
	return event
}

func TestPipelineEventHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("content change creates an embed task", func(t *testing.T) {
		submitter := &mockSubmitter{}
		handler := newTestHandler(t, submitter)

		event := mustEvent(t, events.TypeContentChanged, events.ContentChangedPayload{
			TaskID:        42,
			ProjectID:     10,
			ActorID:       3,
			ChangedFields: []string{"title", "due_date"},
		})

		require.NoError(t, handler.HandleEvent(ctx, event))
		require.Len(t, submitter.tasks, 1)
		assert.Equal(t, TaskTypeEmbed, submitter.tasks[0].Type())
	})

	t.Run("unrelated-field change creates no task", func(t *testing.T) {
		submitter := &mockSubmitter{}
		handler := newTestHandler(t, submitter)

		event := mustEvent(t, events.TypeContentChanged, events.ContentChangedPayload{
			TaskID:        42,
			ProjectID:     10,
			ActorID:       3,
			ChangedFields: []string{"due_date", "assignee", "status"},
		})

		require.NoError(t, handler.HandleEvent(ctx, event))
		assert.Empty(t, submitter.tasks)
	})

	t.Run("embedding completion creates a detection task", func(t *testing.T) {
		submitter := &mockSubmitter{}
		handler := newTestHandler(t, submitter)

		event := mustEvent(t, events.TypeEmbeddingCompleted, events.EmbeddingCompletedPayload{
			TaskID:    42,
			ProjectID: 10,
			ActorID:   3,
		})

		require.NoError(t, handler.HandleEvent(ctx, event))
		require.Len(t, submitter.tasks, 1)
		assert.Equal(t, TaskTypeDetectDuplicates, submitter.tasks[0].Type())
	})

	t.Run("unsupported event types are ignored", func(t *testing.T) {
		submitter := &mockSubmitter{}
		handler := newTestHandler(t, submitter)

		event := mustEvent(t, events.TypeDuplicateDetected, events.DuplicateDetectedPayload{
			SubjectTaskID: 1,
			RelatedTaskID: 2,
		})

		require.NoError(t, handler.HandleEvent(ctx, event))
		assert.Empty(t, submitter.tasks)
	})

	t.Run("malformed payload surfaces an error", func(t *testing.T) {
		submitter := &mockSubmitter{}
		handler := newTestHandler(t, submitter)

		event := &events.Event{
			Type:    events.TypeContentChanged,
			Payload: json.RawMessage(`{"task_id": "not-a-number"}`),
		}

		err := handler.HandleEvent(ctx, event)
		assert.Error(t, err)
		assert.Empty(t, submitter.tasks)
	})

	t.Run("submit failure surfaces for redelivery", func(t *testing.T) {
		submitter := &mockSubmitter{err: ErrQueueFull}
		handler := newTestHandler(t, submitter)

		event := mustEvent(t, events.TypeContentChanged, events.ContentChangedPayload{
			TaskID:        42,
			ChangedFields: []string{"title"},
		})

		err := handler.HandleEvent(ctx, event)
		assert.ErrorIs(t, err, ErrQueueFull)
	})
}
