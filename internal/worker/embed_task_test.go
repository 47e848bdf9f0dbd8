package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/events"
)

func TestNewEmbedTask(t *testing.T) {
	fields := domain.NewFieldSet(domain.FieldTitle)

	t.Run("valid construction", func(t *testing.T) {
		task, err := NewEmbedTask(1, 10, 3, fields, &mockEmbeddingService{}, &mockEmitter{}, testLogger())
		require.NoError(t, err)
		assert.Equal(t, TaskTypeEmbed, task.Type())
		assert.Equal(t, TaskStatusPending, task.Status())
	})

	t.Run("nil dependencies rejected", func(t *testing.T) {
		_, err := NewEmbedTask(1, 10, 3, fields, nil, &mockEmitter{}, testLogger())
		assert.ErrorIs(t, err, ErrNilEmbeddingService)

		_, err = NewEmbedTask(1, 10, 3, fields, &mockEmbeddingService{}, nil, testLogger())
		assert.ErrorIs(t, err, ErrNilEmitter)

		_, err = NewEmbedTask(1, 10, 3, fields, &mockEmbeddingService{}, &mockEmitter{}, nil)
		assert.ErrorIs(t, err, ErrNilLogger)
	})

	t.Run("invalid subject task rejected", func(t *testing.T) {
		_, err := NewEmbedTask(0, 10, 3, fields, &mockEmbeddingService{}, &mockEmitter{}, testLogger())
		assert.ErrorIs(t, err, ErrInvalidSubjectTask)
	})
}

func TestEmbedTaskPayload(t *testing.T) {
	fields := domain.NewFieldSet(domain.FieldTitle, domain.FieldDescription)
	task, err := NewEmbedTask(42, 10, 3, fields, &mockEmbeddingService{}, &mockEmitter{}, testLogger())
	require.NoError(t, err)

	var payload struct {
		TaskID        int64    `json:"task_id"`
		ProjectID     int64    `json:"project_id"`
		ActorID       int64    `json:"actor_id"`
		ChangedFields []string `json:"changed_fields"`
	}
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))

	assert.Equal(t, int64(42), payload.TaskID)
	assert.Equal(t, int64(10), payload.ProjectID)
	assert.Equal(t, int64(3), payload.ActorID)
	assert.ElementsMatch(t, []string{"title", "description"}, payload.ChangedFields)
}

func TestEmbedTaskExecute(t *testing.T) {
	fields := domain.NewFieldSet(domain.FieldTitle)

	t.Run("success generates vectors and emits completion", func(t *testing.T) {
		service := &mockEmbeddingService{}
		emitter := &mockEmitter{}
		task, err := NewEmbedTask(42, 10, 3, fields, service, emitter, testLogger())
		require.NoError(t, err)

		require.NoError(t, task.Execute(context.Background()))
		assert.Equal(t, TaskStatusCompleted, task.Status())
		assert.Equal(t, []int64{42}, service.calls)

		require.Len(t, emitter.events, 1)
		assert.Equal(t, events.TypeEmbeddingCompleted, emitter.events[0].Type)

		var payload events.EmbeddingCompletedPayload
		require.NoError(t, emitter.events[0].UnmarshalPayload(&payload))
		assert.Equal(t, int64(42), payload.TaskID)
		assert.Equal(t, int64(10), payload.ProjectID)
	})

	t.Run("service failure surfaces and emits nothing", func(t *testing.T) {
		service := &mockEmbeddingService{err: errors.New("oracle down")}
		emitter := &mockEmitter{}
		task, err := NewEmbedTask(42, 10, 3, fields, service, emitter, testLogger())
		require.NoError(t, err)

		err = task.Execute(context.Background())
		assert.Error(t, err)
		assert.Equal(t, TaskStatusFailed, task.Status())
		assert.Empty(t, emitter.events)
	})

	t.Run("emit failure does not fail the task", func(t *testing.T) {
		service := &mockEmbeddingService{}
		emitter := &mockEmitter{err: errors.New("transport down")}
		task, err := NewEmbedTask(42, 10, 3, fields, service, emitter, testLogger())
		require.NoError(t, err)

		require.NoError(t, task.Execute(context.Background()))
		assert.Equal(t, TaskStatusCompleted, task.Status())
	})

	t.Run("cancelled context aborts before the service call", func(t *testing.T) {
		service := &mockEmbeddingService{}
		task, err := NewEmbedTask(42, 10, 3, fields, service, &mockEmitter{}, testLogger())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = task.Execute(ctx)
		assert.Error(t, err)
		assert.Empty(t, service.calls)
	})
}
