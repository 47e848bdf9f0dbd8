package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerSubmit(t *testing.T) {
	t.Run("successful submission persists and enqueues", func(t *testing.T) {
		store := NewMockTaskStore()
		config := DefaultRunnerConfig()
		runner := NewRunner(store, config, testLogger())

		task := NewMockTask("test task")
		err := runner.Submit(context.Background(), task)
		require.NoError(t, err)

		pending, _ := store.GetPendingTasks(context.Background())
		require.Len(t, pending, 1)
		assert.Equal(t, task.ID(), pending[0].ID())
	})

	t.Run("queue full", func(t *testing.T) {
		store := NewMockTaskStore()
		config := DefaultRunnerConfig()
		config.QueueSize = 1
		runner := NewRunner(store, config, testLogger())

		require.NoError(t, runner.Submit(context.Background(), NewMockTask("task 1")))
		err := runner.Submit(context.Background(), NewMockTask("task 2"))

		assert.Error(t, err)
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("store error", func(t *testing.T) {
		store := NewMockTaskStore()
		store.SaveFn = func(ctx context.Context, task Task) error {
			return errors.New("mock store error")
		}
		runner := NewRunner(store, DefaultRunnerConfig(), testLogger())

		err := runner.Submit(context.Background(), NewMockTask("error task"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save task")
	})
}

func TestRunnerProcessing(t *testing.T) {
	store := NewMockTaskStore()
	config := DefaultRunnerConfig()
	config.WorkerCount = 2
	config.QueueSize = 10
	runner := NewRunner(store, config, testLogger())

	completed := make(chan uuid.UUID, 5)

	var taskIDs []uuid.UUID
	for i := 0; i < 3; i++ {
		task := NewMockTask("test task")
		taskIDs = append(taskIDs, task.ID())

		id := task.ID()
		task.ExecuteFn = func(ctx context.Context) error {
			completed <- id
			return nil
		}

		require.NoError(t, runner.Submit(context.Background(), task))
	}

	require.NoError(t, runner.Start())
	defer runner.Stop()

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 3; i++ {
		select {
		case id := <-completed:
			seen[id] = true
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for task execution")
		}
	}

	for _, id := range taskIDs {
		assert.True(t, seen[id], "task %s was not executed", id)
	}

	// Statuses are updated asynchronously after execution returns.
	assert.Eventually(t, func() bool {
		for _, id := range taskIDs {
			if store.StatusOf(id) != TaskStatusCompleted {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRunnerFailedTask(t *testing.T) {
	store := NewMockTaskStore()
	config := DefaultRunnerConfig()
	config.WorkerCount = 1
	runner := NewRunner(store, config, testLogger())

	var mu sync.Mutex
	var handled []uuid.UUID
	runner.SetErrorHandler(func(task Task, err error) {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, task.ID())
	})

	task := NewMockTask("failing task")
	task.ExecuteFn = func(ctx context.Context) error {
		return errors.New("execution failed")
	}

	require.NoError(t, runner.Submit(context.Background(), task))
	require.NoError(t, runner.Start())
	defer runner.Stop()

	assert.Eventually(t, func() bool {
		return store.StatusOf(task.ID()) == TaskStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 1 && handled[0] == task.ID()
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRunnerRecover(t *testing.T) {
	store := NewMockTaskStore()

	// A task left pending by a previous run.
	pending := NewMockTask("pending task")
	require.NoError(t, store.SaveTask(context.Background(), pending))

	// A task interrupted mid-processing by a crash.
	processing := NewMockTask("interrupted task")
	require.NoError(t, store.SaveTask(context.Background(), processing))
	require.NoError(t, store.UpdateTaskStatus(context.Background(),
		processing.ID(), TaskStatusProcessing, ""))

	config := DefaultRunnerConfig()
	config.QueueSize = 10
	runner := NewRunner(store, config, testLogger())

	require.NoError(t, runner.Recover())

	// Both tasks should be back in the queue.
	queued := make(map[uuid.UUID]bool)
	for i := 0; i < 2; i++ {
		select {
		case task := <-runner.queue.GetChannel():
			queued[task.ID()] = true
		default:
			t.Fatal("expected two requeued tasks")
		}
	}
	assert.True(t, queued[pending.ID()])
	assert.True(t, queued[processing.ID()])

	// The interrupted task was reset to pending.
	assert.Equal(t, TaskStatusPending, store.StatusOf(processing.ID()))
}
