package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/events"
)

// testLogger returns a logger that discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// MockTask is a simple implementation of the Task interface for testing.
type MockTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	TaskStatus  TaskStatus
	ExecuteFn   func(ctx context.Context) error
}

// NewMockTask creates a new MockTask with the given payload message.
func NewMockTask(message string) *MockTask {
	payload, _ := json.Marshal(map[string]string{"message": message})
	return &MockTask{
		TaskID:      uuid.New(),
		TaskType:    "mock_task",
		TaskPayload: payload,
		TaskStatus:  TaskStatusPending,
		ExecuteFn:   func(ctx context.Context) error { return nil },
	}
}

func (t *MockTask) ID() uuid.UUID      { return t.TaskID }
func (t *MockTask) Type() string       { return t.TaskType }
func (t *MockTask) Payload() []byte    { return t.TaskPayload }
func (t *MockTask) Status() TaskStatus { return t.TaskStatus }

func (t *MockTask) Execute(ctx context.Context) error {
	return t.ExecuteFn(ctx)
}

// MockTaskStore implements the TaskStore interface for testing.
type MockTaskStore struct {
	mutex           sync.RWMutex
	tasks           map[uuid.UUID]Task
	statuses        map[uuid.UUID]TaskStatus
	statusTimes     map[uuid.UUID]time.Time
	SaveFn          func(ctx context.Context, task Task) error
	UpdateStatusFn  func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

// NewMockTaskStore creates a new MockTaskStore with default implementations.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		tasks:       make(map[uuid.UUID]Task),
		statuses:    make(map[uuid.UUID]TaskStatus),
		statusTimes: make(map[uuid.UUID]time.Time),
	}
}

func (s *MockTaskStore) SaveTask(ctx context.Context, task Task) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, task)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tasks[task.ID()] = task
	s.statuses[task.ID()] = task.Status()
	s.statusTimes[task.ID()] = time.Now()
	return nil
}

func (s *MockTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.tasks[taskID]; !exists {
		return nil // not found is a no-op, matching the real store
	}
	s.statuses[taskID] = status
	s.statusTimes[taskID] = time.Now()
	return nil
}

func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	return s.tasksWithStatus(TaskStatusPending, 0), nil
}

func (s *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	return s.tasksWithStatus(TaskStatusProcessing, olderThan), nil
}

func (s *MockTaskStore) tasksWithStatus(status TaskStatus, olderThan time.Duration) []Task {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var result []Task
	for id, task := range s.tasks {
		if s.statuses[id] != status {
			continue
		}
		if olderThan > 0 && time.Since(s.statusTimes[id]) < olderThan {
			continue
		}
		result = append(result, task)
	}
	return result
}

// StatusOf returns the last recorded status for a task.
func (s *MockTaskStore) StatusOf(taskID uuid.UUID) TaskStatus {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.statuses[taskID]
}

// mockEmbeddingService records GenerateForTask calls.
type mockEmbeddingService struct {
	mu     sync.Mutex
	calls  []int64
	fields []domain.FieldSet
	err    error
}

func (m *mockEmbeddingService) GenerateForTask(ctx context.Context, taskID int64, fields domain.FieldSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, taskID)
	m.fields = append(m.fields, fields)
	return m.err
}

// mockDetector records DetectDuplicates calls.
type mockDetector struct {
	mu    sync.Mutex
	calls [][3]int64
	err   error
}

func (m *mockDetector) DetectDuplicates(ctx context.Context, taskID, projectID, actorID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, [3]int64{taskID, projectID, actorID})
	return m.err
}

// mockEmitter records emitted events.
type mockEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (m *mockEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// mockSubmitter records submitted tasks.
type mockSubmitter struct {
	tasks []Task
	err   error
}

func (m *mockSubmitter) Submit(ctx context.Context, task Task) error {
	if m.err != nil {
		return m.err
	}
	m.tasks = append(m.tasks, task)
	return nil
}
