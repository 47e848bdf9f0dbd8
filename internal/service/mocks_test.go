package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/embedding"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/events"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/store"
)

// testLogger returns a logger that discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockTaskReader serves task snapshots from an in-memory map.
type mockTaskReader struct {
	tasks    map[int64]*domain.Task
	getCalls []int64
	err      error
}

func newMockTaskReader(tasks ...*domain.Task) *mockTaskReader {
	m := &mockTaskReader{tasks: make(map[int64]*domain.Task)}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return m
}

func (m *mockTaskReader) GetTask(ctx context.Context, taskID int64) (*domain.Task, error) {
	m.getCalls = append(m.getCalls, taskID)
	if m.err != nil {
		return nil, m.err
	}
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// upsertCall records one UpsertVector invocation.
type upsertCall struct {
	taskID int64
	field  domain.Field
	vector []float32
}

// mockEmbeddingStore is an in-memory embedding store that records calls.
type mockEmbeddingStore struct {
	mu          sync.Mutex
	records     map[int64]*domain.EmbeddingRecord
	candidates  []domain.SimilarityCandidate
	missingIDs  []int64
	upsertCalls []upsertCall
	lastQuery   *store.KNearestQuery
	getErr      error
	upsertErr   error
	knnErr      error
	scanErr     error
}

func newMockEmbeddingStore() *mockEmbeddingStore {
	return &mockEmbeddingStore{records: make(map[int64]*domain.EmbeddingRecord)}
}

func (m *mockEmbeddingStore) GetRecord(ctx context.Context, taskID int64) (*domain.EmbeddingRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	record, ok := m.records[taskID]
	if !ok {
		return nil, store.ErrEmbeddingNotFound
	}
	return record, nil
}

func (m *mockEmbeddingStore) UpsertVector(ctx context.Context, taskID int64, field domain.Field, vector []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upsertCalls = append(m.upsertCalls, upsertCall{taskID: taskID, field: field, vector: vector})

	record, ok := m.records[taskID]
	if !ok {
		record = &domain.EmbeddingRecord{TaskID: taskID}
		m.records[taskID] = record
	}
	switch field {
	case domain.FieldTitle:
		record.TitleVector = vector
	case domain.FieldDescription:
		record.DescriptionVector = vector
	}
	return nil
}

func (m *mockEmbeddingStore) KNearest(ctx context.Context, q store.KNearestQuery) ([]domain.SimilarityCandidate, error) {
	m.lastQuery = &q
	if m.knnErr != nil {
		return nil, m.knnErr
	}
	if len(m.candidates) > q.K {
		return m.candidates[:q.K], nil
	}
	return m.candidates, nil
}

func (m *mockEmbeddingStore) TasksWithoutRecord(ctx context.Context, afterTaskID int64, limit int) ([]int64, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	var page []int64
	for _, id := range m.missingIDs {
		if id <= afterTaskID {
			continue
		}
		// A backfilled task now has a record and drops out of the scan.
		if _, ok := m.records[id]; ok {
			continue
		}
		page = append(page, id)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

// mockEmbedder returns a deterministic vector of the requested dimensionality.
type mockEmbedder struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
	fails int // fail the first N calls with a transient error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string, dimensions int) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.fails > 0 {
		m.fails--
		return nil, embedding.ErrTransientFailure
	}
	if err, ok := m.errs[text]; ok {
		return nil, err
	}
	vector := make([]float32, dimensions)
	for i := range vector {
		vector[i] = 0.5
	}
	return vector, nil
}

// mockClassifier replays a scripted sequence of verdicts.
type mockClassifier struct {
	verdicts []embedding.Verdict
	errs     []error
	calls    [][2]string
}

func (m *mockClassifier) Classify(ctx context.Context, textA, textB string) (embedding.Verdict, error) {
	i := len(m.calls)
	m.calls = append(m.calls, [2]string{textA, textB})
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.verdicts) {
		return m.verdicts[i], nil
	}
	return embedding.VerdictNoMatch, nil
}

// mockEmitter records emitted events.
type mockEmitter struct {
	events []*events.Event
	err    error
}

func (m *mockEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// mockGenerator counts GenerateForTask calls for backfill tests.
type mockGenerator struct {
	mu      sync.Mutex
	calls   []int64
	errs    map[int64]error
	fails   map[int64]int // fail the first N calls per task
	onCall  func(taskID int64)
}

func newMockGenerator() *mockGenerator {
	return &mockGenerator{
		errs:  make(map[int64]error),
		fails: make(map[int64]int),
	}
}

func (m *mockGenerator) GenerateForTask(ctx context.Context, taskID int64, fields domain.FieldSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, taskID)
	if m.onCall != nil {
		m.onCall(taskID)
	}
	if m.fails[taskID] > 0 {
		m.fails[taskID]--
		return embedding.ErrTransientFailure
	}
	if err, ok := m.errs[taskID]; ok {
		return err
	}
	return nil
}
