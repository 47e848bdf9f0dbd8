package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/store"
)

// Generator regenerates a task's vectors. Implemented by *EmbeddingService.
type Generator interface {
	GenerateForTask(ctx context.Context, taskID int64, fields domain.FieldSet) error
}

// BackfillConfig tunes the reconciler sweep.
type BackfillConfig struct {
	// Interval is how often Run starts a sweep.
	Interval time.Duration

	// BatchSize is the page size for the missing-record scan.
	BatchSize int

	// ItemsPerSecond throttles embedding oracle usage across the sweep.
	ItemsPerSecond float64

	// MaxRetries bounds the per-item backoff retry loop.
	MaxRetries int
}

// BackfillReconciler is the safety net for tasks that slipped through the
// event pipeline entirely: it periodically sweeps for tasks with no embedding
// record at all and generates their vectors. Tasks with a record are never
// touched, even if one of the two vectors is still missing; repairing partial
// records is the event pipeline's job.
//
// The sweep is idempotent and restartable. Pagination is keyed by task ID, so
// a crash mid-sweep loses no ground: the next sweep finds the still-missing
// records.
type BackfillReconciler struct {
	embeddings store.EmbeddingStore
	generator  Generator
	config     BackfillConfig
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewBackfillReconciler creates a new BackfillReconciler.
func NewBackfillReconciler(
	embeddings store.EmbeddingStore,
	generator Generator,
	config BackfillConfig,
	logger *slog.Logger,
) *BackfillReconciler {
	return &BackfillReconciler{
		embeddings: embeddings,
		generator:  generator,
		config:     config,
		limiter:    rate.NewLimiter(rate.Limit(config.ItemsPerSecond), 1),
		logger:     logger.With("component", "backfill_reconciler"),
	}
}

// Run executes sweeps on the configured interval until the context is
// cancelled. The first sweep starts immediately.
func (r *BackfillReconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		if err := r.RunSweep(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			r.logger.Error("backfill sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunSweep performs one full pass over tasks with no embedding record,
// generating vectors for each. Individual task failures are logged and
// counted but never abort the sweep; only a store scan failure or
// cancellation ends it early.
func (r *BackfillReconciler) RunSweep(ctx context.Context) error {
	start := time.Now()
	allFields := domain.NewFieldSet(domain.EmbeddableFields...)

	var processed, failed int
	afterTaskID := int64(0)

	for {
		taskIDs, err := r.embeddings.TasksWithoutRecord(ctx, afterTaskID, r.config.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to scan for tasks without records: %w", err)
		}
		if len(taskIDs) == 0 {
			break
		}

		for _, taskID := range taskIDs {
			if err := r.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("sweep cancelled: %w", err)
			}

			if err := r.backfillOne(ctx, taskID, allFields); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("sweep cancelled: %w", err)
				}
				r.logger.Error("failed to backfill task",
					"task_id", taskID,
					"error", err)
				failed++
				continue
			}
			processed++
		}

		afterTaskID = taskIDs[len(taskIDs)-1]
		if len(taskIDs) < r.config.BatchSize {
			break
		}
	}

	r.logger.Info("backfill sweep finished",
		"processed", processed,
		"failed", failed,
		"duration", time.Since(start))
	return nil
}

// backfillOne generates vectors for a single task, retrying transient oracle
// failures with exponential backoff.
func (r *BackfillReconciler) backfillOne(
	ctx context.Context,
	taskID int64,
	fields domain.FieldSet,
) error {
	operation := func() error {
		return r.generator.GenerateForTask(ctx, taskID, fields)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(r.config.MaxRetries)),
		ctx,
	)

	return backoff.Retry(operation, policy)
}
