package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/embedding"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/events"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/store"
)

// duplicateCandidateLimit caps how many nearest neighbors one detection run
// evaluates. Each candidate costs one classification oracle call, so the cap
// bounds the per-run spend.
const duplicateCandidateLimit = 5

// DuplicateDetector finds and reports duplicate tasks within a project.
// It runs once per embedding completion: nearest neighbors are retrieved
// scoped to the subject's project, then classified pairwise in
// ascending-distance order until the first confirmed match.
type DuplicateDetector struct {
	taskReader store.TaskReader
	embeddings store.EmbeddingStore
	classifier embedding.Classifier
	emitter    events.Emitter
	logger     *slog.Logger
}

// NewDuplicateDetector creates a new DuplicateDetector.
func NewDuplicateDetector(
	taskReader store.TaskReader,
	embeddings store.EmbeddingStore,
	classifier embedding.Classifier,
	emitter events.Emitter,
	logger *slog.Logger,
) *DuplicateDetector {
	return &DuplicateDetector{
		taskReader: taskReader,
		embeddings: embeddings,
		classifier: classifier,
		emitter:    emitter,
		logger:     logger.With("component", "duplicate_detector"),
	}
}

// DetectDuplicates runs one detection pass for the subject task.
//
// Missing prerequisites (no embedding record, no vectors, no candidates, or
// the subject deleted mid-flight) end the run silently. On the first
// candidate the oracle judges a match, exactly one duplicate-detected event
// is emitted and remaining candidates are not evaluated. An inconclusive
// verdict skips the candidate; an oracle failure aborts the run with an
// error so the transport can redeliver.
func (d *DuplicateDetector) DetectDuplicates(
	ctx context.Context,
	taskID, projectID, actorID int64,
) error {
	logger := d.logger.With("subject_task_id", taskID, "project_id", projectID)

	record, err := d.embeddings.GetRecord(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Debug("no embedding record, nothing to compare")
			return nil
		}
		return fmt.Errorf("failed to load embedding record: %w", err)
	}

	field, ok := record.QueryField()
	if !ok {
		logger.Debug("embedding record has no vectors, nothing to compare")
		return nil
	}

	candidates, err := d.embeddings.KNearest(ctx, store.KNearestQuery{
		Vector:        record.Vector(field),
		Field:         field,
		ExcludeTaskID: taskID,
		ProjectID:     &projectID,
		K:             duplicateCandidateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to query nearest neighbors: %w", err)
	}
	if len(candidates) == 0 {
		logger.Debug("no candidates in project, nothing to compare")
		return nil
	}

	subject, err := d.taskReader.GetTask(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			logger.Debug("subject task no longer exists, skipping detection")
			return nil
		}
		return fmt.Errorf("failed to load subject task: %w", err)
	}
	subjectText := classificationText(subject)

	for _, candidate := range candidates {
		candidateTask, err := d.taskReader.GetTask(ctx, candidate.TaskID)
		if err != nil {
			if store.IsNotFoundError(err) {
				// Candidate deleted between the k-NN query and now.
				logger.Debug("candidate task no longer exists, skipping",
					"candidate_task_id", candidate.TaskID)
				continue
			}
			return fmt.Errorf("failed to load candidate task: %w", err)
		}

		verdict, err := d.classifier.Classify(ctx, subjectText, classificationText(candidateTask))
		if err != nil {
			return fmt.Errorf("classification failed for candidate %d: %w",
				candidate.TaskID, err)
		}

		switch verdict {
		case embedding.VerdictMatch:
			logger.Info("duplicate detected",
				"candidate_task_id", candidate.TaskID,
				"distance", candidate.Distance)
			return d.emitDuplicate(ctx, taskID, candidate.TaskID, projectID, actorID)

		case embedding.VerdictInconclusive:
			logger.Debug("inconclusive verdict, skipping candidate",
				"candidate_task_id", candidate.TaskID)

		default:
			// VerdictNoMatch: keep scanning.
		}
	}

	logger.Debug("no duplicates found", "candidates_evaluated", len(candidates))
	return nil
}

// emitDuplicate publishes the duplicate-detected event for one confirmed pair.
func (d *DuplicateDetector) emitDuplicate(
	ctx context.Context,
	subjectTaskID, relatedTaskID, projectID, actorID int64,
) error {
	event, err := events.NewEvent(events.TypeDuplicateDetected, events.DuplicateDetectedPayload{
		SubjectTaskID: subjectTaskID,
		RelatedTaskID: relatedTaskID,
		ProjectID:     projectID,
		ActorID:       actorID,
		DetectedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to build duplicate-detected event: %w", err)
	}

	if err := d.emitter.EmitEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to emit duplicate-detected event: %w", err)
	}
	return nil
}

// classificationText renders a task's content as one text block for the
// classification oracle.
func classificationText(t *domain.Task) string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(t.Title)
	if strings.TrimSpace(t.Description) != "" {
		b.WriteString("\nDescription: ")
		b.WriteString(t.Description)
	}
	return b.String()
}
