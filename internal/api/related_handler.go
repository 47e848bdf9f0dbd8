// Package api provides HTTP handlers for the similarity pipeline API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/api/shared"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/domain"
)

// defaultRelatedCount is used when the caller does not specify how many
// related tasks to return.
const defaultRelatedCount = 5

// RelatedTasksFinder answers related-task queries. Implemented by
// service.RelatedTasksService.
type RelatedTasksFinder interface {
	FindRelated(ctx context.Context, taskID int64, count int) (domain.RelatedTasks, error)
}

// RelatedTasksResponse represents the response data for a related-tasks query.
// State is "processing" until the subject task's embeddings exist, then
// "ready"; a ready response with no task IDs is a valid terminal result.
type RelatedTasksResponse struct {
	State   string  `json:"state"`
	TaskIDs []int64 `json:"task_ids"`
}

// RelatedTasksHandler handles related-task HTTP requests.
type RelatedTasksHandler struct {
	finder RelatedTasksFinder
	logger *slog.Logger
}

// NewRelatedTasksHandler creates a new RelatedTasksHandler.
func NewRelatedTasksHandler(finder RelatedTasksFinder, logger *slog.Logger) *RelatedTasksHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RelatedTasksHandler")
	}

	return &RelatedTasksHandler{
		finder: finder,
		logger: logger.With(slog.String("component", "related_tasks_handler")),
	}
}

// GetRelatedTasks handles GET /tasks/{taskID}/related requests.
// The optional count query parameter bounds the result size.
func (h *RelatedTasksHandler) GetRelatedTasks(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID must be an integer")
		return
	}

	count := defaultRelatedCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Count must be an integer")
			return
		}
	}

	result, err := h.finder.FindRelated(r.Context(), taskID, count)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Debug("related tasks query served",
		slog.Int64("task_id", taskID),
		slog.String("state", string(result.State)),
		slog.Int("returned", len(result.TaskIDs)))

	shared.RespondWithJSON(w, r, http.StatusOK, RelatedTasksResponse{
		State:   string(result.State),
		TaskIDs: result.TaskIDs,
	})
}

// HealthCheck handles GET /healthz requests.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
