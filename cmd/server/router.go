package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/api"
	apiMiddleware "github.com/jorgeajimenezl/taskit-backend-sub000/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceID)

	relatedHandler := api.NewRelatedTasksHandler(app.relatedService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks/{taskID}/related", relatedHandler.GetRelatedTasks)
	})

	r.Get("/healthz", api.HealthCheck)

	return r
}
