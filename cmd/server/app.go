package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/config"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/embedding"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/events"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/platform/gemini"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/platform/postgres"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/service"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/store"
	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/worker"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	taskReader      store.TaskReader
	embeddingStore  store.EmbeddingStore
	workerTaskStore worker.TaskStore

	// Oracles
	embedder   embedding.Embedder
	classifier embedding.Classifier

	// Services
	embeddingService *service.EmbeddingService
	relatedService   *service.RelatedTasksService
	detector         *service.DuplicateDetector
	backfill         *service.BackfillReconciler

	// Event system
	emitter *events.InMemoryEmitter

	// Task handling
	taskRunner *worker.Runner

	// Backfill lifecycle
	backfillCancel context.CancelFunc
	backfillDone   chan struct{}
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Oracle clients
	client, err := gemini.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	app.embedder, err = gemini.NewEmbedder(client, cfg.LLM.EmbeddingModel,
		logger.With("component", "embedding_oracle"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding oracle: %w", err)
	}

	app.classifier, err = gemini.NewClassifier(client, cfg.LLM.ClassificationModel,
		logger.With("component", "classification_oracle"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize classification oracle: %w", err)
	}
	logger.Info("LLM oracles initialized",
		"embedding_model", cfg.LLM.EmbeddingModel,
		"classification_model", cfg.LLM.ClassificationModel)

	// Stores
	app.taskReader = postgres.NewTaskReader(db)
	app.embeddingStore = postgres.NewEmbeddingStore(db)

	// Event emitter
	app.emitter = events.NewInMemoryEmitter(logger)

	// Services
	app.embeddingService = service.NewEmbeddingService(
		app.taskReader,
		app.embeddingStore,
		app.embedder,
		service.FieldDimensions{
			Title:       cfg.LLM.TitleDimensions,
			Description: cfg.LLM.DescriptionDimensions,
		},
		logger,
	)

	app.relatedService = service.NewRelatedTasksService(app.embeddingStore, logger)

	app.detector = service.NewDuplicateDetector(
		app.taskReader,
		app.embeddingStore,
		app.classifier,
		app.emitter,
		logger,
	)

	app.backfill = service.NewBackfillReconciler(
		app.embeddingStore,
		app.embeddingService,
		service.BackfillConfig{
			Interval:       cfg.Backfill.Interval,
			BatchSize:      cfg.Backfill.BatchSize,
			ItemsPerSecond: cfg.Backfill.ItemsPerSecond,
			MaxRetries:     cfg.Backfill.MaxRetries,
		},
		logger,
	)

	// Task factory turns persisted rows back into executable tasks on recovery.
	factory, err := worker.NewTaskFactory(
		app.embeddingService,
		app.detector,
		app.emitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task factory: %w", err)
	}

	app.workerTaskStore = postgres.NewWorkerTaskStore(db, factory)

	// Task runner
	app.taskRunner, err = setupTaskRunner(app)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	// Route pipeline events into the runner.
	handler, err := worker.NewPipelineEventHandler(
		app.embeddingService,
		app.detector,
		app.emitter,
		app.taskRunner,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event handler: %w", err)
	}
	app.emitter.RegisterHandler(handler)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the backfill loop and the HTTP server, handling lifecycle and
// cleanup. It returns an error if the server fails to start or encounters
// problems.
func (app *application) Run(ctx context.Context) error {
	backfillCtx, cancel := context.WithCancel(ctx)
	app.backfillCancel = cancel
	app.backfillDone = make(chan struct{})

	go func() {
		defer close(app.backfillDone)
		app.backfill.Run(backfillCtx)
	}()

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupTaskRunner initializes and starts the background task processor.
func setupTaskRunner(app *application) (*worker.Runner, error) {
	runner := worker.NewRunner(app.workerTaskStore, worker.RunnerConfig{
		WorkerCount:  app.config.Worker.Count,
		QueueSize:    app.config.Worker.QueueSize,
		StuckTaskAge: app.config.Worker.StuckTaskAge,
	}, app.logger)

	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	return runner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.backfillCancel != nil {
		app.backfillCancel()
		<-app.backfillDone
	}

	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
