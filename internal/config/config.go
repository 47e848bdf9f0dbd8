package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
	Backfill BackfillConfig `mapstructure:"backfill" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains the settings for the embedding and classification
// oracles. Title and description vectors use independent dimensionalities.
type LLMConfig struct {
	GeminiAPIKey          string `mapstructure:"gemini_api_key"         validate:"required"`
	EmbeddingModel        string `mapstructure:"embedding_model"        validate:"required"`
	ClassificationModel   string `mapstructure:"classification_model"   validate:"required"`
	TitleDimensions       int    `mapstructure:"title_dimensions"       validate:"required,gt=0"`
	DescriptionDimensions int    `mapstructure:"description_dimensions" validate:"required,gt=0"`
}

// WorkerConfig tunes the background task runner that consumes pipeline
// events.
type WorkerConfig struct {
	Count        int           `mapstructure:"count"           validate:"required,gt=0"`
	QueueSize    int           `mapstructure:"queue_size"      validate:"required,gt=0"`
	StuckTaskAge time.Duration `mapstructure:"stuck_task_age"  validate:"required"`
}

// BackfillConfig tunes the reconciler sweep that repairs tasks with no
// embedding record.
type BackfillConfig struct {
	// Interval is how often a sweep runs.
	Interval time.Duration `mapstructure:"interval" validate:"required"`

	// BatchSize is the page size for the missing-record scan.
	BatchSize int `mapstructure:"batch_size" validate:"required,gt=0"`

	// ItemsPerSecond throttles oracle usage across the sweep.
	ItemsPerSecond float64 `mapstructure:"items_per_second" validate:"required,gt=0"`

	// MaxRetries bounds the per-item backoff retry loop.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`
}
