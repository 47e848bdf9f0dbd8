package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the two settings that have no defaults.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TASKIT_DATABASE_URL", "postgres://localhost:5432/taskit_test")
	t.Setenv("TASKIT_LLM_GEMINI_API_KEY", "test-api-key")
}

func TestLoad(t *testing.T) {
	t.Run("defaults apply when only required settings are given", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Server.LogLevel)
		assert.Equal(t, "gemini-embedding-001", cfg.LLM.EmbeddingModel)
		assert.Equal(t, "gemini-2.0-flash", cfg.LLM.ClassificationModel)
		assert.Equal(t, 256, cfg.LLM.TitleDimensions)
		assert.Equal(t, 768, cfg.LLM.DescriptionDimensions)
		assert.Equal(t, 2, cfg.Worker.Count)
		assert.Equal(t, 100, cfg.Worker.QueueSize)
		assert.Equal(t, 30*time.Minute, cfg.Worker.StuckTaskAge)
		assert.Equal(t, 10*time.Minute, cfg.Backfill.Interval)
		assert.Equal(t, 50, cfg.Backfill.BatchSize)
		assert.Equal(t, 1.0, cfg.Backfill.ItemsPerSecond)
		assert.Equal(t, 3, cfg.Backfill.MaxRetries)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKIT_SERVER_PORT", "9000")
		t.Setenv("TASKIT_SERVER_LOG_LEVEL", "debug")
		t.Setenv("TASKIT_WORKER_COUNT", "8")
		t.Setenv("TASKIT_BACKFILL_INTERVAL", "1h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Server.LogLevel)
		assert.Equal(t, 8, cfg.Worker.Count)
		assert.Equal(t, time.Hour, cfg.Backfill.Interval)
	})

	t.Run("missing database URL fails validation", func(t *testing.T) {
		t.Setenv("TASKIT_LLM_GEMINI_API_KEY", "test-api-key")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("missing API key fails validation", func(t *testing.T) {
		t.Setenv("TASKIT_DATABASE_URL", "postgres://localhost:5432/taskit_test")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("invalid log level fails validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKIT_SERVER_LOG_LEVEL", "verbose")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}
