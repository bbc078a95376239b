package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/converge/pkg/logging"
)

func TestConfigFunctions(t *testing.T) {
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	})

	t.Run("DefaultConfig returns sensible defaults", func(t *testing.T) {
		cfg := logging.DefaultConfig()
		require.NotNil(t, cfg)
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
		assert.False(t, cfg.AddCaller)
	})

	t.Run("NewLoggerFromConfig writes json to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.log")

		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "debug",
			Format: "auto",
			Output: path,
		})
		logger.Debug().Str("artifact", "deployment-manifest").Msg("created")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"level":"debug"`)
		assert.Contains(t, string(content), `"artifact":"deployment-manifest"`)
	})

	t.Run("level filtering", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.log")

		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "error",
			Format: "json",
			Output: path,
		})
		logger.Info().Msg("hidden")
		logger.Error().Msg("shown")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "hidden")
		assert.Contains(t, string(content), "shown")
	})

	t.Run("level aliases", func(t *testing.T) {
		logging.NewLoggerFromConfig(&logging.Config{Level: "warning", Output: "discard"})
		assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
		logging.NewLoggerFromConfig(&logging.Config{Level: "bogus", Output: "discard"})
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("discard output", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "info", Output: "discard"})
		logger.Info().Msg("nowhere")
	})
}
