package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir replicates t.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1", cfg.OpenAI.Model)
	assert.Equal(t, "raw_data/outputs", cfg.Data.DocumentsDir)
	assert.Equal(t, "raw_data/ground_truths", cfg.Data.GroundTruthsDir)
	assert.Equal(t, "processed_data", cfg.Data.OutputDir)
	assert.Len(t, cfg.Data.Docs, 14)
	assert.Equal(t, 16, cfg.Retrieval.Jobs)
	assert.Equal(t, 5000, cfg.Retrieval.MaxTokens)
	assert.Equal(t, 10, cfg.Retrieval.SectionBatchSize)
	assert.Equal(t, 10000, cfg.Retrieval.SectionMaxTokens)
	assert.Equal(t, "retrieved", cfg.Extraction.Mode)
	assert.False(t, cfg.Extraction.ReasoningModel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("POLICYBENCH_OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("POLICYBENCH_EXTRACTION_MODE", "full")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", cfg.OpenAI.Model)
	assert.Equal(t, "full", cfg.Extraction.Mode)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		return &Config{
			OpenAI:     OpenAIConfig{Key: "sk-test", Model: "gpt-4.1"},
			Extraction: ExtractionConfig{Mode: "retrieved"},
		}
	}

	t.Run("retrieve with key and model", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, base().Validate("retrieve"))
	})

	t.Run("retrieve without key", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.OpenAI.Key = ""
		err := cfg.Validate("retrieve")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "openai.key")
	})

	t.Run("extract without model", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.OpenAI.Model = ""
		require.Error(t, cfg.Validate("extract"))
	})

	t.Run("extract with bad mode", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Extraction.Mode = "hybrid"
		err := cfg.Validate("extract")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extraction.mode")
	})

	t.Run("evaluate needs no credentials", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, (&Config{}).Validate("evaluate"))
	})

	t.Run("unknown mode", func(t *testing.T) {
		t.Parallel()
		require.Error(t, base().Validate("deploy"))
	})
}

func TestInitLogger(t *testing.T) {
	t.Run("valid level", func(t *testing.T) {
		assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	})

	t.Run("invalid level", func(t *testing.T) {
		require.Error(t, InitLogger(LogConfig{Level: "chatty", Format: "json"}))
	})
}
