package ai

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.RemoteHost)
	assert.Equal(t, "text-embedding-3-small", cfg.RemoteModel)
	assert.Equal(t, "gpt-4o-mini", cfg.SummaryModel)
	assert.Equal(t, 64, cfg.BatchSize)
	assert.Equal(t, "mixedbread-ai/mxbai-embed-large-v1", cfg.LocalModel)
	assert.Equal(t, 1024, cfg.LocalDim)
	assert.Equal(t, 384, cfg.HashDim)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithAPIKey("sk-test"),
			WithRemoteHost("http://custom:8080/v1"),
			WithRemoteModel("text-embedding-3-large"),
			WithBatchSize(16),
			WithLocalModel("sentence-transformers/all-MiniLM-L6-v2"),
			WithLocalDim(384),
			WithModelsDir("/opt/models"),
			WithRuntimeLibrary("/usr/lib/libonnxruntime.so"),
			WithHashDim(128),
			WithRequestTimeout(5*time.Second),
		)

		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, "http://custom:8080/v1", cfg.RemoteHost)
		assert.Equal(t, "text-embedding-3-large", cfg.RemoteModel)
		assert.Equal(t, 16, cfg.BatchSize)
		assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", cfg.LocalModel)
		assert.Equal(t, 384, cfg.LocalDim)
		assert.Equal(t, "/opt/models", cfg.ModelsDir)
		assert.Equal(t, "/usr/lib/libonnxruntime.so", cfg.RuntimeLibrary)
		assert.Equal(t, 128, cfg.HashDim)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{name: "already has /v1", host: "http://localhost:11434/v1", expected: "http://localhost:11434/v1"},
		{name: "missing /v1", host: "http://localhost:11434", expected: "http://localhost:11434/v1"},
		{name: "has trailing slash", host: "http://localhost:11434/", expected: "http://localhost:11434/v1"},
		{name: "empty host", host: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{RemoteHost: tt.host, APIKey: "  key \n"}

			cfg.Normalize()

			assert.Equal(t, tt.expected, cfg.RemoteHost)
			assert.Equal(t, "key", cfg.APIKey)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid without a key", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "missing remote model", mutate: func(c *Config) { c.RemoteModel = "" }, field: "RemoteModel"},
		{name: "missing summary model", mutate: func(c *Config) { c.SummaryModel = "" }, field: "SummaryModel"},
		{name: "zero batch size", mutate: func(c *Config) { c.BatchSize = 0 }, field: "BatchSize"},
		{name: "missing local model", mutate: func(c *Config) { c.LocalModel = "" }, field: "LocalModel"},
		{name: "zero local dim", mutate: func(c *Config) { c.LocalDim = 0 }, field: "LocalDim"},
		{name: "zero hash dim", mutate: func(c *Config) { c.HashDim = 0 }, field: "HashDim"},
		{name: "negative timeout", mutate: func(c *Config) { c.RequestTimeout = -time.Second }, field: "RequestTimeout"},
		{name: "unknown pooling", mutate: func(c *Config) { c.LocalPooling = "max" }, field: "LocalPooling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfigValidate_Pooling(t *testing.T) {
	cfg := NewConfig(WithLocalPooling(" CLS "))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, PoolingCLS, cfg.LocalPooling)
}

func TestConfigPaths(t *testing.T) {
	cfg := NewConfig(WithModelsDir("models"), WithLocalModel("org/name"))

	assert.Equal(t, filepath.Join("models", "org", "name"), cfg.LocalModelDir())
	assert.Equal(t, filepath.Join("models", "libonnxruntime.so"), cfg.RuntimeLibraryPath())

	cfg.RuntimeLibrary = "/usr/local/lib/libonnxruntime.so"
	assert.Equal(t, "/usr/local/lib/libonnxruntime.so", cfg.RuntimeLibraryPath())
}

func TestIsProviderError(t *testing.T) {
	assert.True(t, IsProviderError(ErrMissingCredential))
	assert.True(t, IsProviderError(fmt.Errorf("openai: %w", ErrProviderUnavailable)))
	assert.True(t, IsProviderError(fmt.Errorf("wrapped twice: %w", fmt.Errorf("x: %w", ErrEmptyResponse))))
	assert.False(t, IsProviderError(errors.New("index out of range")))
	assert.False(t, IsProviderError(nil))
}
