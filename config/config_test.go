package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/asha/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asha.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sampleYAML = `
db_path: /var/lib/asha/clinic.db
namespace: clinic_faq
log_level: debug
embedding:
  api_key: file-key
  remote_model: text-embedding-3-large
  local_model: sentence-transformers/all-MiniLM-L6-v2
  local_dim: 384
  local_pooling: mean
  models_dir: /opt/models
  timeout: 5s
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, core.DefaultNamespace, cfg.Namespace)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.RemoteModel)
	assert.Equal(t, "mixedbread-ai/mxbai-embed-large-v1", cfg.Embedding.LocalModel)
	assert.Equal(t, 1024, cfg.Embedding.LocalDim)
	assert.Equal(t, 384, cfg.Embedding.HashDim)
	assert.Empty(t, cfg.Embedding.APIKey)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "nope.yaml"), envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	cfg, err := load(writeConfig(t, sampleYAML), envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/asha/clinic.db", cfg.DBPath)
	assert.Equal(t, "clinic_faq", cfg.Namespace)
	assert.Equal(t, "file-key", cfg.Embedding.APIKey)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedding.RemoteModel)
	assert.Equal(t, 384, cfg.Embedding.LocalDim)
	assert.Equal(t, 5*time.Second, cfg.Embedding.Timeout)
	// Unset keys keep their defaults.
	assert.Equal(t, 64, cfg.Embedding.BatchSize)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	env := envMap(map[string]string{
		EnvAPIKey:      " env-key ",
		EnvRemoteModel: "text-embedding-ada-002",
		EnvLocalModel:  "BAAI/bge-small-en-v1.5",
		EnvLocalDim:    "512",
		EnvPooling:     "cls",
		EnvDBPath:      "/tmp/asha.db",
		EnvTimeout:     "2.5",
		EnvNamespace:   "",
	})
	cfg, err := load(writeConfig(t, sampleYAML), env)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Embedding.APIKey)
	assert.Equal(t, "text-embedding-ada-002", cfg.Embedding.RemoteModel)
	assert.Equal(t, "BAAI/bge-small-en-v1.5", cfg.Embedding.LocalModel)
	assert.Equal(t, 512, cfg.Embedding.LocalDim)
	assert.Equal(t, "cls", cfg.Embedding.LocalPooling)
	assert.Equal(t, "/tmp/asha.db", cfg.DBPath)
	assert.Equal(t, 2500*time.Millisecond, cfg.Embedding.Timeout)
	assert.Equal(t, "clinic_faq", cfg.Namespace, "empty env values do not override")
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"non-numeric dim", map[string]string{EnvLocalDim: "big"}},
		{"zero dim", map[string]string{EnvLocalDim: "0"}},
		{"bad timeout", map[string]string{EnvTimeout: "soon"}},
		{"negative timeout", map[string]string{EnvTimeout: "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load("", envMap(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := load(writeConfig(t, "embedding: [unclosed"), envMap(nil))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestConfig_AI(t *testing.T) {
	cfg, err := load(writeConfig(t, sampleYAML), envMap(map[string]string{EnvRemoteHost: "http://localhost:8080"}))
	require.NoError(t, err)

	aiCfg, err := cfg.AI()
	require.NoError(t, err)
	assert.Equal(t, "file-key", aiCfg.APIKey)
	assert.Equal(t, "http://localhost:8080/v1", aiCfg.RemoteHost)
	assert.Equal(t, 384, aiCfg.LocalDim)
	assert.Equal(t, "mean", aiCfg.LocalPooling)
	assert.Equal(t, 5*time.Second, aiCfg.RequestTimeout)
	assert.Equal(t, filepath.Join("/opt/models", "sentence-transformers", "all-MiniLM-L6-v2"), aiCfg.LocalModelDir())

	cfg.Embedding.HashDim = 0
	_, err = cfg.AI()
	assert.Error(t, err)
}

func TestConfig_Level(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		cfg := &Config{LogLevel: in}
		got, err := cfg.Level()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := (&Config{LogLevel: "loud"}).Level()
	assert.Error(t, err)
}
