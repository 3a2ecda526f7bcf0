// Package config loads asha settings from an optional YAML file and the
// environment. Environment variables take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/asha/ai"
	"github.com/poiesic/asha/core"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvRemoteModel = "EMBED_MODEL"
	EnvLocalModel  = "SBERT_MODEL"
	EnvLocalDim    = "SBERT_DIM"
	EnvPooling     = "SBERT_POOLING"
	EnvAPIKey      = "OPENAI_API_KEY"
	EnvRemoteHost  = "OPENAI_BASE_URL"
	EnvModelsDir   = "ASHA_MODELS_DIR"
	EnvDBPath      = "ASHA_DB_PATH"
	EnvTimeout     = "ASHA_EMBED_TIMEOUT"
	EnvNamespace   = "ASHA_NAMESPACE"
	EnvLogLevel    = "ASHA_LOG_LEVEL"
)

// DefaultDBPath is the clinic store location used when none is configured.
const DefaultDBPath = "asha.db"

// Config is the complete application configuration.
type Config struct {
	DBPath    string    `yaml:"db_path"`
	Namespace string    `yaml:"namespace"`
	LogLevel  string    `yaml:"log_level"`
	Embedding Embedding `yaml:"embedding"`
}

// Embedding mirrors ai.Config in file form.
type Embedding struct {
	APIKey         string        `yaml:"api_key"`
	RemoteHost     string        `yaml:"remote_host"`
	RemoteModel    string        `yaml:"remote_model"`
	SummaryModel   string        `yaml:"summary_model"`
	BatchSize      int           `yaml:"batch_size"`
	LocalModel     string        `yaml:"local_model"`
	LocalDim       int           `yaml:"local_dim"`
	LocalPooling   string        `yaml:"local_pooling"`
	ModelsDir      string        `yaml:"models_dir"`
	RuntimeLibrary string        `yaml:"runtime_library"`
	HashDim        int           `yaml:"hash_dim"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when neither a file nor the
// environment sets anything.
func Default() *Config {
	defaults := ai.DefaultConfig()
	return &Config{
		DBPath:    DefaultDBPath,
		Namespace: core.DefaultNamespace,
		LogLevel:  "info",
		Embedding: Embedding{
			RemoteModel:  defaults.RemoteModel,
			SummaryModel: defaults.SummaryModel,
			BatchSize:    defaults.BatchSize,
			LocalModel:   defaults.LocalModel,
			LocalDim:     defaults.LocalDim,
			ModelsDir:    defaults.ModelsDir,
			HashDim:      defaults.HashDim,
			Timeout:      defaults.RequestTimeout,
		},
	}
}

// Load reads the YAML file at path, if any, then applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvRemoteModel, &c.Embedding.RemoteModel},
		{EnvLocalModel, &c.Embedding.LocalModel},
		{EnvPooling, &c.Embedding.LocalPooling},
		{EnvAPIKey, &c.Embedding.APIKey},
		{EnvRemoteHost, &c.Embedding.RemoteHost},
		{EnvModelsDir, &c.Embedding.ModelsDir},
		{EnvDBPath, &c.DBPath},
		{EnvNamespace, &c.Namespace},
		{EnvLogLevel, &c.LogLevel},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && strings.TrimSpace(v) != "" {
			*s.dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(EnvLocalDim); ok && v != "" {
		dim, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || dim <= 0 {
			return fmt.Errorf("%s: invalid dimension %q", EnvLocalDim, v)
		}
		c.Embedding.LocalDim = dim
	}

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := parseTimeout(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Embedding.Timeout = d
	}
	return nil
}

// parseTimeout accepts a Go duration or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative timeout %q", v)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", v)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %q", v)
	}
	return d, nil
}

// AI converts the embedding section into a validated ai.Config.
func (c *Config) AI() (*ai.Config, error) {
	e := c.Embedding
	cfg := ai.NewConfig(
		ai.WithAPIKey(e.APIKey),
		ai.WithRemoteHost(e.RemoteHost),
		ai.WithRemoteModel(e.RemoteModel),
		ai.WithSummaryModel(e.SummaryModel),
		ai.WithBatchSize(e.BatchSize),
		ai.WithLocalModel(e.LocalModel),
		ai.WithLocalDim(e.LocalDim),
		ai.WithLocalPooling(e.LocalPooling),
		ai.WithModelsDir(e.ModelsDir),
		ai.WithRuntimeLibrary(e.RuntimeLibrary),
		ai.WithHashDim(e.HashDim),
		ai.WithRequestTimeout(e.Timeout),
	)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Level parses LogLevel. Accepts debug, info, warn and error.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
