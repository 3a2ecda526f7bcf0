// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.



package ai

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// RemoteDimension is the dimensionality declared for the remote embedding model.
	RemoteDimension = 1536

	// RemoteBatchSize is the number of texts sent per remote embedding request.
	RemoteBatchSize = 64

	// HashDimension is the default dimensionality of hash embeddings.
	HashDimension = 384
)

// Pooling modes for the local model. PoolingAuto reads the model's
// sentence-transformers pooling config.
const (
	PoolingAuto = ""
	PoolingCLS  = "cls"
	PoolingMean = "mean"
)

// Config holds configuration for the embedding providers.
type Config struct {
	// APIKey is the credential for the remote embedding API.
	// An empty key disables the remote provider; it is not an error.
	APIKey string

	// RemoteHost optionally overrides the remote API base URL.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	RemoteHost string

	// RemoteModel is the remote embedding model identifier.
	// Example: "text-embedding-3-small"
	RemoteModel string

	// SummaryModel is the remote chat model that writes narrative
	// embryology summaries.
	// Example: "gpt-4o-mini"
	SummaryModel string

	// BatchSize is the number of texts per remote request.
	// Default: 64
	BatchSize int

	// LocalModel names the local sentence-embedding model. It is resolved to
	// a directory under ModelsDir holding model.onnx and vocab.txt.
	// Example: "mixedbread-ai/mxbai-embed-large-v1"
	LocalModel string

	// LocalDim is the dimensionality assumed for the local model before it
	// has been loaded. The loaded model's output shape takes precedence.
	// Default: 1024
	LocalDim int

	// LocalPooling selects how token states become a sentence vector:
	// "cls", "mean", or empty to follow 1_Pooling/config.json in the
	// model directory.
	LocalPooling string

	// ModelsDir is the root directory for local models and the ONNX runtime library.
	ModelsDir string

	// RuntimeLibrary is the path to the ONNX Runtime shared library.
	// Defaults to libonnxruntime.so inside ModelsDir.
	RuntimeLibrary string

	// HashDim is the dimensionality of hash embeddings.
	// Default: 384
	HashDim int

	// RequestTimeout bounds a single provider attempt. Zero disables the bound.
	// Default: 30s
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAPIKey sets the remote API credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithRemoteHost sets the remote API base URL.
func WithRemoteHost(host string) ConfigOption {
	return func(c *Config) {
		c.RemoteHost = host
	}
}

// WithRemoteModel sets the remote embedding model identifier.
func WithRemoteModel(model string) ConfigOption {
	return func(c *Config) {
		c.RemoteModel = model
	}
}

// WithSummaryModel sets the remote chat model used for narrative summaries.
func WithSummaryModel(model string) ConfigOption {
	return func(c *Config) {
		c.SummaryModel = model
	}
}

// WithBatchSize sets the number of texts per remote request.
func WithBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = size
	}
}

// WithLocalModel sets the local model name.
func WithLocalModel(model string) ConfigOption {
	return func(c *Config) {
		c.LocalModel = model
	}
}

// WithLocalDim sets the assumed local model dimensionality.
func WithLocalDim(dim int) ConfigOption {
	return func(c *Config) {
		c.LocalDim = dim
	}
}

// WithLocalPooling sets the local model pooling mode.
func WithLocalPooling(mode string) ConfigOption {
	return func(c *Config) {
		c.LocalPooling = mode
	}
}

// WithModelsDir sets the local model root directory.
func WithModelsDir(dir string) ConfigOption {
	return func(c *Config) {
		c.ModelsDir = dir
	}
}

// WithRuntimeLibrary sets the ONNX Runtime shared library path.
func WithRuntimeLibrary(path string) ConfigOption {
	return func(c *Config) {
		c.RuntimeLibrary = path
	}
}

// WithHashDim sets the hash embedding dimensionality.
func WithHashDim(dim int) ConfigOption {
	return func(c *Config) {
		c.HashDim = dim
	}
}

// WithRequestTimeout sets the per-provider attempt timeout.
func WithRequestTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// DefaultConfig returns a Config with the defaults used in production.
// The remote provider stays disabled until an API key is supplied.
func DefaultConfig() *Config {
	return &Config{
		RemoteModel:    "text-embedding-3-small",
		SummaryModel:   "gpt-4o-mini",
		BatchSize:      RemoteBatchSize,
		LocalModel:     "mixedbread-ai/mxbai-embed-large-v1",
		LocalDim:       1024,
		ModelsDir:      "models",
		HashDim:        HashDimension,
		RequestTimeout: 30 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIKey(key),
//	    WithLocalModel("sentence-transformers/all-MiniLM-L6-v2"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// A RemoteHost gets the /v1 suffix required by OpenAI-compatible APIs.
func (c *Config) Normalize() {
	if c.RemoteHost != "" && !strings.HasSuffix(c.RemoteHost, "/v1") {
		c.RemoteHost = strings.TrimSuffix(c.RemoteHost, "/")
		c.RemoteHost = c.RemoteHost + "/v1"
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.LocalPooling = strings.ToLower(strings.TrimSpace(c.LocalPooling))
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.RemoteModel == "" {
		return errors.New("ai config: RemoteModel is required")
	}
	if c.SummaryModel == "" {
		return errors.New("ai config: SummaryModel is required")
	}
	if c.BatchSize < 1 {
		return errors.New("ai config: BatchSize must be positive")
	}
	if c.LocalModel == "" {
		return errors.New("ai config: LocalModel is required")
	}
	if c.LocalDim < 1 {
		return errors.New("ai config: LocalDim must be positive")
	}
	switch c.LocalPooling {
	case PoolingAuto, PoolingCLS, PoolingMean:
	default:
		return fmt.Errorf("ai config: unknown LocalPooling %q", c.LocalPooling)
	}
	if c.HashDim < 1 {
		return errors.New("ai config: HashDim must be positive")
	}
	if c.RequestTimeout < 0 {
		return errors.New("ai config: RequestTimeout cannot be negative")
	}
	return nil
}

// LocalModelDir returns the directory holding the local model files.
func (c *Config) LocalModelDir() string {
	return filepath.Join(c.ModelsDir, filepath.FromSlash(c.LocalModel))
}

// RuntimeLibraryPath returns the ONNX Runtime shared library location.
func (c *Config) RuntimeLibraryPath() string {
	if c.RuntimeLibrary != "" {
		return c.RuntimeLibrary
	}
	return filepath.Join(c.ModelsDir, "libonnxruntime.so")
}
