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


// Package local provides the on-device embedding provider.
//
// The provider runs a sentence-embedding model exported to ONNX. A model
// named "org/name" is expected at <ModelsDir>/org/name/model.onnx with its
// WordPiece vocabulary in vocab.txt alongside. The model is loaded on the
// first call and reused by every call after it. Token states are pooled
// the way the model was trained (CLS or mean, per 1_Pooling/config.json)
// and scaled to unit length.
package local

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/poiesic/asha/ai"
)

const (
	modelFile = "model.onnx"
	vocabFile = "vocab.txt"
)

// model is a loaded encoder with its tokenizer.
type model struct {
	session   *session
	tokenizer *wordPiece
	pooling   string
}

// Embedder implements ai.EmbeddingProvider on a local ONNX model.
type Embedder struct {
	config *ai.Config
	logger *slog.Logger

	mu    sync.Mutex
	model *model
}

// NewEmbedder creates a local embedder. Nothing is loaded until the first
// call to EmbedTexts.
func NewEmbedder(config *ai.Config) *Embedder {
	return &Embedder{
		config: config,
		logger: slog.Default().With("component", "local-embedder", "model", config.LocalModel),
	}
}

// Name implements ai.EmbeddingProvider.
func (e *Embedder) Name() ai.Backend {
	return ai.BackendSBERT
}

// EmbedTexts implements ai.EmbeddingProvider. All texts go through a single
// inference call. The dimension is taken from the model's output shape.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, int, error) {
	m, err := e.load()
	if err != nil {
		return nil, 0, fmt.Errorf("local: %w: %w", ai.ErrProviderUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	b := m.tokenizer.encodeBatch(texts)
	e.logger.Debug("running inference", "count", len(texts), "seq_len", b.cols)

	hidden, err := m.session.run(b)
	if err != nil {
		e.logger.Error("inference failed", "count", len(texts), "err", err)
		return nil, 0, fmt.Errorf("local: %w: %w", ai.ErrProviderUnavailable, err)
	}

	vectors := pool(m.pooling, hidden, b.attentionMask, b.rows, b.cols, m.session.dim)
	for _, v := range vectors {
		normalize(v)
	}
	return vectors, int(m.session.dim), nil
}

// load returns the cached model, loading it on first use. A failed load is
// not cached; the next call tries again.
func (e *Embedder) load() (*model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model != nil {
		return e.model, nil
	}

	dir := e.config.LocalModelDir()
	modelPath := filepath.Join(dir, modelFile)
	vocabPath := filepath.Join(dir, vocabFile)
	for _, p := range []string{modelPath, vocabPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("model file: %w", err)
		}
	}

	pooling, err := resolvePooling(e.config.LocalPooling, dir, e.config.LocalModel)
	if err != nil {
		return nil, err
	}

	if err := initRuntime(e.config.RuntimeLibraryPath()); err != nil {
		return nil, fmt.Errorf("onnx runtime: %w", err)
	}

	tok, err := newWordPiece(vocabPath)
	if err != nil {
		return nil, err
	}

	sess, err := openSession(modelPath, int64(e.config.LocalDim))
	if err != nil {
		return nil, err
	}

	e.logger.Info("loaded local model", "dir", dir, "dim", sess.dim, "pooling", pooling)
	e.model = &model{session: sess, tokenizer: tok, pooling: pooling}
	return e.model, nil
}

// Close releases the ONNX session if one was loaded.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model == nil {
		return nil
	}
	err := e.model.session.close()
	e.model = nil
	return err
}
