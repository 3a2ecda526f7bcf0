// Package hash provides a deterministic embedding provider that needs no
// model, network or credentials. Vectors carry no semantics; they exist so
// the embedding cascade always produces output.
package hash

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"log/slog"

	"github.com/poiesic/asha/ai"
)

const scale = 1_000_000

// Embedder derives vectors from a SHA-256 digest of each text.
type Embedder struct {
	dim    int
	logger *slog.Logger
}

// NewEmbedder creates a hash embedder producing vectors of length dim.
// A non-positive dim falls back to ai.HashDimension.
func NewEmbedder(dim int) *Embedder {
	if dim <= 0 {
		dim = ai.HashDimension
	}
	return &Embedder{
		dim:    dim,
		logger: slog.Default().With("component", "hash-embedder"),
	}
}

// Name implements ai.EmbeddingProvider.
func (e *Embedder) Name() ai.Backend {
	return ai.BackendHash
}

// Dimension returns the length of every vector this embedder produces.
func (e *Embedder) Dimension() int {
	return e.dim
}

// EmbedTexts implements ai.EmbeddingProvider. It never fails.
func (e *Embedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, int, error) {
	e.logger.Debug("generating hash embeddings", "count", len(texts), "dim", e.dim)

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = Vector(text, e.dim)
	}
	return vectors, e.dim, nil
}

// Vector returns the hash embedding of text with dim components, each in [0, 1).
//
// The 32-byte SHA-256 digest is repeated until it covers 4*dim bytes; every
// little-endian uint32 in that stream becomes (v mod 1e6) / 1e6. Vectors
// already written to the index depend on this exact rule. A non-positive dim
// falls back to ai.HashDimension.
func Vector(text string, dim int) []float32 {
	if dim <= 0 {
		dim = ai.HashDimension
	}
	digest := sha256.Sum256([]byte(text))

	raw := make([]byte, 4*dim)
	for off := 0; off < len(raw); {
		off += copy(raw[off:], digest[:])
	}

	vec := make([]float32, dim)
	for i := range vec {
		v := binary.LittleEndian.Uint32(raw[4*i:])
		vec[i] = float32(v%scale) / scale
	}
	return vec
}
