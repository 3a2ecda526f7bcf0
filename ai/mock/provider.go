package mock

import (
	"context"
	"hash/fnv"
	"slices"
	"sync"

	"github.com/poiesic/asha/ai"
)

// MockProvider is a test double for ai.EmbeddingProvider.
// It allows custom behavior injection via a function field.
type MockProvider struct {
	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, deterministic vectors of length Dim are returned.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, int, error)

	backend ai.Backend
	dim     int

	mu    sync.Mutex
	calls [][]string
}

// NewMockProvider creates a mock reporting the given backend name and dimension.
func NewMockProvider(backend ai.Backend, dim int) *MockProvider {
	return &MockProvider{backend: backend, dim: dim}
}

// WithError makes every call fail with err.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.EmbedTextsFunc = func(context.Context, []string) ([][]float32, int, error) {
		return nil, 0, err
	}
	return m
}

// WithBlock makes every call wait for ctx to end and return its error.
func (m *MockProvider) WithBlock() *MockProvider {
	m.EmbedTextsFunc = func(ctx context.Context, _ []string) ([][]float32, int, error) {
		<-ctx.Done()
		return nil, 0, ctx.Err()
	}
	return m
}

// Name implements ai.EmbeddingProvider.
func (m *MockProvider) Name() ai.Backend {
	return m.backend
}

// EmbedTexts implements ai.EmbeddingProvider.
func (m *MockProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, slices.Clone(texts))
	m.mu.Unlock()

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = Vector(text, m.dim)
	}
	return vectors, m.dim, nil
}

// CallCount returns the number of EmbedTexts calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the texts passed to each EmbedTexts call, in order.
func (m *MockProvider) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Reset clears recorded calls and the injected behavior.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.EmbedTextsFunc = nil
}

// Vector returns a deterministic vector for text seeded by its FNV hash.
func Vector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := range vector {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}
	return vector
}
