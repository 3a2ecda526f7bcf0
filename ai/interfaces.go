package ai

import "context"

// Backend names the provider that produced a set of vectors.
type Backend string

const (
	BackendOpenAI Backend = "openai"
	BackendSBERT  Backend = "sbert"
	BackendHash   Backend = "hash"
	// BackendEmpty marks a result for input that sanitized to nothing.
	BackendEmpty Backend = "empty"
)

// EmbeddingProvider generates vector embeddings for a batch of texts.
// Implementations must be safe for concurrent use.
type EmbeddingProvider interface {
	// Name identifies the provider in results and logs.
	Name() Backend

	// EmbedTexts returns one vector per input text, in input order, and the
	// dimensionality of those vectors. Texts are expected to be sanitized
	// and non-empty. Failures wrap ErrMissingCredential,
	// ErrProviderUnavailable or ErrEmptyResponse.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, int, error)
}
