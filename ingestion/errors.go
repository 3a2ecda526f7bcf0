package ingestion

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrVectorIndexRequired is returned when a vector index is not provided.
	ErrVectorIndexRequired = errors.New("vector index required")

	// ErrPatientRequired is returned when a document has no patient id.
	ErrPatientRequired = errors.New("document patient id required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrVectorCountMismatch is returned when the embedder yields a different
	// number of vectors than there are non-empty chunks.
	ErrVectorCountMismatch = errors.New("embedding vector count mismatch")
)
