// Package ingestion forwards patient documents to an external vector index.
//
// OCR text arrives as a Document made of chunks. The Pipeline sanitizes and
// embeds the chunks through the embedding cascade, then upserts one
// VectorRecord per non-empty chunk under the patient's namespace
// ("patient:<id>"). Nothing is persisted locally.
//
// Documents are processed concurrently on a worker pool. Index upserts are
// retried with exponential backoff.
package ingestion
