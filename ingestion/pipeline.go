package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/asha/ai"
	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/embedding"
	"github.com/poiesic/asha/sanitize"
)

// Metadata keys attached to every VectorRecord.
const (
	MetaPatientID = "patient_id"
	MetaSource    = "source"
	MetaChunk     = "chunk"
	MetaText      = "text"
	MetaBackend   = "backend"
)

// Document is OCR output for one patient upload.
type Document struct {
	PatientID string
	Source    string   // file name or upload id
	Chunks    []string // text chunks in reading order
}

// VectorRecord is one embedded chunk handed to the vector index.
type VectorRecord struct {
	ID        string
	Namespace string
	Vector    []float32
	Metadata  map[string]any
}

// VectorIndex is the external upsert service.
type VectorIndex interface {
	Upsert(ctx context.Context, namespace string, records []VectorRecord) error
}

// Embedder produces vectors for chunk text. *embedding.Pipeline satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) (*embedding.Result, error)
}

// Report summarizes the ingestion of one document.
type Report struct {
	PatientID string
	Source    string
	Namespace string
	Records   int
	Dimension int
	Backend   ai.Backend
}

// Pipeline embeds documents and forwards the vectors to a VectorIndex.
type Pipeline struct {
	embedder    Embedder
	index       VectorIndex
	pool        *ants.Pool
	maxAttempts int
	baseDelay   time.Duration
	monitor     Monitor
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent document processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		size = max(size, 1)

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithRetry sets how many times an index upsert is attempted and the delay
// before the first retry. Default is 3 attempts starting at 200ms.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithMonitor sets an observer for Ingest calls.
func WithMonitor(monitor Monitor) Option {
	return func(p *Pipeline) error {
		if monitor == nil {
			monitor = noopMonitor{}
		}
		p.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(embedder Embedder, index VectorIndex, opts ...Option) (*Pipeline, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		embedder:    embedder,
		index:       index,
		pool:        pool,
		maxAttempts: 3,
		baseDelay:   200 * time.Millisecond,
		monitor:     noopMonitor{},
		logger:      slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest processes documents concurrently and waits for all of them.
// Reports are returned in document order; a failed document leaves a zero
// Report and contributes to the joined error.
func (p *Pipeline) Ingest(ctx context.Context, docs ...Document) ([]Report, error) {
	for i, doc := range docs {
		if strings.TrimSpace(doc.PatientID) == "" {
			return nil, fmt.Errorf("document %d: %w", i, ErrPatientRequired)
		}
	}

	p.monitor.Start(len(docs))
	defer p.monitor.Finish()

	reports := make([]Report, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			report, err := p.ingestOne(ctx, doc)
			if err != nil {
				p.logger.Error("error ingesting document", "patient", doc.PatientID, "source", doc.Source, "err", err)
				errs[i] = fmt.Errorf("document %q: %w", doc.Source, err)
				p.monitor.DocumentFailed(doc, err)
				return
			}
			reports[i] = report
			p.monitor.DocumentDone(report)
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("document %q: %w", doc.Source, err)
			p.monitor.DocumentFailed(doc, err)
		}
	}
	wg.Wait()

	return reports, errors.Join(errs...)
}

func (p *Pipeline) ingestOne(ctx context.Context, doc Document) (Report, error) {
	namespace := core.PatientNamespace(doc.PatientID)
	report := Report{
		PatientID: doc.PatientID,
		Source:    doc.Source,
		Namespace: namespace,
		Backend:   ai.BackendEmpty,
	}

	texts := make([]string, 0, len(doc.Chunks))
	positions := make([]int, 0, len(doc.Chunks))
	for i, chunk := range doc.Chunks {
		if clean := sanitize.Text(chunk); clean != "" {
			texts = append(texts, clean)
			positions = append(positions, i)
		}
	}
	if len(texts) == 0 {
		p.logger.Debug("document has no text", "patient", doc.PatientID, "source", doc.Source)
		return report, nil
	}

	result, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return Report{}, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(result.Vectors) != len(texts) {
		return Report{}, fmt.Errorf("%w: %d chunks, %d vectors", ErrVectorCountMismatch, len(texts), len(result.Vectors))
	}

	records := make([]VectorRecord, len(texts))
	for i, text := range texts {
		records[i] = VectorRecord{
			ID:        uuid.NewString(),
			Namespace: namespace,
			Vector:    result.Vectors[i],
			Metadata: map[string]any{
				MetaPatientID: doc.PatientID,
				MetaSource:    doc.Source,
				MetaChunk:     positions[i],
				MetaText:      text,
				MetaBackend:   string(result.Backend),
			},
		}
	}

	err = RetryWithBackoff(ctx, func() error {
		return p.index.Upsert(ctx, namespace, records)
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return Report{}, fmt.Errorf("upserting %d records: %w", len(records), err)
	}

	p.logger.Debug("ingested document", "patient", doc.PatientID, "source", doc.Source,
		"records", len(records), "backend", result.Backend)

	report.Records = len(records)
	report.Dimension = result.Dimension
	report.Backend = result.Backend
	return report, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
