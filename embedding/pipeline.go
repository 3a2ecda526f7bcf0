package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/asha/ai"
	"github.com/poiesic/asha/ai/hash"
	"github.com/poiesic/asha/ai/local"
	"github.com/poiesic/asha/ai/openai"
	"github.com/poiesic/asha/sanitize"
)

// Result is the output of one embedding call.
type Result struct {
	// Vectors holds one vector per sanitized, non-empty input text, in order.
	Vectors [][]float32

	// Dimension is the length of every vector, or 0 for empty input.
	Dimension int

	// Backend names the provider that produced Vectors.
	Backend ai.Backend
}

// Pipeline tries embedding providers in order until one succeeds.
// It is safe for concurrent use.
type Pipeline struct {
	providers []ai.EmbeddingProvider
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeout bounds each provider attempt. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "embedding-pipeline")
	}
}

// NewPipeline creates a pipeline over providers, tried in the given order.
func NewPipeline(providers []ai.EmbeddingProvider, opts ...Option) *Pipeline {
	p := &Pipeline{
		providers: providers,
		logger:    slog.Default().With("component", "embedding-pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDefaultPipeline builds the remote, local and hash cascade from config.
// The config's RequestTimeout becomes the per-provider timeout.
func NewDefaultPipeline(config *ai.Config, opts ...Option) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	remote, err := openai.NewEmbedder(config)
	if err != nil {
		return nil, err
	}

	providers := []ai.EmbeddingProvider{
		remote,
		local.NewEmbedder(config),
		hash.NewEmbedder(config.HashDim),
	}
	opts = append([]Option{WithTimeout(config.RequestTimeout)}, opts...)
	return NewPipeline(providers, opts...), nil
}

// Backends returns the provider names in cascade order.
func (p *Pipeline) Backends() []ai.Backend {
	names := make([]ai.Backend, len(p.providers))
	for i, provider := range p.providers {
		names[i] = provider.Name()
	}
	return names
}

// Embed sanitizes texts and embeds the non-empty ones. Input that sanitizes
// to nothing yields an empty result with backend "empty" and no provider is
// called.
func (p *Pipeline) Embed(ctx context.Context, texts []string) (*Result, error) {
	return p.embed(ctx, sanitize.Strings(texts))
}

// EmbedValues is Embed for loosely typed input. Strings and byte slices are
// embedded; values of any other type are discarded.
func (p *Pipeline) EmbedValues(ctx context.Context, items ...any) (*Result, error) {
	return p.embed(ctx, sanitize.Texts(items...))
}

func (p *Pipeline) embed(ctx context.Context, texts []string) (*Result, error) {
	if len(texts) == 0 {
		p.logger.Debug("nothing to embed after sanitizing")
		return &Result{Backend: ai.BackendEmpty}, nil
	}
	if len(p.providers) == 0 {
		return nil, ErrNoProviders
	}

	var failures []error
	for _, provider := range p.providers {
		vectors, dim, err := p.attempt(ctx, provider, texts)
		if err == nil {
			p.logger.Debug("embedded texts", "backend", provider.Name(), "count", len(vectors), "dim", dim)
			return &Result{Vectors: vectors, Dimension: dim, Backend: provider.Name()}, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !fallsThrough(err) {
			p.logger.Error("embedding provider failed", "backend", provider.Name(), "err", err)
			return nil, fmt.Errorf("embedding: %s: %w", provider.Name(), err)
		}

		p.logger.Warn("embedding provider unavailable, trying next", "backend", provider.Name(), "err", err)
		failures = append(failures, fmt.Errorf("%s: %w", provider.Name(), err))
	}

	return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, errors.Join(failures...))
}

// attempt runs one provider under the per-provider timeout and checks that
// it returned one non-empty vector per text.
func (p *Pipeline) attempt(ctx context.Context, provider ai.EmbeddingProvider, texts []string) ([][]float32, int, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	vectors, dim, err := provider.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, 0, err
	}
	if len(vectors) != len(texts) {
		return nil, 0, fmt.Errorf("got %d vectors for %d texts: %w", len(vectors), len(texts), ai.ErrEmptyResponse)
	}
	if dim <= 0 {
		return nil, 0, fmt.Errorf("reported dimension %d: %w", dim, ai.ErrEmptyResponse)
	}
	return vectors, dim, nil
}

// fallsThrough reports whether err lets the cascade continue.
func fallsThrough(err error) bool {
	return ai.IsProviderError(err) || errors.Is(err, context.DeadlineExceeded)
}

// Close closes every provider that holds resources.
func (p *Pipeline) Close() error {
	var errs []error
	for _, provider := range p.providers {
		if c, ok := provider.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
