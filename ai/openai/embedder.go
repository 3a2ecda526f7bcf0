package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/asha/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// preflightText is embedded before every batch to verify the endpoint answers.
const preflightText = "ping"

// Embedder implements ai.EmbeddingProvider using an OpenAI-compatible embeddings API.
type Embedder struct {
	config     *ai.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewEmbedder creates a remote embedder using the provided configuration.
// A missing API key is not an error here; EmbedTexts reports it.
func NewEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Embedder{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		logger:     slog.Default().With("component", "openai-embedder"),
	}, nil
}

// Name implements ai.EmbeddingProvider.
func (e *Embedder) Name() ai.Backend {
	return ai.BackendOpenAI
}

// EmbedTexts implements ai.EmbeddingProvider. The reported dimension is
// always ai.RemoteDimension.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, int, error) {
	if e.config.APIKey == "" {
		return nil, 0, fmt.Errorf("openai: API key not configured: %w", ai.ErrMissingCredential)
	}

	embedder, err := e.newLangchainEmbedder()
	if err != nil {
		return nil, 0, fmt.Errorf("openai: failed to create client: %w: %w", ai.ErrProviderUnavailable, err)
	}

	e.logger.Debug("sending preflight request", "model", e.config.RemoteModel)
	if _, err := embedder.EmbedQuery(ctx, preflightText); err != nil {
		e.logger.Warn("preflight request failed", "err", err)
		return nil, 0, classify("preflight", err)
	}

	e.logger.Debug("generating embeddings for texts", "count", len(texts), "batch_size", e.config.BatchSize)
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, 0, classify("embed", err)
	}

	if len(vectors) != len(texts) {
		return nil, 0, fmt.Errorf("openai: got %d vectors for %d texts: %w", len(vectors), len(texts), ai.ErrEmptyResponse)
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, 0, fmt.Errorf("openai: empty vector at index %d: %w", i, ai.ErrEmptyResponse)
		}
	}

	return vectors, ai.RemoteDimension, nil
}

// newLangchainEmbedder builds a client per call so a credential supplied
// after construction is picked up and no connection state is shared.
func (e *Embedder) newLangchainEmbedder() (embeddings.Embedder, error) {
	opts := []openai.Option{
		openai.WithToken(e.config.APIKey),
		openai.WithEmbeddingModel(e.config.RemoteModel),
		openai.WithHTTPClient(e.httpClient),
	}
	if e.config.RemoteHost != "" {
		opts = append(opts, openai.WithBaseURL(e.config.RemoteHost))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(e.config.BatchSize),
		embeddings.WithStripNewLines(false),
	)
}

// classify maps a langchaingo failure onto the provider error taxonomy.
func classify(stage string, err error) error {
	if errors.Is(err, openai.ErrEmptyResponse) || errors.Is(err, openai.ErrUnexpectedResponseLength) {
		return fmt.Errorf("openai: %s: %w: %w", stage, ai.ErrEmptyResponse, err)
	}
	return fmt.Errorf("openai: %s: %w: %w", stage, ai.ErrProviderUnavailable, err)
}
