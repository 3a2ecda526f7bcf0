package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/asha/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingDatum struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// fakeServer records requests and answers them through respond.
type fakeServer struct {
	mu       sync.Mutex
	requests []embeddingRequest
	auth     []string
	respond  func(w http.ResponseWriter, req embeddingRequest)
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req embeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.mu.Unlock()

	f.respond(w, req)
}

func (f *fakeServer) inputSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int, len(f.requests))
	for i, req := range f.requests {
		sizes[i] = len(req.Input)
	}
	return sizes
}

func writeVectors(w http.ResponseWriter, n int, vec []float32) {
	data := make([]embeddingDatum, n)
	for i := range data {
		data[i] = embeddingDatum{Embedding: vec, Index: i}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
}

func echoVectors(w http.ResponseWriter, req embeddingRequest) {
	writeVectors(w, len(req.Input), []float32{0.1, 0.2, 0.3})
}

func newTestEmbedder(t *testing.T, url, key string) *Embedder {
	t.Helper()
	cfg := ai.NewConfig(
		ai.WithAPIKey(key),
		ai.WithRemoteHost(url),
		ai.WithRequestTimeout(5*time.Second),
	)
	e, err := NewEmbedder(cfg)
	require.NoError(t, err)
	return e
}

func TestEmbedder_Name(t *testing.T) {
	e, err := NewEmbedder(ai.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, ai.BackendOpenAI, e.Name())
}

func TestNewEmbedder_InvalidConfig(t *testing.T) {
	cfg := ai.DefaultConfig()
	cfg.RemoteModel = ""
	_, err := NewEmbedder(cfg)
	assert.Error(t, err)
}

func TestEmbedTexts_MissingCredential(t *testing.T) {
	fake := &fakeServer{respond: echoVectors}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, "")
	_, _, err := e.EmbedTexts(context.Background(), []string{"hello"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrMissingCredential)
	assert.Empty(t, fake.inputSizes(), "no request may be sent without a credential")
}

func TestEmbedTexts_PreflightAndBatches(t *testing.T) {
	fake := &fakeServer{respond: echoVectors}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, "sk-test")

	texts := make([]string, 130)
	for i := range texts {
		texts[i] = "text"
	}

	vectors, dim, err := e.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, ai.RemoteDimension, dim)
	assert.Len(t, vectors, 130)

	assert.Equal(t, []int{1, 64, 64, 2}, fake.inputSizes())
	assert.Equal(t, []string{"ping"}, fake.requests[0].Input)
	assert.Equal(t, "text-embedding-3-small", fake.requests[1].Model)
	for _, h := range fake.auth {
		assert.Equal(t, "Bearer sk-test", h)
	}
}

func TestEmbedTexts_KeepsNewlines(t *testing.T) {
	fake := &fakeServer{respond: echoVectors}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, "sk-test")
	_, _, err := e.EmbedTexts(context.Background(), []string{"line one\nline two"})
	require.NoError(t, err)

	require.Len(t, fake.requests, 2)
	assert.Equal(t, []string{"line one\nline two"}, fake.requests[1].Input)
}

func TestEmbedTexts_ServerError(t *testing.T) {
	fake := &fakeServer{respond: func(w http.ResponseWriter, _ embeddingRequest) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, "sk-test")
	_, _, err := e.EmbedTexts(context.Background(), []string{"hello"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
	assert.Equal(t, []int{1}, fake.inputSizes(), "batch must not be sent after failed preflight")
}

func TestEmbedTexts_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	e := newTestEmbedder(t, url, "sk-test")
	_, _, err := e.EmbedTexts(context.Background(), []string{"hello"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
}

func TestEmbedTexts_EmptyVectors(t *testing.T) {
	fake := &fakeServer{respond: func(w http.ResponseWriter, req embeddingRequest) {
		if len(req.Input) == 1 && req.Input[0] == "ping" {
			echoVectors(w, req)
			return
		}
		writeVectors(w, len(req.Input), []float32{})
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, "sk-test")
	_, _, err := e.EmbedTexts(context.Background(), []string{"a", "b"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestEmbedTexts_ShortResponse(t *testing.T) {
	fake := &fakeServer{respond: func(w http.ResponseWriter, _ embeddingRequest) {
		writeVectors(w, 1, []float32{0.5})
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, "sk-test")
	_, _, err := e.EmbedTexts(context.Background(), []string{"a", "b", "c"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestEmbedTexts_ContextCanceled(t *testing.T) {
	fake := &fakeServer{respond: echoVectors}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL, "sk-test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.EmbedTexts(ctx, []string{"hello"})
	require.Error(t, err)
	assert.True(t, ai.IsProviderError(err))
}
