// Package mock provides test doubles for ai.EmbeddingProvider.
//
// MockProvider returns deterministic vectors by default. Tests inject
// failures or custom output through EmbedTextsFunc and inspect CallCount
// and Calls afterwards.
//
//	failing := mock.NewMockProvider(ai.BackendOpenAI, 1536).
//	    WithError(ai.ErrMissingCredential)
//	pipeline := embedding.NewPipeline([]ai.EmbeddingProvider{failing, mock.NewMockProvider(ai.BackendHash, 8)})
package mock
