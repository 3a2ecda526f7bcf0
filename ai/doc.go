// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.



// Package ai provides the embedding providers used by Asha.
//
// Every provider implements EmbeddingProvider and reports failure through one
// of three sentinel errors, so callers can decide to fall back to another
// provider without inspecting transport details:
//
//   - ErrMissingCredential: a precondition is not met (no API key)
//   - ErrProviderUnavailable: network, runtime, or model loading failure
//   - ErrEmptyResponse: the provider answered without usable vectors
//
// # Implementation Packages
//
//   - ai/openai: remote OpenAI-compatible API via langchaingo
//   - ai/local: local ONNX sentence-embedding model
//   - ai/hash: deterministic digest-based vectors that cannot fail
//   - ai/mock: test doubles
//
// Providers are constructed from a Config and injected into an
// embedding.Pipeline in priority order. Constructors return CONCRETE types;
// the pipeline only depends on the interface.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	remote := openai.NewEmbedder(cfg)
//	vectors, dim, err := remote.EmbedTexts(ctx, []string{"day 5 blastocyst"})
//	if errors.Is(err, ai.ErrMissingCredential) {
//	    // try the next provider
//	}
package ai
