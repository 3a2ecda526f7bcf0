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


// Package openai provides the remote embedding provider for OpenAI-compatible APIs.
//
// The provider talks to the embeddings endpoint through langchaingo. Every
// call checks the credential first, sends a one-text preflight request, and
// then embeds the batch in chunks of Config.BatchSize texts. Failures are
// reported with the ai error taxonomy so the embedding cascade can fall
// through to the next provider.
//
// # Usage
//
//	cfg := ai.NewConfig(ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vectors, dim, err := embedder.EmbedTexts(ctx, []string{"sample text"})
package openai
