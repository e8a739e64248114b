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


// Package ai provides abstractions for the model-backed services used by PocketGenie.
//
// Two services are defined:
//
//   - Embedder: turns text into fixed-length vectors for semantic search
//   - Completer: an opaque text-completion backend used for summaries and
//     prioritization reasoning
//
// The two have deliberately different failure semantics. The embedder is
// part of the core: if its model is unavailable the process must not serve
// traffic, so openai.NewProvider probes it and fails with
// ErrEmbedderUnavailable. The completer is advisory: every call goes through
// Complete, which turns failures, timeouts and empty responses into an
// Outcome that callers resolve against a deterministic local fallback.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible HTTP backends (langchaingo for embeddings,
//     go-openai for completions)
//   - ai/mock: deterministic test doubles
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(ctx, config)
//	if err != nil {
//	    log.Fatal(err) // model unavailable: refuse to start
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "Book dentist appointment")
//
//	out := ai.Complete(ctx, provider.Completer(), ai.CompletionRequest{Prompt: prompt})
//	text := out.Resolve(func() string { return localSummary(content) })
package ai
