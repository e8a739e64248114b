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


package ai

import "errors"

var (
	// ErrEmbedderUnavailable indicates the embedding model could not be reached
	// at startup. It is a configuration failure, not a per-call condition.
	ErrEmbedderUnavailable = errors.New("embedding model unavailable")

	// ErrInvalidEmbedding indicates the model returned a malformed vector.
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrEmbeddingCountMismatch indicates a batch call returned the wrong number of vectors.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrCompleterUnavailable indicates no completion backend is configured.
	ErrCompleterUnavailable = errors.New("completion service unavailable")

	// ErrEmptyCompletion indicates the completion backend returned no text.
	ErrEmptyCompletion = errors.New("empty completion")
)
