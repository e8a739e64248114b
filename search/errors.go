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


package search

import (
	"errors"

	"github.com/poiesic/pocketgenie/core"
)

var (
	// ErrTaskRepositoryRequired is returned when a task repository is not provided.
	ErrTaskRepositoryRequired = errors.New("task repository required")

	// ErrNoteRepositoryRequired is returned when a note repository is not provided.
	ErrNoteRepositoryRequired = errors.New("note repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidFilter is returned for an unknown entity filter.
	ErrInvalidFilter = core.ErrInvalidFilter

	// ErrInvalidLimit is returned by ClampLimit for a limit outside 1..MaxLimit.
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")

	// ErrQueryEmbedding is returned when the query cannot be embedded.
	ErrQueryEmbedding = errors.New("failed to embed query")

	// ErrRetrievalFailed wraps entity store errors raised during a scan.
	ErrRetrievalFailed = errors.New("failed to retrieve candidates")
)
