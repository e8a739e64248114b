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


// Package storage provides the storage abstraction layer for PocketGenie.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. Tasks and notes are stored as single records; the
// embedding vector, its fingerprint and the revision counter are ordinary
// fields of the record, so every write of an entity and its vector is atomic.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce abstraction:
//
//	tasks, notes, err := badger.NewRepositories(backend)
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Architecture
//
//   - TaskRepository: operations for tasks
//   - NoteRepository: operations for notes
//   - TaskFilter / NoteFilter: list filters with skip/limit paging
//
// # Optimistic Concurrency
//
// Every record carries a Revision. Add stores revision 1; Update requires
// the caller's revision to match the stored one and increments it, returning
// ErrConflict otherwise. Callers re-read and retry.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
