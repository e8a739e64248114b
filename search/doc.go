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


// Package search ranks tasks and notes by semantic similarity to a query.
//
// The Searcher embeds the query once, scores every stored entity that has an
// embedding with clamped cosine similarity and returns the hits above a
// threshold, best first. There is no index: every candidate is scanned.
//
// Ordering is deterministic. Equal scores place tasks before notes, then
// sort by entity ID.
package search
