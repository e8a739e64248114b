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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidTask indicates a Task failed validation.
	ErrInvalidTask = errors.New("invalid task")

	// ErrInvalidNote indicates a Note failed validation.
	ErrInvalidNote = errors.New("invalid note")

	// ErrEmptyTitle indicates the Title field is blank.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong indicates the Title field exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("title too long")

	// ErrEmptyContent indicates the note Content field is blank.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidPriority indicates a Priority outside low..urgent.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidFilter indicates an unknown entity filter.
	ErrInvalidFilter = errors.New("entity type must be one of task, note, all")
)
