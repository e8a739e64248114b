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

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the longest title accepted, in characters.
const MaxTitleLength = 255

// ValidateTask validates a Task according to domain rules.
//
// Validation rules:
//   - Title must not be blank and at most MaxTitleLength characters
//   - Priority must be between PriorityLow and PriorityUrgent
//
// NOT validated (populated by services):
//   - Vector, EmbeddingSum
//   - Id, Revision, timestamps
func ValidateTask(task *Task) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", ErrInvalidTask)
	}

	if err := ValidateTitle(task.Title); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	if err := ValidatePriority(task.Priority); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	return nil
}

// ValidateNote validates a Note according to domain rules.
//
// Validation rules:
//   - Title must not be blank and at most MaxTitleLength characters
//   - Content must not be blank
func ValidateNote(note *Note) error {
	if note == nil {
		return fmt.Errorf("%w: note is nil", ErrInvalidNote)
	}

	if err := ValidateTitle(note.Title); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNote, err)
	}

	if strings.TrimSpace(note.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNote, ErrEmptyContent)
	}

	return nil
}

// ValidateTitle checks a task or note title.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("%w: %d characters, max %d", ErrTitleTooLong, n, MaxTitleLength)
	}
	return nil
}

// ValidatePriority validates that a Priority has a valid value.
func ValidatePriority(p Priority) error {
	if p < PriorityLow || p > PriorityUrgent {
		return fmt.Errorf("%w: value %d", ErrInvalidPriority, p)
	}
	return nil
}
