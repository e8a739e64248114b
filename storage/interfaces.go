package storage

import (
	"context"

	"github.com/poiesic/pocketgenie/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository.
	Close() error
}

// TaskFilter narrows ListTasks. Zero values mean "no restriction".
type TaskFilter struct {
	Completed *bool
	Category  string
	Skip      int
	Limit     int
}

// NoteFilter narrows ListNotes. Zero values mean "no restriction".
type NoteFilter struct {
	Category string
	Skip     int
	Limit    int
}

// TaskRepository provides operations for managing tasks.
type TaskRepository interface {
	Repository

	// AddTasks stores new tasks.
	// Tasks with an empty Id get a fresh one. CreatedAt, UpdatedAt and
	// Revision are set by the repository.
	// Returns ErrDuplicateKey if a task with the same Id exists.
	AddTasks(ctx context.Context, tasks ...*core.Task) ([]*core.Task, error)

	// UpdateTasks replaces existing tasks.
	// Each task's Revision must equal the stored revision; on success it is
	// incremented and UpdatedAt refreshed.
	// Returns ErrNotFound if any task doesn't exist and ErrConflict on a
	// revision mismatch. Nothing is written unless every task succeeds.
	UpdateTasks(ctx context.Context, tasks ...*core.Task) ([]*core.Task, error)

	// DeleteTasks removes tasks and their embeddings.
	// Returns ErrNotFound if any task doesn't exist.
	DeleteTasks(ctx context.Context, ids ...string) error

	// GetTask retrieves a single task by ID.
	// Returns ErrNotFound if the task doesn't exist.
	GetTask(ctx context.Context, id string) (*core.Task, error)

	// GetTasks retrieves multiple tasks by their IDs.
	// Returns only the tasks that exist (no error for missing tasks).
	GetTasks(ctx context.Context, ids ...string) ([]*core.Task, error)

	// ListTasks returns tasks matching filter in creation order.
	ListTasks(ctx context.Context, filter TaskFilter) ([]*core.Task, error)

	// ForEachTask calls fn for every stored task in creation order.
	// Iteration stops at the first error fn returns.
	ForEachTask(ctx context.Context, fn func(*core.Task) error) error

	// CountTasks returns the number of stored tasks.
	CountTasks(ctx context.Context) (int, error)
}

// NoteRepository provides operations for managing notes.
type NoteRepository interface {
	Repository

	// AddNotes stores new notes. See TaskRepository.AddTasks.
	AddNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error)

	// UpdateNotes replaces existing notes. See TaskRepository.UpdateTasks.
	UpdateNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error)

	// DeleteNotes removes notes and their embeddings.
	// Returns ErrNotFound if any note doesn't exist.
	DeleteNotes(ctx context.Context, ids ...string) error

	// GetNote retrieves a single note by ID.
	// Returns ErrNotFound if the note doesn't exist.
	GetNote(ctx context.Context, id string) (*core.Note, error)

	// GetNotes retrieves multiple notes by their IDs.
	// Returns only the notes that exist (no error for missing notes).
	GetNotes(ctx context.Context, ids ...string) ([]*core.Note, error)

	// ListNotes returns notes matching filter in creation order.
	ListNotes(ctx context.Context, filter NoteFilter) ([]*core.Note, error)

	// ForEachNote calls fn for every stored note in creation order.
	ForEachNote(ctx context.Context, fn func(*core.Note) error) error

	// CountNotes returns the number of stored notes.
	CountNotes(ctx context.Context) (int, error)
}

// Matches reports whether t passes the filter's field predicates.
// Paging is applied by the caller.
func (f TaskFilter) Matches(t *core.Task) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

// Matches reports whether n passes the filter's field predicates.
func (f NoteFilter) Matches(n *core.Note) bool {
	return f.Category == "" || n.Category == f.Category
}

// Validate rejects negative paging values.
func (f TaskFilter) Validate() error {
	return validatePaging(f.Skip, f.Limit)
}

// Validate rejects negative paging values.
func (f NoteFilter) Validate() error {
	return validatePaging(f.Skip, f.Limit)
}

func validatePaging(skip, limit int) error {
	if skip < 0 || limit < 0 {
		return ErrInvalidQuery
	}
	return nil
}
