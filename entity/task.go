package entity

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
)

// TaskInput holds the fields of a new task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    core.Priority
	Category    string
	Tags        []string
}

// TaskPatch lists the fields an update changes. Nil fields are left alone;
// a non-nil empty Tags slice clears the tags.
type TaskPatch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *core.Priority
	Category     *string
	Tags         []string
	Completed    *bool
}

func (p TaskPatch) apply(t *core.Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Tags != nil {
		t.Tags = slices.Clone(p.Tags)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// TaskService creates and modifies tasks, keeping their embeddings current.
type TaskService struct {
	repo        storage.TaskRepository
	embedder    ai.Embedder
	maxAttempts int
	logger      *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(repo storage.TaskRepository, embedder ai.Embedder, opts ...Option) (*TaskService, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	cfg, err := newServiceConfig(opts)
	if err != nil {
		return nil, err
	}
	return &TaskService{
		repo:        repo,
		embedder:    embedder,
		maxAttempts: cfg.maxAttempts,
		logger:      cfg.logger.With("component", "task-service"),
	}, nil
}

// Create validates in, embeds its title and stores the task.
func (s *TaskService) Create(ctx context.Context, in TaskInput) (*core.Task, error) {
	task := &core.Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Category:    in.Category,
		Tags:        slices.Clone(in.Tags),
	}
	if in.DueDate != nil {
		due := core.StoredTime(*in.DueDate)
		task.DueDate = &due
	}
	if err := core.ValidateTask(task); err != nil {
		return nil, err
	}

	vec, sum, err := embedTitle(ctx, s.embedder, task.Title)
	if err != nil {
		return nil, err
	}
	task.Vector = vec
	task.EmbeddingSum = sum

	added, err := s.repo.AddTasks(ctx, task)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("task created", "id", added[0].Id, "dimensions", len(vec))
	return added[0], nil
}

// Get returns the task with id, or storage.ErrNotFound.
func (s *TaskService) Get(ctx context.Context, id string) (*core.Task, error) {
	return s.repo.GetTask(ctx, id)
}

// List returns tasks matching filter in creation order.
func (s *TaskService) List(ctx context.Context, filter storage.TaskFilter) ([]*core.Task, error) {
	return s.repo.ListTasks(ctx, filter)
}

// Update applies patch to the task with id. The embedding is regenerated
// when the title changes (or the stored vector is stale) and written in the
// same transaction as the new fields.
func (s *TaskService) Update(ctx context.Context, id string, patch TaskPatch) (*core.Task, error) {
	var (
		result    *core.Task
		lastTitle string
		lastVec   []float32
		lastSum   uint64
		embedded  bool
	)

	err := retryOnConflict(ctx, s.logger, s.maxAttempts, func() error {
		current, err := s.repo.GetTask(ctx, id)
		if err != nil {
			return err
		}
		next := current.Clone()
		patch.apply(next)
		if next.DueDate != nil {
			due := core.StoredTime(*next.DueDate)
			next.DueDate = &due
		}
		if err := core.ValidateTask(next); err != nil {
			return err
		}

		if next.Title != current.Title || !core.IsEmbeddingCurrent(next, next.EmbeddingSum) {
			// Reuse the vector from a previous attempt when the title is unchanged.
			if !embedded || lastTitle != next.Title {
				lastVec, lastSum, err = embedTitle(ctx, s.embedder, next.Title)
				if err != nil {
					return err
				}
				lastTitle, embedded = next.Title, true
			}
			next.Vector = slices.Clone(lastVec)
			next.EmbeddingSum = lastSum
		}

		updated, err := s.repo.UpdateTasks(ctx, next)
		if err != nil {
			return err
		}
		result = updated[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Complete marks the task with id as done.
func (s *TaskService) Complete(ctx context.Context, id string) (*core.Task, error) {
	done := true
	return s.Update(ctx, id, TaskPatch{Completed: &done})
}

// Delete removes the task with id and its embedding.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteTasks(ctx, id)
}
