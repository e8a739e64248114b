package badger

import (
	"context"

	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
)

// TaskRepository implements storage.TaskRepository for BadgerDB.
type TaskRepository struct {
	store *recordStore[*core.Task]
}

var _ storage.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(backend *Backend) (*TaskRepository, error) {
	return &TaskRepository{
		store: &recordStore[*core.Task]{
			backend:       backend,
			prefix:        taskPrefix,
			createdPrefix: taskCreatedPrefix,
			marshal:       storage.MarshalTask,
			unmarshal:     storage.UnmarshalTask,
			meta: func(t *core.Task) recordMeta {
				return recordMeta{&t.Id, &t.Revision, &t.CreatedAt, &t.UpdatedAt, t.Vector}
			},
		},
	}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *TaskRepository) Close() error {
	return nil
}

// AddTasks adds one or more tasks to storage.
func (r *TaskRepository) AddTasks(ctx context.Context, tasks ...*core.Task) ([]*core.Task, error) {
	return r.store.add(ctx, tasks)
}

// UpdateTasks updates existing tasks.
func (r *TaskRepository) UpdateTasks(ctx context.Context, tasks ...*core.Task) ([]*core.Task, error) {
	return r.store.update(ctx, tasks)
}

// DeleteTasks removes tasks by their IDs.
func (r *TaskRepository) DeleteTasks(ctx context.Context, ids ...string) error {
	return r.store.delete(ctx, ids)
}

// GetTask retrieves a single task by ID.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (*core.Task, error) {
	return r.store.get(ctx, id)
}

// GetTasks retrieves multiple tasks by their IDs.
func (r *TaskRepository) GetTasks(ctx context.Context, ids ...string) ([]*core.Task, error) {
	return r.store.getMany(ctx, ids)
}

// ListTasks returns tasks matching filter in creation order.
func (r *TaskRepository) ListTasks(ctx context.Context, filter storage.TaskFilter) ([]*core.Task, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return r.store.list(ctx, filter.Matches, filter.Skip, filter.Limit)
}

// ForEachTask calls fn for every stored task in creation order.
func (r *TaskRepository) ForEachTask(ctx context.Context, fn func(*core.Task) error) error {
	return r.store.forEach(ctx, fn)
}

// CountTasks returns the number of stored tasks.
func (r *TaskRepository) CountTasks(ctx context.Context) (int, error) {
	return r.store.count(ctx)
}
