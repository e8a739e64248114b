package badger

import (
	"context"

	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
)

// NoteRepository implements storage.NoteRepository for BadgerDB.
type NoteRepository struct {
	store *recordStore[*core.Note]
}

var _ storage.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(backend *Backend) (*NoteRepository, error) {
	return &NoteRepository{
		store: &recordStore[*core.Note]{
			backend:       backend,
			prefix:        notePrefix,
			createdPrefix: noteCreatedPrefix,
			marshal:       storage.MarshalNote,
			unmarshal:     storage.UnmarshalNote,
			meta: func(n *core.Note) recordMeta {
				return recordMeta{&n.Id, &n.Revision, &n.CreatedAt, &n.UpdatedAt, n.Vector}
			},
		},
	}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *NoteRepository) Close() error {
	return nil
}

// AddNotes adds one or more notes to storage.
func (r *NoteRepository) AddNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error) {
	return r.store.add(ctx, notes)
}

// UpdateNotes updates existing notes.
func (r *NoteRepository) UpdateNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error) {
	return r.store.update(ctx, notes)
}

// DeleteNotes removes notes by their IDs.
func (r *NoteRepository) DeleteNotes(ctx context.Context, ids ...string) error {
	return r.store.delete(ctx, ids)
}

// GetNote retrieves a single note by ID.
func (r *NoteRepository) GetNote(ctx context.Context, id string) (*core.Note, error) {
	return r.store.get(ctx, id)
}

// GetNotes retrieves multiple notes by their IDs.
func (r *NoteRepository) GetNotes(ctx context.Context, ids ...string) ([]*core.Note, error) {
	return r.store.getMany(ctx, ids)
}

// ListNotes returns notes matching filter in creation order.
func (r *NoteRepository) ListNotes(ctx context.Context, filter storage.NoteFilter) ([]*core.Note, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return r.store.list(ctx, filter.Matches, filter.Skip, filter.Limit)
}

// ForEachNote calls fn for every stored note in creation order.
func (r *NoteRepository) ForEachNote(ctx context.Context, fn func(*core.Note) error) error {
	return r.store.forEach(ctx, fn)
}

// CountNotes returns the number of stored notes.
func (r *NoteRepository) CountNotes(ctx context.Context) (int, error) {
	return r.store.count(ctx)
}
