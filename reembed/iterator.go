package reembed

import (
	"context"
	"slices"

	"github.com/poiesic/pocketgenie/core"
)

const (
	// DefaultBatchSize is the default number of entities embedded per call.
	DefaultBatchSize = 100
)

// BatchIterator walks every entity of one kind and hands them out in batches.
type BatchIterator[T core.Embeddable] struct {
	forEach   func(context.Context, func(T) error) error
	keep      func(T) bool
	batchSize int
}

// NewBatchIterator creates an iterator over the entities forEach visits.
// keep, when non-nil, filters the entities; batchSize <= 0 selects
// DefaultBatchSize.
func NewBatchIterator[T core.Embeddable](forEach func(context.Context, func(T) error) error, keep func(T) bool, batchSize int) *BatchIterator[T] {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchIterator[T]{
		forEach:   forEach,
		keep:      keep,
		batchSize: batchSize,
	}
}

// Collect returns the selected entities cut into batches.
// The scan runs in a single read transaction; batches are processed after it
// closes so writers never wait on it.
func (it *BatchIterator[T]) Collect(ctx context.Context) ([][]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var selected []T
	err := it.forEach(ctx, func(e T) error {
		if it.keep == nil || it.keep(e) {
			selected = append(selected, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return slices.Collect(slices.Chunk(selected, it.batchSize)), nil
}
