package reembed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
)

// BatchProcessor embeds batches of one entity kind and writes the vectors back.
type BatchProcessor[T core.Embeddable] struct {
	embedder ai.Embedder
	update   func(context.Context, ...T) ([]T, error)
	get      func(context.Context, string) (T, error)
	assign   func(T, []float32, uint64)
	backoff  Backoff
	logger   *slog.Logger
}

// NewBatchProcessor creates a processor.
//   - update writes entities with a revision check (storage.ErrConflict on mismatch)
//   - get reloads a single entity after a conflict
//   - assign stores a vector and its fingerprint on an entity
func NewBatchProcessor[T core.Embeddable](
	embedder ai.Embedder,
	update func(context.Context, ...T) ([]T, error),
	get func(context.Context, string) (T, error),
	assign func(T, []float32, uint64),
	backoff Backoff,
	logger *slog.Logger,
) *BatchProcessor[T] {
	if logger == nil {
		logger = slog.Default()
	}
	backoff.Logger = logger
	return &BatchProcessor[T]{
		embedder: embedder,
		update:   update,
		get:      get,
		assign:   assign,
		backoff:  backoff,
		logger:   logger,
	}
}

// Process embeds the primary text of every entity in batch and stores the
// vectors. It returns how many entities were written. Entities that changed
// since they were read are retried individually; ones deleted meanwhile are
// skipped.
func (bp *BatchProcessor[T]) Process(ctx context.Context, batch []T) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	texts := make([]string, len(batch))
	for i, e := range batch {
		texts[i] = e.PrimaryText()
	}

	vectors, err := bp.embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	for i, e := range batch {
		bp.assign(e, vectors[i], core.Fingerprint(texts[i]))
	}

	_, err = bp.update(ctx, batch...)
	if err == nil {
		return len(batch), nil
	}
	if !errors.Is(err, storage.ErrConflict) && !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("failed to update batch: %w", err)
	}

	bp.logger.Debug("batch changed while embedding, updating one at a time", "size", len(batch), "err", err)
	written := 0
	for _, e := range batch {
		ok, err := bp.processOne(ctx, e)
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	return written, nil
}

// processOne writes e's vector, reloading it once if its revision moved.
func (bp *BatchProcessor[T]) processOne(ctx context.Context, e T) (bool, error) {
	_, err := bp.update(ctx, e)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	case !errors.Is(err, storage.ErrConflict):
		return false, fmt.Errorf("failed to update %s %s: %w", e.Kind(), e.ID(), err)
	}

	current, err := bp.get(ctx, e.ID())
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	vectors, err := bp.embed(ctx, []string{current.PrimaryText()})
	if err != nil {
		return false, err
	}
	bp.assign(current, vectors[0], core.Fingerprint(current.PrimaryText()))

	_, err = bp.update(ctx, current)
	if errors.Is(err, storage.ErrConflict) || errors.Is(err, storage.ErrNotFound) {
		// Still moving; whoever is writing keeps its own embedding current.
		bp.logger.Warn("skipping entity under concurrent modification", "kind", e.Kind(), "id", e.ID())
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update %s %s: %w", e.Kind(), e.ID(), err)
	}
	return true, nil
}

func (bp *BatchProcessor[T]) embed(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := bp.backoff.Do(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.backoff.MaxAttempts, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ai.ErrEmbeddingCountMismatch, len(texts), len(vectors))
	}
	return vectors, nil
}
