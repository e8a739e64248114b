package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/entity"
	"github.com/poiesic/pocketgenie/vector"
)

// embeddingProcessor embeds the primary text of each entity in a batch.
type embeddingProcessor[T core.Embeddable] struct {
	embedder ai.Embedder
	assign   func(item T, vec []float32, sum uint64)
	logger   *slog.Logger
}

var _ processor[*core.Task] = (*embeddingProcessor[*core.Task])(nil)

func newEmbeddingProcessor[T core.Embeddable](embedder ai.Embedder, assign func(T, []float32, uint64), logger *slog.Logger) *embeddingProcessor[T] {
	return &embeddingProcessor[T]{
		embedder: embedder,
		assign:   assign,
		logger:   logger.With("processor", "embeddings"),
	}
}

func (ep *embeddingProcessor[T]) process(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.PrimaryText()
	}

	ep.logger.Debug("generating embeddings", "entities", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrEmbeddingFailed, err)
	}
	if len(embeddings) != len(items) {
		return fmt.Errorf("%w: expected %d, received %d", ai.ErrEmbeddingCountMismatch, len(items), len(embeddings))
	}

	for i, item := range items {
		if err := vector.Validate(embeddings[i]); err != nil {
			return fmt.Errorf("%w: %w", entity.ErrEmbeddingFailed, err)
		}
		ep.assign(item, embeddings[i], core.Fingerprint(texts[i]))
	}
	return nil
}
