package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/vector"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
// Blank entries are not sent to the model and come back as empty vectors.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	pending := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		results[i] = []float32{}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pending = append(pending, text)
		positions = append(positions, i)
	}
	if len(pending) == 0 {
		return results, nil
	}

	e.logger.Debug("generating embeddings for texts", "count", len(pending), "skipped", len(texts)-len(pending))

	vecs, err := e.embedder.EmbedDocuments(ctx, pending)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(pending), "err", err)
		return nil, err
	}
	if len(vecs) != len(pending) {
		return nil, fmt.Errorf("%w: sent %d, received %d", ai.ErrEmbeddingCountMismatch, len(pending), len(vecs))
	}

	for i, vec := range vecs {
		if err := vector.Validate(vec); err != nil {
			return nil, fmt.Errorf("%w: %w", ai.ErrInvalidEmbedding, err)
		}
		results[positions[i]] = vec
	}
	return results, nil
}
