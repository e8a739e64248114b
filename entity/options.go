package entity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/poiesic/pocketgenie/summarize"
	"github.com/poiesic/pocketgenie/vector"
)

// DefaultMaxAttempts bounds how often an update is retried after a revision conflict.
const DefaultMaxAttempts = 3

type serviceConfig struct {
	maxAttempts int
	summarizer  *summarize.Summarizer
	logger      *slog.Logger
}

// Option configures a TaskService or NoteService.
type Option func(*serviceConfig) error

// WithMaxAttempts sets how many times a conflicting update is attempted.
func WithMaxAttempts(n int) Option {
	return func(c *serviceConfig) error {
		if n < 1 {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = n
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithSummarizer enables note summaries. Ignored by TaskService.
func WithSummarizer(s *summarize.Summarizer) Option {
	return func(c *serviceConfig) error {
		c.summarizer = s
		return nil
	}
}

func newServiceConfig(opts []Option) (*serviceConfig, error) {
	cfg := &serviceConfig{
		maxAttempts: DefaultMaxAttempts,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// embedTitle computes the vector stored for title along with its fingerprint.
// A blank title yields an empty vector.
func embedTitle(ctx context.Context, embedder ai.Embedder, title string) ([]float32, uint64, error) {
	vec, err := embedder.EmbedText(ctx, title)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if err := vector.Validate(vec); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	return vec, core.Fingerprint(title), nil
}

// retryOnConflict runs op until it succeeds, fails with something other than
// storage.ErrConflict, or maxAttempts is reached.
func retryOnConflict(ctx context.Context, logger *slog.Logger, maxAttempts int, op func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = op()
		if !errors.Is(err, storage.ErrConflict) {
			return err
		}
		logger.Debug("revision conflict, retrying", "attempt", attempt, "maxAttempts", maxAttempts)
	}
	return err
}
