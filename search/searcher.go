package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/poiesic/pocketgenie/vector"
)

const (
	// DefaultThreshold is the score a hit must exceed to be returned.
	DefaultThreshold float32 = 0.3

	// DefaultSnippetLength is how many characters of note content a hit carries.
	DefaultSnippetLength = 200

	// DefaultLimit and MaxLimit bound the number of hits requested at the API boundary.
	DefaultLimit = 10
	MaxLimit     = 100
)

// ClampLimit applies the boundary rules for a requested result count:
// zero selects DefaultLimit, anything else must be within 1..MaxLimit.
func ClampLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultLimit, nil
	}
	if limit < 1 || limit > MaxLimit {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	return limit, nil
}

// Searcher provides semantic search over tasks and notes.
type Searcher struct {
	taskRepository storage.TaskRepository
	noteRepository storage.NoteRepository
	embedder       ai.Embedder
	threshold      float32
	snippetLength  int
	monitor        SearchMonitor
	logger         *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithThreshold sets the minimum score, exclusive, a hit needs.
func WithThreshold(threshold float32) Option {
	return func(s *Searcher) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("threshold must be between 0 and 1, got %v", threshold)
		}
		s.threshold = threshold
		return nil
	}
}

// WithSnippetLength sets how many characters of note content are returned.
func WithSnippetLength(n int) Option {
	return func(s *Searcher) error {
		if n < 1 {
			return fmt.Errorf("snippet length must be positive, got %d", n)
		}
		s.snippetLength = n
		return nil
	}
}

// WithMonitor installs hooks that observe every search.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	taskRepository storage.TaskRepository,
	noteRepository storage.NoteRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if taskRepository == nil {
		return nil, ErrTaskRepositoryRequired
	}
	if noteRepository == nil {
		return nil, ErrNoteRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		taskRepository: taskRepository,
		noteRepository: noteRepository,
		embedder:       embedder,
		threshold:      DefaultThreshold,
		snippetLength:  DefaultSnippetLength,
		monitor:        &noopMonitor{},
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Search returns the entities most similar to query, best first.
// limit <= 0 returns every hit above the threshold.
func (s *Searcher) Search(ctx context.Context, query string, filter core.EntityFilter, limit int) ([]*core.SearchResult, error) {
	if filter == "" {
		filter = core.FilterAll
	}
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}
	if strings.TrimSpace(query) == "" {
		return []*core.SearchResult{}, nil
	}

	s.monitor.Start(query, filter)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}
	s.monitor.AfterQueryEmbedding(len(embedding))
	if len(embedding) == 0 {
		return []*core.SearchResult{}, nil
	}

	results := make([]*core.SearchResult, 0)
	score := func(e core.Embeddable) {
		if len(e.Embedding()) == 0 {
			return
		}
		sim := vector.Similarity(embedding, e.Embedding())
		kept := sim > s.threshold
		s.monitor.Scored(e, sim, kept)
		if kept {
			results = append(results, s.toResult(e, sim))
		}
	}

	if filter.Includes(core.EntityTypeTask) {
		err := s.taskRepository.ForEachTask(ctx, func(t *core.Task) error {
			score(t)
			return nil
		})
		if err != nil {
			s.logger.Error("error scanning tasks", "err", err)
			return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
		}
	}
	if filter.Includes(core.EntityTypeNote) {
		err := s.noteRepository.ForEachNote(ctx, func(n *core.Note) error {
			score(n)
			return nil
		})
		if err != nil {
			s.logger.Error("error scanning notes", "err", err)
			return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
		}
	}

	SortResults(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	s.monitor.Finish(results)
	s.logger.Debug("search finished", "filter", filter, "hits", len(results))

	return results, nil
}

func (s *Searcher) toResult(e core.Embeddable, score float32) *core.SearchResult {
	content := e.EmbeddableSecondaryText()
	if e.Kind() == core.EntityTypeNote {
		content = truncate(content, s.snippetLength)
	}
	return &core.SearchResult{
		EntityType: e.Kind(),
		EntityId:   e.ID(),
		Title:      e.PrimaryText(),
		Score:      score,
		Content:    content,
	}
}

// SortResults orders hits by score descending. Equal scores put tasks before
// notes, then compare entity IDs.
func SortResults(results []*core.SearchResult) {
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(kindRank(a.EntityType), kindRank(b.EntityType)); c != 0 {
			return c
		}
		return cmp.Compare(a.EntityId, b.EntityId)
	})
}

func kindRank(t core.EntityType) int {
	if t == core.EntityTypeTask {
		return 0
	}
	return 1
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
