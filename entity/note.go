package entity

import (
	"context"
	"log/slog"
	"slices"

	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/poiesic/pocketgenie/summarize"
	"golang.org/x/sync/errgroup"
)

// NoteInput holds the fields of a new note.
type NoteInput struct {
	Title    string
	Content  string
	Category string
	Tags     []string
}

// NotePatch lists the fields an update changes. Nil fields are left alone.
type NotePatch struct {
	Title    *string
	Content  *string
	Category *string
	Tags     []string
}

func (p NotePatch) apply(n *core.Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	if p.Tags != nil {
		n.Tags = slices.Clone(p.Tags)
	}
}

// NoteService creates and modifies notes, keeping their embeddings and
// summaries current.
type NoteService struct {
	repo        storage.NoteRepository
	embedder    ai.Embedder
	summarizer  *summarize.Summarizer
	maxAttempts int
	logger      *slog.Logger
}

// NewNoteService creates a NoteService. Without WithSummarizer notes are
// stored with an empty summary.
func NewNoteService(repo storage.NoteRepository, embedder ai.Embedder, opts ...Option) (*NoteService, error) {
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
	return &NoteService{
		repo:        repo,
		embedder:    embedder,
		summarizer:  cfg.summarizer,
		maxAttempts: cfg.maxAttempts,
		logger:      cfg.logger.With("component", "note-service"),
	}, nil
}

// derived is the model-generated state of a note.
type derived struct {
	vector  []float32
	sum     uint64
	summary string
	// summarized is false when no new summary was produced.
	summarized bool
}

// derive embeds title and, when wantSummary is set, summarizes content.
// Both calls run concurrently. Embedding failures abort; summary failures
// only leave the summary unchanged.
func (s *NoteService) derive(ctx context.Context, title, content string, wantEmbedding, wantSummary bool) (*derived, error) {
	d := &derived{}
	g, gctx := errgroup.WithContext(ctx)
	if wantEmbedding {
		g.Go(func() error {
			var err error
			d.vector, d.sum, err = embedTitle(gctx, s.embedder, title)
			return err
		})
	}
	if wantSummary && s.summarizer != nil {
		g.Go(func() error {
			result, err := s.summarizer.Summarize(gctx, content, summarize.DefaultPoints)
			if err != nil {
				s.logger.Warn("note summary failed", "err", err)
				return nil
			}
			d.summary, d.summarized = result.Summary, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// Create validates in, embeds the title, summarizes the content and stores the note.
func (s *NoteService) Create(ctx context.Context, in NoteInput) (*core.Note, error) {
	note := &core.Note{
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
		Tags:     slices.Clone(in.Tags),
	}
	if err := core.ValidateNote(note); err != nil {
		return nil, err
	}

	d, err := s.derive(ctx, note.Title, note.Content, true, true)
	if err != nil {
		return nil, err
	}
	note.Vector = d.vector
	note.EmbeddingSum = d.sum
	note.Summary = d.summary

	added, err := s.repo.AddNotes(ctx, note)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("note created", "id", added[0].Id, "summarized", d.summarized)
	return added[0], nil
}

// Get returns the note with id, or storage.ErrNotFound.
func (s *NoteService) Get(ctx context.Context, id string) (*core.Note, error) {
	return s.repo.GetNote(ctx, id)
}

// List returns notes matching filter in creation order.
func (s *NoteService) List(ctx context.Context, filter storage.NoteFilter) ([]*core.Note, error) {
	return s.repo.ListNotes(ctx, filter)
}

// Update applies patch to the note with id. A title or content change
// regenerates the embedding; a content change also regenerates the summary.
// Everything is written in one transaction.
func (s *NoteService) Update(ctx context.Context, id string, patch NotePatch) (*core.Note, error) {
	var result *core.Note

	err := retryOnConflict(ctx, s.logger, s.maxAttempts, func() error {
		current, err := s.repo.GetNote(ctx, id)
		if err != nil {
			return err
		}
		next := current.Clone()
		patch.apply(next)
		if err := core.ValidateNote(next); err != nil {
			return err
		}

		contentChanged := next.Content != current.Content
		reembed := next.Title != current.Title || contentChanged ||
			!core.IsEmbeddingCurrent(next, next.EmbeddingSum)
		if reembed || contentChanged {
			d, err := s.derive(ctx, next.Title, next.Content, reembed, contentChanged)
			if err != nil {
				return err
			}
			if reembed {
				next.Vector = d.vector
				next.EmbeddingSum = d.sum
			}
			if d.summarized {
				next.Summary = d.summary
			}
		}

		updated, err := s.repo.UpdateNotes(ctx, next)
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

// Delete removes the note with id and its embedding.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteNotes(ctx, id)
}
