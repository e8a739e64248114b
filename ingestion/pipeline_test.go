package ingestion

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/ai/mock"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/entity"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/poiesic/pocketgenie/storage/badger"
	"github.com/poiesic/pocketgenie/summarize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) (storage.TaskRepository, storage.NoteRepository) {
	t.Helper()
	tasks, notes, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		tasks.Close()
		notes.Close()
		backend.Close()
	})
	return tasks, notes
}

func newPipeline(t *testing.T, embedder ai.Embedder, opts ...Option) (*Pipeline, storage.TaskRepository, storage.NoteRepository) {
	t.Helper()
	tasks, notes := newRepos(t)
	p, err := NewPipeline(tasks, notes, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, tasks, notes
}

func TestNewPipeline(t *testing.T) {
	tasks, notes := newRepos(t)
	embedder := mock.NewMockEmbedder()

	_, err := NewPipeline(nil, notes, embedder)
	assert.ErrorIs(t, err, ErrTaskRepositoryRequired)

	_, err = NewPipeline(tasks, nil, embedder)
	assert.ErrorIs(t, err, ErrNoteRepositoryRequired)

	_, err = NewPipeline(tasks, notes, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewPipeline(tasks, notes, embedder, WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}

func TestPipeline_ImportTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds in batches", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		p, repo, _ := newPipeline(t, embedder, WithBatchSize(2))

		due := time.Date(2030, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
		inputs := []entity.TaskInput{
			{Title: "Buy milk", Priority: core.PriorityLow},
			{Title: "Call plumber", DueDate: &due, Priority: core.PriorityHigh},
			{Title: "Write report", Category: "work", Tags: []string{"q3"}},
		}
		stored, err := p.ImportTasks(ctx, inputs...)
		require.NoError(t, err)
		require.Len(t, stored, 3)
		assert.Equal(t, 2, embedder.CallCount())

		for i, task := range stored {
			assert.NotEmpty(t, task.Id)
			assert.Equal(t, inputs[i].Title, task.Title)

			vec, err := embedder.EmbedText(ctx, task.Title)
			require.NoError(t, err)
			assert.Equal(t, vec, task.Vector)
			assert.Equal(t, core.Fingerprint(task.Title), task.EmbeddingSum)
		}
		assert.Equal(t, time.UTC, stored[1].DueDate.Location())
		assert.True(t, due.Equal(*stored[1].DueDate))

		all, err := repo.ListTasks(ctx, storage.TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("invalid input writes nothing", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		p, repo, _ := newPipeline(t, embedder)

		_, err := p.ImportTasks(ctx,
			entity.TaskInput{Title: "Fine"},
			entity.TaskInput{Title: "  "},
		)
		require.ErrorIs(t, err, core.ErrEmptyTitle)
		assert.Contains(t, err.Error(), "task 1")
		assert.Zero(t, embedder.CallCount())

		all, err := repo.ListTasks(ctx, storage.TaskFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("embedding failure keeps earlier batches", func(t *testing.T) {
		var calls atomic.Int32
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			if calls.Add(1) > 1 {
				return nil, errors.New("model crashed")
			}
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{1, 0, 0}
			}
			return out, nil
		}
		p, repo, _ := newPipeline(t, embedder, WithBatchSize(1))

		stored, err := p.ImportTasks(ctx,
			entity.TaskInput{Title: "First"},
			entity.TaskInput{Title: "Second"},
		)
		require.ErrorIs(t, err, entity.ErrEmbeddingFailed)
		require.Len(t, stored, 1)
		assert.Equal(t, "First", stored[0].Title)

		all, err := repo.ListTasks(ctx, storage.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "First", all[0].Title)
	})

	t.Run("count mismatch", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		}
		p, _, _ := newPipeline(t, embedder)

		_, err := p.ImportTasks(ctx, entity.TaskInput{Title: "A"}, entity.TaskInput{Title: "B"})
		assert.ErrorIs(t, err, ai.ErrEmbeddingCountMismatch)
	})
}

func TestPipeline_ImportNotes(t *testing.T) {
	ctx := context.Background()

	t.Run("summarizes and embeds", func(t *testing.T) {
		completer := mock.NewMockCompleter()
		completer.CompleteFunc = func(ctx context.Context, req ai.CompletionRequest) (string, error) {
			if strings.Contains(req.Prompt, "Eggs") {
				return "Shopping.\n- eggs", nil
			}
			return "Garden.\n- basil", nil
		}
		summarizer, err := summarize.NewSummarizer(completer)
		require.NoError(t, err)

		embedder := mock.NewMockEmbedder()
		p, _, repo := newPipeline(t, embedder, WithSummarizer(summarizer), WithPoolSize(2))

		stored, err := p.ImportNotes(ctx,
			entity.NoteInput{Title: "Shopping list", Content: "Eggs and bread."},
			entity.NoteInput{Title: "Garden plan", Content: "Basil near the door."},
		)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, "Shopping.", stored[0].Summary)
		assert.Equal(t, "Garden.", stored[1].Summary)
		assert.Equal(t, 2, completer.CallCount())
		assert.Equal(t, 1, embedder.CallCount())

		got, err := repo.GetNote(ctx, stored[1].Id)
		require.NoError(t, err)
		assert.Equal(t, "Garden.", got.Summary)
		assert.Equal(t, core.Fingerprint("Garden plan"), got.EmbeddingSum)
		assert.NotEmpty(t, got.Vector)
	})

	t.Run("fallback summary when the model fails", func(t *testing.T) {
		completer := mock.NewMockCompleter()
		completer.Err = errors.New("timeout")
		summarizer, err := summarize.NewSummarizer(completer)
		require.NoError(t, err)

		p, _, _ := newPipeline(t, mock.NewMockEmbedder(), WithSummarizer(summarizer))

		stored, err := p.ImportNotes(ctx, entity.NoteInput{Title: "Retro", Content: "Deploys were slow. Tests flaked."})
		require.NoError(t, err)
		assert.Equal(t, "Deploys were slow. Tests flaked.", stored[0].Summary)
	})

	t.Run("without summarizer", func(t *testing.T) {
		p, _, _ := newPipeline(t, mock.NewMockEmbedder())

		stored, err := p.ImportNotes(ctx, entity.NoteInput{Title: "Plain", Content: "Nothing to see."})
		require.NoError(t, err)
		assert.Empty(t, stored[0].Summary)
		assert.NotEmpty(t, stored[0].Vector)
	})

	t.Run("embedding failure stores nothing", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("unreachable")
		}
		summarizer, err := summarize.NewSummarizer(mock.NewMockCompleter())
		require.NoError(t, err)
		p, _, repo := newPipeline(t, embedder, WithSummarizer(summarizer))

		_, err = p.ImportNotes(ctx, entity.NoteInput{Title: "Lost", Content: "Never stored."})
		require.ErrorIs(t, err, entity.ErrEmbeddingFailed)

		all, err := repo.ListNotes(ctx, storage.NoteFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("invalid note", func(t *testing.T) {
		p, _, _ := newPipeline(t, mock.NewMockEmbedder())

		_, err := p.ImportNotes(ctx, entity.NoteInput{Title: "Empty", Content: " "})
		assert.ErrorIs(t, err, core.ErrEmptyContent)
	})
}
