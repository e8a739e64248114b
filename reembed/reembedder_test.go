package reembed

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/pocketgenie/ai/mock"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/poiesic/pocketgenie/storage/badger"
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

func testConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
		PoolSize:       2,
	}
}

func seed(t *testing.T, tasks storage.TaskRepository, notes storage.NoteRepository) {
	t.Helper()
	ctx := context.Background()
	old := []float32{0, 0, 1}
	_, err := tasks.AddTasks(ctx,
		&core.Task{Title: "Pay rent", Vector: old, EmbeddingSum: core.Fingerprint("Pay rent")},
		&core.Task{Title: "Call mom"},
		&core.Task{Title: "Fix bike", Vector: old, EmbeddingSum: core.Fingerprint("old title")},
	)
	require.NoError(t, err)
	_, err = notes.AddNotes(ctx,
		&core.Note{Title: "Recipes", Content: "pasta", Vector: old, EmbeddingSum: core.Fingerprint("Recipes")},
		&core.Note{Title: "Ideas", Content: "garden"},
	)
	require.NoError(t, err)
}

func TestNewReembedder(t *testing.T) {
	tasks, notes := newRepos(t)
	embedder := mock.NewMockEmbedder()

	r, err := NewReembedder(tasks, notes, embedder, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, r.config.BatchSize)

	_, err = NewReembedder(nil, notes, embedder, nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
	_, err = NewReembedder(tasks, notes, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	bad := testConfig()
	bad.PoolSize = 0
	_, err = NewReembedder(tasks, notes, embedder, bad, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestReembedder_Run(t *testing.T) {
	ctx := context.Background()
	tasks, notes := newRepos(t)
	seed(t, tasks, notes)

	embedder := mock.NewMockEmbedder()
	var buf bytes.Buffer
	r, err := NewReembedder(tasks, notes, embedder, testConfig(), &buf)
	require.NoError(t, err)

	stats, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Tasks)
	assert.Equal(t, 2, stats.Notes)
	assert.Zero(t, stats.Skipped)

	err = tasks.ForEachTask(ctx, func(task *core.Task) error {
		expected, _ := embedder.EmbedText(ctx, task.Title)
		assert.Equal(t, expected, task.Vector, task.Title)
		assert.True(t, core.IsEmbeddingCurrent(task, task.EmbeddingSum))
		assert.Equal(t, uint64(2), task.Revision)
		return nil
	})
	require.NoError(t, err)
	err = notes.ForEachNote(ctx, func(note *core.Note) error {
		expected, _ := embedder.EmbedText(ctx, note.Title)
		assert.Equal(t, expected, note.Vector, note.Title)
		return nil
	})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Starting reembedding of 5 entities")
	assert.Contains(t, output, "tasks=3 notes=2")
	assert.Contains(t, output, "Reembedding complete")
}

func TestReembedder_StaleOnly(t *testing.T) {
	ctx := context.Background()
	tasks, notes := newRepos(t)
	seed(t, tasks, notes)

	cfg := testConfig()
	cfg.StaleOnly = true
	r, err := NewReembedder(tasks, notes, mock.NewMockEmbedder(), cfg, nil)
	require.NoError(t, err)

	stats, err := r.Run(ctx)
	require.NoError(t, err)
	// "Call mom" has no vector and "Fix bike" was embedded from another title.
	assert.Equal(t, 2, stats.Tasks)
	assert.Equal(t, 1, stats.Notes)

	listed, err := tasks.ListTasks(ctx, storage.TaskFilter{})
	require.NoError(t, err)
	for _, task := range listed {
		if task.Title == "Pay rent" {
			assert.Equal(t, []float32{0, 0, 1}, task.Vector, "current vector left alone")
			assert.Equal(t, uint64(1), task.Revision)
		}
	}

	t.Run("nothing stale", func(t *testing.T) {
		stats, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Tasks+stats.Notes)
	})
}

func TestReembedder_EmptyDatabase(t *testing.T) {
	tasks, notes := newRepos(t)
	var buf bytes.Buffer
	r, err := NewReembedder(tasks, notes, mock.NewMockEmbedder(), testConfig(), &buf)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Stats{}, stats)
	assert.Contains(t, buf.String(), "No entities to reembed")
}

func TestReembedder_EmbeddingError(t *testing.T) {
	tasks, notes := newRepos(t)
	seed(t, tasks, notes)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model not loaded")
	}
	r, err := NewReembedder(tasks, notes, embedder, testConfig(), nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestReembedder_RetriesTransientFailures(t *testing.T) {
	tasks, notes := newRepos(t)
	seed(t, tasks, notes)

	embedder := mock.NewMockEmbedder()
	var failures atomic.Int32
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if failures.Add(1) == 1 {
			return nil, errors.New("connection reset")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}
	r, err := NewReembedder(tasks, notes, embedder, testConfig(), nil)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Tasks+stats.Notes)
}

func TestReembedder_ContextCancellation(t *testing.T) {
	tasks, notes := newRepos(t)
	seed(t, tasks, notes)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := NewReembedder(tasks, notes, mock.NewMockEmbedder(), testConfig(), nil)
	require.NoError(t, err)

	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.GreaterOrEqual(t, cfg.PoolSize, 1)
	assert.False(t, cfg.StaleOnly)
	assert.NoError(t, cfg.validate())
}
