// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of entities embedded per call
	BatchSize int

	// ReportInterval is how often to report progress (number of entities)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// PoolSize is the number of batches embedded concurrently
	PoolSize int

	// StaleOnly limits the run to entities whose vector is missing or was
	// computed from a different title
	StaleOnly bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		PoolSize:       max(1, runtime.NumCPU()/2),
	}
}

func (c *Config) validate() error {
	if c.BatchSize < 1 || c.ReportInterval < 1 || c.PoolSize < 1 {
		return fmt.Errorf("%w: batch size, report interval and pool size must be positive", ErrInvalidConfig)
	}
	if c.MaxRetries < 1 {
		return ErrInvalidMaxAttempts
	}
	return nil
}

// Stats summarizes a finished run.
type Stats struct {
	Tasks   int // tasks written
	Notes   int // notes written
	Skipped int // selected but modified or deleted concurrently
	Elapsed time.Duration
}

// Reembedder orchestrates the reembedding of all tasks and notes in a database.
type Reembedder struct {
	tasks    storage.TaskRepository
	notes    storage.NoteRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(tasks storage.TaskRepository, notes storage.NoteRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if tasks == nil || notes == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		tasks:    tasks,
		notes:    notes,
		embedder: embedder,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "reembedder"),
	}, nil
}

// needsEmbedding reports whether e has no vector or a vector computed from
// other text.
func needsEmbedding(e core.Embeddable, sum uint64) bool {
	return len(e.Embedding()) == 0 || !core.IsEmbeddingCurrent(e, sum)
}

// Run executes the reembedding operation.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) (*Stats, error) {
	var keepTask func(*core.Task) bool
	var keepNote func(*core.Note) bool
	if r.config.StaleOnly {
		keepTask = func(t *core.Task) bool { return needsEmbedding(t, t.EmbeddingSum) }
		keepNote = func(n *core.Note) bool { return needsEmbedding(n, n.EmbeddingSum) }
	}

	taskBatches, err := NewBatchIterator(r.tasks.ForEachTask, keepTask, r.config.BatchSize).Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	noteBatches, err := NewBatchIterator(r.notes.ForEachNote, keepNote, r.config.BatchSize).Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}

	total := countItems(taskBatches) + countItems(noteBatches)
	if total == 0 {
		fmt.Fprintf(r.progress, "No entities to reembed\n")
		return &Stats{}, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d entities (batch size: %d, workers: %d)\n",
		total, r.config.BatchSize, r.config.PoolSize)

	pool, err := ants.NewPool(r.config.PoolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	backoff := Backoff{MaxAttempts: r.config.MaxRetries, BaseDelay: r.config.RetryDelay}
	taskProc := NewBatchProcessor(r.embedder, r.tasks.UpdateTasks, r.tasks.GetTask,
		func(t *core.Task, v []float32, sum uint64) { t.Vector, t.EmbeddingSum = v, sum },
		backoff, r.logger)
	noteProc := NewBatchProcessor(r.embedder, r.notes.UpdateNotes, r.notes.GetNote,
		func(n *core.Note, v []float32, sum uint64) { n.Vector, n.EmbeddingSum = v, sum },
		backoff, r.logger)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		written = map[core.EntityType]int{}
	)
	record := func(kind core.EntityType, selected, n int, err error) {
		if err != nil {
			cancel(err)
			return
		}
		mu.Lock()
		written[kind] += n
		mu.Unlock()
		tracker.Add(kind, selected)
	}

	submit := func(task func()) bool {
		wg.Add(1)
		if err := pool.Submit(func() { defer wg.Done(); task() }); err != nil {
			wg.Done()
			cancel(err)
			return false
		}
		return true
	}

	for _, batch := range taskBatches {
		if !submit(func() {
			n, err := taskProc.Process(ctx, batch)
			record(core.EntityTypeTask, len(batch), n, err)
		}) {
			break
		}
	}
	for _, batch := range noteBatches {
		if !submit(func() {
			n, err := noteProc.Process(ctx, batch)
			record(core.EntityTypeNote, len(batch), n, err)
		}) {
			break
		}
	}
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, fmt.Errorf("failed to process batch: %w", err)
	}

	tracker.Finish()

	stats := &Stats{
		Tasks:   written[core.EntityTypeTask],
		Notes:   written[core.EntityTypeNote],
		Elapsed: tracker.Elapsed(),
	}
	stats.Skipped = total - stats.Tasks - stats.Notes

	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d entities in %v (%.1f entities/sec)\n",
		total, stats.Elapsed.Round(time.Second), float64(total)/stats.Elapsed.Seconds())
	r.logger.Info("reembedding complete", "tasks", stats.Tasks, "notes", stats.Notes, "skipped", stats.Skipped)

	return stats, nil
}

func countItems[T any](batches [][]T) int {
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	return n
}
