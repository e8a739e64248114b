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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/entity"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/poiesic/pocketgenie/summarize"
)

// DefaultBatchSize is the number of entities embedded and stored together.
const DefaultBatchSize = 32

// Pipeline imports tasks and notes in bulk. It embeds each batch with one
// call and summarizes notes concurrently on a worker pool.
type Pipeline struct {
	taskRepository storage.TaskRepository
	noteRepository storage.NoteRepository
	pool           *ants.Pool
	taskEmbeds     processor[*core.Task]
	noteEmbeds     processor[*core.Note]
	summaries      processor[*core.Note]
	summarizer     *summarize.Summarizer
	batchSize      int
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets how many note summaries are generated at once.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger. A nil logger selects slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithBatchSize sets how many entities are embedded and stored together.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithSummarizer makes ImportNotes summarize note content. Without it
// imported notes have an empty summary.
func WithSummarizer(summarizer *summarize.Summarizer) Option {
	return func(p *Pipeline) error {
		p.summarizer = summarizer
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline. Call Release when done.
func NewPipeline(
	taskRepository storage.TaskRepository,
	noteRepository storage.NoteRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if taskRepository == nil {
		return nil, ErrTaskRepositoryRequired
	}
	if noteRepository == nil {
		return nil, ErrNoteRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		taskRepository: taskRepository,
		noteRepository: noteRepository,
		pool:           pool,
		batchSize:      DefaultBatchSize,
		logger:         slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	// Create processors after options are applied (so they get final config)
	p.taskEmbeds = newEmbeddingProcessor(embedder,
		func(t *core.Task, v []float32, sum uint64) { t.Vector, t.EmbeddingSum = v, sum }, p.logger)
	p.noteEmbeds = newEmbeddingProcessor(embedder,
		func(n *core.Note, v []float32, sum uint64) { n.Vector, n.EmbeddingSum = v, sum }, p.logger)
	if p.summarizer != nil {
		p.summaries = newSummaryProcessor(p.summarizer, p.pool, p.logger)
	}

	return p, nil
}

// ImportTasks stores new tasks built from inputs and returns them in input
// order. All inputs are validated before anything is written.
func (p *Pipeline) ImportTasks(ctx context.Context, inputs ...entity.TaskInput) ([]*core.Task, error) {
	tasks := make([]*core.Task, len(inputs))
	for i, in := range inputs {
		task := &core.Task{
			Title:       in.Title,
			Description: in.Description,
			Priority:    in.Priority,
			Category:    in.Category,
			Tags:        slices.Clone(in.Tags),
		}
		if in.DueDate != nil {
			due := core.StoredTime(*in.DueDate)
			task.DueDate = &due
		}
		if err := core.ValidateTask(task); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		tasks[i] = task
	}

	stored := make([]*core.Task, 0, len(tasks))
	for batch := range slices.Chunk(tasks, p.batchSize) {
		if err := p.taskEmbeds.process(ctx, batch); err != nil {
			return stored, err
		}
		added, err := p.taskRepository.AddTasks(ctx, batch...)
		if err != nil {
			return stored, err
		}
		stored = append(stored, added...)
		p.logger.Debug("imported tasks", "batch", len(added), "total", len(stored))
	}
	p.logger.Info("task import complete", "tasks", len(stored))
	return stored, nil
}

// ImportNotes stores new notes built from inputs and returns them in input
// order. Embedding and summarizing a batch run concurrently.
func (p *Pipeline) ImportNotes(ctx context.Context, inputs ...entity.NoteInput) ([]*core.Note, error) {
	notes := make([]*core.Note, len(inputs))
	for i, in := range inputs {
		note := &core.Note{
			Title:    in.Title,
			Content:  in.Content,
			Category: in.Category,
			Tags:     slices.Clone(in.Tags),
		}
		if err := core.ValidateNote(note); err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		notes[i] = note
	}

	stored := make([]*core.Note, 0, len(notes))
	for batch := range slices.Chunk(notes, p.batchSize) {
		if err := p.deriveNotes(ctx, batch); err != nil {
			return stored, err
		}
		added, err := p.noteRepository.AddNotes(ctx, batch...)
		if err != nil {
			return stored, err
		}
		stored = append(stored, added...)
		p.logger.Debug("imported notes", "batch", len(added), "total", len(stored))
	}
	p.logger.Info("note import complete", "notes", len(stored))
	return stored, nil
}

func (p *Pipeline) deriveNotes(ctx context.Context, batch []*core.Note) error {
	if p.summaries == nil {
		return p.noteEmbeds.process(ctx, batch)
	}

	var (
		wg         sync.WaitGroup
		summaryErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		summaryErr = p.summaries.process(ctx, batch)
	}()
	embedErr := p.noteEmbeds.process(ctx, batch)
	wg.Wait()

	if embedErr != nil {
		return embedErr
	}
	return summaryErr
}

// Release stops the worker pool. The pipeline must not be used afterwards.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
