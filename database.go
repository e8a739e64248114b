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


// Package pocketgenie wires storage, the AI provider and the services that
// sit on top of them into a single Database handle.
package pocketgenie

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/ai/openai"
	"github.com/poiesic/pocketgenie/api"
	"github.com/poiesic/pocketgenie/entity"
	"github.com/poiesic/pocketgenie/ingestion"
	"github.com/poiesic/pocketgenie/prioritize"
	"github.com/poiesic/pocketgenie/reembed"
	"github.com/poiesic/pocketgenie/search"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/poiesic/pocketgenie/storage/badger"
	"github.com/poiesic/pocketgenie/summarize"
)

type Database struct {
	backend  *badger.Backend
	taskRepo storage.TaskRepository
	noteRepo storage.NoteRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	logger   *slog.Logger
	inMemory bool
}

// WithAIConfig sets the configuration used to build the OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses an existing provider instead of building one.
// The Database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInMemory keeps all data in memory; filePath is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the store at filePath and connects to the models.
// It fails with ai.ErrEmbedderUnavailable when the embedding model cannot
// be reached.
func NewDatabase(ctx context.Context, filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(ctx, options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		provider.Close()
		return nil, err
	}

	taskRepo, err := badger.NewTaskRepository(backend)
	if err != nil {
		backend.Close()
		provider.Close()
		return nil, err
	}

	noteRepo, err := badger.NewNoteRepository(backend)
	if err != nil {
		taskRepo.Close()
		backend.Close()
		provider.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		taskRepo: taskRepo,
		noteRepo: noteRepo,
		provider: provider,
		logger:   options.logger,
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.noteRepo.Close(); err != nil {
		db.logger.Error("error closing note repository", "err", err)
		return err
	}
	if err := db.taskRepo.Close(); err != nil {
		db.logger.Error("error closing task repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) TaskRepository() storage.TaskRepository {
	return db.taskRepo
}

func (db *Database) NoteRepository() storage.NoteRepository {
	return db.noteRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) NewSummarizer(opts ...summarize.Option) (*summarize.Summarizer, error) {
	opts = append([]summarize.Option{summarize.WithLogger(db.logger)}, opts...)
	return summarize.NewSummarizer(db.provider.Completer(), opts...)
}

func (db *Database) NewPrioritizer(opts ...prioritize.Option) (*prioritize.Prioritizer, error) {
	opts = append([]prioritize.Option{prioritize.WithLogger(db.logger)}, opts...)
	return prioritize.NewPrioritizer(db.provider.Completer(), opts...)
}

func (db *Database) NewTaskService(opts ...entity.Option) (*entity.TaskService, error) {
	opts = append([]entity.Option{entity.WithLogger(db.logger)}, opts...)
	return entity.NewTaskService(db.taskRepo, db.provider.Embedder(), opts...)
}

// NewNoteService returns a note service that summarizes with the provider's
// completer. Pass entity.WithSummarizer to override.
func (db *Database) NewNoteService(opts ...entity.Option) (*entity.NoteService, error) {
	summarizer, err := db.NewSummarizer()
	if err != nil {
		return nil, err
	}
	opts = append([]entity.Option{entity.WithLogger(db.logger), entity.WithSummarizer(summarizer)}, opts...)
	return entity.NewNoteService(db.noteRepo, db.provider.Embedder(), opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	opts = append([]search.Option{search.WithLogger(db.logger)}, opts...)
	return search.NewSearcher(db.taskRepo, db.noteRepo, db.provider.Embedder(), opts...)
}

// NewIngestionPipeline returns a bulk importer that summarizes notes with the
// provider's completer.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	summarizer, err := db.NewSummarizer()
	if err != nil {
		return nil, err
	}
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger), ingestion.WithSummarizer(summarizer)}, opts...)
	return ingestion.NewPipeline(db.taskRepo, db.noteRepo, db.provider.Embedder(), opts...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.taskRepo, db.noteRepo, db.provider.Embedder(), config, progress)
}

// NewServer builds the HTTP API over freshly created services.
func (db *Database) NewServer(searchOpts ...search.Option) (*api.Server, error) {
	tasks, err := db.NewTaskService()
	if err != nil {
		return nil, err
	}
	notes, err := db.NewNoteService()
	if err != nil {
		return nil, err
	}
	searcher, err := db.NewSearcher(searchOpts...)
	if err != nil {
		return nil, err
	}
	summarizer, err := db.NewSummarizer()
	if err != nil {
		return nil, err
	}
	prioritizer, err := db.NewPrioritizer()
	if err != nil {
		return nil, err
	}
	return api.New(api.Services{
		Tasks:       tasks,
		Notes:       notes,
		Searcher:    searcher,
		Summarizer:  summarizer,
		Prioritizer: prioritizer,
	}, api.WithLogger(db.logger))
}
