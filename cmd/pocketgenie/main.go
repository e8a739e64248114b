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


package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/clog"
	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/reembed"
	"github.com/poiesic/pocketgenie/search"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env file is fine; the environment and flags still apply.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pocketgenie",
		Usage: "Tasks and notes with semantic search and AI assistance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"PG_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log output format (text, json, console)",
				Value:   "text",
				EnvVars: []string{"PG_LOG_FORMAT"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "Address to listen on",
						Value:   ":8000",
						EnvVars: []string{"PG_LISTEN"},
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "How long to wait for in-flight requests on shutdown",
						Value: 10 * time.Second,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Semantic search over tasks and notes",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "type",
						Usage: "Entity type to search (task, note, all)",
						Value: "all",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: search.DefaultLimit,
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Print every scored entity",
					},
				),
			},
			{
				Name:   "prioritize",
				Usage:  "Rank pending tasks and suggest the next one",
				Action: prioritizeCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only consider tasks in this category",
					},
				),
			},
			{
				Name:      "summarize",
				Usage:     "Summarize text from a file or standard input",
				ArgsUsage: "[file]",
				Action:    summarizeCommand,
				Flags: append(completionFlags(),
					&cli.IntFlag{
						Name:  "max-points",
						Usage: "Maximum number of bullet points",
						Value: 5,
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Recompute the embeddings of all tasks and notes",
				Action: reembedCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entities to embed in each call",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entities",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of batches embedded concurrently",
						Value: reembed.DefaultConfig().PoolSize,
					},
					&cli.BoolFlag{
						Name:  "stale-only",
						Usage: "Only reembed entities whose vector is missing or out of date",
					},
				),
			},
		},
	}
}

// databaseFlags are shared by every command that opens the store.
func databaseFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
			EnvVars:  []string{"PG_DB_PATH"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   ai.DefaultHost,
			EnvVars: []string{"PG_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   ai.DefaultEmbeddingModel,
			EnvVars: []string{"PG_EMBEDDING_MODEL"},
		},
		&cli.Float64Flag{
			Name:    "similarity-threshold",
			Usage:   "Minimum similarity for a search hit",
			Value:   float64(search.DefaultThreshold),
			EnvVars: []string{"PG_SIMILARITY_THRESHOLD"},
		},
	}
	return append(flags, completionFlags()...)
}

func completionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "completion-host",
			Usage:   "Completion service host URL (defaults to embedding-host)",
			EnvVars: []string{"PG_COMPLETION_HOST"},
		},
		&cli.StringFlag{
			Name:    "completion-model",
			Usage:   "Completion model name",
			Value:   ai.DefaultCompletionModel,
			EnvVars: []string{"PG_COMPLETION_MODEL"},
		},
		&cli.DurationFlag{
			Name:    "completion-timeout",
			Usage:   "Timeout for a single completion call",
			Value:   ai.DefaultCompletionTimeout,
			EnvVars: []string{"PG_COMPLETION_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key sent to the model services",
			EnvVars: []string{"PG_API_KEY", "OPENAI_API_KEY"},
		},
	}
}

// aiConfig builds the model configuration from command flags.
func aiConfig(c *cli.Context) (*ai.Config, error) {
	embeddingHost := c.String("embedding-host")
	if embeddingHost == "" {
		embeddingHost = ai.DefaultHost
	}
	completionHost := c.String("completion-host")
	if completionHost == "" {
		completionHost = embeddingHost
	}
	embeddingModel := c.String("embedding-model")
	if embeddingModel == "" {
		embeddingModel = ai.DefaultEmbeddingModel
	}

	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithEmbeddingModel(embeddingModel),
		ai.WithCompletionHost(completionHost),
		ai.WithCompletionModel(c.String("completion-model")),
		ai.WithCompletionTimeout(c.Duration("completion-timeout")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

func setupLogger(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	logger, err := newLogger(c.String("log-format"), level, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

func newLogger(format string, level slog.Level, w io.Writer) (*slog.Logger, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
	case "console":
		return slog.New(clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithTimeFmt("15:04:05"),
			clog.WithSource(false),
			clog.WithAttrHook(clog.GoerrHook),
		)), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
}
