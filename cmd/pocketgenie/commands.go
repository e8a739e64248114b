package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/pocketgenie"
	"github.com/poiesic/pocketgenie/ai/openai"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/reembed"
	"github.com/poiesic/pocketgenie/search"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/poiesic/pocketgenie/summarize"
	"github.com/urfave/cli/v2"
)

func openDatabase(ctx context.Context, c *cli.Context) (*pocketgenie.Database, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	cfg, err := aiConfig(c)
	if err != nil {
		return nil, err
	}

	db, err := pocketgenie.NewDatabase(ctx, dbPath,
		pocketgenie.WithAIConfig(cfg),
		pocketgenie.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	handler, err := db.NewServer(search.WithThreshold(float32(c.Float64("similarity-threshold"))))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	srv := &http.Server{
		Addr:              c.String("listen"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "db", c.String("db"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := c.Context

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search query is required")
	}
	filter, err := core.ParseEntityFilter(c.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %s", err, c.String("type"))
	}
	limit, err := search.ClampLimit(c.Int("limit"))
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []search.Option{search.WithThreshold(float32(c.Float64("similarity-threshold")))}
	if c.Bool("verbose") {
		opts = append(opts, search.WithMonitor(&printMonitor{w: os.Stderr}))
	}
	searcher, err := db.NewSearcher(opts...)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.Search(ctx, query, filter, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Fprintf(w, "%d: [%s] %s (%s)[%0.3f]\n", i, hit.EntityType, hit.Title, hit.EntityId, hit.Score)
		if hit.Content != "" {
			fmt.Fprintf(w, "   %s\n", hit.Content)
		}
	}
	return nil
}

func prioritizeCommand(c *cli.Context) error {
	ctx := c.Context

	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	pending := false
	tasks, err := db.TaskRepository().ListTasks(ctx, storage.TaskFilter{
		Completed: &pending,
		Category:  c.String("category"),
	})
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	prioritizer, err := db.NewPrioritizer()
	if err != nil {
		return fmt.Errorf("failed to create prioritizer: %w", err)
	}
	result, err := prioritizer.Prioritize(ctx, tasks)
	if err != nil {
		return fmt.Errorf("prioritization failed: %w", err)
	}

	w := c.App.Writer
	for i, t := range result.Tasks {
		due := "no due date"
		if t.DueDate != nil {
			due = t.DueDate.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d. %s (priority %d, %s)\n", i+1, t.Title, t.Priority, due)
	}
	if result.NextBestAction != nil {
		fmt.Fprintf(w, "\nNext: %s\n", result.NextBestAction.Title)
	}
	fmt.Fprintf(w, "\n%s\n", result.Reasoning)
	return nil
}

func summarizeCommand(c *cli.Context) error {
	ctx := c.Context

	var (
		content []byte
		err     error
	)
	if path := c.Args().First(); path != "" && path != "-" {
		content, err = os.ReadFile(path)
	} else {
		content, err = io.ReadAll(c.App.Reader)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	cfg, err := aiConfig(c)
	if err != nil {
		return err
	}
	completer, err := openai.NewCompleter(cfg)
	if err != nil {
		return fmt.Errorf("failed to create completer: %w", err)
	}
	summarizer, err := summarize.NewSummarizer(completer, summarize.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to create summarizer: %w", err)
	}

	result, err := summarizer.Summarize(ctx, string(content), c.Int("max-points"))
	if err != nil {
		return fmt.Errorf("summarization failed: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintln(w, result.Summary)
	for _, point := range result.BulletPoints {
		fmt.Fprintf(w, "- %s\n", point)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := c.Context

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		PoolSize:       c.Int("workers"),
		StaleOnly:      c.Bool("stale-only"),
	}

	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	reembedder, err := db.NewReembedder(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	stats, err := reembedder.Run(ctx)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	slog.Info("reembedding finished", "tasks", stats.Tasks, "notes", stats.Notes, "skipped", stats.Skipped, "elapsed", stats.Elapsed)
	return nil
}

// printMonitor writes each search step to w.
type printMonitor struct {
	w io.Writer
}

var _ search.SearchMonitor = (*printMonitor)(nil)

func (m *printMonitor) Start(query string, filter core.EntityFilter) {
	fmt.Fprintf(m.w, "query=%q filter=%s\n", query, filter)
}

func (m *printMonitor) AfterQueryEmbedding(dimensions int) {
	fmt.Fprintf(m.w, "query embedded: %d dimensions\n", dimensions)
}

func (m *printMonitor) Scored(e core.Embeddable, score float32, kept bool) {
	mark := " "
	if kept {
		mark = "+"
	}
	fmt.Fprintf(m.w, "%s %s %s %0.3f %q\n", mark, e.Kind(), e.ID(), score, e.PrimaryText())
}

func (m *printMonitor) Finish(results []*core.SearchResult) {
	fmt.Fprintf(m.w, "%d results\n", len(results))
}
