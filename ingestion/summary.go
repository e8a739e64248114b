package ingestion

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/summarize"
)

// summaryProcessor summarizes note content, one pool task per note.
// A note whose summary fails keeps an empty summary.
type summaryProcessor struct {
	summarizer *summarize.Summarizer
	pool       *ants.Pool
	logger     *slog.Logger
}

var _ processor[*core.Note] = (*summaryProcessor)(nil)

func newSummaryProcessor(summarizer *summarize.Summarizer, pool *ants.Pool, logger *slog.Logger) *summaryProcessor {
	return &summaryProcessor{
		summarizer: summarizer,
		pool:       pool,
		logger:     logger.With("processor", "summaries"),
	}
}

func (sp *summaryProcessor) process(ctx context.Context, notes []*core.Note) error {
	var wg sync.WaitGroup
	for _, note := range notes {
		wg.Add(1)
		err := sp.pool.Submit(func() {
			defer wg.Done()
			sp.summarize(ctx, note)
		})
		if err != nil {
			wg.Done()
			sp.logger.Warn("pool rejected summary, summarizing inline", "err", err)
			sp.summarize(ctx, note)
		}
	}
	wg.Wait()
	return ctx.Err()
}

func (sp *summaryProcessor) summarize(ctx context.Context, note *core.Note) {
	result, err := sp.summarizer.Summarize(ctx, note.Content, summarize.DefaultPoints)
	if err != nil {
		sp.logger.Warn("note summary failed", "title", note.Title, "err", err)
		return
	}
	note.Summary = result.Summary
}
