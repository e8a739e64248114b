package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/pocketgenie"
	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/entity"
)

var sampleTasks = []entity.TaskInput{
	{Title: "Renew passport", Description: "Photos, form DS-82 and the old passport", Priority: core.PriorityHigh, Category: "personal", Tags: []string{"travel"}},
	{Title: "Fix flaky integration tests", Description: "The search suite times out on CI about once a day", Priority: core.PriorityUrgent, Category: "work", Tags: []string{"ci"}},
	{Title: "Book dentist appointment", Priority: core.PriorityMedium, Category: "health"},
	{Title: "Plan team offsite", Description: "Pick a venue and circulate an agenda", Priority: core.PriorityMedium, Category: "work"},
	{Title: "Buy groceries", Description: "Milk, eggs, bread and coffee", Priority: core.PriorityLow, Category: "errands", Tags: []string{"shopping"}},
	{Title: "File quarterly taxes", Priority: core.PriorityHigh, Category: "finance"},
	{Title: "Water the garden", Priority: core.PriorityLow, Category: "home"},
	{Title: "Write design review for storage layer", Description: "Cover revision checks and the record codec", Priority: core.PriorityHigh, Category: "work"},
}

// sampleDue spreads due dates over the next two weeks; zero means none.
var sampleDue = []int{5, 1, 0, 14, 2, 10, 0, 3}

var sampleNotes = []entity.NoteInput{
	{Title: "Offsite ideas", Content: "Hiking in the morning. Workshop on the roadmap after lunch. Dinner somewhere with a private room.", Category: "work"},
	{Title: "Coffee order", Content: "Two bags of the Ethiopian roast. Grind one for the office machine.", Category: "errands"},
	{Title: "Search tuning", Content: "Threshold 0.3 drops most noise. Short titles embed poorly. Consider titles of at least three words.", Category: "work", Tags: []string{"search"}},
	{Title: "Garden plan", Content: "Tomatoes along the south fence. Basil near the door. Move the mint into pots before it spreads.", Category: "home"},
	{Title: "Reading list", Content: "Designing Data-Intensive Applications. The Go Programming Language. A Philosophy of Software Design.", Category: "personal"},
}

var (
	dbPath       = flag.String("db", "./pocketgenie_db", "path to the database directory")
	host         = flag.String("host", ai.DefaultHost, "OpenAI-compatible model host")
	seedFileName = flag.String("src", "", "file of note lines to seed instead of the samples")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// notesFromLines turns each non-blank line into a note titled by its first words.
func notesFromLines(lines iter.Seq[string]) iter.Seq[entity.NoteInput] {
	return func(yield func(entity.NoteInput) bool) {
		for line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			words := strings.Fields(line)
			title := strings.Join(words[:min(6, len(words))], " ")
			if !yield(entity.NoteInput{Title: title, Content: line, Category: "imported"}) {
				return
			}
		}
	}
}

func main() {
	ctx := context.Background()

	db, err := pocketgenie.NewDatabase(ctx, *dbPath, pocketgenie.WithAIConfig(ai.NewConfig(ai.WithHost(*host))))
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ingester, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer ingester.Release()

	// Determine source of seed data
	notes := sampleNotes
	if *seedFileName != "" {
		lines, err := linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
		notes = slices.Collect(notesFromLines(lines))
	} else {
		tasks := slices.Clone(sampleTasks)
		now := time.Now().UTC()
		for i := range tasks {
			if days := sampleDue[i]; days > 0 {
				due := now.AddDate(0, 0, days)
				tasks[i].DueDate = &due
			}
		}
		stored, err := ingester.ImportTasks(ctx, tasks...)
		if err != nil {
			panic(err)
		}
		slog.Info("seeded tasks", "count", len(stored))
	}

	stored, err := ingester.ImportNotes(ctx, notes...)
	if err != nil {
		panic(err)
	}
	slog.Info("seeded notes", "count", len(stored))
}
