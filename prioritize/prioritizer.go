package prioritize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/pocketgenie/ai"
	"github.com/poiesic/pocketgenie/core"
)

const (
	// FallbackReasoning explains the order when no model text is available.
	FallbackReasoning = "Prioritized by due date and priority level"
	// EmptyReasoning is returned for an empty task list.
	EmptyReasoning = "No tasks to prioritize"
)

// ErrNilTask indicates a nil entry in the task list.
var ErrNilTask = errors.New("nil task")

const promptHeader = `Rank the following tasks by urgency and recommend the single task to focus on next:

%s

Take into account:
1. Due dates, nearest deadlines first
2. Priority levels
3. Descriptions and likely effort
4. Dependencies between tasks

Explain your reasoning briefly.`

// Result is a prioritized task list.
type Result struct {
	// Tasks is the Rank order.
	Tasks []*core.Task
	// NextBestAction is the first ranked task, nil when there are none.
	NextBestAction *core.Task
	// Reasoning is advisory model text, or a fixed explanation on fallback.
	Reasoning string
	// Degraded is set when Reasoning did not come from the model.
	Degraded bool
}

// Prioritizer ranks tasks and asks a completion model for reasoning.
type Prioritizer struct {
	completer   ai.Completer
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// Option configures a Prioritizer.
type Option func(*Prioritizer) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prioritizer) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		p.logger = logger.With("component", "prioritizer")
		return nil
	}
}

// WithMaxTokens overrides the completion length.
func WithMaxTokens(n int) Option {
	return func(p *Prioritizer) error {
		if n < 1 {
			return fmt.Errorf("max tokens must be positive, got %d", n)
		}
		p.maxTokens = n
		return nil
	}
}

// NewPrioritizer creates a Prioritizer. A nil completer is allowed; the
// result then always carries FallbackReasoning.
func NewPrioritizer(completer ai.Completer, opts ...Option) (*Prioritizer, error) {
	p := &Prioritizer{
		completer:   completer,
		maxTokens:   ai.DefaultMaxTokens,
		temperature: ai.DefaultTemperature,
		logger:      slog.Default().With("component", "prioritizer"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Prioritize ranks tasks. It fails only on invalid input; model problems
// degrade the reasoning text.
func (p *Prioritizer) Prioritize(ctx context.Context, tasks []*core.Task) (*Result, error) {
	for i, t := range tasks {
		if t == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilTask, i)
		}
	}
	if len(tasks) == 0 {
		return &Result{Tasks: []*core.Task{}, Reasoning: EmptyReasoning}, nil
	}

	ranked := Rank(tasks)

	out := ai.Complete(ctx, p.completer, ai.CompletionRequest{
		Prompt:      BuildPrompt(tasks),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if out.IsFallback() {
		p.logger.Warn("completion unavailable, using heuristic reasoning", "tasks", len(tasks), "err", out.Reason)
	}

	return &Result{
		Tasks:          ranked,
		NextBestAction: ranked[0],
		Reasoning:      out.Resolve(func() string { return FallbackReasoning }),
		Degraded:       out.IsFallback(),
	}, nil
}

// BuildPrompt lists tasks one per line with their priority and due date.
func BuildPrompt(tasks []*core.Task) string {
	var b strings.Builder
	for i, t := range tasks {
		if i > 0 {
			b.WriteByte('\n')
		}
		due := "No due date"
		if t.DueDate != nil {
			due = t.DueDate.Format(time.RFC3339)
		}
		fmt.Fprintf(&b, "- %s (Priority: %d, Due: %s)", t.Title, t.Priority, due)
	}
	return fmt.Sprintf(promptHeader, b.String())
}
