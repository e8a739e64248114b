package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/pocketgenie/ai"
)

const (
	// DefaultPoints is used when the caller passes zero.
	DefaultPoints = 5
	// MaxPoints is the largest accepted bullet count.
	MaxPoints = 10

	summaryRunes = 200
	chunkRunes   = 100
	chunkWindow  = 500
)

const promptTemplate = `Summarize the content below in %d short bullet points covering the key facts and any action items.

%s

Answer with a one-paragraph summary on the first line, then one bullet point per line starting with "- ".`

// Result is the outcome of a summarization.
type Result struct {
	Summary      string
	BulletPoints []string
	// Degraded is set when the local fallback produced the text.
	Degraded bool
}

// Summarizer produces summaries through an ai.Completer with a local fallback.
type Summarizer struct {
	completer   ai.Completer
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Summarizer) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger.With("component", "summarizer")
		return nil
	}
}

// WithMaxTokens overrides the completion length.
func WithMaxTokens(n int) Option {
	return func(s *Summarizer) error {
		if n < 1 {
			return fmt.Errorf("max tokens must be positive, got %d", n)
		}
		s.maxTokens = n
		return nil
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(s *Summarizer) error {
		if t < 0 || t > 2 {
			return fmt.Errorf("temperature must be between 0 and 2, got %v", t)
		}
		s.temperature = t
		return nil
	}
}

// NewSummarizer creates a Summarizer. A nil completer is allowed and makes
// every call use the local fallback.
func NewSummarizer(completer ai.Completer, opts ...Option) (*Summarizer, error) {
	s := &Summarizer{
		completer:   completer,
		maxTokens:   ai.DefaultMaxTokens,
		temperature: ai.DefaultTemperature,
		logger:      slog.Default().With("component", "summarizer"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Summarize returns a summary of content with at most maxPoints bullets.
// maxPoints of zero selects DefaultPoints.
func (s *Summarizer) Summarize(ctx context.Context, content string, maxPoints int) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if maxPoints == 0 {
		maxPoints = DefaultPoints
	}
	if maxPoints < 1 || maxPoints > MaxPoints {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxPoints, maxPoints)
	}

	out := ai.Complete(ctx, s.completer, ai.CompletionRequest{
		Prompt:      fmt.Sprintf(promptTemplate, maxPoints, content),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if out.IsFallback() {
		s.logger.Warn("completion unavailable, using extractive summary", "err", out.Reason)
	}
	text := out.Resolve(func() string { return Extractive(content, maxPoints) })

	result := Parse(text, content, maxPoints)
	result.Degraded = out.IsFallback()
	return result, nil
}

// Parse splits model output into a summary and bullet points. The first line
// is the summary; later lines starting with "-", "•" or "*" are bullets.
// Without any bullets, the first 500 characters of content are cut into
// 100-character chunks instead.
func Parse(text, content string, maxPoints int) *Result {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	summary := strings.TrimSpace(lines[0])
	if summary == "" {
		summary = truncateRunes(content, summaryRunes)
	}

	var bullets []string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if !isBullet(line) {
			continue
		}
		if point := strings.TrimLeft(line, "-•* "); point != "" {
			bullets = append(bullets, point)
		}
	}
	if len(bullets) == 0 {
		bullets = chunk(content, chunkRunes, chunkWindow)
	}
	if len(bullets) > maxPoints {
		bullets = bullets[:maxPoints]
	}

	return &Result{Summary: summary, BulletPoints: bullets}
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*")
}

// Extractive builds a summary without a model: the first two sentences form
// the summary line and up to maxPoints following sentences become bullets.
// The output has the same shape Parse expects from a model.
func Extractive(content string, maxPoints int) string {
	var sentences []string
	for _, s := range strings.Split(content, ".") {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return truncateRunes(strings.Join(strings.Fields(content), " "), summaryRunes)
	}

	head := sentences[:min(2, len(sentences))]
	var b strings.Builder
	b.WriteString(strings.Join(head, ". "))
	b.WriteString(".")
	for i, s := range sentences[len(head):] {
		if i >= maxPoints {
			break
		}
		b.WriteString("\n- ")
		b.WriteString(s)
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// chunk cuts the first window runes of s into pieces of size runes.
func chunk(s string, size, window int) []string {
	r := []rune(s)
	if len(r) > window {
		r = r[:window]
	}
	var chunks []string
	for i := 0; i < len(r); i += size {
		chunks = append(chunks, string(r[i:min(i+size, len(r))]))
	}
	return chunks
}
