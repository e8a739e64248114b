package openai

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/pocketgenie/ai"
	goopenai "github.com/sashabaranov/go-openai"
)

// Completer implements ai.Completer using the OpenAI chat completions API.
type Completer struct {
	client      *goopenai.Client
	model       string
	timeout     time.Duration
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := goopenai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.CompletionHost

	return &Completer{
		client:      goopenai.NewClientWithConfig(clientConfig),
		model:       config.CompletionModel,
		timeout:     config.CompletionTimeout,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Complete sends req.Prompt as a single user message and returns the first choice.
// The call is bounded by the configured completion timeout. Non-positive
// MaxTokens and Temperature are replaced by the configured defaults.
func (c *Completer) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = c.temperature
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	})
	if err != nil {
		c.logger.Warn("completion request failed", "model", c.model, "elapsed", time.Since(start), "err", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ai.ErrEmptyCompletion
	}

	c.logger.Debug("completion finished", "model", c.model, "elapsed", time.Since(start), "tokens", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}
