package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubCompleter struct {
	text string
	err  error
}

func (s stubCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return s.text, s.err
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	fallback := func() string { return "local" }

	t.Run("model text", func(t *testing.T) {
		out := Complete(ctx, stubCompleter{text: "  model says hi\n"}, CompletionRequest{Prompt: "p"})

		assert.False(t, out.IsFallback())
		assert.Equal(t, "model says hi", out.Resolve(fallback))
	})

	t.Run("nil completer", func(t *testing.T) {
		out := Complete(ctx, nil, CompletionRequest{Prompt: "p"})

		assert.True(t, out.IsFallback())
		assert.ErrorIs(t, out.Reason, ErrCompleterUnavailable)
		assert.Equal(t, "local", out.Resolve(fallback))
	})

	t.Run("backend error", func(t *testing.T) {
		boom := errors.New("boom")
		out := Complete(ctx, stubCompleter{err: boom}, CompletionRequest{Prompt: "p"})

		assert.True(t, out.IsFallback())
		assert.ErrorIs(t, out.Reason, boom)
		assert.Equal(t, "local", out.Resolve(fallback))
	})

	t.Run("blank response", func(t *testing.T) {
		out := Complete(ctx, stubCompleter{text: " \n\t"}, CompletionRequest{Prompt: "p"})

		assert.ErrorIs(t, out.Reason, ErrEmptyCompletion)
		assert.Equal(t, "local", out.Resolve(fallback))
	})
}
