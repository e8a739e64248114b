package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Blank or whitespace-only text yields an empty vector and no error;
	// callers treat an empty vector as "no embedding available".
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice has one entry per input, in input order, and each
	// entry equals what EmbedText would return for that input.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer is a text-completion backend.
// Implementations must be thread-safe and should bound each call with a timeout.
type Completer interface {
	// Complete returns the model's continuation of req.Prompt.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is a single completion call.
type CompletionRequest struct {
	Prompt string
	// MaxTokens of zero or less uses the provider default.
	MaxTokens int
	// Temperature of zero or less uses the provider default, so a request
	// cannot ask for exactly 0. OpenAI-compatible clients omit a zero
	// temperature from the request body anyway.
	Temperature float64
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider is built once per process and shared read-only by all requests.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Completer returns the text completion service.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
