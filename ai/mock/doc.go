// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Completer,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Simulate a failing completion backend
//	mockCompleter := mock.NewMockCompleter()
//	mockCompleter.Err = errors.New("model offline")
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: hashed bag-of-words unit vectors, so texts sharing words
//     score higher than unrelated texts; blank text yields an empty vector
//   - MockCompleter: echoes a fixed response
//   - MockProvider: aggregates mock embedder and completer
package mock
