package mock

import (
	"context"
	"sync"

	"github.com/poiesic/pocketgenie/ai"
)

// DefaultResponse is returned by MockCompleter when nothing else is configured.
const DefaultResponse = "mock completion"

// MockCompleter is a test double for ai.Completer.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	CompleteFunc func(ctx context.Context, req ai.CompletionRequest) (string, error)

	// Response is returned when CompleteFunc is nil and Err is nil.
	Response string

	// Err, when set, is returned by every call.
	Err error

	mu       sync.Mutex
	requests []ai.CompletionRequest
}

// NewMockCompleter creates a mock completer that returns DefaultResponse.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{Response: DefaultResponse}
}

// Complete records req and returns the configured response.
func (m *MockCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request seen so far.
func (m *MockCompleter) Requests() []ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.CompletionRequest(nil), m.requests...)
}

// Reset clears recorded requests and custom behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.CompleteFunc = nil
	m.Err = nil
	m.Response = DefaultResponse
}
