// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/pocketgenie/ai"
)

// probeText is embedded once at startup to verify the embedding model is reachable.
const probeText = "ping"

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages embedder and completer instances.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	completer *Completer
	logger    *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use, and the embedding model
// is probed once: an unreachable or misbehaving model fails with
// ai.ErrEmbedderUnavailable. An empty CompletionHost yields a provider whose
// Completer is nil, which callers treat as "always fall back".
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	if err := probe(ctx, embedder); err != nil {
		return nil, err
	}

	var completer *Completer
	if config.CompletionHost != "" {
		completer, err = newCompleter(config)
		if err != nil {
			return nil, err
		}
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		completer: completer,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

func probe(ctx context.Context, embedder ai.Embedder) error {
	vec, err := embedder.EmbedText(ctx, probeText)
	if err != nil {
		return fmt.Errorf("%w: %w", ai.ErrEmbedderUnavailable, err)
	}
	if len(vec) == 0 {
		return fmt.Errorf("%w: model returned an empty vector", ai.ErrEmbedderUnavailable)
	}
	return nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the text completion service, or nil when none is configured.
func (p *Provider) Completer() ai.Completer {
	if p.completer == nil {
		return nil
	}
	return p.completer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
