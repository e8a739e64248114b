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


package ai

import (
	"context"
	"fmt"
	"strings"
)

// Outcome is the result of an advisory model call. Exactly one of Text or
// Reason is meaningful: a successful call carries the model text, a degraded
// one carries the reason the caller has to fall back.
type Outcome struct {
	Text   string
	Reason error
}

// Ok wraps successful model output.
func Ok(text string) Outcome {
	return Outcome{Text: text}
}

// Fallback records why model output is unavailable.
func Fallback(reason error) Outcome {
	return Outcome{Reason: reason}
}

// IsFallback reports whether the caller must use its local fallback.
func (o Outcome) IsFallback() bool {
	return o.Reason != nil
}

// Resolve returns the model text, or the result of fallback when the call degraded.
func (o Outcome) Resolve(fallback func() string) string {
	if o.IsFallback() {
		return fallback()
	}
	return o.Text
}

// Complete runs req against c and never returns an error: a nil completer,
// a failed call or a blank response all become a Fallback outcome.
func Complete(ctx context.Context, c Completer, req CompletionRequest) Outcome {
	if c == nil {
		return Fallback(ErrCompleterUnavailable)
	}
	text, err := c.Complete(ctx, req)
	if err != nil {
		return Fallback(fmt.Errorf("completion failed: %w", err))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Fallback(ErrEmptyCompletion)
	}
	return Ok(text)
}
