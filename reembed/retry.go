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


package reembed

import (
	"context"
	"log/slog"
	"time"
)

// Backoff retries an operation with exponential backoff.
type Backoff struct {
	// MaxAttempts is the total number of attempts (must be > 0).
	MaxAttempts int
	// BaseDelay is the wait after the first failure; it doubles on each retry.
	BaseDelay time.Duration
	// MaxDelay caps a single wait. Zero means no cap.
	MaxDelay time.Duration
	Logger   *slog.Logger
}

// delay returns the wait after the given failed attempt (1-based).
func (b Backoff) delay(attempt int) time.Duration {
	d := b.BaseDelay << (attempt - 1)
	if d < b.BaseDelay { // overflow
		d = b.MaxDelay
	}
	if b.MaxDelay > 0 && d > b.MaxDelay {
		d = b.MaxDelay
	}
	return d
}

// Do runs operation until it succeeds, MaxAttempts is reached or ctx is done.
// Returns the error from the last attempt if all attempts fail.
func (b Backoff) Do(ctx context.Context, operation func() error) error {
	if b.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == b.MaxAttempts {
			break
		}

		wait := b.delay(attempt)
		logger.Debug("operation failed, will retry",
			"attempt", attempt, "maxAttempts", b.MaxAttempts, "wait", wait, "err", lastErr)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
