package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff_Success(t *testing.T) {
	attempts := 0
	err := Backoff{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}.Do(context.Background(), func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	err := Backoff{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond}.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	err := Backoff{MaxAttempts: 3, BaseDelay: time.Millisecond}.Do(context.Background(), func() error {
		attempts++
		return expectedErr
	})
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Backoff{MaxAttempts: 10, BaseDelay: 10 * time.Millisecond}.Do(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts, "should stop when context is canceled")
}

func TestBackoff_Delays(t *testing.T) {
	b := Backoff{BaseDelay: 10 * time.Millisecond}
	assert.Equal(t, 10*time.Millisecond, b.delay(1))
	assert.Equal(t, 20*time.Millisecond, b.delay(2))
	assert.Equal(t, 40*time.Millisecond, b.delay(3))

	b.MaxDelay = 25 * time.Millisecond
	assert.Equal(t, 25*time.Millisecond, b.delay(3), "capped")
}

func TestBackoff_InvalidMaxAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		attempts := 0
		err := Backoff{MaxAttempts: n}.Do(context.Background(), func() error {
			attempts++
			return nil
		})
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
		assert.Zero(t, attempts)
	}
}
