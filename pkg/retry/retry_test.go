package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	var retried []int
	cfg := Config{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 2,
		OnRetry: func(attempt int, err error, nextDelay time.Duration) {
			retried = append(retried, attempt)
		},
	}

	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_SingleAttemptReturnsUnderlyingError(t *testing.T) {
	sentinel := errors.New("boom")
	err := Do(context.Background(), Config{MaxAttempts: 1}, func(ctx context.Context) error {
		return sentinel
	})
	assert.Same(t, sentinel, err)
}

func TestDo_ExhaustedWrapsLastError(t *testing.T) {
	sentinel := errors.New("boom")
	err := Do(context.Background(), Config{MaxAttempts: 2, InitialDelay: time.Millisecond}, func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, DefaultConfig(), func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}
