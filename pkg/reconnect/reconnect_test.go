package reconnect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, nil, fastConfig(10))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestFatalStopsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := WithRetry(context.Background(), func() error {
		calls++
		return &FatalError{Err: boom}
	}, nil, fastConfig(10))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestAttemptBudget(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return errors.New("always")
	}, nil, fastConfig(4))

	require.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return errors.New("always")
	}, nil, fastConfig(0))

	assert.ErrorIs(t, err, context.Canceled)
}
