// Package reconnect provides bounded exponential-backoff retry for
// long-lived connections such as the audio engine websocket.
package reconnect

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// FatalError wraps errors that should stop retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Config configures retry behavior.
type Config struct {
	MaxAttempts  int           // 0 means unlimited, capped at 100
	InitialDelay time.Duration // delay before the second attempt
	MaxDelay     time.Duration // ceiling for the backoff
	Multiplier   float64       // backoff growth factor
	Jitter       bool          // randomize delays to avoid thundering herd
	OnRetry      func(attempt int, err error)
}

// DefaultConfig returns a configuration suited to engine reconnects.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  0,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// WithRetry executes fn until it succeeds, returns a FatalError, the context
// is cancelled, or the attempt budget runs out. The optional limiter paces
// attempts globally across callers.
func WithRetry(ctx context.Context, fn func() error, lim *rate.Limiter, cfg Config) error {
	if cfg.MaxAttempts <= 0 || cfg.MaxAttempts > 100 {
		cfg.MaxAttempts = 100
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 2.0
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return err
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		wait := delay
		if cfg.Jitter {
			wait += time.Duration(rand.Int63n(int64(delay)/2 + 1))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return lastErr
}
