package codacy

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	// MaxAttempts is the number of attempts, including the first one
	MaxAttempts int
	// Delay is the fixed wait between attempts
	Delay time.Duration
	// NewBackOff overrides the wait strategy; tests use a zero backoff
	NewBackOff func() backoff.BackOff
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
	}
}

func (c RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	if c.NewBackOff != nil {
		b = c.NewBackOff()
	} else {
		b = backoff.NewConstantBackOff(c.Delay)
	}

	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// RetryNotify is called before each wait with the failed attempt's error.
type RetryNotify func(err error, wait time.Duration)

// WithRetry executes fn until it succeeds, fails permanently, the attempts
// are exhausted or ctx is done. The last error is returned unchanged.
func WithRetry(ctx context.Context, config RetryConfig, notify RetryNotify, fn func() error) error {
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		err := fn()
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var n backoff.Notify
	if notify != nil {
		n = backoff.Notify(notify)
	}

	err := backoff.RetryNotify(op, config.backOff(ctx), n)
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		return errors.Join(ctx.Err(), err)
	}
	return err
}
