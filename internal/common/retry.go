package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/grantflow/internal/service"
)

var (
	// ErrRateLimit indicates that a remote API rate limit has been exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// backoff tracks the delay between attempts.
type backoff struct {
	opts  service.RetryOptions
	delay time.Duration
}

func newBackoff(opts service.RetryOptions) *backoff {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	return &backoff{opts: opts, delay: opts.InitialDelay}
}

// next returns how long to wait after err and grows the following delay.
// Rate limits wait the maximum.
func (b *backoff) next(err error) time.Duration {
	if errors.Is(err, ErrRateLimit) {
		b.delay = b.opts.MaxDelay
	}
	wait := b.delay
	b.delay = min(time.Duration(float64(b.delay)*b.opts.Multiplier), b.opts.MaxDelay)
	return wait
}

// WithRetry runs operation until it succeeds, returns a non-retryable error,
// ctx ends or the attempts run out. Exhaustion wraps ErrMaxRetries.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	b := newBackoff(opts)

	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == b.opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %v", ErrMaxRetries, attempt, err)
		}

		wait := b.next(err)
		LogWarn("Operation failed, retrying", Fields{
			"attempt":      attempt,
			"max_attempts": b.opts.MaxAttempts,
			"delay":        wait,
			"error":        err.Error(),
		})

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
