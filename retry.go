// retry.go
// --------
// This file implements retry with exponential backoff for fallible operations
// against external services.
//
// The delay before retry n (0-indexed) is BaseDelay * BackoffFactor^n: the
// first retry waits BaseDelay, the second BaseDelay*BackoffFactor, and so on.
// There is no jitter and no cap on the delay; bounding the worst-case wait by
// choosing sane MaxRetries and BackoffFactor values is the caller's
// responsibility.
package agentbridge

import (
	"context"
	"math"
	"time"
)

// RetryConfig controls retry behavior. The zero value is not valid; use
// DefaultRetryConfig or set every field.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt, so the
	// total number of attempts is MaxRetries+1.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// BackoffFactor is the multiplicative growth per subsequent retry,
	// typically > 1.
	BackoffFactor float64
}

// DefaultRetryConfig returns the default policy: 3 retries, 1s base delay,
// 2x backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     time.Second,
		BackoffFactor: 2.0,
	}
}

// Validate reports a ConfigError if any field is out of range.
func (c RetryConfig) Validate() error {
	if c.MaxRetries < 0 {
		return &ConfigError{Field: "MaxRetries", Reason: "must not be negative"}
	}
	if c.BaseDelay <= 0 {
		return &ConfigError{Field: "BaseDelay", Reason: "must be positive"}
	}
	if c.BackoffFactor <= 0 {
		return &ConfigError{Field: "BackoffFactor", Reason: "must be positive"}
	}
	return nil
}

// delay returns the backoff before retry attempt (0-indexed).
func (c RetryConfig) delay(attempt int) time.Duration {
	return time.Duration(float64(c.BaseDelay) * math.Pow(c.BackoffFactor, float64(attempt)))
}

// RetryWithBackoff runs op until it succeeds, fails with a non-retryable
// error, or exhausts cfg.MaxRetries+1 attempts.
//
// retryable decides whether a failure is transient; nil means
// DefaultRetryable. onRetry, if non-nil, is called before each backoff sleep
// with the 0-indexed attempt that just failed, its error, and the upcoming
// delay.
//
// A non-retryable failure propagates immediately and unchanged. When all
// attempts fail the last error is wrapped in a RetriesExhaustedError, which
// unwraps to the original failure. Cancellation of ctx during a backoff sleep
// returns ctx.Err() without another attempt.
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	retryable func(error) bool,
	onRetry func(attempt int, err error, delay time.Duration),
	op func(context.Context) (T, error),
) (T, error) {
	var zero T
	if err := cfg.Validate(); err != nil {
		return zero, err
	}
	if retryable == nil {
		retryable = DefaultRetryable
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err
		if attempt == cfg.MaxRetries {
			break
		}
		d := cfg.delay(attempt)
		if onRetry != nil {
			onRetry(attempt, err, d)
		}
		if serr := sleepContext(ctx, d); serr != nil {
			return zero, serr
		}
	}
	return zero, &RetriesExhaustedError{Attempts: cfg.MaxRetries + 1, Err: lastErr}
}

// sleepContext sleeps for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
