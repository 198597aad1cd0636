package llm

import (
	"context"
	"time"
)

// RetryPolicy controls how failed provider calls are retried
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int
	// Delay is used when Backoff is empty
	Delay time.Duration
	// Backoff lists the wait before attempt 2, 3, ... The last element is
	// reused for any further attempts.
	Backoff []time.Duration
	// ShouldRetry decides whether an error is worth another attempt.
	// Defaults to DefaultShouldRetry.
	ShouldRetry func(error) bool
	// OnRetry is called before each wait
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryPolicy returns 3 attempts with 1s, 2s, 4s backoff
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       time.Second,
		Backoff:     []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		ShouldRetry: DefaultShouldRetry,
	}
}

// RetryConfig is the serialized form of a RetryPolicy
type RetryConfig struct {
	MaxAttempts int   `json:"max_attempts" validate:"gte=1,lte=10"`
	DelayMs     int   `json:"delay_ms" validate:"gte=0"`
	BackoffMs   []int `json:"backoff_ms,omitempty" validate:"dive,gte=0"`
}

// DefaultRetryConfig mirrors DefaultRetryPolicy
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		DelayMs:     1000,
		BackoffMs:   []int{1000, 2000, 4000},
	}
}

// Policy converts the config into a RetryPolicy using DefaultShouldRetry
func (c RetryConfig) Policy() RetryPolicy {
	backoff := make([]time.Duration, 0, len(c.BackoffMs))
	for _, ms := range c.BackoffMs {
		backoff = append(backoff, time.Duration(ms)*time.Millisecond)
	}
	return RetryPolicy{
		MaxAttempts: c.MaxAttempts,
		Delay:       time.Duration(c.DelayMs) * time.Millisecond,
		Backoff:     backoff,
		ShouldRetry: DefaultShouldRetry,
	}
}

// delayFor returns the wait before the given attempt (attempt >= 2)
func (p RetryPolicy) delayFor(attempt int) time.Duration {
	if len(p.Backoff) == 0 {
		return p.Delay
	}
	idx := attempt - 2
	if idx >= len(p.Backoff) {
		idx = len(p.Backoff) - 1
	}
	return p.Backoff[idx]
}

// sleep waits for d or until ctx is done. Tests replace it.
var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithRetry runs fn until it succeeds, the policy gives up, or ctx is done.
// On exhaustion the last error is returned.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	shouldRetry := policy.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = DefaultShouldRetry
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == maxAttempts || !shouldRetry(err) {
			break
		}

		delay := policy.delayFor(attempt + 1)
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, lastErr
		}
	}

	return zero, lastErr
}
