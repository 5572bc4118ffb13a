package vision

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"mealscan/internal/domain"
)

// RetryPolicy describes a bounded exponential backoff. MaxAttempts counts
// total attempts, first call included.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      time.Duration
}

// DefaultRetryPolicy is tuned for the vision call: it is expensive, so the
// attempt budget is small.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
		Multiplier:  2,
		Jitter:      250 * time.Millisecond,
	}
}

// IsRetryable reports whether err is a server-class provider failure worth
// another attempt. Anything that is not a classified ProviderError is
// treated as a transport failure and retried.
func IsRetryable(err error) bool {
	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// RetryHook observes each retry with the upcoming attempt number (2-based)
// and the error that triggered it.
type RetryHook func(attempt int, err error)

// Delay computes the backoff before the given attempt (2-based), capped at
// MaxDelay, with random jitter added to avoid synchronized retries.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 2; i < attempt; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
		if d >= p.MaxDelay {
			d = p.MaxDelay
			break
		}
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return d
}

// WithRetry runs op under the policy. Fatal errors propagate immediately;
// retryable ones are re-attempted until the budget is spent, after which
// the last error is returned. onRetry may be nil.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, onRetry RetryHook, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if onRetry != nil {
				onRetry(attempt, lastErr)
			}
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(policy.Delay(attempt)):
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}
	}

	return zero, lastErr
}
