package vision_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealscan/internal/domain"
	"mealscan/internal/vision"
)

func fastPolicy(maxAttempts int) vision.RetryPolicy {
	return vision.RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2,
		Jitter:      time.Millisecond,
	}
}

func serverError(status int) *domain.ProviderError {
	return &domain.ProviderError{Provider: "test", StatusCode: status, Body: "boom"}
}

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	result, err := vision.WithRetry(context.Background(), fastPolicy(3), nil, func(ctx context.Context) (string, error) {
		attempts++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_RespectsAttemptBudget(t *testing.T) {
	attempts := 0
	_, err := vision.WithRetry(context.Background(), fastPolicy(2), nil, func(ctx context.Context) (string, error) {
		attempts++
		return "", serverError(503)
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempts, "attempts must never exceed the configured bound")

	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, 503, provErr.StatusCode)
}

func TestWithRetry_RecoversWithinBudget(t *testing.T) {
	attempts := 0
	result, err := vision.WithRetry(context.Background(), fastPolicy(2), nil, func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", serverError(503)
		}
		return "recovered", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 2, attempts)
}

func TestWithRetry_FatalErrorNeverRetried(t *testing.T) {
	attempts := 0
	_, err := vision.WithRetry(context.Background(), fastPolicy(5), nil, func(ctx context.Context) (string, error) {
		attempts++
		return "", serverError(400)
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts, "a 400 response must never be retried")
}

func TestWithRetry_HookObservesEachRetry(t *testing.T) {
	var hookAttempts []int
	var hookErrs []error
	hook := func(attempt int, err error) {
		hookAttempts = append(hookAttempts, attempt)
		hookErrs = append(hookErrs, err)
	}

	_, err := vision.WithRetry(context.Background(), fastPolicy(3), hook, func(ctx context.Context) (string, error) {
		return "", serverError(502)
	})

	require.Error(t, err)
	assert.Equal(t, []int{2, 3}, hookAttempts)
	for _, hookErr := range hookErrs {
		var provErr *domain.ProviderError
		assert.ErrorAs(t, hookErr, &provErr)
	}
}

func TestWithRetry_ContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	_, err := vision.WithRetry(ctx, fastPolicy(5), nil, func(ctx context.Context) (string, error) {
		attempts++
		cancel()
		return "", serverError(503)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, vision.IsRetryable(serverError(503)))
	assert.True(t, vision.IsRetryable(serverError(500)))
	assert.True(t, vision.IsRetryable(domain.NewTimeoutError("test", errors.New("deadline"))))
	assert.False(t, vision.IsRetryable(serverError(400)))
	assert.False(t, vision.IsRetryable(serverError(429)))
	assert.False(t, vision.IsRetryable(context.Canceled))
	// Unclassified transport failures are retried
	assert.True(t, vision.IsRetryable(errors.New("connection reset")))
}

func TestRetryPolicy_DelayCappedWithJitter(t *testing.T) {
	policy := vision.RetryPolicy{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   400 * time.Millisecond,
		Multiplier: 2,
		Jitter:     50 * time.Millisecond,
	}

	for attempt := 2; attempt <= 10; attempt++ {
		d := policy.Delay(attempt)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 400*time.Millisecond+50*time.Millisecond, "attempt %d", attempt)
	}

	// Second attempt starts at the base delay
	d := policy.Delay(2)
	assert.Less(t, d, 100*time.Millisecond+51*time.Millisecond)
}
