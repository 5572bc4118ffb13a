package vision

import (
	"context"
	"fmt"
	"log"

	"mealscan/internal/domain"
	"mealscan/internal/metrics"
	"mealscan/internal/port"
)

// Client wraps a VisionProvider with the bounded retry policy. It performs
// the network call and classification only; fallback behavior lives one
// layer up, so a caller (or a test) of the client still sees the raw error
// when the budget is exhausted.
type Client struct {
	provider port.VisionProvider
	policy   RetryPolicy
	onRetry  RetryHook
}

// NewClient creates a retrying client around provider. hook may be nil.
func NewClient(provider port.VisionProvider, policy RetryPolicy, hook RetryHook) *Client {
	return &Client{provider: provider, policy: policy, onRetry: hook}
}

// Provider returns the short name of the wrapped backend.
func (c *Client) Provider() string {
	return c.provider.Name()
}

// Analyze sends the request, retrying server-class failures per the policy.
// On exhaustion the last classified error is wrapped in ErrAnalysisFailed.
func (c *Client) Analyze(ctx context.Context, req port.AnalysisRequest) ([]byte, error) {
	hook := func(attempt int, err error) {
		metrics.RetriesTotal.Inc()
		log.Printf("vision.Client: retrying %s call (attempt %d): %v", c.provider.Name(), attempt, err)
		if c.onRetry != nil {
			c.onRetry(attempt, err)
		}
	}

	raw, err := WithRetry(ctx, c.policy, hook, func(ctx context.Context) ([]byte, error) {
		return c.provider.Generate(ctx, req)
	})
	if err != nil {
		// Fatal (4xx-class) errors propagate as they are; only an
		// exhausted retry budget is reported as "analysis failed".
		if !IsRetryable(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err)
	}
	return raw, nil
}
