package llm

import (
	"context"

	wferrors "github.com/randalmurphal/researchflow/pkg/workflow/errors"
)

// RetryingClient wraps a Client and retries transient completion failures
// with exponential backoff. Retryability follows the Error.Retryable flag
// set by the underlying client unless a custom check is configured.
type RetryingClient struct {
	inner Client
	cfg   wferrors.RetryConfig
}

// NewRetryingClient wraps inner with retry behavior.
func NewRetryingClient(inner Client, opts ...wferrors.RetryOption) *RetryingClient {
	cfg := wferrors.NewRetryConfig(opts...)
	if cfg.RetryableFunc == nil {
		cfg.RetryableFunc = IsRetryable
	}
	return &RetryingClient{inner: inner, cfg: cfg}
}

// Complete implements Client.
func (c *RetryingClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	result := wferrors.WithRetryContext(ctx, c.cfg, func(ctx context.Context) (*CompletionResponse, error) {
		return c.inner.Complete(ctx, req)
	})
	if result.Err != nil {
		return nil, result.Err
	}
	return result.Value, nil
}
