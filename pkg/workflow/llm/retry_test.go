package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wferrors "github.com/randalmurphal/researchflow/pkg/workflow/errors"
)

// flakyClient fails a set number of times before succeeding.
type flakyClient struct {
	failures int
	err      error
	calls    int
}

func (c *flakyClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, c.err
	}
	return &CompletionResponse{Content: "ok"}, nil
}

func fastRetryOptions() []wferrors.RetryOption {
	return []wferrors.RetryOption{
		wferrors.WithMaxAttempts(3),
		wferrors.WithInitialBackoff(time.Millisecond),
		wferrors.WithMaxBackoff(time.Millisecond),
		wferrors.WithJitter(0),
	}
}

func TestRetryingClient_RetriesTransientFailure(t *testing.T) {
	inner := &flakyClient{
		failures: 2,
		err:      NewError("complete", errors.New("rate limited"), true),
	}
	client := NewRetryingClient(inner, fastRetryOptions()...)

	resp, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingClient_StopsOnPermanentFailure(t *testing.T) {
	inner := &flakyClient{
		failures: 5,
		err:      NewError("complete", errors.New("bad request"), false),
	}
	client := NewRetryingClient(inner, fastRetryOptions()...)

	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)

	var llmErr *Error
	assert.ErrorAs(t, err, &llmErr)
}

func TestRetryingClient_ExhaustsAttempts(t *testing.T) {
	inner := &flakyClient{
		failures: 10,
		err:      NewError("complete", errors.New("rate limited"), true),
	}
	client := NewRetryingClient(inner, fastRetryOptions()...)

	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingClient_PassesResponseThrough(t *testing.T) {
	inner := &flakyClient{}
	client := NewRetryingClient(inner)

	resp, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, inner.calls)
}
