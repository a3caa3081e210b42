package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize_HTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Category
	}{
		{429, CategoryTransient},
		{500, CategoryTransient},
		{503, CategoryTransient},
		{504, CategoryTransient},
		{400, CategoryPermanent},
		{401, CategoryPermanent},
		{403, CategoryPermanent},
		{404, CategoryPermanent},
	}

	for _, tt := range tests {
		err := &HTTPError{StatusCode: tt.status, Message: "nope"}
		assert.Equal(t, tt.want, Categorize(err), "status %d", tt.status)
	}
}

func TestCategorize_Timeout(t *testing.T) {
	err := &TimeoutError{Operation: "completion", Duration: "30s"}
	assert.Equal(t, CategoryTransient, Categorize(err))
	assert.True(t, IsRetryable(err))
}

func TestCategorize_ContextErrors(t *testing.T) {
	assert.Equal(t, CategoryPermanent, Categorize(context.Canceled))
	assert.Equal(t, CategoryPermanent, Categorize(context.DeadlineExceeded))
}

func TestCategorize_UnknownDefaultsPermanent(t *testing.T) {
	assert.Equal(t, CategoryPermanent, Categorize(errors.New("mystery")))
	assert.False(t, IsRetryable(errors.New("mystery")))
}

func TestCategorize_PreCategorized(t *testing.T) {
	inner := errors.New("rate limited")
	assert.Equal(t, CategoryTransient, Categorize(Transient(inner, "search")))
	assert.Equal(t, CategoryPermanent, Categorize(Permanent(inner, "search")))
}

func TestCategorizedError_Message(t *testing.T) {
	err := &CategorizedError{
		Err:      errors.New("rate limited"),
		Category: CategoryTransient,
		Retries:  2,
		Context:  "completion",
	}

	assert.Contains(t, err.Error(), "completion")
	assert.Contains(t, err.Error(), "transient")
	assert.Contains(t, err.Error(), "2")
}

func TestCategorizedError_Unwrap(t *testing.T) {
	inner := errors.New("rate limited")
	err := Transient(inner, "completion")
	assert.ErrorIs(t, err, inner)
}

func TestHTTPError_Message(t *testing.T) {
	withEndpoint := &HTTPError{StatusCode: 429, Message: "slow down", Endpoint: "/search"}
	assert.Equal(t, "HTTP 429 at /search: slow down", withEndpoint.Error())

	bare := &HTTPError{StatusCode: 500, Message: "oops"}
	assert.Equal(t, "HTTP 500: oops", bare.Error())
}

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result := WithRetry(DefaultRetry, func() (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, result.Err)
	assert.Equal(t, "ok", result.Value)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RetriesTransient(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  1.0,
	}

	calls := 0
	result := WithRetry(cfg, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &HTTPError{StatusCode: 503, Message: "unavailable"}
		}
		return "ok", nil
	})

	require.NoError(t, result.Err)
	assert.Equal(t, "ok", result.Value)
	assert.Equal(t, 3, result.Attempts)
}

func TestWithRetry_StopsOnPermanent(t *testing.T) {
	calls := 0
	result := WithRetry(DefaultRetry, func() (string, error) {
		calls++
		return "", &HTTPError{StatusCode: 401, Message: "bad key"}
	})

	require.Error(t, result.Err)
	assert.Equal(t, 1, calls)

	var catErr *CategorizedError
	require.ErrorAs(t, result.Err, &catErr)
	assert.Equal(t, CategoryPermanent, catErr.Category)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  1.0,
	}

	calls := 0
	result := WithRetry(cfg, func() (int, error) {
		calls++
		return 0, &HTTPError{StatusCode: 429, Message: "rate limited"}
	})

	require.Error(t, result.Err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, result.Attempts)

	var catErr *CategorizedError
	require.ErrorAs(t, result.Err, &catErr)
	assert.Equal(t, "max retries exceeded", catErr.Context)
}

func TestWithRetry_CustomRetryableFunc(t *testing.T) {
	marker := errors.New("try again")
	cfg := RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  1.0,
		RetryableFunc:  func(err error) bool { return errors.Is(err, marker) },
	}

	calls := 0
	result := WithRetry(cfg, func() (string, error) {
		calls++
		if calls == 1 {
			return "", marker
		}
		return "ok", nil
	})

	require.NoError(t, result.Err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryContext_CancelledBeforeAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	result := WithRetryContext(ctx, DefaultRetry, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("should not run")
	})

	require.Error(t, result.Err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, result.Attempts)
}

func TestWithRetryContext_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Minute,
		MaxBackoff:     time.Minute,
		BackoffFactor:  1.0,
	}

	started := make(chan struct{})
	done := make(chan RetryResult[string])
	go func() {
		first := true
		done <- WithRetryContext(ctx, cfg, func(ctx context.Context) (string, error) {
			if first {
				first = false
				close(started)
			}
			return "", &HTTPError{StatusCode: 503, Message: "unavailable"}
		})
	}()

	<-started
	cancel()

	select {
	case result := <-done:
		require.Error(t, result.Err)
		assert.Equal(t, 1, result.Attempts)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestNewRetryConfig_Options(t *testing.T) {
	cfg := NewRetryConfig(
		WithMaxAttempts(5),
		WithInitialBackoff(100*time.Millisecond),
		WithMaxBackoff(time.Second),
		WithBackoffFactor(1.5),
		WithJitter(0),
	)

	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, time.Second, cfg.MaxBackoff)
	assert.Equal(t, 1.5, cfg.BackoffFactor)
	assert.Zero(t, cfg.Jitter)
}
