package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenAIClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewOpenAIClient(
		WithBaseURL(srv.URL),
		WithAPIKey("test-key"),
		WithModel("gpt-5-mini"),
	)
	return srv, client
}

func TestOpenAIClient_Complete(t *testing.T) {
	t.Run("returns content and usage", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-5-mini", req["model"])

			json.NewEncoder(w).Encode(map[string]any{
				"model": "gpt-5-mini",
				"choices": []map[string]any{{
					"message":       map[string]any{"role": "assistant", "content": "hello"},
					"finish_reason": "stop",
				}},
				"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
			})
		})

		resp, err := client.Complete(context.Background(), CompletionRequest{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "hello", resp.Content)
		assert.Equal(t, "stop", resp.FinishReason)
		assert.Equal(t, 15, resp.Usage.TotalTokens)
		assert.Empty(t, resp.ToolCalls)
	})

	t.Run("decodes tool calls", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"model": "gpt-5-mini",
				"choices": []map[string]any{{
					"message": map[string]any{
						"role": "assistant",
						"tool_calls": []map[string]any{{
							"id":   "call_1",
							"type": "function",
							"function": map[string]any{
								"name":      "web_search",
								"arguments": `{"query":"golang workflows"}`,
							},
						}},
					},
					"finish_reason": "tool_calls",
				}},
			})
		})

		resp, err := client.Complete(context.Background(), CompletionRequest{
			Messages: []Message{{Role: RoleUser, Content: "search"}},
		})
		require.NoError(t, err)
		require.Len(t, resp.ToolCalls, 1)
		assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
		assert.Equal(t, "web_search", resp.ToolCalls[0].Name)
		assert.JSONEq(t, `{"query":"golang workflows"}`, string(resp.ToolCalls[0].Arguments))
	})

	t.Run("system prompt becomes first message", func(t *testing.T) {
		var got chatRequest
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{
					"message": map[string]any{"role": "assistant", "content": "ok"},
				}},
			})
		})

		_, err := client.Complete(context.Background(), CompletionRequest{
			SystemPrompt: "you are a researcher",
			Messages:     []Message{{Role: RoleUser, Content: "hi"}},
			Temperature:  Temperature(0),
		})
		require.NoError(t, err)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, "you are a researcher", got.Messages[0].Content)
		require.NotNil(t, got.Temperature)
		assert.Equal(t, 0.0, *got.Temperature)
	})

	t.Run("rate limit is retryable", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.Complete(context.Background(), CompletionRequest{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})
		require.Error(t, err)
		assert.True(t, IsRetryable(err))
	})

	t.Run("bad request is not retryable", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		_, err := client.Complete(context.Background(), CompletionRequest{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})
		require.Error(t, err)
		assert.False(t, IsRetryable(err))

		var llmErr *Error
		require.True(t, errors.As(err, &llmErr))
		assert.Equal(t, "complete", llmErr.Op)
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		})

		_, err := client.Complete(context.Background(), CompletionRequest{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})
		assert.Error(t, err)
	})

	t.Run("cancelled context surfaces context error", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{})
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Complete(ctx, CompletionRequest{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTokenUsage_Add(t *testing.T) {
	u := TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}
	u.Add(TokenUsage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5})

	assert.Equal(t, 13, u.InputTokens)
	assert.Equal(t, 7, u.OutputTokens)
	assert.Equal(t, 20, u.TotalTokens)
}
