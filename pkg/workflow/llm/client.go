// Package llm defines the chat-model contract used by workflow nodes and
// an OpenAI-compatible HTTP implementation.
//
// Nodes depend only on the Client interface, so tests can substitute a
// scripted fake and production code can point at any endpoint that speaks
// the chat-completions wire format.
package llm

import "context"

// Client produces chat completions.
type Client interface {
	// Complete sends the conversation and returns the model's reply.
	// The response may carry tool calls instead of (or in addition to)
	// text content.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
