package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/randalmurphal/researchflow/pkg/workflow/llm"
	"github.com/randalmurphal/researchflow/pkg/workflow/observability"
	"github.com/randalmurphal/researchflow/pkg/workflow/registry"
)

// WebSearchToolName is the tool the research model may call.
const WebSearchToolName = "web_search"

// webSearchSchema is the JSON Schema for the web_search arguments.
var webSearchSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"description": "The search query"
		}
	},
	"required": ["query"]
}`)

// ToolFunc executes a tool call and returns prompt-safe text.
type ToolFunc func(ctx context.Context, args json.RawMessage) string

// Tools dispatches model tool calls to registered implementations.
// Every outcome, including unknown tools and bad arguments, is rendered
// as text: the research loop degrades rather than fails.
type Tools struct {
	reg     *registry.Registry[string, ToolFunc]
	defs    []llm.Tool
	metrics observability.MetricsRecorder
}

// NewTools creates an empty tool set.
func NewTools() *Tools {
	return &Tools{
		reg:     registry.New[string, ToolFunc](),
		metrics: observability.NoopMetrics{},
	}
}

// WithMetrics records tool invocations on the given recorder.
func (t *Tools) WithMetrics(m observability.MetricsRecorder) *Tools {
	if m != nil {
		t.metrics = m
	}
	return t
}

// Register adds a tool with its model-facing definition.
func (t *Tools) Register(def llm.Tool, fn ToolFunc) *Tools {
	t.reg.Register(def.Name, fn)
	t.defs = append(t.defs, def)
	return t
}

// Definitions returns the tool definitions to bind to the model.
func (t *Tools) Definitions() []llm.Tool {
	return t.defs
}

// Call executes the named tool. It never returns an error; failures come
// back as text for the model to read.
func (t *Tools) Call(ctx context.Context, name string, args json.RawMessage) string {
	fn, ok := t.reg.Get(name)
	if !ok {
		return fmt.Sprintf("(unknown tool) %s", name)
	}
	start := time.Now()
	out := fn(ctx, args)
	t.metrics.RecordToolCall(ctx, name, time.Since(start))
	return out
}

// RegisterWebSearch wires the web search tool. When searcher is nil (no
// API key configured) a stub that explains the missing credential is
// registered instead, so the workflow keeps functioning without search.
func (t *Tools) RegisterWebSearch(searcher *TavilyClient) *Tools {
	def := llm.Tool{
		Name:        WebSearchToolName,
		Description: "Web search. Returns the top results formatted with titles, content and source URLs.",
		Parameters:  webSearchSchema,
	}

	if searcher == nil {
		return t.Register(def, func(ctx context.Context, args json.RawMessage) string {
			return searchUnavailableText
		})
	}

	return t.Register(def, func(ctx context.Context, args json.RawMessage) string {
		var parsed struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(args, &parsed); err != nil {
			return searchErrorText("bad_arguments", err)
		}
		return searcher.Search(ctx, parsed.Query)
	})
}
