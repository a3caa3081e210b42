package workflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Context provides execution context to nodes.
// It extends context.Context with workflow-specific services and metadata.
//
// Context is immutable after creation. The executor creates derived
// contexts for each node with updated NodeID and enriched logger.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with run and node
	// context. Never returns nil - defaults to slog.Default() if not
	// configured.
	Logger() *slog.Logger

	// RunID returns the unique identifier for this execution run.
	// Auto-generated if not configured.
	RunID() string

	// NodeID returns the current node being executed.
	// Empty string before execution starts.
	NodeID() string

	// Attempt returns the retry attempt number (1 = first attempt).
	Attempt() int
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger  *slog.Logger
	runID   string
	nodeID  string
	attempt int

	// resumeValue is the external decision injected by ResumeWithValue.
	// It is delivered to exactly one Await call and then cleared.
	resumeValue *string
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// RunID returns the run identifier.
func (c *executionContext) RunID() string {
	return c.runID
}

// NodeID returns the current node identifier.
func (c *executionContext) NodeID() string {
	return c.nodeID
}

// Attempt returns the retry attempt number.
func (c *executionContext) Attempt() int {
	return c.attempt
}

// takeResumeValue consumes the pending resume value, if any.
func (c *executionContext) takeResumeValue() (string, bool) {
	if c.resumeValue == nil {
		return "", false
	}
	v := *c.resumeValue
	c.resumeValue = nil
	return v, true
}

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger for the context.
// The logger will be enriched with run_id, node_id, and attempt during
// execution.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		c.logger = logger
	}
}

// WithContextRunID sets the run identifier for the context.
// If not set, a UUID will be auto-generated.
// This is used for logging and tracing. For checkpointing, use
// WithRunID() as a RunOption with Run().
func WithContextRunID(id string) ContextOption {
	return func(c *executionContext) {
		c.runID = id
	}
}

// NewContext creates an execution context from a standard context.
// The returned Context wraps the provided context.Context and adds
// workflow-specific services and metadata.
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
		attempt: 1,
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withNodeID returns a new context with the given node ID set and the
// resume value scoped to that node.
func (c *executionContext) withNodeID(nodeID string, resume *string) *executionContext {
	return &executionContext{
		Context:     c.Context,
		logger:      c.logger.With("run_id", c.runID, "node_id", nodeID, "attempt", c.attempt),
		runID:       c.runID,
		nodeID:      nodeID,
		attempt:     c.attempt,
		resumeValue: resume,
	}
}
