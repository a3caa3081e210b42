package workflow

import (
	"log/slog"

	"github.com/randalmurphal/researchflow/pkg/workflow/checkpoint"
	"github.com/randalmurphal/researchflow/pkg/workflow/observability"
)

// runConfig holds configuration for graph execution.
type runConfig struct {
	maxIterations int

	// Observability
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool

	// Checkpointing
	checkpointStore        checkpoint.Store
	runID                  string
	sequence               int
	checkpointFailureFatal bool

	// resumeValue is delivered to the first node executed, then cleared.
	// Set by ResumeWithValue only.
	resumeValue *string
}

// defaultRunConfig returns the default execution configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxIterations: 1000,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithMaxIterations sets the maximum number of node executions.
// Default: 1000
//
// This prevents infinite loops from hanging forever. If a graph
// exceeds this limit, Run returns a *MaxIterationsError.
func WithMaxIterations(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithCheckpointing enables checkpoint persistence to the given store.
// Requires WithRunID; Run returns ErrRunIDRequired otherwise.
//
// A checkpoint is saved after every successful node execution and at
// every suspension. Suspension (a node calling Await) always requires
// checkpointing.
func WithCheckpointing(store checkpoint.Store) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
	}
}

// WithRunID sets the run identifier used to key checkpoints.
// Distinct run IDs are fully independent; concurrent runs with different
// IDs never see each other's snapshots.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithRunLogger sets the logger for run and node lifecycle events.
// Nil disables lifecycle logging.
func WithRunLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for the run.
// Defaults to a no-op recorder.
func WithMetrics(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry span creation for the run and each
// node, using the given span manager.
func WithTracing(sm observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if sm != nil {
			c.spans = sm
			c.tracingEnabled = true
		}
	}
}

// WithCheckpointFailureFatal makes checkpoint save failures abort the run.
// By default a failed checkpoint is logged and execution continues;
// suspension checkpoints are always fatal on failure regardless of this
// setting, because a lost suspension snapshot cannot be resumed.
func WithCheckpointFailureFatal() RunOption {
	return func(c *runConfig) {
		c.checkpointFailureFatal = true
	}
}
