package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/randalmurphal/researchflow/pkg/workflow/checkpoint"
	"github.com/randalmurphal/researchflow/pkg/workflow/observability"
)

// Resume continues execution from the last checkpoint for a run.
// It loads the latest checkpoint and starts execution from the next node.
// Use it for crash recovery; a run paused at a suspension point must be
// continued with ResumeWithValue instead (Resume returns ErrNotSuspended's
// counterpart: a pending interrupt cannot be skipped).
func (cg *CompiledGraph[S]) Resume(ctx Context, store checkpoint.Store, runID string, opts ...RunOption) (S, error) {
	var zero S

	if ctx == nil {
		return zero, ErrNilContext
	}

	cp, state, err := cg.loadLatest(store, runID)
	if err != nil {
		return zero, err
	}

	if cp.Pending {
		return zero, fmt.Errorf("%w: run %s is suspended at node %s, use ResumeWithValue", ErrInvalidResumeNode, runID, cp.NodeID)
	}

	startNode := cp.NextNode
	if startNode != END && !cg.HasNode(startNode) {
		return zero, fmt.Errorf("%w: %s", ErrInvalidResumeNode, startNode)
	}

	cfg := cg.resumeRunConfig(store, runID, cp.Sequence, nil, opts)
	result, _, runErr := cg.runFrom(ctx, ctx, state, startNode, &cfg)
	return result, runErr
}

// ResumeWithValue continues a suspended run, delivering value as the
// result of the Await call that suspended it. Execution re-enters the
// suspended node; the node receives the value and decides where to go
// next. The run then proceeds to completion or to the next suspension.
func (cg *CompiledGraph[S]) ResumeWithValue(ctx Context, store checkpoint.Store, runID, value string, opts ...RunOption) (S, error) {
	var zero S

	if ctx == nil {
		return zero, ErrNilContext
	}

	cp, state, err := cg.loadLatest(store, runID)
	if err != nil {
		return zero, err
	}

	if !cp.Pending {
		return zero, fmt.Errorf("%w: %s", ErrNotSuspended, runID)
	}

	if !cg.HasNode(cp.NodeID) {
		return zero, fmt.Errorf("%w: %s", ErrInvalidResumeNode, cp.NodeID)
	}

	cfg := cg.resumeRunConfig(store, runID, cp.Sequence, &value, opts)
	observability.LogRunResumed(cfg.logger, runID, cp.NodeID)

	result, _, runErr := cg.runFrom(ctx, ctx, state, cp.NodeID, &cfg)
	return result, runErr
}

// PendingInterrupt returns the interrupt payload of a suspended run, or
// ErrNotSuspended when the latest checkpoint carries none. The payload is
// returned as raw JSON; callers know its concrete shape.
func (cg *CompiledGraph[S]) PendingInterrupt(store checkpoint.Store, runID string) (json.RawMessage, error) {
	cp, _, err := cg.loadLatest(store, runID)
	if err != nil {
		return nil, err
	}
	if !cp.Pending {
		return nil, fmt.Errorf("%w: %s", ErrNotSuspended, runID)
	}
	return cp.Interrupt, nil
}

// loadLatest loads and decodes the most recent checkpoint for a run.
func (cg *CompiledGraph[S]) loadLatest(store checkpoint.Store, runID string) (*checkpoint.Checkpoint, S, error) {
	var zero S

	infos, err := store.List(runID)
	if err != nil {
		return nil, zero, fmt.Errorf("list checkpoints: %w", err)
	}
	if len(infos) == 0 {
		return nil, zero, fmt.Errorf("%w: %s", ErrNoCheckpoints, runID)
	}

	// Latest checkpoint is last in sequence order.
	latest := infos[len(infos)-1]
	data, err := store.Load(runID, latest.NodeID)
	if err != nil {
		return nil, zero, fmt.Errorf("load checkpoint: %w", err)
	}

	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return nil, zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cp.Version != checkpoint.Version {
		return nil, zero, fmt.Errorf("%w: got %d, expected %d",
			ErrCheckpointVersionMismatch, cp.Version, checkpoint.Version)
	}

	var state S
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return nil, zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	return cp, state, nil
}

// resumeRunConfig builds the run configuration for a resumed execution.
func (cg *CompiledGraph[S]) resumeRunConfig(store checkpoint.Store, runID string, sequence int, resume *string, opts []RunOption) runConfig {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.checkpointStore = store
	cfg.runID = runID
	cfg.sequence = sequence
	cfg.resumeValue = resume
	return cfg
}
