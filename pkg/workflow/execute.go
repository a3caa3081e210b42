package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/researchflow/pkg/workflow/checkpoint"
	"github.com/randalmurphal/researchflow/pkg/workflow/observability"
)

// Run executes the graph with the given initial state.
// Returns the final state and any error encountered.
//
// On success, returns the state after the last node executed before END.
// On suspension, returns the state at the suspension point and a
// *Suspension error carrying the interrupt payload.
// On failure, returns the state at the point of failure (useful for
// debugging).
//
// Execution flow:
//  1. Start at the entry point node
//  2. Check for cancellation
//  3. Execute the current node
//  4. On an interrupt signal, checkpoint and return a *Suspension
//  5. Determine the next node (via simple or conditional edge)
//  6. Repeat until END is reached or an error occurs
func (cg *CompiledGraph[S]) Run(ctx Context, state S, opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.checkpointStore != nil && cfg.runID == "" {
		return state, ErrRunIDRequired
	}

	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	startTime := time.Now()

	observability.LogRunStart(cfg.logger, runID)

	var execCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		execCtx, runSpan = cfg.spans.StartRunSpan(ctx, "workflow", runID)
		defer func() {
			// A suspension is a pause, not a failure.
			var susp *Suspension
			if errors.As(runErr, &susp) {
				cfg.spans.EndSpanWithError(runSpan, nil)
				return
			}
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	var nodeCount int
	result, nodeCount, runErr = cg.runFrom(execCtx, ctx, state, cg.entryPoint, &cfg)

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())

	var susp *Suspension
	switch {
	case runErr == nil:
		cfg.metrics.RecordGraphRun(ctx, true, duration)
		observability.LogRunComplete(cfg.logger, runID, durationMs, nodeCount)
	case errors.As(runErr, &susp):
		cfg.metrics.RecordGraphRun(ctx, true, duration)
		observability.LogRunSuspended(cfg.logger, runID, susp.NodeID, durationMs)
	default:
		cfg.metrics.RecordGraphRun(ctx, false, duration)
		lastNode := ""
		if nodeErr := (*NodeError)(nil); errors.As(runErr, &nodeErr) {
			lastNode = nodeErr.NodeID
		} else if maxErr := (*MaxIterationsError)(nil); errors.As(runErr, &maxErr) {
			lastNode = maxErr.LastNodeID
		} else if cancelErr := (*CancellationError)(nil); errors.As(runErr, &cancelErr) {
			lastNode = cancelErr.NodeID
		}
		observability.LogRunError(cfg.logger, runID, runErr, durationMs, lastNode)
	}

	return result, runErr
}

// runFrom executes the graph starting from a specific node.
// tracingCtx carries span context; fgCtx is the workflow Context.
// Returns the final state, node count, and any error.
func (cg *CompiledGraph[S]) runFrom(tracingCtx context.Context, fgCtx Context, state S, startNode string, cfg *runConfig) (S, int, error) {
	current := startNode
	iterations := 0
	prevNode := ""
	nodeCount := 0
	pending := cfg.resumeValue

	for current != END {
		iterations++
		if iterations > cfg.maxIterations {
			return state, nodeCount, &MaxIterationsError{
				Max:        cfg.maxIterations,
				LastNodeID: current,
				State:      state,
			}
		}

		// Check for cancellation before executing node
		select {
		case <-fgCtx.Done():
			return state, nodeCount, &CancellationError{
				NodeID:       current,
				State:        state,
				Cause:        fgCtx.Err(),
				WasExecuting: false,
			}
		default:
		}

		observability.LogNodeStart(cfg.logger, current)

		nodeTracingCtx := tracingCtx
		var nodeSpan trace.Span
		if cfg.tracingEnabled {
			nodeTracingCtx, nodeSpan = cfg.spans.StartNodeSpan(tracingCtx, current)
		}

		nodeStart := time.Now()

		newState, nodeErr := cg.executeNode(fgCtx, current, state, pending)
		pending = nil

		nodeDuration := time.Since(nodeStart)
		nodeDurationMs := float64(nodeDuration.Milliseconds())

		// An interrupt signal is a suspension request, not a node failure:
		// checkpoint the pre-node state and stop.
		var sig *InterruptSignal
		if errors.As(nodeErr, &sig) {
			if cfg.tracingEnabled {
				cfg.spans.EndSpanWithError(nodeSpan, nil)
			}
			if cfg.checkpointStore == nil {
				return state, nodeCount, ErrSuspendWithoutStore
			}
			if err := cg.saveSuspension(fgCtx, cfg, current, prevNode, state, sig.Payload); err != nil {
				return state, nodeCount, err
			}
			observability.LogNodeSuspended(cfg.logger, current)
			return state, nodeCount, &Suspension{
				RunID:   cfg.runID,
				NodeID:  current,
				Payload: sig.Payload,
			}
		}

		state = newState
		cfg.metrics.RecordNodeExecution(nodeTracingCtx, current, nodeDuration, nodeErr)

		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(nodeSpan, nodeErr)
		}

		if nodeErr != nil {
			observability.LogNodeError(cfg.logger, current, nodeErr)
			return state, nodeCount, nodeErr
		}
		observability.LogNodeComplete(cfg.logger, current, nodeDurationMs)
		nodeCount++

		next, err := cg.nextNode(fgCtx, state, current)
		if err != nil {
			return state, nodeCount, err
		}

		// Checkpoint after successful node execution
		if cfg.checkpointStore != nil {
			if err := cg.saveCheckpoint(fgCtx, cfg, current, prevNode, state, next, nil); err != nil {
				return state, nodeCount, err
			}
		}

		prevNode = current
		current = next
	}

	return state, nodeCount, nil
}

// saveSuspension persists a suspension checkpoint: the state as it was at
// node entry, the suspended node as the resume target, and the interrupt
// payload. Failure here is always fatal - a lost suspension snapshot
// cannot be resumed.
func (cg *CompiledGraph[S]) saveSuspension(ctx Context, cfg *runConfig, nodeID, prevNodeID string, state S, payload any) error {
	payloadRaw, err := marshalPayload(payload)
	if err != nil {
		return &CheckpointError{NodeID: nodeID, Op: "serialize", Err: err}
	}
	return cg.writeCheckpoint(ctx, cfg, nodeID, prevNodeID, state, nodeID, payloadRaw, true)
}

// saveCheckpoint persists the state after a successful node execution.
func (cg *CompiledGraph[S]) saveCheckpoint(ctx Context, cfg *runConfig, nodeID, prevNodeID string, state S, nextNode string, payload json.RawMessage) error {
	return cg.writeCheckpoint(ctx, cfg, nodeID, prevNodeID, state, nextNode, payload, false)
}

func (cg *CompiledGraph[S]) writeCheckpoint(ctx Context, cfg *runConfig, nodeID, prevNodeID string, state S, nextNode string, payload json.RawMessage, suspension bool) error {
	fatal := cfg.checkpointFailureFatal || suspension

	stateBytes, err := json.Marshal(state)
	if err != nil {
		if fatal {
			return &CheckpointError{NodeID: nodeID, Op: "serialize", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, nodeID, "serialize", err)
		return nil
	}

	cfg.sequence++
	cp := checkpoint.New(cfg.runID, nodeID, cfg.sequence, stateBytes, nextNode).
		WithPrevNode(prevNodeID)
	if suspension {
		cp = cp.WithInterrupt(payload)
	}

	if ec, ok := ctx.(*executionContext); ok {
		cp = cp.WithAttempt(ec.attempt)
	}

	data, err := cp.Marshal()
	if err != nil {
		if fatal {
			return &CheckpointError{NodeID: nodeID, Op: "marshal", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, nodeID, "marshal", err)
		return nil
	}

	if err := cfg.checkpointStore.Save(cfg.runID, nodeID, data); err != nil {
		if fatal {
			return &CheckpointError{NodeID: nodeID, Op: "save", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, nodeID, "save", err)
		return nil
	}

	sizeBytes := len(data)
	observability.LogCheckpoint(cfg.logger, nodeID, sizeBytes)
	cfg.metrics.RecordCheckpoint(ctx, nodeID, int64(sizeBytes))

	return nil
}

// executeNode executes a single node with panic recovery.
// resume, when non-nil, is the external decision delivered to the node's
// Await call. Returns the new state and any error (including wrapped
// panics and interrupt signals).
func (cg *CompiledGraph[S]) executeNode(ctx Context, nodeID string, state S, resume *string) (result S, err error) {
	fn, exists := cg.getNode(nodeID)
	if !exists {
		// This shouldn't happen if compilation was successful
		return state, &NodeError{
			NodeID: nodeID,
			Op:     "lookup",
			Err:    fmt.Errorf("node not found: %s", nodeID),
		}
	}

	nodeCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		nodeCtx = ec.withNodeID(nodeID, resume)
	}

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	result, err = fn(nodeCtx, state)
	if err != nil {
		var sig *InterruptSignal
		if errors.As(err, &sig) {
			return result, err
		}
		return result, &NodeError{
			NodeID: nodeID,
			Op:     "execute",
			Err:    err,
		}
	}

	return result, nil
}

// nextNode determines the next node to execute.
// Checks conditional edges first, then simple edges.
func (cg *CompiledGraph[S]) nextNode(ctx Context, state S, current string) (string, error) {
	if router, exists := cg.getRouter(current); exists {
		routerCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			routerCtx = ec.withNodeID(current, nil)
		}

		next := router(routerCtx, state)

		if next == "" {
			return "", &RouterError{
				FromNode: current,
				Returned: next,
				Err:      ErrInvalidRouterResult,
			}
		}

		if next != END {
			if _, exists := cg.getNode(next); !exists {
				return "", &RouterError{
					FromNode: current,
					Returned: next,
					Err:      ErrRouterTargetNotFound,
				}
			}
		}

		return next, nil
	}

	edges := cg.getEdges(current)
	if len(edges) == 0 {
		// No outgoing edges - this shouldn't happen if compilation was successful
		return "", &NodeError{
			NodeID: current,
			Op:     "routing",
			Err:    fmt.Errorf("no outgoing edge from node %s", current),
		}
	}

	// Simple edges are single-target; take the first.
	return edges[0], nil
}
