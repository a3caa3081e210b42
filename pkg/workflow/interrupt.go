package workflow

import (
	"encoding/json"
	"fmt"
)

// Await returns the externally supplied resume value for the current node,
// or an *InterruptSignal carrying payload when none is pending.
//
// A node calls Await at its designed suspension point and returns the
// error as-is. On a fresh run the executor persists a checkpoint and
// surfaces a *Suspension to the caller of Run. When the run is later
// continued with ResumeWithValue, the executor re-enters the node and
// Await returns the resume value instead.
//
// Any state mutation performed before Await is discarded on suspension:
// the checkpoint holds the state as it was at node entry, and the node is
// re-executed from its top on resume. Keep the code before Await free of
// state changes.
func Await(ctx Context, payload any) (string, error) {
	if ec, ok := ctx.(*executionContext); ok {
		if v, taken := ec.takeResumeValue(); taken {
			return v, nil
		}
	}
	return "", &InterruptSignal{Payload: payload}
}

// InterruptSignal is the error a node returns (via Await) to request
// suspension. It is consumed by the executor and never escapes Run;
// callers observe a *Suspension instead.
type InterruptSignal struct {
	// Payload is the value delivered to the external caller, e.g. an
	// approval request.
	Payload any
}

// Error implements the error interface.
func (s *InterruptSignal) Error() string {
	return "workflow interrupt requested"
}

// Suspension reports that a run stopped at a suspension point.
// It implements error so that Run can return it through the normal error
// path; detect it with errors.As and treat it as a pause, not a failure.
type Suspension struct {
	// RunID identifies the suspended run for a later ResumeWithValue.
	RunID string
	// NodeID is the node awaiting an external value.
	NodeID string
	// Payload is the interrupt payload the node handed to Await.
	Payload any
}

// Error implements the error interface.
func (s *Suspension) Error() string {
	return fmt.Sprintf("run %s suspended at node %s", s.RunID, s.NodeID)
}

// marshalPayload serializes the interrupt payload for the checkpoint.
// A payload that cannot be serialized is a programming error surfaced to
// the caller; the checkpoint must be able to round-trip it.
func marshalPayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serialize interrupt payload: %w", err)
	}
	return data, nil
}
