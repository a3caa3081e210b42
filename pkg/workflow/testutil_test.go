package workflow

import (
	"context"
)

// Test state types shared across engine tests.

// Counter is a minimal state for linear execution tests.
type Counter struct {
	Value int `json:"value"`
}

// Trace is a state that records which nodes ran.
type Trace struct {
	Steps    []string `json:"steps"`
	Decision string   `json:"decision"`
	Loops    int      `json:"loops"`
}

// increment bumps the counter by one.
func increment(ctx Context, s Counter) (Counter, error) {
	s.Value++
	return s, nil
}

// makeStep creates a node that appends its name to the trace.
func makeStep(name string) NodeFunc[Trace] {
	return func(ctx Context, s Trace) (Trace, error) {
		s.Steps = append(s.Steps, name)
		return s, nil
	}
}

// makeFailingNode creates a node that returns the given error.
func makeFailingNode(err error) NodeFunc[Trace] {
	return func(ctx Context, s Trace) (Trace, error) {
		return s, err
	}
}

// makePanicNode creates a node that panics with the given value.
func makePanicNode(value any) NodeFunc[Trace] {
	return func(ctx Context, s Trace) (Trace, error) {
		panic(value)
	}
}

// testCtx creates a plain test context.
func testCtx() Context {
	return NewContext(context.Background())
}
