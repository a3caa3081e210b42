// Package workflow provides a graph-based state machine for multi-step,
// tool-augmented LLM pipelines with durable suspend/resume semantics.
//
// A workflow is a directed graph of named nodes. Each node is a function
// from state to state; transitions are either fixed edges or conditional
// routers evaluated against the state at runtime. Graphs are built with a
// mutable builder and compiled into an immutable, concurrency-safe form:
//
//	graph := workflow.NewGraph[MyState]().
//	    AddNode("research", researchNode).
//	    AddNode("summarize", summarizeNode).
//	    AddEdge("research", "summarize").
//	    AddEdge("summarize", workflow.END).
//	    SetEntry("research")
//
//	compiled, err := graph.Compile()
//	result, err := compiled.Run(ctx, initialState)
//
// # Suspension
//
// A node may externalize control to a human (or any outside actor) by
// calling Await. When no resume value is pending, the executor persists a
// checkpoint carrying the full state, the suspended node and the interrupt
// payload, and Run returns a *Suspension. The caller resumes later, in the
// same process or a fresh one, with ResumeWithValue, which re-enters the
// suspended node and hands it the external decision:
//
//	func approve(ctx workflow.Context, s State) (State, error) {
//	    decision, err := workflow.Await(ctx, buildPayload(s))
//	    if err != nil {
//	        return s, err // executor checkpoints and suspends
//	    }
//	    s.Decision = decision
//	    return s, nil
//	}
//
// Suspension is a hard stop: no goroutine keeps running between suspend
// and resume, and resume reconstructs state purely from the checkpoint
// store.
//
// # Checkpointing
//
// With WithCheckpointing enabled, a checkpoint is saved after every
// successful node execution and at every suspension. Resume continues from
// the latest checkpoint. Distinct run IDs are fully independent.
package workflow
