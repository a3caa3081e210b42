// Package benchmarks measures framework overhead: graph construction,
// compilation, execution, and checkpoint persistence.
package benchmarks

import (
	"fmt"
	"testing"

	"github.com/randalmurphal/researchflow/pkg/workflow"
)

// State for benchmarks.
type State struct {
	Value int `json:"value"`
}

// noopNode does minimal work to measure framework overhead.
func noopNode(ctx workflow.Context, s State) (State, error) {
	return s, nil
}

// nodeID names the i-th node of a generated chain.
func nodeID(i int) string {
	return fmt.Sprintf("node%d", i)
}

// buildLinear creates an n-node linear graph builder.
func buildLinear(n int) *workflow.Graph[State] {
	g := workflow.NewGraph[State]()
	for i := 0; i < n; i++ {
		g.AddNode(nodeID(i), noopNode)
	}
	for i := 0; i < n-1; i++ {
		g.AddEdge(nodeID(i), nodeID(i+1))
	}
	g.AddEdge(nodeID(n-1), workflow.END)
	g.SetEntry(nodeID(0))
	return g
}

// compileLinear builds and compiles an n-node linear graph.
func compileLinear(b *testing.B, n int) *workflow.CompiledGraph[State] {
	b.Helper()
	compiled, err := buildLinear(n).Compile()
	if err != nil {
		b.Fatal(err)
	}
	return compiled
}

func BenchmarkNewGraph(b *testing.B) {
	for i := 0; i < b.N; i++ {
		workflow.NewGraph[State]()
	}
}

func BenchmarkAddNode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		workflow.NewGraph[State]().AddNode("node", noopNode)
	}
}

func BenchmarkBuildLinear_10(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buildLinear(10)
	}
}

func BenchmarkBuildLinear_100(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buildLinear(100)
	}
}

func BenchmarkCompile_Linear_10(b *testing.B) {
	g := buildLinear(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.Compile(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile_Linear_100(b *testing.B) {
	g := buildLinear(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.Compile(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile_Conditional(b *testing.B) {
	g := workflow.NewGraph[State]().
		AddNode("decide", noopNode).
		AddNode("left", noopNode).
		AddNode("right", noopNode).
		AddConditionalEdge("decide", func(ctx workflow.Context, s State) string {
			if s.Value%2 == 0 {
				return "left"
			}
			return "right"
		}).
		AddEdge("left", workflow.END).
		AddEdge("right", workflow.END).
		SetEntry("decide")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.Compile(); err != nil {
			b.Fatal(err)
		}
	}
}
