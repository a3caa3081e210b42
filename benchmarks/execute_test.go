package benchmarks

import (
	"context"
	"testing"

	"github.com/randalmurphal/researchflow/pkg/workflow"
)

func benchmarkRunLinear(b *testing.B, n int) {
	compiled := compileLinear(b, n)
	ctx := workflow.NewContext(context.Background())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := compiled.Run(ctx, State{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRun_Linear_5(b *testing.B)   { benchmarkRunLinear(b, 5) }
func BenchmarkRun_Linear_10(b *testing.B)  { benchmarkRunLinear(b, 10) }
func BenchmarkRun_Linear_50(b *testing.B)  { benchmarkRunLinear(b, 50) }
func BenchmarkRun_Linear_100(b *testing.B) { benchmarkRunLinear(b, 100) }

func BenchmarkRun_Conditional(b *testing.B) {
	compiled, err := workflow.NewGraph[State]().
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
		SetEntry("decide").
		Compile()
	if err != nil {
		b.Fatal(err)
	}

	ctx := workflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := compiled.Run(ctx, State{Value: i}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRun_Loop_10(b *testing.B) {
	compiled, err := workflow.NewGraph[State]().
		AddNode("work", func(ctx workflow.Context, s State) (State, error) {
			s.Value++
			return s, nil
		}).
		AddConditionalEdge("work", func(ctx workflow.Context, s State) string {
			if s.Value >= 10 {
				return workflow.END
			}
			return "work"
		}).
		SetEntry("work").
		Compile()
	if err != nil {
		b.Fatal(err)
	}

	ctx := workflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := compiled.Run(ctx, State{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkContextCreation(b *testing.B) {
	base := context.Background()
	for i := 0; i < b.N; i++ {
		workflow.NewContext(base)
	}
}
