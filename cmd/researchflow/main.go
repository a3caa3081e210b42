// Command researchflow runs the business research agent, either as an
// HTTP service or as an interactive terminal session.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/researchflow/pkg/agent"
	"github.com/randalmurphal/researchflow/pkg/workflow/checkpoint"
	"github.com/randalmurphal/researchflow/pkg/workflow/llm"
	"github.com/randalmurphal/researchflow/pkg/workflow/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "researchflow",
		Short: "Multi-stage business research agent with human approval",
		Long: `researchflow drives a business research workflow: web research with a
bounded tool loop, summary, market and technical analysis, a human
approval gate, and a final investor report. Runs are checkpointed to
SQLite, so a suspended run survives restarts and can be resumed later.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newRunCmd())
	return root
}

// buildService assembles the agent service from the environment.
// The returned store must be closed by the caller.
func buildService() (*agent.Service, *checkpoint.SQLiteStore, *slog.Logger, error) {
	cfg := agent.LoadConfig()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	clientOpts := []llm.OpenAIOption{
		llm.WithModel(cfg.Model),
		llm.WithAPIKey(cfg.OpenAIAPIKey),
	}
	if cfg.OpenAIBaseURL != "" {
		clientOpts = append(clientOpts, llm.WithBaseURL(cfg.OpenAIBaseURL))
	}
	// Transient API failures (rate limits, 5xx) are retried with backoff.
	client := llm.NewRetryingClient(llm.NewOpenAIClient(clientOpts...))

	store, err := checkpoint.NewSQLiteStore(cfg.CheckpointDB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open checkpoint store: %w", err)
	}

	a := agent.NewAgent(client, cfg,
		agent.WithAgentMetrics(observability.NewMetricsRecorder()),
	)

	svc, err := agent.NewService(a, store, logger)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return svc, store, logger, nil
}
