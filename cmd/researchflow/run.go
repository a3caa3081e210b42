package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/researchflow/pkg/agent"
)

func newRunCmd() *cobra.Command {
	var theme string
	var threadID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one research session interactively",
		Long: `Run starts a research session in the terminal. When the workflow
reaches the approval gate it shows the analysis preview and asks for a
decision (y/n/retry); the session continues until the run completes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, store, _, err := buildService()
			if err != nil {
				return err
			}
			defer store.Close()

			if threadID == "" {
				threadID = agent.NewThreadID()
			}
			fmt.Printf("thread: %s\n", threadID)

			result, err := svc.Start(cmd.Context(), theme, threadID)
			if err != nil {
				return err
			}

			reader := bufio.NewReader(os.Stdin)
			for result.Status == agent.StatusInterrupted {
				printInterrupt(result.Interrupt)

				fmt.Print("> ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				decision := strings.TrimSpace(line)

				result, err = svc.Resume(cmd.Context(), decision, threadID)
				if err != nil {
					return err
				}
			}

			printCompleted(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "Space debris collection business", "research theme")
	cmd.Flags().StringVar(&threadID, "thread", "", "thread id (minted when empty)")
	return cmd
}

func printInterrupt(req *agent.ApprovalRequest) {
	if req == nil {
		return
	}
	fmt.Println()
	for _, p := range req.AnalysisPreview {
		fmt.Printf("--- %s ---\n%s\n\n", p.Type, p.Content)
	}
	fmt.Printf("%s [%s]\n", req.Question, strings.Join(req.Options, "/"))
}

func printCompleted(result *agent.Result) {
	fmt.Println()
	if result.Report == "" {
		fmt.Println("Run finished without a report.")
		return
	}
	fmt.Println(result.Report)
}
