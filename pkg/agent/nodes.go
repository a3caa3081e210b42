package agent

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/researchflow/pkg/workflow"
	"github.com/randalmurphal/researchflow/pkg/workflow/llm"
	"github.com/randalmurphal/researchflow/pkg/workflow/observability"
)

// toolOutputPreviewLimit bounds tool output in debug logs.
const toolOutputPreviewLimit = 300

// Agent holds the model client, tools, and configuration the workflow
// nodes share. Node methods are stateless; everything flows through State.
type Agent struct {
	client  llm.Client
	tools   *Tools
	cfg     Config
	metrics observability.MetricsRecorder
	today   func() string
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithAgentMetrics records model and tool calls on the given recorder.
func WithAgentMetrics(m observability.MetricsRecorder) AgentOption {
	return func(a *Agent) {
		if m != nil {
			a.metrics = m
			a.tools.WithMetrics(m)
		}
	}
}

// NewAgent creates the research agent. The tool set is built from the
// configuration: web search is live when a Tavily key is present and a
// stub otherwise.
func NewAgent(client llm.Client, cfg Config, opts ...AgentOption) *Agent {
	var searcher *TavilyClient
	if cfg.TavilyAPIKey != "" {
		searcher = NewTavilyClient(cfg.TavilyAPIKey)
	}

	a := &Agent{
		client:  client,
		tools:   NewTools().RegisterWebSearch(searcher),
		cfg:     cfg,
		metrics: observability.NoopMetrics{},
		today: func() string {
			return time.Now().Format("2006-01-02")
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// complete runs a model call and records its metrics. Temperature is
// pinned to zero: the analysis chain should be reproducible.
func (a *Agent) complete(ctx workflow.Context, system string, msgs []llm.Message, tools []llm.Tool) (*llm.CompletionResponse, error) {
	req := llm.CompletionRequest{
		SystemPrompt: system,
		Messages:     msgs,
		Model:        a.cfg.Model,
		Temperature:  llm.Temperature(0),
		Tools:        tools,
	}

	start := time.Now()
	resp, err := a.client.Complete(ctx, req)
	a.metrics.RecordLLMCall(ctx, a.cfg.Model, time.Since(start), err)
	return resp, err
}

// ResearchNode asks the model to investigate the theme, with the web
// search tool bound. The reply may request tool calls; the router decides
// whether they run.
func (a *Agent) ResearchNode(ctx workflow.Context, state State) (State, error) {
	state.CurrentStep = NodeResearch

	resp, err := a.complete(ctx, researchSystemPrompt(a.today()), state.ResearchMessages, a.tools.Definitions())
	if err != nil {
		return state, fmt.Errorf("research call: %w", err)
	}

	return state.appendResearch(llm.Message{
		Role:      llm.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	}), nil
}

// ResearchRouter sends the run to the tool node while the model keeps
// requesting tools and the loop budget allows; otherwise on to summary.
// Tool calls left unexecuted on a forced exit are simply dropped.
func (a *Agent) ResearchRouter(ctx workflow.Context, state State) string {
	if len(state.ResearchMessages) == 0 {
		return NodeSummary
	}
	last := state.ResearchMessages[len(state.ResearchMessages)-1]
	if len(last.ToolCalls) > 0 && state.LoopCount < a.cfg.MaxToolLoops {
		return NodeTools
	}
	return NodeSummary
}

// ToolsNode executes every tool call from the model's last research turn
// and appends the results as tool messages. Completing a batch counts as
// one loop iteration.
func (a *Agent) ToolsNode(ctx workflow.Context, state State) (State, error) {
	state.CurrentStep = NodeTools

	if len(state.ResearchMessages) == 0 {
		return state, fmt.Errorf("tool node reached with no research messages")
	}
	last := state.ResearchMessages[len(state.ResearchMessages)-1]

	results := make([]llm.Message, 0, len(last.ToolCalls))
	for _, call := range last.ToolCalls {
		output := a.tools.Call(ctx, call.Name, call.Arguments)

		ctx.Logger().Debug("tool output",
			slog.String("tool", call.Name),
			slog.String("preview", truncateRunes(output, toolOutputPreviewLimit)),
		)

		results = append(results, llm.Message{
			Role:       llm.RoleTool,
			Content:    output,
			Name:       call.Name,
			ToolCallID: call.ID,
		})
	}

	state = state.appendResearch(results...)
	state.LoopCount++
	return state, nil
}

// SummaryNode condenses the research log into a base report and opens the
// analysis channel with it. The tool loop budget resets here so a retry
// pass through the analysis chain starts clean.
func (a *Agent) SummaryNode(ctx workflow.Context, state State) (State, error) {
	state.CurrentStep = NodeSummary

	msgs := []llm.Message{
		{Role: llm.RoleUser, Content: summaryLogIntro + "\n\n" + renderResearchLog(state.ResearchMessages)},
		{Role: llm.RoleUser, Content: summaryInstruction},
	}

	resp, err := a.complete(ctx, summarySystemPrompt, msgs, nil)
	if err != nil {
		return state, fmt.Errorf("summary call: %w", err)
	}

	state = state.appendAnalysis(llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
	state.LoopCount = 0
	return state, nil
}

// MarketNode runs the SWOT analysis over the analysis channel.
func (a *Agent) MarketNode(ctx workflow.Context, state State) (State, error) {
	state.CurrentStep = NodeMarket

	resp, err := a.complete(ctx, marketSystemPrompt, state.AnalysisMessages, nil)
	if err != nil {
		return state, fmt.Errorf("market call: %w", err)
	}
	return state.appendAnalysis(llm.Message{Role: llm.RoleAssistant, Content: resp.Content}), nil
}

// TechnicalNode adds the feasibility assessment.
func (a *Agent) TechnicalNode(ctx workflow.Context, state State) (State, error) {
	state.CurrentStep = NodeTechnical

	resp, err := a.complete(ctx, technicalSystemPrompt, state.AnalysisMessages, nil)
	if err != nil {
		return state, fmt.Errorf("technical call: %w", err)
	}
	return state.appendAnalysis(llm.Message{Role: llm.RoleAssistant, Content: resp.Content}), nil
}

// ApprovalNode is the human gate. On first entry it suspends the run with
// an approval request; on resume it normalizes the decision and stores it
// for the router. Anything outside {y, n, retry} is treated as "n": the
// gate fails closed.
func (a *Agent) ApprovalNode(ctx workflow.Context, state State) (State, error) {
	state.CurrentStep = NodeApproval

	payload := ApprovalRequest{
		Kind:            "approval_request",
		Question:        approvalQuestion,
		Options:         []string{"y", "n", "retry"},
		AnalysisPreview: previewMessages(state.AnalysisMessages, 3),
	}

	raw, err := workflow.Await(ctx, payload)
	if err != nil {
		return state, err
	}

	ctx.Logger().Debug("approval decision", slog.String("raw", raw))

	decision := strings.ToLower(strings.TrimSpace(raw))
	switch decision {
	case "y", "n", "retry":
	default:
		decision = "n"
	}

	state.ApprovalDecision = decision
	return state, nil
}

// ApprovalRouter routes on the stored decision: approve to report, retry
// back through the analysis chain, anything else ends the run.
func (a *Agent) ApprovalRouter(ctx workflow.Context, state State) string {
	switch state.ApprovalDecision {
	case "y":
		return NodeReport
	case "retry":
		return NodeMarket
	default:
		return workflow.END
	}
}

// ReportNode writes the investor report. It re-checks the decision: if
// the gate did not approve, the report stays empty.
func (a *Agent) ReportNode(ctx workflow.Context, state State) (State, error) {
	state.CurrentStep = NodeReport

	if strings.ToLower(strings.TrimSpace(state.ApprovalDecision)) != "y" {
		state.FinalReport = ""
		return state, nil
	}

	resp, err := a.complete(ctx, reportSystemPrompt, state.AnalysisMessages, nil)
	if err != nil {
		return state, fmt.Errorf("report call: %w", err)
	}

	state = state.appendAnalysis(llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
	state.FinalReport = resp.Content
	return state, nil
}

// renderResearchLog flattens the research conversation into one text
// block. The summary call reads the log as plain text so dangling tool
// requests from a forced loop exit cannot produce an invalid wire
// conversation.
func renderResearchLog(msgs []llm.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := string(m.Role)
		if m.Role == llm.RoleTool && m.Name != "" {
			label = "tool:" + m.Name
		}
		b.WriteString("[" + label + "]\n")
		b.WriteString(m.Content)
	}
	return b.String()
}
