package agent

import "github.com/randalmurphal/researchflow/pkg/workflow"

// Node identifiers. External payloads (current_step, suspension node)
// carry these names, so they are part of the API surface.
const (
	NodeResearch  = "research"
	NodeTools     = "tools"
	NodeSummary   = "summary"
	NodeMarket    = "market"
	NodeTechnical = "technical"
	NodeApproval  = "human_approval"
	NodeReport    = "report"
)

// BuildGraph wires the research workflow:
//
//	research -> tools -> research   (bounded loop, router-controlled)
//	research -> summary -> market -> technical -> human_approval
//	human_approval -> report | market (retry) | END
//	report -> END
func BuildGraph(a *Agent) (*workflow.CompiledGraph[State], error) {
	g := workflow.NewGraph[State]().
		AddNode(NodeResearch, a.ResearchNode).
		AddNode(NodeTools, a.ToolsNode).
		AddNode(NodeSummary, a.SummaryNode).
		AddNode(NodeMarket, a.MarketNode).
		AddNode(NodeTechnical, a.TechnicalNode).
		AddNode(NodeApproval, a.ApprovalNode).
		AddNode(NodeReport, a.ReportNode).
		AddConditionalEdge(NodeResearch, a.ResearchRouter).
		AddEdge(NodeTools, NodeResearch).
		AddEdge(NodeSummary, NodeMarket).
		AddEdge(NodeMarket, NodeTechnical).
		AddEdge(NodeTechnical, NodeApproval).
		AddConditionalEdge(NodeApproval, a.ApprovalRouter).
		AddEdge(NodeReport, workflow.END).
		SetEntry(NodeResearch)

	return g.Compile()
}
