// Package agent implements a multi-stage business research workflow: web
// research with a bounded tool loop, summary and analysis passes, a human
// approval gate, and a final report.
//
// The workflow state machine comes from pkg/workflow; this package supplies
// the domain state, the nodes, and an orchestration facade that maps
// external start/resume requests onto durable runs.
package agent

import "github.com/randalmurphal/researchflow/pkg/workflow/llm"

// State is the workflow state threaded through every node.
// Message channels are append-only and ordered; nodes add to them via the
// append helpers and never rewrite history.
type State struct {
	// ResearchMessages is the research conversation: the theme, model
	// turns, and tool results.
	ResearchMessages []llm.Message `json:"research_messages"`

	// AnalysisMessages is the analysis chain: summary, market, technical,
	// and report turns.
	AnalysisMessages []llm.Message `json:"analysis_messages"`

	// LoopCount counts completed tool round-trips in the current research
	// phase. Reset when the summary phase starts.
	LoopCount int `json:"loop_count"`

	// CurrentStep names the node currently working, for external
	// observers polling run progress.
	CurrentStep string `json:"current_step,omitempty"`

	// ApprovalDecision is the normalized human decision: "y", "n" or
	// "retry". Empty until the approval gate has run.
	ApprovalDecision string `json:"approval_decision,omitempty"`

	// FinalReport is set only by the report node, and only on approval.
	FinalReport string `json:"final_report,omitempty"`
}

// appendResearch returns the state with messages added to the research
// channel. A fresh slice is allocated so checkpointed snapshots of earlier
// states stay intact.
func (s State) appendResearch(msgs ...llm.Message) State {
	combined := make([]llm.Message, 0, len(s.ResearchMessages)+len(msgs))
	combined = append(combined, s.ResearchMessages...)
	combined = append(combined, msgs...)
	s.ResearchMessages = combined
	return s
}

// appendAnalysis returns the state with messages added to the analysis
// channel.
func (s State) appendAnalysis(msgs ...llm.Message) State {
	combined := make([]llm.Message, 0, len(s.AnalysisMessages)+len(msgs))
	combined = append(combined, s.AnalysisMessages...)
	combined = append(combined, msgs...)
	s.AnalysisMessages = combined
	return s
}

// ApprovalRequest is the interrupt payload delivered when the workflow
// suspends at the approval gate.
type ApprovalRequest struct {
	Kind            string           `json:"kind"`
	Question        string           `json:"question"`
	Options         []string         `json:"options"`
	AnalysisPreview []MessagePreview `json:"analysis_preview"`
}

// MessagePreview is a truncated view of an analysis message, small enough
// to show in an approval UI.
type MessagePreview struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// previewLimit bounds each preview's content length.
const previewLimit = 1200

// previewMessages returns truncated previews of the last limit messages.
func previewMessages(msgs []llm.Message, limit int) []MessagePreview {
	tail := msgs
	if limit > 0 && len(msgs) > limit {
		tail = msgs[len(msgs)-limit:]
	}
	out := make([]MessagePreview, 0, len(tail))
	for _, m := range tail {
		content := truncateRunes(m.Content, previewLimit)
		out = append(out, MessagePreview{Type: string(m.Role), Content: content})
	}
	return out
}
