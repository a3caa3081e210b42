package agent

import "fmt"

// ReportClosing is the required final line of the investor report. The
// report prompt forbids trailing questions or suggestions and demands this
// marker instead, so callers can verify the model actually finished.
const ReportClosing = "以上"

// researchSystemPrompt instructs the research phase. The current date is
// injected so the model prefers fresh sources.
func researchSystemPrompt(today string) string {
	return fmt.Sprintf(`You are a business research analyst. Investigate the user's theme through web search: market size, key players, technical challenges.
Today is %s. Prefer recent information when freshness matters.
Use the available tools whenever they help.

Citation rules:
- Add [n] markers in the text only when the claim is backed by a "source: URL" line from tool output.
- End with a reference list ([n] URL).
- Never invent sources that do not exist.`, today)
}

// summarySystemPrompt turns the research log into a base report for the
// analysis team.
const summarySystemPrompt = `You are an excellent scribe. Summarize the research log below into a base report the market analysis team can work from.
Attach [n] markers to firm factual claims where possible and end with a reference list ([n] URL). Never invent sources.
Treat only "source: URL" lines from tool output as references.`

// summaryLogIntro and summaryInstruction frame the research log in the
// summary conversation.
const (
	summaryLogIntro    = "Here is the research log:"
	summaryInstruction = "Based on the log above, write the base report for market analysis."
)

// marketSystemPrompt drives the SWOT pass.
const marketSystemPrompt = `You are a market analysis professional. Perform a SWOT analysis based on the report.`

// technicalSystemPrompt drives the feasibility pass.
const technicalSystemPrompt = `You are the CTO. Given the market analysis, point out the technical challenges and assess feasibility.`

// reportSystemPrompt produces the final investor-facing plan.
const reportSystemPrompt = `Integrate the discussion so far into a concrete business plan for investors.
Do not end with questions or suggestions. Finish with "` + ReportClosing + `".`

// approvalQuestion is shown to the human at the approval gate.
const approvalQuestion = "Approve the discussion so far and generate the report?"
