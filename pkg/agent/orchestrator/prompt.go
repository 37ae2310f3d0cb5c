package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"ai-jobagent-be/pkg/agent"
	"ai-jobagent-be/pkg/llm"
)

const promptTemplate = `You are a friendly job search assistant. Date: %s

## Your Capabilities
1. Parse CVs and extract skills/experience
2. Search for jobs matching the user's profile
3. Fetch full details for jobs the user selects
4. Answer questions about job searching, career advice, skills

## Intent Handling
- CV shared: extract a COMPACT profile and show it
- Job search requested: run targeted web searches, score and rank results
- Job selection ("tell me more about 1 and 3"): scrape those postings for details
- General questions: answer directly, no tools

## Tools
%s

To use tools, reply with ONLY this JSON object (no prose around it):
{"tool_calls": [{"name": "tavily_search", "args": {"query": "...", "max_results": 8}}]}

## Output Formats
Profile (after reading a CV), as JSON:
{"skills": ["Go", "ML"], "experience_years": 2, "titles": ["Backend Engineer"], "summary": "MAX 30 words"}
- TOP 10 skills, MAX 3 recent titles.

Job results, as a raw JSON array (no markdown fences, no explanation):
[{"title": "Job Title", "company": "Company", "score": 85, "reason": "brief match reason", "url": "https://...", "location": "remote"}]
- MAX 10 jobs, reason MAX 10 words, url MANDATORY, location one of remote/hybrid/onsite or a city.

Job details (after scraping selected postings), as a raw JSON array:
[{"url": "https://...", "salary": "$120k-150k" or null, "description": "2-3 sentences", "requirements": ["..."], "benefits": ["..."], "apply_url": "..."}]

## Response Style
- Conversational, concise (2-3 sentences for chat)
- Ask a clarifying question when intent is unclear`

// systemPrompt renders the orchestrator instructions with the live
// tool inventory.
func (o *Orchestrator) systemPrompt() string {
	var lines []string
	for _, name := range o.registry.Names() {
		tool, err := o.registry.Lookup(name)
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", tool.Name(), tool.Description()))
	}
	if len(lines) == 0 {
		lines = []string{"- (no tools available)"}
	}
	return fmt.Sprintf(promptTemplate, time.Now().Format("2006-01-02"), strings.Join(lines, "\n"))
}

// history renders thread state into the provider's flat message
// format. Tool results become user turns because the chat endpoint
// has no native tool role.
func (o *Orchestrator) history(st *threadState) []llm.Message {
	out := make([]llm.Message, 0, len(st.Messages)+2)
	out = append(out, llm.Message{Role: "system", Content: o.systemPrompt()})
	if st.Profile != nil {
		out = append(out, llm.Message{
			Role:    "system",
			Content: "Known user profile: " + profileLine(st.Profile),
		})
	}
	for _, m := range st.Messages {
		switch m.Role {
		case agent.RoleTool:
			out = append(out, llm.Message{Role: "user", Content: "Tool result:\n" + m.Content})
		case agent.RoleAssistant:
			content := m.Content
			if len(m.ToolCalls) > 0 {
				content = renderToolCalls(m.ToolCalls)
			}
			out = append(out, llm.Message{Role: "assistant", Content: content})
		default:
			out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
		}
	}
	return out
}
