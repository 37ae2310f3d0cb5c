package stream

import (
	"fmt"
	"strings"

	"ai-jobagent-be/pkg/agent"
)

// toolLabels maps tool names to the human-readable labels shown while
// a tool call waits for approval or runs.
var toolLabels = map[string]string{
	"tavily_search":    "Searching the web for jobs...",
	"brave_search":     "Running backup job search...",
	"firecrawl_scrape": "Reading the job posting...",
	"parse_cv":         "Reading your CV...",
}

// CallLabel returns a display label for a batch of tool calls. Known
// single tools get their curated label; everything else falls back to
// a generic "Calling ..." line listing the tool names.
func CallLabel(calls []agent.ToolCall) string {
	if len(calls) == 1 {
		if label, ok := toolLabels[calls[0].Name]; ok {
			return label
		}
	}
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("Calling %s...", strings.Join(names, ", "))
}

func toolNames(calls []agent.ToolCall) []string {
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.Name)
	}
	return names
}
