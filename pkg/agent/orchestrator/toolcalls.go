package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ai-jobagent-be/pkg/agent"
	"ai-jobagent-be/pkg/extract"
)

// toolCallEnvelope is the JSON shape the prompt asks the model to emit
// when it wants tools.
type toolCallEnvelope struct {
	ToolCalls []struct {
		Name string          `json:"name"`
		Args json.RawMessage `json:"args"`
	} `json:"tool_calls"`
}

// parseToolCalls scans a model reply for a tool-call directive. The
// model is told to emit bare JSON but routinely wraps it in prose or
// fences, so extraction goes through the resilient parser. Returns the
// calls plus any surrounding text, or nil when the reply is a normal
// answer.
func parseToolCalls(reply string) ([]agent.ToolCall, string) {
	raw, ok := extract.Extract(reply, extract.ShapeObject)
	if !ok {
		return nil, reply
	}
	var env toolCallEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.ToolCalls) == 0 {
		return nil, reply
	}
	calls := make([]agent.ToolCall, 0, len(env.ToolCalls))
	for _, c := range env.ToolCalls {
		if c.Name == "" {
			continue
		}
		calls = append(calls, agent.ToolCall{
			ID:   uuid.NewString(),
			Name: c.Name,
			Args: c.Args,
		})
	}
	if len(calls) == 0 {
		return nil, reply
	}
	rest := strings.TrimSpace(strings.Replace(reply, string(raw), "", 1))
	return calls, rest
}

// renderToolCalls turns stored calls back into the wire form the model
// originally produced, for replay in later history.
func renderToolCalls(calls []agent.ToolCall) string {
	type wireCall struct {
		Name string          `json:"name"`
		Args json.RawMessage `json:"args,omitempty"`
	}
	wire := struct {
		ToolCalls []wireCall `json:"tool_calls"`
	}{}
	for _, c := range calls {
		wire.ToolCalls = append(wire.ToolCalls, wireCall{Name: c.Name, Args: c.Args})
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// profileLine renders a cached profile for the system prompt.
func profileLine(p *extract.Profile) string {
	parts := []string{}
	if len(p.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(p.Skills, ", "))
	}
	if p.ExperienceYears != nil {
		parts = append(parts, fmt.Sprintf("Experience: %d years", *p.ExperienceYears))
	}
	if len(p.Titles) > 0 {
		parts = append(parts, "Roles: "+strings.Join(p.Titles, ", "))
	}
	if p.Summary != "" {
		parts = append(parts, p.Summary)
	}
	return strings.Join(parts, ". ")
}
