// Package agent defines the runtime contract for conversational agents
// that can suspend themselves mid-run and be resumed later with a
// human decision. Implementations live in pkg/agent/orchestrator.
package agent

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Message is a single conversation turn.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	// ToolCallID links a tool result message back to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is an agent's request to invoke a named tool.
type ToolCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// InterruptInfo describes why a run suspended and what it wants approved.
type InterruptInfo struct {
	ToolCalls []ToolCall `json:"tool_calls"`
	Reason    string     `json:"reason,omitempty"`
}

// Snapshot is a point-in-time view of a thread's durable state.
type Snapshot struct {
	// Messages holds the full conversation so far, oldest first.
	Messages []Message `json:"messages"`
	// Interrupt is non-nil when the run is suspended awaiting a decision.
	Interrupt *InterruptInfo `json:"interrupt,omitempty"`
}

// Suspended reports whether the snapshot represents a paused run.
func (s *Snapshot) Suspended() bool {
	return s.Interrupt != nil
}

// Decision is the human verdict on a pending interrupt.
type Decision struct {
	Approved bool   `json:"approved"`
	Note     string `json:"note,omitempty"`
}

// Event is one element of a run's output stream. Each event carries
// the thread's full message list as of that step, so consumers diff
// against the previous event to find what is new.
type Event struct {
	// Messages is the full conversation at this step, oldest first.
	// It must grow strictly between message-bearing events.
	Messages []Message
	// Interrupt is set on the final event of a suspended run.
	Interrupt *InterruptInfo
}

// Stream is a pull-based sequence of run events. Next blocks until the
// next event is available, the stream ends (ErrStreamDone), or ctx is
// cancelled.
type Stream interface {
	Next(ctx context.Context) (Event, error)
}

// Runtime executes agent turns against durable per-thread state.
// Run starts or continues a thread with new input; Resume answers the
// thread's pending interrupt. Both return a stream that ends either at
// completion or at the next interrupt.
type Runtime interface {
	Run(ctx context.Context, threadID string, msgs []Message) (Stream, error)
	Resume(ctx context.Context, threadID string, d Decision) (Stream, error)
	// State returns the current durable snapshot for a thread.
	State(ctx context.Context, threadID string) (*Snapshot, error)
}
