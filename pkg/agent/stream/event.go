// Package stream drives agent runs and translates their raw events
// into the envelope the transport layer (SSE, websocket) sends to
// clients. It owns the interrupt lifecycle: storing pending approvals,
// consuming decisions, and cascading auto-approvals within a run.
package stream

// Event is the client-facing envelope. Type selects which of the
// optional fields are populated.
type Event struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Event   string      `json:"event,omitempty"`
	Label   string      `json:"label,omitempty"`
	Tools   []string    `json:"tools,omitempty"`
	Content string      `json:"content,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

const (
	TypeStatus       = "status"
	TypeAgentEvent   = "agent_event"
	TypeText         = "text"
	TypeConfirmation = "confirmation"
	TypeDone         = "done"
	TypeError        = "error"
)

// agent_event subtypes.
const (
	SubToolCall    = "tool_call"
	SubToolResult  = "tool_result"
	SubAutoApprove = "auto_approve"
)

// EmitFunc delivers one event to the client. A non-nil error aborts
// the run; the transport is gone and there is nobody left to tell.
type EmitFunc func(Event) error

func statusEvent(msg string) Event {
	return Event{Type: TypeStatus, Message: msg}
}

func errorEvent(msg string) Event {
	return Event{Type: TypeError, Error: msg}
}
