package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-jobagent-be/internal/pkg/logger"
	"ai-jobagent-be/pkg/agent"
	"ai-jobagent-be/pkg/agent/session"
	"ai-jobagent-be/pkg/extract"
)

// ErrNonMonotonicMessages signals a runtime protocol violation: an
// event reported the same or fewer messages than the one before it.
var ErrNonMonotonicMessages = errors.New("stream: message count did not grow between events")

// State is the terminal outcome of driving one run segment.
type State string

const (
	StateRunning     State = "running"
	StateInterrupted State = "interrupted"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// ApprovalPolicy decides what the controller does when the runtime
// suspends on a tool-call interrupt.
type ApprovalPolicy int

const (
	// ApproveNone stores the interrupt and hands control to the user.
	ApproveNone ApprovalPolicy = iota
	// ApproveRun auto-approves every interrupt for the rest of the
	// run segment, up to the cascade cap.
	ApproveRun
)

const defaultMaxCascade = 8

// Options tune a single run segment.
type Options struct {
	Policy ApprovalPolicy
	// DetailPhase widens output classification to job detail records.
	DetailPhase bool
	// MaxCascade caps consecutive auto-approvals; zero means default.
	MaxCascade int
}

// Controller drives runtime streams to a terminal state, translating
// raw agent events into client events and managing the interrupt
// lifecycle through the approval store.
type Controller struct {
	approvals ApprovalStore
	log       logger.ILogger
}

func NewController(approvals ApprovalStore, log logger.ILogger) *Controller {
	return &Controller{approvals: approvals, log: log}
}

// Run starts or continues a thread with new user input and drives it
// until completion or interrupt. The handle's mutex is held for the
// whole segment so a resume cannot interleave with it.
func (c *Controller) Run(ctx context.Context, h *session.Handle, msgs []agent.Message, emit EmitFunc, opts Options) (state State, err error) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	defer c.recoverToError(h.ThreadID, emit, &state, &err)

	if err := emit(statusEvent("Thinking...")); err != nil {
		return StateFailed, err
	}
	snap, err := h.Runtime.State(ctx, h.ThreadID)
	if err != nil {
		return c.fail(h.ThreadID, emit, err)
	}
	s, err := h.Runtime.Run(ctx, h.ThreadID, msgs)
	if err != nil {
		return c.fail(h.ThreadID, emit, err)
	}
	return c.drain(ctx, h, s, emit, opts, len(snap.Messages))
}

// Resume consumes the thread's pending approval and re-enters the
// runtime with the decision. Subsequent interrupts in the same segment
// are auto-approved regardless of opts.Policy; the user already made
// their call for this run.
func (c *Controller) Resume(ctx context.Context, h *session.Handle, d agent.Decision, emit EmitFunc, opts Options) (state State, err error) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	defer c.recoverToError(h.ThreadID, emit, &state, &err)

	snap, err := h.Runtime.State(ctx, h.ThreadID)
	if err != nil {
		return c.fail(h.ThreadID, emit, err)
	}
	if _, err := c.approvals.Take(h.ThreadID); err != nil {
		// The in-process record does not survive a restart. The
		// durable snapshot is authoritative: if it still holds the
		// interrupt, the decision stands.
		if !errors.Is(err, ErrNoPendingApproval) || !snap.Suspended() {
			c.emitError(emit, err)
			return StateFailed, err
		}
	}
	if d.Approved {
		if err := emit(statusEvent("Approved, continuing...")); err != nil {
			return StateFailed, err
		}
		opts.Policy = ApproveRun
	} else {
		if err := emit(statusEvent("Cancelled the pending action.")); err != nil {
			return StateFailed, err
		}
	}
	s, err := h.Runtime.Resume(ctx, h.ThreadID, d)
	if err != nil {
		return c.fail(h.ThreadID, emit, err)
	}
	return c.drain(ctx, h, s, emit, opts, len(snap.Messages))
}

// drain pumps the stream, emitting client events for each new message
// and handling interrupts per the approval policy. Events carry the
// thread's full conversation, so lastCount seeds the diff cursor with
// the pre-segment message count and only grows from there, across
// cascade resumes too.
func (c *Controller) drain(ctx context.Context, h *session.Handle, s agent.Stream, emit EmitFunc, opts Options, lastCount int) (State, error) {
	maxCascade := opts.MaxCascade
	if maxCascade <= 0 {
		maxCascade = defaultMaxCascade
	}
	approvals := 0
	var final *Event

	for {
		ev, err := s.Next(ctx)
		if errors.Is(err, agent.ErrStreamDone) {
			done := Event{Type: TypeDone}
			if final != nil {
				done.Content = final.Content
				done.Data = final.Data
			}
			if err := emit(done); err != nil {
				return StateFailed, err
			}
			return StateCompleted, nil
		}
		if err != nil {
			return c.fail(h.ThreadID, emit, err)
		}

		if len(ev.Messages) > 0 {
			if len(ev.Messages) <= lastCount {
				return c.fail(h.ThreadID, emit, ErrNonMonotonicMessages)
			}
			fresh := ev.Messages[lastCount:]
			lastCount = len(ev.Messages)
			for _, m := range fresh {
				out, ok := messageEvent(m, opts)
				if !ok {
					continue
				}
				if out.Type == TypeText {
					cp := out
					final = &cp
				}
				if err := emit(out); err != nil {
					return StateFailed, err
				}
			}
		}

		if ev.Interrupt == nil {
			continue
		}
		if opts.Policy == ApproveRun && approvals < maxCascade {
			approvals++
			if err := emit(Event{
				Type:  TypeAgentEvent,
				Event: SubAutoApprove,
				Label: CallLabel(ev.Interrupt.ToolCalls),
				Tools: toolNames(ev.Interrupt.ToolCalls),
			}); err != nil {
				return StateFailed, err
			}
			s, err = h.Runtime.Resume(ctx, h.ThreadID, agent.Decision{Approved: true})
			if err != nil {
				return c.fail(h.ThreadID, emit, err)
			}
			continue
		}
		if err := c.approvals.Put(&PendingApproval{
			ThreadId:  h.ThreadID,
			Interrupt: *ev.Interrupt,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return c.fail(h.ThreadID, emit, err)
		}
		if err := emit(Event{
			Type:    TypeConfirmation,
			Message: "The agent wants to run tools and needs your approval.",
			Label:   CallLabel(ev.Interrupt.ToolCalls),
			Tools:   toolNames(ev.Interrupt.ToolCalls),
		}); err != nil {
			return StateFailed, err
		}
		return StateInterrupted, nil
	}
}

func messageEvent(m agent.Message, opts Options) (Event, bool) {
	switch {
	case m.Role == agent.RoleAssistant && len(m.ToolCalls) > 0:
		return Event{
			Type:  TypeAgentEvent,
			Event: SubToolCall,
			Label: CallLabel(m.ToolCalls),
			Tools: toolNames(m.ToolCalls),
		}, true
	case m.Role == agent.RoleTool:
		return Event{Type: TypeAgentEvent, Event: SubToolResult}, true
	case m.Role == agent.RoleAssistant:
		ev := Event{Type: TypeText, Content: m.Content}
		if cls := extract.Classify(m.Content, opts.DetailPhase); cls.Kind != extract.KindText {
			ev.Data = cls
		}
		return ev, true
	default:
		// User and system messages are echoes of input, nothing to send.
		return Event{}, false
	}
}

func (c *Controller) fail(threadID string, emit EmitFunc, cause error) (State, error) {
	c.log.Error("agent_stream", "run segment failed", map[string]interface{}{
		"thread_id": threadID,
		"error":     cause.Error(),
	})
	c.emitError(emit, cause)
	return StateFailed, cause
}

func (c *Controller) emitError(emit EmitFunc, cause error) {
	// Best effort, the transport may already be gone.
	_ = emit(errorEvent(cause.Error()))
}

// recoverToError turns a runtime panic into a failed segment instead
// of tearing down the connection handler.
func (c *Controller) recoverToError(threadID string, emit EmitFunc, state *State, err *error) {
	if r := recover(); r != nil {
		e := fmt.Errorf("agent runtime panic: %v", r)
		c.log.Error("agent_stream", "recovered runtime panic", map[string]interface{}{
			"thread_id": threadID,
			"panic":     fmt.Sprint(r),
		})
		c.emitError(emit, e)
		*state = StateFailed
		*err = e
	}
}

// Collect runs fn with an emit that buffers every event, for callers
// that want the whole segment at once instead of a live stream.
func Collect(fn func(emit EmitFunc) (State, error)) ([]Event, State, error) {
	var events []Event
	state, err := fn(func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	return events, state, err
}
