// Package orchestrator is the production agent runtime. It drives a
// chat model through the job-search conversation loop: intent
// handling, CV profile extraction, gated web search, and deep scraping
// of selected postings. Every tool call suspends the run until a
// decision arrives, and all state lives in the checkpoint store so a
// suspended thread survives process restarts.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-jobagent-be/internal/pkg/logger"
	"ai-jobagent-be/pkg/agent"
	"ai-jobagent-be/pkg/agent/checkpoint"
	"ai-jobagent-be/pkg/extract"
	"ai-jobagent-be/pkg/llm"
	"ai-jobagent-be/pkg/tools"
)

var (
	// ErrSuspended is returned by Run when the thread is waiting on a
	// decision; callers must Resume instead.
	ErrSuspended = errors.New("orchestrator: thread is suspended awaiting a decision")
	// ErrNotSuspended is returned by Resume when there is nothing to
	// decide on.
	ErrNotSuspended = errors.New("orchestrator: thread has no pending interrupt")
)

// maxModelTurns bounds one run segment so a looping model cannot spin
// forever between tool batches.
const maxModelTurns = 8

// threadState is the durable blob saved per thread.
type threadState struct {
	Messages []agent.Message      `json:"messages"`
	Pending  *agent.InterruptInfo `json:"pending,omitempty"`
	Profile  *extract.Profile     `json:"profile,omitempty"`
}

type Orchestrator struct {
	provider llm.LLMProvider
	registry *tools.Registry
	store    checkpoint.Store
	log      logger.ILogger
}

var _ agent.Runtime = &Orchestrator{}

func New(provider llm.LLMProvider, registry *tools.Registry, store checkpoint.Store, log logger.ILogger) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		registry: registry,
		store:    store,
		log:      log,
	}
}

func (o *Orchestrator) loadState(ctx context.Context, threadID string) (*threadState, error) {
	blob, err := o.store.Load(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return &threadState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}
	var st threadState
	if err := json.Unmarshal(blob, &st); err != nil {
		return nil, fmt.Errorf("decode thread %s state: %w", threadID, err)
	}
	return &st, nil
}

func (o *Orchestrator) saveState(ctx context.Context, threadID string, st *threadState) error {
	blob, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode thread %s state: %w", threadID, err)
	}
	return o.store.Save(ctx, threadID, blob)
}

// Run appends the new user input and drives model turns until the
// model answers or requests tools. Tool requests always suspend.
func (o *Orchestrator) Run(ctx context.Context, threadID string, msgs []agent.Message) (agent.Stream, error) {
	st, err := o.loadState(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if st.Pending != nil {
		return nil, ErrSuspended
	}
	st.Messages = append(st.Messages, msgs...)
	return o.segment(ctx, threadID, st, nil)
}

// Resume applies the decision to the pending tool batch. Approval
// executes the tools and feeds results back to the model; rejection
// discards the batch and tells the model the user cancelled.
func (o *Orchestrator) Resume(ctx context.Context, threadID string, d agent.Decision) (agent.Stream, error) {
	st, err := o.loadState(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if st.Pending == nil {
		return nil, ErrNotSuspended
	}
	pending := *st.Pending
	st.Pending = nil

	if !d.Approved {
		note := d.Note
		if note == "" {
			note = "The user declined to run those tools."
		}
		st.Messages = append(st.Messages, agent.Message{
			Role:    agent.RoleAssistant,
			Content: "Okay, I won't run that. " + note + " Let me know how you'd like to proceed.",
		})
		if err := o.saveState(ctx, threadID, st); err != nil {
			return nil, err
		}
		return agent.NewSliceStream([]agent.Event{{Messages: snapshot(st)}}, nil), nil
	}
	return o.segment(ctx, threadID, st, pending.ToolCalls)
}

// State returns the durable snapshot for a thread. Unknown threads get
// an empty snapshot rather than an error, matching a never-spoken-to
// session.
func (o *Orchestrator) State(ctx context.Context, threadID string) (*agent.Snapshot, error) {
	st, err := o.loadState(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return &agent.Snapshot{Messages: snapshot(st), Interrupt: st.Pending}, nil
}

// segment runs the produce loop in a goroutine and returns a stream
// over its events. approved carries tool calls already cleared for
// execution when resuming.
func (o *Orchestrator) segment(ctx context.Context, threadID string, st *threadState, approved []agent.ToolCall) (agent.Stream, error) {
	events := make(chan agent.Event, 16)
	errc := make(chan error, 1)

	go func() {
		defer close(events)
		if err := o.produce(ctx, threadID, st, approved, events); err != nil {
			errc <- err
		}
	}()

	return agent.NewChanStream(events, errc), nil
}

func (o *Orchestrator) produce(ctx context.Context, threadID string, st *threadState, approved []agent.ToolCall, events chan<- agent.Event) error {
	send := func(ev agent.Event) error {
		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if len(approved) > 0 {
		if err := o.executeTools(ctx, threadID, st, approved, send); err != nil {
			return err
		}
	}

	for turn := 0; turn < maxModelTurns; turn++ {
		reply, err := o.provider.Chat(ctx, o.history(st), llm.WithTemperature(0.1))
		if err != nil {
			return fmt.Errorf("model turn failed: %w", err)
		}

		calls, rest := parseToolCalls(reply)
		if len(calls) == 0 {
			st.Messages = append(st.Messages, agent.Message{Role: agent.RoleAssistant, Content: reply})
			o.rememberProfile(st, reply)
			if err := o.saveState(ctx, threadID, st); err != nil {
				return err
			}
			return send(agent.Event{Messages: snapshot(st)})
		}

		st.Messages = append(st.Messages, agent.Message{
			Role:      agent.RoleAssistant,
			Content:   rest,
			ToolCalls: calls,
		})
		st.Pending = &agent.InterruptInfo{ToolCalls: calls, Reason: "tool execution requires approval"}
		if err := o.saveState(ctx, threadID, st); err != nil {
			return err
		}
		return send(agent.Event{Messages: snapshot(st), Interrupt: st.Pending})
	}
	return fmt.Errorf("model did not finish within %d turns", maxModelTurns)
}

// executeTools runs an approved batch and appends results as tool
// messages. Tool failures come back as result text, never as errors.
func (o *Orchestrator) executeTools(ctx context.Context, threadID string, st *threadState, calls []agent.ToolCall, send func(agent.Event) error) error {
	for _, call := range calls {
		tool, err := o.registry.Lookup(call.Name)
		var result string
		if err != nil {
			result = fmt.Sprintf("Tool error: %v", err)
		} else {
			result, err = tool.Call(ctx, call.Args)
			if err != nil {
				result = fmt.Sprintf("Tool error: %v", err)
			}
		}
		o.log.Info("orchestrator", "tool executed", map[string]interface{}{
			"thread_id": threadID,
			"tool":      call.Name,
		})
		st.Messages = append(st.Messages, agent.Message{
			Role:       agent.RoleTool,
			Content:    result,
			ToolCallID: call.ID,
		})
	}
	if err := o.saveState(ctx, threadID, st); err != nil {
		return err
	}
	return send(agent.Event{Messages: snapshot(st)})
}

// rememberProfile caches a parsed profile in thread state so later
// search turns can reference it without re-parsing the CV.
func (o *Orchestrator) rememberProfile(st *threadState, reply string) {
	if p := extract.ParseProfile(reply); !p.IsEmpty() {
		st.Profile = &p
	}
}

func snapshot(st *threadState) []agent.Message {
	out := make([]agent.Message, len(st.Messages))
	copy(out, st.Messages)
	return out
}
