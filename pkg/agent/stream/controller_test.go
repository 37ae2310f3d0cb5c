package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-jobagent-be/internal/pkg/logger"
	"ai-jobagent-be/pkg/agent"
	"ai-jobagent-be/pkg/agent/session"
)

// segment is one scripted Run or Resume stream.
type segment struct {
	events []agent.Event
	err    error
}

// scriptedRuntime replays canned segments and records the decisions
// it was resumed with. state stands in for the durable snapshot a
// real runtime reconstructs from its checkpoint store; events must
// carry the full conversation on top of it, like the real thing.
type scriptedRuntime struct {
	segments  []segment
	decisions []agent.Decision
	panicOn   bool
	state     agent.Snapshot
}

func (r *scriptedRuntime) next() (agent.Stream, error) {
	if r.panicOn {
		panic("scripted panic")
	}
	if len(r.segments) == 0 {
		return agent.NewSliceStream(nil, nil), nil
	}
	seg := r.segments[0]
	r.segments = r.segments[1:]
	return agent.NewSliceStream(seg.events, seg.err), nil
}

func (r *scriptedRuntime) Run(context.Context, string, []agent.Message) (agent.Stream, error) {
	return r.next()
}

func (r *scriptedRuntime) Resume(_ context.Context, _ string, d agent.Decision) (agent.Stream, error) {
	r.decisions = append(r.decisions, d)
	return r.next()
}

func (r *scriptedRuntime) State(context.Context, string) (*agent.Snapshot, error) {
	return &r.state, nil
}

func newHandle(rt agent.Runtime) *session.Handle {
	return &session.Handle{ThreadID: "t1", Runtime: rt, CreatedAt: time.Now()}
}

func newController() (*Controller, *MemoryApprovalStore) {
	store := NewMemoryApprovalStore()
	return NewController(store, logger.NewNopLogger()), store
}

func userMessages(text string) []agent.Message {
	return []agent.Message{{Role: agent.RoleUser, Content: text}}
}

func assistant(content string) agent.Message {
	return agent.Message{Role: agent.RoleAssistant, Content: content}
}

func toolCallMsg(name string) agent.Message {
	return agent.Message{
		Role:      agent.RoleAssistant,
		ToolCalls: []agent.ToolCall{{ID: "c1", Name: name}},
	}
}

func interruptEvent(msgs []agent.Message, names ...string) agent.Event {
	calls := make([]agent.ToolCall, 0, len(names))
	for i, n := range names {
		calls = append(calls, agent.ToolCall{ID: string(rune('a' + i)), Name: n})
	}
	return agent.Event{Messages: msgs, Interrupt: &agent.InterruptInfo{ToolCalls: calls}}
}

func eventTypes(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		if ev.Type == TypeAgentEvent {
			out = append(out, ev.Type+":"+ev.Event)
		} else {
			out = append(out, ev.Type)
		}
	}
	return out
}

func TestRunCompletes(t *testing.T) {
	rt := &scriptedRuntime{segments: []segment{{
		events: []agent.Event{
			{Messages: []agent.Message{{Role: agent.RoleUser, Content: "hi"}, assistant("hello")}},
		},
	}}}
	c, _ := newController()
	h := newHandle(rt)

	events, state, err := Collect(func(emit EmitFunc) (State, error) {
		return c.Run(context.Background(), h, nil, emit, Options{})
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state != StateCompleted {
		t.Fatalf("state = %s, want %s", state, StateCompleted)
	}
	want := []string{TypeStatus, TypeText, TypeDone}
	got := eventTypes(events)
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if events[1].Content != "hello" {
		t.Errorf("text content = %q, want hello", events[1].Content)
	}
	if events[2].Content != "hello" {
		t.Errorf("done payload = %q, want the final answer", events[2].Content)
	}
}

// A later turn replays the whole conversation in its events; only the
// messages added by this segment may surface.
func TestSecondTurnEmitsOnlyNewText(t *testing.T) {
	prior := []agent.Message{
		{Role: agent.RoleUser, Content: "hi"},
		assistant("hello"),
	}
	history := append(append([]agent.Message{}, prior...),
		agent.Message{Role: agent.RoleUser, Content: "more"},
		assistant("sure thing"))
	rt := &scriptedRuntime{
		state: agent.Snapshot{Messages: prior},
		segments: []segment{{
			events: []agent.Event{{Messages: history}},
		}},
	}
	c, _ := newController()
	h := newHandle(rt)

	events, state, err := Collect(func(emit EmitFunc) (State, error) {
		return c.Run(context.Background(), h, userMessages("more"), emit, Options{})
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state != StateCompleted {
		t.Fatalf("state = %s, want %s", state, StateCompleted)
	}
	var texts []string
	for _, ev := range events {
		if ev.Type == TypeText {
			texts = append(texts, ev.Content)
		}
	}
	if len(texts) != 1 || texts[0] != "sure thing" {
		t.Errorf("text events = %v, want only the new answer", texts)
	}
}

// Pending approvals live in process memory; after a restart the
// durable snapshot still holds the interrupt, so a decision on it
// must go through.
func TestResumeRebuildsFromDurableInterrupt(t *testing.T) {
	suspended := []agent.Message{
		{Role: agent.RoleUser, Content: "find jobs"},
		toolCallMsg("tavily_search"),
	}
	history := append(append([]agent.Message{}, suspended...),
		agent.Message{Role: agent.RoleTool, Content: "results"},
		assistant("here are your jobs"))
	rt := &scriptedRuntime{
		state: agent.Snapshot{
			Messages:  suspended,
			Interrupt: &agent.InterruptInfo{ToolCalls: []agent.ToolCall{{ID: "c0", Name: "tavily_search"}}},
		},
		segments: []segment{{
			events: []agent.Event{{Messages: history}},
		}},
	}
	// Fresh controller and store, as after a process restart: no
	// in-memory approval record exists.
	c, _ := newController()
	h := newHandle(rt)

	_, state, err := Collect(func(emit EmitFunc) (State, error) {
		return c.Resume(context.Background(), h, agent.Decision{Approved: true}, emit, Options{})
	})
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if state != StateCompleted {
		t.Fatalf("state = %s, want %s", state, StateCompleted)
	}
	if len(rt.decisions) != 1 || !rt.decisions[0].Approved {
		t.Fatalf("runtime decisions = %+v, want one approval", rt.decisions)
	}
}

func TestRunInterruptStoresPending(t *testing.T) {
	rt := &scriptedRuntime{segments: []segment{{
		events: []agent.Event{
			interruptEvent([]agent.Message{toolCallMsg("tavily_search")}, "tavily_search"),
		},
	}}}
	c, store := newController()
	h := newHandle(rt)

	events, state, err := Collect(func(emit EmitFunc) (State, error) {
		return c.Run(context.Background(), h, nil, emit, Options{})
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state != StateInterrupted {
		t.Fatalf("state = %s, want %s", state, StateInterrupted)
	}
	last := events[len(events)-1]
	if last.Type != TypeConfirmation {
		t.Errorf("last event = %s, want %s", last.Type, TypeConfirmation)
	}
	p, err := store.Peek("t1")
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if len(p.Interrupt.ToolCalls) != 1 || p.Interrupt.ToolCalls[0].Name != "tavily_search" {
		t.Errorf("stored interrupt = %+v", p.Interrupt)
	}
}

// A single approval must carry the run through every later interrupt
// in the segment without asking again.
func TestResumeApproveCascades(t *testing.T) {
	// Histories are cumulative: each event carries the whole
	// conversation, as the real runtime reports it.
	suspended := []agent.Message{
		{Role: agent.RoleUser, Content: "find jobs"},
		toolCallMsg("tavily_search"),
	}
	afterFirst := append(append([]agent.Message{}, suspended...),
		agent.Message{Role: agent.RoleTool, Content: "results"})
	secondBatch := append(append([]agent.Message{}, afterFirst...), toolCallMsg("brave_search"))
	finalHistory := append(append([]agent.Message{}, secondBatch...),
		agent.Message{Role: agent.RoleTool, Content: "more results"},
		assistant("here are your jobs"))
	rt := &scriptedRuntime{
		state: agent.Snapshot{Messages: suspended},
		segments: []segment{
			// Segment after the user's approve: tool result then a second interrupt.
			{events: []agent.Event{
				{Messages: afterFirst},
				interruptEvent(secondBatch, "brave_search"),
			}},
			// Segment after the cascade's auto-approve: final answer.
			{events: []agent.Event{
				{Messages: finalHistory},
			}},
		},
	}
	c, store := newController()
	h := newHandle(rt)
	_ = store.Put(&PendingApproval{ThreadId: "t1", Interrupt: agent.InterruptInfo{
		ToolCalls: []agent.ToolCall{{ID: "c0", Name: "tavily_search"}},
	}})

	events, state, err := Collect(func(emit EmitFunc) (State, error) {
		return c.Resume(context.Background(), h, agent.Decision{Approved: true}, emit, Options{})
	})
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if state != StateCompleted {
		t.Fatalf("state = %s, want %s", state, StateCompleted)
	}
	if len(rt.decisions) != 2 {
		t.Fatalf("runtime resumed %d times, want 2 (user approve + cascade)", len(rt.decisions))
	}
	for i, d := range rt.decisions {
		if !d.Approved {
			t.Errorf("decision[%d] not approved", i)
		}
	}
	var autoApprovals int
	for _, ev := range events {
		if ev.Type == TypeAgentEvent && ev.Event == SubAutoApprove {
			autoApprovals++
		}
	}
	if autoApprovals != 1 {
		t.Errorf("auto_approve events = %d, want 1", autoApprovals)
	}
	if _, err := store.Peek("t1"); !errors.Is(err, ErrNoPendingApproval) {
		t.Error("pending approval should have been consumed")
	}
}

func TestResumeRejectPassesDecision(t *testing.T) {
	// The suspended history still contains the gated tool-call
	// message; replaying it after a rejection must not resurface it
	// as a tool_call event.
	suspended := []agent.Message{
		{Role: agent.RoleUser, Content: "find jobs"},
		toolCallMsg("tavily_search"),
	}
	history := append(append([]agent.Message{}, suspended...),
		assistant("Okay, I won't run that search."))
	rt := &scriptedRuntime{
		state: agent.Snapshot{
			Messages:  suspended,
			Interrupt: &agent.InterruptInfo{ToolCalls: []agent.ToolCall{{ID: "c0", Name: "tavily_search"}}},
		},
		segments: []segment{{
			events: []agent.Event{{Messages: history}},
		}},
	}
	c, store := newController()
	h := newHandle(rt)
	_ = store.Put(&PendingApproval{ThreadId: "t1", Interrupt: agent.InterruptInfo{
		ToolCalls: []agent.ToolCall{{ID: "c0", Name: "tavily_search"}},
	}})

	events, state, err := Collect(func(emit EmitFunc) (State, error) {
		return c.Resume(context.Background(), h, agent.Decision{Approved: false}, emit, Options{})
	})
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if state != StateCompleted {
		t.Fatalf("state = %s, want %s", state, StateCompleted)
	}
	if len(rt.decisions) != 1 || rt.decisions[0].Approved {
		t.Fatalf("runtime decisions = %+v, want one rejection", rt.decisions)
	}
	var texts int
	for _, ev := range events {
		switch {
		case ev.Type == TypeAgentEvent && ev.Event == SubToolCall:
			t.Error("rejected run must not replay the gated tool_call")
		case ev.Type == TypeAgentEvent && ev.Event == SubToolResult:
			t.Error("rejected run must not produce tool results")
		case ev.Type == TypeText:
			texts++
		}
	}
	if texts != 1 {
		t.Errorf("text events = %d, want only the cancellation", texts)
	}
}

func TestResumeWithoutPending(t *testing.T) {
	rt := &scriptedRuntime{}
	c, _ := newController()
	h := newHandle(rt)

	_, state, err := Collect(func(emit EmitFunc) (State, error) {
		return c.Resume(context.Background(), h, agent.Decision{Approved: true}, emit, Options{})
	})
	if !errors.Is(err, ErrNoPendingApproval) {
		t.Fatalf("err = %v, want ErrNoPendingApproval", err)
	}
	if state != StateFailed {
		t.Errorf("state = %s, want %s", state, StateFailed)
	}
	if len(rt.decisions) != 0 {
		t.Error("runtime must not be resumed without a pending approval")
	}
}

func TestNonMonotonicMessagesFails(t *testing.T) {
	msgs := []agent.Message{assistant("one")}
	rt := &scriptedRuntime{segments: []segment{{
		events: []agent.Event{
			{Messages: msgs},
			{Messages: msgs}, // same count again
		},
	}}}
	c, _ := newController()
	h := newHandle(rt)

	events, state, err := Collect(func(emit EmitFunc) (State, error) {
		return c.Run(context.Background(), h, nil, emit, Options{})
	})
	if !errors.Is(err, ErrNonMonotonicMessages) {
		t.Fatalf("err = %v, want ErrNonMonotonicMessages", err)
	}
	if state != StateFailed {
		t.Errorf("state = %s, want %s", state, StateFailed)
	}
	last := events[len(events)-1]
	if last.Type != TypeError {
		t.Errorf("last event = %s, want %s", last.Type, TypeError)
	}
}

func TestPanicRecovered(t *testing.T) {
	rt := &scriptedRuntime{panicOn: true}
	c, _ := newController()
	h := newHandle(rt)

	events, state, err := Collect(func(emit EmitFunc) (State, error) {
		return c.Run(context.Background(), h, nil, emit, Options{})
	})
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	if state != StateFailed {
		t.Errorf("state = %s, want %s", state, StateFailed)
	}
	last := events[len(events)-1]
	if last.Type != TypeError {
		t.Errorf("last event = %s, want %s", last.Type, TypeError)
	}
}

func TestCascadeCap(t *testing.T) {
	// Every segment interrupts again; the cascade must stop at the cap
	// and hand the next interrupt to the user.
	var segs []segment
	var history []agent.Message
	for i := 0; i < 5; i++ {
		history = append(history, toolCallMsg("tavily_search"))
		cumulative := make([]agent.Message, len(history))
		copy(cumulative, history)
		segs = append(segs, segment{events: []agent.Event{
			interruptEvent(cumulative, "tavily_search"),
		}})
	}
	rt := &scriptedRuntime{segments: segs}
	c, store := newController()
	h := newHandle(rt)

	_, state, err := Collect(func(emit EmitFunc) (State, error) {
		return c.Run(context.Background(), h, nil, emit, Options{Policy: ApproveRun, MaxCascade: 2})
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state != StateInterrupted {
		t.Fatalf("state = %s, want %s", state, StateInterrupted)
	}
	if len(rt.decisions) != 2 {
		t.Errorf("auto-approvals = %d, want 2", len(rt.decisions))
	}
	if _, err := store.Peek("t1"); err != nil {
		t.Error("capped cascade must store the pending interrupt")
	}
}

func TestCallLabel(t *testing.T) {
	known := []agent.ToolCall{{Name: "tavily_search"}}
	if got := CallLabel(known); got != "Searching the web for jobs..." {
		t.Errorf("label = %q", got)
	}
	unknown := []agent.ToolCall{{Name: "alpha"}, {Name: "beta"}}
	if got := CallLabel(unknown); got != "Calling alpha, beta..." {
		t.Errorf("fallback label = %q", got)
	}
}

func TestCollectBuffersEvents(t *testing.T) {
	events, state, err := Collect(func(emit EmitFunc) (State, error) {
		if err := emit(statusEvent("working")); err != nil {
			return StateFailed, err
		}
		if err := emit(Event{Type: TypeText, Content: "hello"}); err != nil {
			return StateFailed, err
		}
		return StateCompleted, nil
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if state != StateCompleted {
		t.Fatalf("state = %s, want %s", state, StateCompleted)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[1].Content != "hello" {
		t.Errorf("content = %q", events[1].Content)
	}
}
