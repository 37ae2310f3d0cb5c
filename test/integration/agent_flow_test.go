package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-jobagent-be/internal/pkg/logger"
	"ai-jobagent-be/pkg/agent"
	"ai-jobagent-be/pkg/agent/checkpoint"
	"ai-jobagent-be/pkg/agent/orchestrator"
	"ai-jobagent-be/pkg/agent/session"
	"ai-jobagent-be/pkg/agent/stream"
	"ai-jobagent-be/pkg/llm"
	"ai-jobagent-be/pkg/tools"
)

// scriptedLLM returns canned replies in order, cycling on the last.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	next    int
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply := s.replies[s.next]
	if s.next < len(s.replies)-1 {
		s.next++
	}
	return reply, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
}

// newStack wires the agent packages the way the container does, over
// in-memory stores and a fake search backend.
func newStack(t *testing.T, replies []string) (*stream.Controller, *session.Registry, stream.ApprovalStore, *checkpoint.MemoryStore) {
	t.Helper()

	searchAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"title":"Go Backend Engineer","url":"https://example.com/job/1","content":"Remote role building APIs in Go."}]}`)
	}))
	t.Cleanup(searchAPI.Close)

	tavily := tools.NewTavilySearch("test-key")
	tavily.BaseURL = searchAPI.URL
	registry := tools.NewRegistry(tavily)

	store := checkpoint.NewMemoryStore()
	provider := &scriptedLLM{replies: replies}

	sessions := session.NewRegistry(func(threadID string) (agent.Runtime, error) {
		return orchestrator.New(provider, registry, store, logger.NewNopLogger()), nil
	}, 10, 0)

	approvals := stream.NewMemoryApprovalStore()
	controller := stream.NewController(approvals, logger.NewNopLogger())
	return controller, sessions, approvals, store
}

func eventTypes(events []stream.Event) []string {
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

func TestChatTurnWithoutTools(t *testing.T) {
	controller, sessions, _, _ := newStack(t, []string{
		"Hello! Tell me what kind of role you're looking for.",
	})

	h, err := sessions.GetOrCreate("thread-plain")
	require.NoError(t, err)

	events, state, err := stream.Collect(func(emit stream.EmitFunc) (stream.State, error) {
		return controller.Run(context.Background(), h,
			[]agent.Message{{Role: agent.RoleUser, Content: "hi"}}, emit, stream.Options{})
	})
	require.NoError(t, err)
	assert.Equal(t, stream.StateCompleted, state)
	assert.Contains(t, eventTypes(events), "text")
	assert.Equal(t, "done", events[len(events)-1].Type)
}

func TestToolRunRequiresApprovalThenCompletes(t *testing.T) {
	controller, sessions, approvals, _ := newStack(t, []string{
		`{"tool_calls": [{"name": "tavily_search", "args": {"query": "golang remote jobs"}}]}`,
		`[{"title": "Go Backend Engineer", "company": "Example", "score": 88, "reason": "Strong Go match", "url": "https://example.com/job/1", "location": "Remote"}]`,
	})

	h, err := sessions.GetOrCreate("thread-tools")
	require.NoError(t, err)

	// Turn 1: the model wants to search, the run suspends.
	events, state, err := stream.Collect(func(emit stream.EmitFunc) (stream.State, error) {
		return controller.Run(context.Background(), h,
			[]agent.Message{{Role: agent.RoleUser, Content: "find me go jobs"}}, emit, stream.Options{})
	})
	require.NoError(t, err)
	require.Equal(t, stream.StateInterrupted, state)
	assert.Equal(t, "confirmation", events[len(events)-1].Type)

	pending, err := approvals.Peek("thread-tools")
	require.NoError(t, err)
	require.Len(t, pending.Interrupt.ToolCalls, 1)
	assert.Equal(t, "tavily_search", pending.Interrupt.ToolCalls[0].Name)

	// Turn 2: the user approves, the tool runs, jobs come back.
	events, state, err = stream.Collect(func(emit stream.EmitFunc) (stream.State, error) {
		return controller.Resume(context.Background(), h,
			agent.Decision{Approved: true}, emit, stream.Options{})
	})
	require.NoError(t, err)
	assert.Equal(t, stream.StateCompleted, state)

	var sawJobs bool
	for _, ev := range events {
		if ev.Type == "text" && ev.Data != nil {
			sawJobs = true
		}
	}
	assert.True(t, sawJobs, "expected a classified jobs payload in the final text event")

	// The approval is consumed, resuming again is an error.
	_, err = approvals.Take("thread-tools")
	assert.ErrorIs(t, err, stream.ErrNoPendingApproval)
}

func TestRejectionCancelsTools(t *testing.T) {
	controller, sessions, _, _ := newStack(t, []string{
		`{"tool_calls": [{"name": "tavily_search", "args": {"query": "golang jobs"}}]}`,
	})

	h, err := sessions.GetOrCreate("thread-reject")
	require.NoError(t, err)

	_, state, err := stream.Collect(func(emit stream.EmitFunc) (stream.State, error) {
		return controller.Run(context.Background(), h,
			[]agent.Message{{Role: agent.RoleUser, Content: "search for me"}}, emit, stream.Options{})
	})
	require.NoError(t, err)
	require.Equal(t, stream.StateInterrupted, state)

	events, state, err := stream.Collect(func(emit stream.EmitFunc) (stream.State, error) {
		return controller.Resume(context.Background(), h,
			agent.Decision{Approved: false, Note: "not now"}, emit, stream.Options{})
	})
	require.NoError(t, err)
	assert.Equal(t, stream.StateCompleted, state)

	var sawCancelText bool
	for _, ev := range events {
		if ev.Type == "agent_event" {
			assert.NotEqual(t, "tool_call", ev.Event, "rejected tools must not resurface as tool_call events")
		}
		if ev.Type == "text" {
			sawCancelText = true
		}
	}
	assert.True(t, sawCancelText, "rejection should produce an assistant acknowledgement")
}

func TestSuspendedRunSurvivesRegistryEviction(t *testing.T) {
	replies := []string{
		`{"tool_calls": [{"name": "tavily_search", "args": {"query": "golang jobs"}}]}`,
		"Here is what I found.",
	}

	searchAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer searchAPI.Close()

	tavily := tools.NewTavilySearch("test-key")
	tavily.BaseURL = searchAPI.URL
	registry := tools.NewRegistry(tavily)

	store := checkpoint.NewMemoryStore()
	provider := &scriptedLLM{replies: replies}
	factory := func(threadID string) (agent.Runtime, error) {
		return orchestrator.New(provider, registry, store, logger.NewNopLogger()), nil
	}

	approvals := stream.NewMemoryApprovalStore()
	controller := stream.NewController(approvals, logger.NewNopLogger())

	sessions := session.NewRegistry(factory, 10, 0)
	h, err := sessions.GetOrCreate("thread-durable")
	require.NoError(t, err)

	_, state, err := stream.Collect(func(emit stream.EmitFunc) (stream.State, error) {
		return controller.Run(context.Background(), h,
			[]agent.Message{{Role: agent.RoleUser, Content: "search"}}, emit, stream.Options{})
	})
	require.NoError(t, err)
	require.Equal(t, stream.StateInterrupted, state)

	// Simulate an eviction or restart: a fresh registry builds a new
	// runtime over the same checkpoint store.
	sessions2 := session.NewRegistry(factory, 10, 0)
	h2, err := sessions2.GetOrCreate("thread-durable")
	require.NoError(t, err)

	snap, err := h2.Runtime.State(context.Background(), "thread-durable")
	require.NoError(t, err)
	assert.True(t, snap.Suspended(), "suspension must be durable across runtimes")

	_, state, err = stream.Collect(func(emit stream.EmitFunc) (stream.State, error) {
		return controller.Resume(context.Background(), h2,
			agent.Decision{Approved: true}, emit, stream.Options{})
	})
	require.NoError(t, err)
	assert.Equal(t, stream.StateCompleted, state)
}

func TestResumeAfterProcessRestart(t *testing.T) {
	replies := []string{
		`{"tool_calls": [{"name": "tavily_search", "args": {"query": "golang jobs"}}]}`,
		"Here is what I found.",
	}

	searchAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer searchAPI.Close()

	tavily := tools.NewTavilySearch("test-key")
	tavily.BaseURL = searchAPI.URL
	registry := tools.NewRegistry(tavily)

	store := checkpoint.NewMemoryStore()
	provider := &scriptedLLM{replies: replies}
	factory := func(threadID string) (agent.Runtime, error) {
		return orchestrator.New(provider, registry, store, logger.NewNopLogger()), nil
	}

	// First process: run until the interrupt.
	controller1 := stream.NewController(stream.NewMemoryApprovalStore(), logger.NewNopLogger())
	sessions1 := session.NewRegistry(factory, 10, 0)
	h, err := sessions1.GetOrCreate("thread-restart")
	require.NoError(t, err)

	_, state, err := stream.Collect(func(emit stream.EmitFunc) (stream.State, error) {
		return controller1.Run(context.Background(), h,
			[]agent.Message{{Role: agent.RoleUser, Content: "search"}}, emit, stream.Options{})
	})
	require.NoError(t, err)
	require.Equal(t, stream.StateInterrupted, state)

	// Second process: registry, controller and approval store are all
	// brand new; only the checkpoint store carries over. The decision
	// must still land.
	controller2 := stream.NewController(stream.NewMemoryApprovalStore(), logger.NewNopLogger())
	sessions2 := session.NewRegistry(factory, 10, 0)
	h2, err := sessions2.GetOrCreate("thread-restart")
	require.NoError(t, err)

	events, state, err := stream.Collect(func(emit stream.EmitFunc) (stream.State, error) {
		return controller2.Resume(context.Background(), h2,
			agent.Decision{Approved: true}, emit, stream.Options{})
	})
	require.NoError(t, err)
	assert.Equal(t, stream.StateCompleted, state)
	assert.Contains(t, eventTypes(events), "text")
}
