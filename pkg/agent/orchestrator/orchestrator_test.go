package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"ai-jobagent-be/internal/pkg/logger"
	"ai-jobagent-be/pkg/agent"
	"ai-jobagent-be/pkg/agent/checkpoint"
	"ai-jobagent-be/pkg/llm"
	"ai-jobagent-be/pkg/tools"
)

// scriptedProvider replays canned model replies.
type scriptedProvider struct {
	replies []string
	prompts [][]llm.Message
}

func (p *scriptedProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	p.prompts = append(p.prompts, history)
	if len(p.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// echoTool records invocations and returns a fixed result.
type echoTool struct {
	name   string
	calls  int
	result string
}

func (t *echoTool) Name() string        { return t.name }
func (t *echoTool) Description() string { return "test tool" }
func (t *echoTool) Call(_ context.Context, _ json.RawMessage) (string, error) {
	t.calls++
	return t.result, nil
}

func drainAll(t *testing.T, s agent.Stream) []agent.Event {
	t.Helper()
	var out []agent.Event
	for {
		ev, err := s.Next(context.Background())
		if errors.Is(err, agent.ErrStreamDone) {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, ev)
	}
}

func newTestOrchestrator(provider llm.LLMProvider, tls ...tools.Tool) (*Orchestrator, *checkpoint.MemoryStore) {
	store := checkpoint.NewMemoryStore()
	o := New(provider, tools.NewRegistry(tls...), store, logger.NewNopLogger())
	return o, store
}

func userMsg(text string) []agent.Message {
	return []agent.Message{{Role: agent.RoleUser, Content: text}}
}

func TestPlainChatCompletes(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"Happy to help with your job hunt!"}}
	o, _ := newTestOrchestrator(provider)

	s, err := o.Run(context.Background(), "t1", userMsg("hi"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	events := drainAll(t, s)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	msgs := events[0].Messages
	last := msgs[len(msgs)-1]
	if last.Role != agent.RoleAssistant || last.Content != "Happy to help with your job hunt!" {
		t.Errorf("last message = %+v", last)
	}
	if events[0].Interrupt != nil {
		t.Error("plain chat must not interrupt")
	}
}

func TestToolRequestSuspends(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"tool_calls": [{"name": "tavily_search", "args": {"query": "go jobs"}}]}`,
	}}
	search := &echoTool{name: "tavily_search", result: "**Go Dev**\nURL: https://a.io\nRemote"}
	o, _ := newTestOrchestrator(provider, search)

	s, err := o.Run(context.Background(), "t1", userMsg("find me go jobs"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	events := drainAll(t, s)
	last := events[len(events)-1]
	if last.Interrupt == nil {
		t.Fatal("tool request must suspend the run")
	}
	if got := last.Interrupt.ToolCalls[0].Name; got != "tavily_search" {
		t.Errorf("interrupt tool = %q", got)
	}
	if search.calls != 0 {
		t.Error("tool must not run before approval")
	}

	// The suspension must be durable, not in-process.
	snap, err := o.State(context.Background(), "t1")
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if !snap.Suspended() {
		t.Error("snapshot should report suspension")
	}
}

func TestRunWhileSuspendedRejected(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"tool_calls": [{"name": "tavily_search", "args": {"query": "x"}}]}`,
	}}
	o, _ := newTestOrchestrator(provider, &echoTool{name: "tavily_search"})

	s, _ := o.Run(context.Background(), "t1", userMsg("search"))
	drainAll(t, s)

	if _, err := o.Run(context.Background(), "t1", userMsg("another")); !errors.Is(err, ErrSuspended) {
		t.Errorf("err = %v, want ErrSuspended", err)
	}
}

func TestResumeApprovedExecutesTools(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"tool_calls": [{"name": "tavily_search", "args": {"query": "go jobs"}}]}`,
		`[{"title": "Go Dev", "company": "Acme", "score": 90, "reason": "strong match", "url": "https://a.io", "location": "remote"}]`,
	}}
	search := &echoTool{name: "tavily_search", result: "**Go Dev**\nURL: https://a.io\nRemote"}
	o, _ := newTestOrchestrator(provider, search)

	s, _ := o.Run(context.Background(), "t1", userMsg("find me go jobs"))
	drainAll(t, s)

	s, err := o.Resume(context.Background(), "t1", agent.Decision{Approved: true})
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	events := drainAll(t, s)
	if search.calls != 1 {
		t.Fatalf("tool ran %d times, want 1", search.calls)
	}

	final := events[len(events)-1]
	msgs := final.Messages
	last := msgs[len(msgs)-1]
	if !strings.Contains(last.Content, "Go Dev") {
		t.Errorf("final answer = %q", last.Content)
	}
	if final.Interrupt != nil {
		t.Error("run should complete after the final answer")
	}

	// Tool result must be recorded in durable history.
	var sawToolMsg bool
	for _, m := range msgs {
		if m.Role == agent.RoleTool {
			sawToolMsg = true
		}
	}
	if !sawToolMsg {
		t.Error("tool result missing from history")
	}
}

func TestResumeRejectedCancels(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"tool_calls": [{"name": "tavily_search", "args": {"query": "x"}}]}`,
	}}
	search := &echoTool{name: "tavily_search"}
	o, _ := newTestOrchestrator(provider, search)

	s, _ := o.Run(context.Background(), "t1", userMsg("search"))
	drainAll(t, s)

	s, err := o.Resume(context.Background(), "t1", agent.Decision{Approved: false})
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	events := drainAll(t, s)
	if search.calls != 0 {
		t.Error("rejected tools must never run")
	}
	msgs := events[len(events)-1].Messages
	last := msgs[len(msgs)-1]
	if !strings.Contains(last.Content, "won't run") {
		t.Errorf("cancellation message = %q", last.Content)
	}

	// The interrupt is consumed; resuming again is an error.
	if _, err := o.Resume(context.Background(), "t1", agent.Decision{Approved: true}); !errors.Is(err, ErrNotSuspended) {
		t.Errorf("err = %v, want ErrNotSuspended", err)
	}
}

func TestSuspensionSurvivesRestart(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"tool_calls": [{"name": "tavily_search", "args": {"query": "x"}}]}`,
		"All done.",
	}}
	search := &echoTool{name: "tavily_search", result: "results"}
	store := checkpoint.NewMemoryStore()

	o1 := New(provider, tools.NewRegistry(search), store, logger.NewNopLogger())
	s, _ := o1.Run(context.Background(), "t1", userMsg("search"))
	drainAll(t, s)

	// A fresh runtime over the same store stands in for a restart.
	o2 := New(provider, tools.NewRegistry(search), store, logger.NewNopLogger())
	snap, err := o2.State(context.Background(), "t1")
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if !snap.Suspended() {
		t.Fatal("suspension must survive a runtime swap")
	}
	s, err = o2.Resume(context.Background(), "t1", agent.Decision{Approved: true})
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	drainAll(t, s)
	if search.calls != 1 {
		t.Errorf("tool ran %d times, want 1", search.calls)
	}
}

func TestProfileCached(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`Here is your profile:
` + "```json\n" + `{"skills": ["Go", "Postgres"], "experience_years": 4, "titles": ["Backend Engineer"], "summary": "Backend dev"}` + "\n```",
		"You're welcome!",
	}}
	o, store := newTestOrchestrator(provider)

	s, _ := o.Run(context.Background(), "t1", userMsg("here is my cv: ..."))
	drainAll(t, s)

	blob, err := store.Load(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var st threadState
	if err := json.Unmarshal(blob, &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if st.Profile == nil || len(st.Profile.Skills) != 2 {
		t.Fatalf("durable profile = %+v, want 2 skills", st.Profile)
	}

	s, err = o.Run(context.Background(), "t1", userMsg("thanks"))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	drainAll(t, s)

	// Second turn's system context must carry the cached profile.
	second := provider.prompts[len(provider.prompts)-1]
	var found bool
	for _, m := range second {
		if m.Role == "system" && strings.Contains(m.Content, "Go, Postgres") {
			found = true
		}
	}
	if !found {
		t.Error("cached profile missing from system context")
	}
}

func TestParseToolCallsProse(t *testing.T) {
	calls, _ := parseToolCalls("I'll search now.\n```json\n{\"tool_calls\": [{\"name\": \"brave_search\", \"args\": {\"query\": \"jobs\"}}]}\n```")
	if len(calls) != 1 || calls[0].Name != "brave_search" {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].ID == "" {
		t.Error("calls must get ids")
	}

	calls, rest := parseToolCalls(`{"skills": ["Go"], "summary": "not a tool call"}`)
	if calls != nil {
		t.Errorf("profile JSON misread as tool calls: %+v", calls)
	}
	if rest == "" {
		t.Error("reply text must be preserved")
	}
}

func TestTrimCV(t *testing.T) {
	short := "Skills: Go"
	if got := TrimCV(short, 4000); got != short {
		t.Errorf("short CV must pass through, got %q", got)
	}

	var b strings.Builder
	b.WriteString("Skills\nGo, Python, Kubernetes\nExperience\n")
	for i := 0; i < 500; i++ {
		b.WriteString("Did a thing at some company for a while\n")
	}
	b.WriteString("References\nAvailable on request\n")
	got := TrimCV(b.String(), 4000)
	if len(got) > 4000+len("\n[truncated]") {
		t.Errorf("trimmed CV too long: %d", len(got))
	}
	if !strings.Contains(got, "Go, Python, Kubernetes") {
		t.Error("skills section must survive trimming")
	}
	if strings.Contains(got, "References") {
		t.Error("references section must be dropped")
	}
}
