package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-jobagent-be/pkg/agent"
)

type nopRuntime struct{ threadID string }

func (n *nopRuntime) Run(context.Context, string, []agent.Message) (agent.Stream, error) {
	return agent.NewSliceStream(nil, nil), nil
}

func (n *nopRuntime) Resume(context.Context, string, agent.Decision) (agent.Stream, error) {
	return agent.NewSliceStream(nil, nil), nil
}

func (n *nopRuntime) State(context.Context, string) (*agent.Snapshot, error) {
	return &agent.Snapshot{}, nil
}

func TestGetOrCreateReturnsSameHandle(t *testing.T) {
	reg := NewRegistry(func(id string) (agent.Runtime, error) {
		return &nopRuntime{threadID: id}, nil
	}, 10, time.Minute)

	h1, err := reg.GetOrCreate("t1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	h2, err := reg.GetOrCreate("t1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if h1 != h2 {
		t.Error("expected same handle for same thread id")
	}
	if h1.ThreadID != "t1" {
		t.Errorf("ThreadID = %q, want t1", h1.ThreadID)
	}
}

func TestGetOrCreateSingleFlight(t *testing.T) {
	var built int32
	reg := NewRegistry(func(id string) (agent.Runtime, error) {
		atomic.AddInt32(&built, 1)
		time.Sleep(20 * time.Millisecond)
		return &nopRuntime{threadID: id}, nil
	}, 10, time.Minute)

	var wg sync.WaitGroup
	handles := make([]*Handle, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := reg.GetOrCreate("shared")
			if err != nil {
				t.Errorf("GetOrCreate: %v", err)
				return
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&built); got != 1 {
		t.Errorf("factory ran %d times, want 1", got)
	}
	if handles[0] != handles[1] || handles[1] != handles[2] {
		t.Error("concurrent callers received different handles")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	reg := NewRegistry(func(id string) (agent.Runtime, error) {
		return &nopRuntime{threadID: id}, nil
	}, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := reg.GetOrCreate(fmt.Sprintf("t%d", i)); err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	if _, err := reg.GetOrCreate("t3"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if reg.Len() != 3 {
		t.Errorf("Len = %d, want 3", reg.Len())
	}
	if _, ok := reg.Get("t0"); ok {
		t.Error("oldest handle t0 should have been evicted")
	}
	if _, ok := reg.Get("t3"); !ok {
		t.Error("newest handle t3 missing")
	}
}

func TestFactoryErrorNotCached(t *testing.T) {
	var calls int32
	reg := NewRegistry(func(id string) (agent.Runtime, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, fmt.Errorf("transient failure")
		}
		return &nopRuntime{threadID: id}, nil
	}, 10, time.Minute)

	if _, err := reg.GetOrCreate("t1"); err == nil {
		t.Fatal("expected error from first construction")
	}
	h, err := reg.GetOrCreate("t1")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if h == nil {
		t.Fatal("expected handle after retry")
	}
}

func TestDrop(t *testing.T) {
	reg := NewRegistry(func(id string) (agent.Runtime, error) {
		return &nopRuntime{threadID: id}, nil
	}, 10, time.Minute)

	if _, err := reg.GetOrCreate("t1"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	reg.Drop("t1")
	if _, ok := reg.Get("t1"); ok {
		t.Error("handle should be gone after Drop")
	}
}
