package stream

import (
	"errors"
	"sync"
	"time"

	"ai-jobagent-be/pkg/agent"
)

// ErrNoPendingApproval is returned when a decision arrives for a
// thread with no stored interrupt, including one already consumed.
var ErrNoPendingApproval = errors.New("stream: no pending approval for thread")

// PendingApproval is the durable record of a suspended run waiting on
// a human decision. At most one exists per thread.
type PendingApproval struct {
	ThreadId  string              `json:"thread_id"`
	Interrupt agent.InterruptInfo `json:"interrupt"`
	CreatedAt time.Time           `json:"created_at"`
}

// ApprovalStore holds pending approvals. Put replaces any existing
// record for the thread; Take removes and returns it, so a record is
// consumed exactly once.
type ApprovalStore interface {
	Put(p *PendingApproval) error
	Take(threadID string) (*PendingApproval, error)
	Peek(threadID string) (*PendingApproval, error)
}

// MemoryApprovalStore is a mutex-guarded in-process ApprovalStore.
type MemoryApprovalStore struct {
	mu      sync.Mutex
	pending map[string]*PendingApproval
}

func NewMemoryApprovalStore() *MemoryApprovalStore {
	return &MemoryApprovalStore{pending: make(map[string]*PendingApproval)}
}

func (s *MemoryApprovalStore) Put(p *PendingApproval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[p.ThreadId] = p
	return nil
}

func (s *MemoryApprovalStore) Take(threadID string) (*PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[threadID]
	if !ok {
		return nil, ErrNoPendingApproval
	}
	delete(s.pending, threadID)
	return p, nil
}

func (s *MemoryApprovalStore) Peek(threadID string) (*PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[threadID]
	if !ok {
		return nil, ErrNoPendingApproval
	}
	return p, nil
}
