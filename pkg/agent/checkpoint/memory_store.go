package checkpoint

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps thread state in process memory. Used in tests and
// in single-node deployments that can tolerate losing suspended runs
// on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]json.RawMessage)}
}

func (s *MemoryStore) Load(_ context.Context, threadID string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(json.RawMessage, len(blob))
	copy(out, blob)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, threadID string, state json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob := make(json.RawMessage, len(state))
	copy(blob, state)
	s.blobs[threadID] = blob
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, threadID)
	return nil
}
