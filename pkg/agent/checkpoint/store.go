// Package checkpoint persists agent thread state between runs. The
// runtime loads a thread's blob before each turn and saves it after
// every state transition, which is what makes suspension durable.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Load for threads that have never been saved.
var ErrNotFound = errors.New("checkpoint: thread not found")

// Store reads and writes opaque per-thread state blobs.
type Store interface {
	Load(ctx context.Context, threadID string) (json.RawMessage, error)
	Save(ctx context.Context, threadID string, state json.RawMessage) error
	Delete(ctx context.Context, threadID string) error
}
