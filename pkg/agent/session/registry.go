// Package session tracks live agent threads. The registry hands out
// per-thread handles with single-flight construction so concurrent
// requests for the same thread never build two runtimes.
package session

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"ai-jobagent-be/pkg/agent"
)

const (
	DefaultCapacity = 200
	DefaultTTL      = time.Hour
	sweepInterval   = 10 * time.Minute
)

// Handle is the per-thread unit the registry hands out. Mu serializes
// turns on the thread: a stream and a resume for the same thread must
// never interleave.
type Handle struct {
	ThreadID  string
	Runtime   agent.Runtime
	CreatedAt time.Time

	Mu sync.Mutex
}

// Factory builds a runtime for a thread on first use.
type Factory func(threadID string) (agent.Runtime, error)

// Registry is a bounded TTL cache of live handles. Entries expire
// after TTL of inactivity; when the cache is full the oldest entry is
// evicted. Expiry or eviction only drops the in-memory handle, durable
// thread state stays in the checkpoint store.
type Registry struct {
	cache    *gocache.Cache
	group    singleflight.Group
	factory  Factory
	capacity int
	mu       sync.Mutex
}

func NewRegistry(factory Factory, capacity int, ttl time.Duration) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		cache:    gocache.New(ttl, sweepInterval),
		factory:  factory,
		capacity: capacity,
	}
}

// GetOrCreate returns the handle for threadID, constructing it at most
// once even under concurrent callers. Every hit refreshes the TTL.
func (r *Registry) GetOrCreate(threadID string) (*Handle, error) {
	if h, ok := r.cache.Get(threadID); ok {
		r.cache.SetDefault(threadID, h)
		return h.(*Handle), nil
	}
	v, err, _ := r.group.Do(threadID, func() (interface{}, error) {
		if h, ok := r.cache.Get(threadID); ok {
			return h, nil
		}
		rt, err := r.factory(threadID)
		if err != nil {
			return nil, err
		}
		h := &Handle{
			ThreadID:  threadID,
			Runtime:   rt,
			CreatedAt: time.Now(),
		}
		r.evictIfFull()
		r.cache.SetDefault(threadID, h)
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	h := v.(*Handle)
	r.cache.SetDefault(threadID, h)
	return h, nil
}

// Get returns the handle if it is live, without constructing one.
func (r *Registry) Get(threadID string) (*Handle, bool) {
	h, ok := r.cache.Get(threadID)
	if !ok {
		return nil, false
	}
	return h.(*Handle), true
}

// Drop removes a thread's handle, e.g. after a failed run.
func (r *Registry) Drop(threadID string) {
	r.cache.Delete(threadID)
}

// Len reports the number of live handles.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

func (r *Registry) evictIfFull() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache.ItemCount() < r.capacity {
		return
	}
	var oldestKey string
	var oldest time.Time
	for key, item := range r.cache.Items() {
		h, ok := item.Object.(*Handle)
		if !ok {
			continue
		}
		if oldestKey == "" || h.CreatedAt.Before(oldest) {
			oldestKey = key
			oldest = h.CreatedAt
		}
	}
	if oldestKey != "" {
		r.cache.Delete(oldestKey)
	}
}
