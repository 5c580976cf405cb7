package cache

import (
	"context"
	"sync"
	"time"

	"github.com/your-org/imageflow/internal/metastore"
)

type entry struct {
	md        *metastore.Metadata
	absent    bool
	expiresAt time.Time
}

// Memory is an in-process MetaCache for tests and single-instance
// deployments. Expiry is evaluated lazily on read; expired entries are
// removed on the next Get that observes them.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(ctx context.Context, key string) Result {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return Result{Status: Miss}
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have refreshed it.
		if cur, ok := m.entries[key]; ok && m.now().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return Result{Status: Miss}
	}
	if e.absent {
		return Result{Status: NegativeHit}
	}
	cp := *e.md
	return Result{Status: Hit, Metadata: &cp}
}

func (m *Memory) Put(ctx context.Context, key string, md *metastore.Metadata, ttl time.Duration) error {
	cp := *md
	m.mu.Lock()
	m.entries[key] = entry{md: &cp, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) PutAbsent(ctx context.Context, key string, negativeTTL time.Duration) error {
	m.mu.Lock()
	m.entries[key] = entry{absent: true, expiresAt: m.now().Add(negativeTTL)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// SetClock overrides the time source, letting tests advance expiry
// deterministically.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}
