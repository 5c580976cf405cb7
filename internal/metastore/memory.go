package metastore

import (
	"context"
	"sync"
)

// Memory is an in-memory metadata store for tests and local development.
// It counts Get calls so tests can assert how often the authoritative store
// was consulted.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*Metadata
	gets    int
	failure error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*Metadata)}
}

// Get returns the record for key or ErrNotFound.
func (m *Memory) Get(ctx context.Context, key string) (*Metadata, error) {
	m.mu.Lock()
	m.gets++
	failure := m.failure
	m.mu.Unlock()

	if failure != nil {
		return nil, failure
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	md, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *md
	return &cp, nil
}

// Put stores the record, overwriting any previous version.
func (m *Memory) Put(ctx context.Context, md *Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *md
	m.records[md.Key] = &cp
	return nil
}

// Gets reports how many times Get has been called.
func (m *Memory) Gets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets
}

// Fail makes every subsequent Get return err; nil restores normal operation.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}
