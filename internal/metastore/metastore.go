package metastore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that a key has no metadata record. It is a valid
// negative result, not a backend failure, and is the only store error
// eligible for negative caching.
var ErrNotFound = errors.New("metadata not found")

const (
	defaultCacheTTL = 5 * time.Minute
	minCacheTTL     = time.Minute
	maxCacheTTL     = time.Hour
)

// Metadata is the record the processing pipeline writes for each image.
// It is written once per (re)processing run and read many times; the read
// path only ever copies it into the cache.
type Metadata struct {
	Key         string            `json:"key"`
	SizeBytes   int64             `json:"size_bytes"`
	ContentType string            `json:"content_type"`
	Variants    map[string]string `json:"variants,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	// ExpiresAt is the pipeline's expiry hint as a Unix epoch, zero if unset.
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// DeliveryKey returns the object key clients should fetch bytes from:
// the processed thumbnail variant when present, the raw key otherwise.
func (m *Metadata) DeliveryKey() string {
	if v, ok := m.Variants["thumb"]; ok && v != "" {
		return v
	}
	return m.Key
}

// CacheTTL derives the positive-cache TTL from the record's expiry hint,
// clamped to [1m, 1h]. Records without a hint get the default TTL.
func (m *Metadata) CacheTTL(now time.Time) time.Duration {
	if m.ExpiresAt == 0 {
		return defaultCacheTTL
	}
	ttl := time.Duration(m.ExpiresAt-now.Unix()) * time.Second
	if ttl < minCacheTTL {
		return minCacheTTL
	}
	if ttl > maxCacheTTL {
		return maxCacheTTL
	}
	return ttl
}

// Store is the authoritative metadata source. Get returns ErrNotFound for
// absent keys; any other error is a backend failure and must stay
// distinguishable from a missing record.
type Store interface {
	Get(ctx context.Context, key string) (*Metadata, error)
}

// Writer is the write side used by the registrar and tests. The lookup
// service never writes authoritative metadata.
type Writer interface {
	Put(ctx context.Context, md *Metadata) error
}
