// Package cache implements the read-through metadata cache. The cache sits
// in the critical path for latency, never for correctness: every failure
// mode degrades to a miss and the authoritative store answers instead.
package cache

import (
	"context"
	"time"

	"github.com/your-org/imageflow/internal/metastore"
)

// Status classifies the outcome of a cache read.
type Status int

const (
	// Miss means no usable entry exists: never set, expired, or the cache
	// itself failed. The caller must fall back to the authoritative store.
	Miss Status = iota
	// Hit means a live positive entry was found.
	Hit
	// NegativeHit means a live tombstone was found: the key is known absent
	// and the store must not be consulted.
	NegativeHit
)

// Result carries the outcome of a cache read. Metadata is set only on Hit.
type Result struct {
	Status   Status
	Metadata *metastore.Metadata
}

// MetaCache is the read-through cache contract. Get never returns an error:
// unavailability and timeouts are reported as Miss. Writes are last-write-wins
// and best-effort; callers log write failures but never fail a request on them.
type MetaCache interface {
	Get(ctx context.Context, key string) Result
	Put(ctx context.Context, key string, md *metastore.Metadata, ttl time.Duration) error
	PutAbsent(ctx context.Context, key string, negativeTTL time.Duration) error
	// Delete removes any entry for key, positive or tombstone. The registrar
	// uses it to make freshly processed images discoverable before the
	// negative TTL lapses.
	Delete(ctx context.Context, key string) error
	Close() error
}
