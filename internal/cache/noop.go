package cache

import (
	"context"
	"time"

	"github.com/your-org/imageflow/internal/metastore"
)

// Noop is the cache for the cache-disabled deployment variant: every read is
// a miss and writes are discarded. Wiring it in keeps the lookup service free
// of "is the cache enabled" branching.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Get(ctx context.Context, key string) Result {
	return Result{Status: Miss}
}

func (Noop) Put(ctx context.Context, key string, md *metastore.Metadata, ttl time.Duration) error {
	return nil
}

func (Noop) PutAbsent(ctx context.Context, key string, negativeTTL time.Duration) error {
	return nil
}

func (Noop) Delete(ctx context.Context, key string) error {
	return nil
}

func (Noop) Close() error { return nil }
