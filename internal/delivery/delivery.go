// Package delivery resolves image keys into the URLs clients fetch bytes
// from. The two strategies are the seam that lets the baseline and
// CDN-fronted deployment variants share one codebase.
package delivery

import (
	"context"
	"time"

	"github.com/your-org/imageflow/internal/metastore"
)

// Target is a resolved delivery URL. ExpiresAt is zero for permanent URLs
// (CDN) and set for signed ones; callers must not cache a target past it.
type Target struct {
	URL       string
	ExpiresAt time.Time
}

// Permanent reports whether the target never expires.
func (t *Target) Permanent() bool {
	return t.ExpiresAt.IsZero()
}

// Resolver turns a metadata record into a delivery Target. A resolution
// error is fatal for the request and maps to a server error, never to a 404.
type Resolver interface {
	Resolve(ctx context.Context, md *metastore.Metadata) (*Target, error)
}
