package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/imageflow/internal/metastore"
	"github.com/your-org/imageflow/internal/metrics"
	"github.com/your-org/imageflow/pkg/storage/objectstore"
)

// Signed resolves delivery targets as time-limited presigned URLs against
// the backing object store.
type Signed struct {
	store  objectstore.Client
	expiry time.Duration
}

// NewSigned creates a presigning resolver with the given URL lifetime.
func NewSigned(store objectstore.Client, expiry time.Duration) *Signed {
	return &Signed{store: store, expiry: expiry}
}

func (s *Signed) Resolve(ctx context.Context, md *metastore.Metadata) (*Target, error) {
	url, err := s.store.PresignedGet(ctx, md.DeliveryKey(), s.expiry)
	if err != nil {
		return nil, fmt.Errorf("sign delivery url for %s: %w", md.Key, err)
	}
	metrics.DeliveriesTotal.WithLabelValues("signed").Inc()
	return &Target{URL: url, ExpiresAt: time.Now().Add(s.expiry)}, nil
}
