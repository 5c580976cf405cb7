package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/imageflow/internal/metastore"
	"github.com/your-org/imageflow/internal/metrics"
)

// ErrNoCDNDomain reports a CDN resolver constructed without a domain.
var ErrNoCDNDomain = errors.New("cdn domain not configured")

// CDN resolves delivery targets as stable URLs under a content-delivery
// hostname. No per-request signing; the URL is valid until the underlying
// object changes.
type CDN struct {
	domain string
}

// NewCDN creates a CDN resolver for the given hostname.
func NewCDN(domain string) (*CDN, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, ErrNoCDNDomain
	}
	return &CDN{domain: domain}, nil
}

func (c *CDN) Resolve(ctx context.Context, md *metastore.Metadata) (*Target, error) {
	path := strings.TrimLeft(md.DeliveryKey(), "/")
	metrics.DeliveriesTotal.WithLabelValues("cdn").Inc()
	return &Target{URL: fmt.Sprintf("https://%s/%s", c.domain, path)}, nil
}
