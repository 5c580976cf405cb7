package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/your-org/imageflow/internal/cache"
	"github.com/your-org/imageflow/internal/delivery"
	"github.com/your-org/imageflow/internal/metastore"
	"github.com/your-org/imageflow/internal/metrics"
)

// ErrResolution marks delivery resolution failures, which are server errors
// for the affected request and must never be reported as not-found.
var ErrResolution = errors.New("delivery resolution failed")

// Service orchestrates the cache-first read path: consult the cache, fall
// back to the authoritative store on miss, fill the cache, and delegate to
// the delivery resolver for image requests. It is stateless per request.
type Service struct {
	store       metastore.Store
	cache       cache.MetaCache
	resolver    delivery.Resolver
	logger      *zap.Logger
	tracer      trace.Tracer
	positiveTTL time.Duration
	negativeTTL time.Duration
}

type Params struct {
	Store    metastore.Store
	Cache    cache.MetaCache
	Resolver delivery.Resolver
	Logger   *zap.Logger
	// PositiveTTL is the cache TTL for records without an expiry hint.
	PositiveTTL time.Duration
	// NegativeTTL bounds how long a known-missing key stays undiscoverable.
	NegativeTTL time.Duration
}

// NewService constructs a lookup Service.
func NewService(p Params) *Service {
	return &Service{
		store:       p.Store,
		cache:       p.Cache,
		resolver:    p.Resolver,
		logger:      p.Logger,
		tracer:      otel.Tracer("imageflow/lookup"),
		positiveTTL: p.PositiveTTL,
		negativeTTL: p.NegativeTTL,
	}
}

// LookupMetadata returns the metadata record for key, or
// metastore.ErrNotFound. Cache failures degrade to store reads; store
// failures surface as backend errors, never as not-found, and are never
// cached.
func (s *Service) LookupMetadata(ctx context.Context, key string) (*metastore.Metadata, error) {
	ctx, span := s.tracer.Start(ctx, "lookup.metadata",
		trace.WithAttributes(attribute.String("image.key", key)))
	defer span.End()

	res := s.cache.Get(ctx, key)
	switch res.Status {
	case cache.Hit:
		metrics.RecordLookup("hit")
		span.SetAttributes(attribute.String("cache", "hit"))
		return res.Metadata, nil
	case cache.NegativeHit:
		metrics.RecordLookup("negative_hit")
		span.SetAttributes(attribute.String("cache", "negative_hit"))
		return nil, metastore.ErrNotFound
	}
	span.SetAttributes(attribute.String("cache", "miss"))

	start := time.Now()
	md, err := s.store.Get(ctx, key)
	metrics.StoreLatency.Observe(time.Since(start).Seconds())

	if errors.Is(err, metastore.ErrNotFound) {
		metrics.RecordLookup("not_found")
		s.fillAbsent(ctx, key)
		return nil, metastore.ErrNotFound
	}
	if err != nil {
		metrics.RecordLookup("error")
		return nil, fmt.Errorf("metadata store get %s: %w", key, err)
	}

	metrics.RecordLookup("store_hit")
	s.fill(ctx, key, md)
	return md, nil
}

// LookupDelivery resolves the delivery target for key, or returns
// metastore.ErrNotFound when the key has no record.
func (s *Service) LookupDelivery(ctx context.Context, key string) (*delivery.Target, error) {
	ctx, span := s.tracer.Start(ctx, "lookup.delivery",
		trace.WithAttributes(attribute.String("image.key", key)))
	defer span.End()

	md, err := s.LookupMetadata(ctx, key)
	if err != nil {
		return nil, err
	}

	target, err := s.resolver.Resolve(ctx, md)
	if err != nil {
		return nil, errors.Join(ErrResolution, err)
	}
	return target, nil
}

// fill writes a positive cache entry. Fills are best-effort: a cache that
// cannot accept writes only costs latency on the next lookup.
func (s *Service) fill(ctx context.Context, key string, md *metastore.Metadata) {
	ttl := s.positiveTTL
	if md.ExpiresAt != 0 {
		ttl = md.CacheTTL(time.Now())
	}
	if err := s.cache.Put(ctx, key, md, ttl); err != nil {
		metrics.CacheFillFailures.Inc()
		s.logger.Debug("cache fill failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) fillAbsent(ctx context.Context, key string) {
	if err := s.cache.PutAbsent(ctx, key, s.negativeTTL); err != nil {
		metrics.CacheFillFailures.Inc()
		s.logger.Debug("negative cache fill failed", zap.String("key", key), zap.Error(err))
	}
}
