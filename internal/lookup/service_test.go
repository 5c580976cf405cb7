package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/your-org/imageflow/internal/cache"
	"github.com/your-org/imageflow/internal/delivery"
	"github.com/your-org/imageflow/internal/metastore"
)

// downCache simulates a completely unavailable cache: reads miss, writes fail.
type downCache struct{}

func (downCache) Get(ctx context.Context, key string) cache.Result {
	return cache.Result{Status: cache.Miss}
}

func (downCache) Put(ctx context.Context, key string, md *metastore.Metadata, ttl time.Duration) error {
	return errors.New("cache unreachable")
}

func (downCache) PutAbsent(ctx context.Context, key string, ttl time.Duration) error {
	return errors.New("cache unreachable")
}

func (downCache) Delete(ctx context.Context, key string) error {
	return errors.New("cache unreachable")
}

func (downCache) Close() error { return nil }

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context, md *metastore.Metadata) (*delivery.Target, error) {
	return nil, errors.New("signing key misconfigured")
}

func newTestService(t *testing.T, store metastore.Store, c cache.MetaCache) *Service {
	t.Helper()
	resolver, err := delivery.NewCDN("cdn.example.com")
	require.NoError(t, err)
	return NewService(Params{
		Store:       store,
		Cache:       c,
		Resolver:    resolver,
		Logger:      zap.NewNop(),
		PositiveTTL: 5 * time.Minute,
		NegativeTTL: 30 * time.Second,
	})
}

func seed(t *testing.T, store *metastore.Memory, key string) *metastore.Metadata {
	t.Helper()
	md := &metastore.Metadata{
		Key:         key,
		SizeBytes:   2048,
		ContentType: "image/jpeg",
		Variants:    map[string]string{"thumb": "resized/" + key},
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.Put(context.Background(), md))
	return md
}

func TestLookupMetadataColdCache(t *testing.T) {
	store := metastore.NewMemory()
	seed(t, store, "a.jpg")
	c := cache.NewMemory()
	svc := newTestService(t, store, c)
	ctx := context.Background()

	md, err := svc.LookupMetadata(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", md.Key)

	// The miss populated the cache.
	res := c.Get(ctx, "a.jpg")
	assert.Equal(t, cache.Hit, res.Status)
}

func TestLookupMetadataCacheHitSkipsStore(t *testing.T) {
	store := metastore.NewMemory()
	seed(t, store, "a.jpg")
	svc := newTestService(t, store, cache.NewMemory())
	ctx := context.Background()

	_, err := svc.LookupMetadata(ctx, "a.jpg")
	require.NoError(t, err)
	require.Equal(t, 1, store.Gets())

	_, err = svc.LookupMetadata(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Gets(), "warm lookup must not touch the store")
}

func TestLookupMetadataNegativeCaching(t *testing.T) {
	store := metastore.NewMemory()
	c := cache.NewMemory()
	svc := newTestService(t, store, c)
	ctx := context.Background()

	_, err := svc.LookupMetadata(ctx, "b.jpg")
	require.ErrorIs(t, err, metastore.ErrNotFound)
	require.Equal(t, 1, store.Gets())
	assert.Equal(t, cache.NegativeHit, c.Get(ctx, "b.jpg").Status)

	_, err = svc.LookupMetadata(ctx, "b.jpg")
	require.ErrorIs(t, err, metastore.ErrNotFound)
	assert.Equal(t, 1, store.Gets(), "negative hit must not touch the store")
}

func TestLookupMetadataExpiredEntryRequeriesStore(t *testing.T) {
	store := metastore.NewMemory()
	seed(t, store, "a.jpg")
	c := cache.NewMemory()
	svc := newTestService(t, store, c)
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })
	_, err := svc.LookupMetadata(ctx, "a.jpg")
	require.NoError(t, err)
	require.Equal(t, 1, store.Gets())

	c.SetClock(func() time.Time { return now.Add(time.Hour) })
	_, err = svc.LookupMetadata(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, 2, store.Gets(), "expired entry must be treated as a miss")
}

func TestLookupMetadataCacheDownStillCorrect(t *testing.T) {
	store := metastore.NewMemory()
	seed(t, store, "a.jpg")
	svc := newTestService(t, store, downCache{})
	ctx := context.Background()

	md, err := svc.LookupMetadata(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", md.Key)

	_, err = svc.LookupMetadata(ctx, "missing.jpg")
	assert.ErrorIs(t, err, metastore.ErrNotFound)
}

func TestLookupMetadataStoreErrorIsNotNotFound(t *testing.T) {
	store := metastore.NewMemory()
	store.Fail(errors.New("store down"))
	c := cache.NewMemory()
	svc := newTestService(t, store, c)
	ctx := context.Background()

	_, err := svc.LookupMetadata(ctx, "a.jpg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, metastore.ErrNotFound)

	// Backend errors must never be cached.
	assert.Equal(t, cache.Miss, c.Get(ctx, "a.jpg").Status)
}

func TestLookupDelivery(t *testing.T) {
	store := metastore.NewMemory()
	seed(t, store, "a.jpg")
	svc := newTestService(t, store, cache.NewMemory())

	target, err := svc.LookupDelivery(context.Background(), "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/resized/a.jpg", target.URL)
	assert.True(t, target.Permanent())
}

func TestLookupDeliveryNotFound(t *testing.T) {
	svc := newTestService(t, metastore.NewMemory(), cache.NewMemory())

	_, err := svc.LookupDelivery(context.Background(), "missing.jpg")
	assert.ErrorIs(t, err, metastore.ErrNotFound)
}

func TestLookupDeliveryResolutionFailure(t *testing.T) {
	store := metastore.NewMemory()
	seed(t, store, "a.jpg")
	svc := NewService(Params{
		Store:       store,
		Cache:       cache.NewMemory(),
		Resolver:    failingResolver{},
		Logger:      zap.NewNop(),
		PositiveTTL: 5 * time.Minute,
		NegativeTTL: 30 * time.Second,
	})

	_, err := svc.LookupDelivery(context.Background(), "a.jpg")
	require.ErrorIs(t, err, ErrResolution)
	assert.NotErrorIs(t, err, metastore.ErrNotFound)
}

func TestEndToEndScenario(t *testing.T) {
	store := metastore.NewMemory()
	seed(t, store, "a.jpg")
	c := cache.NewMemory()
	svc := newTestService(t, store, c)
	ctx := context.Background()

	md, err := svc.LookupMetadata(ctx, "a.jpg")
	require.NoError(t, err)
	require.Equal(t, "a.jpg", md.Key)
	require.Equal(t, cache.Hit, c.Get(ctx, "a.jpg").Status)

	_, err = svc.LookupMetadata(ctx, "b.jpg")
	require.ErrorIs(t, err, metastore.ErrNotFound)
	require.Equal(t, cache.NegativeHit, c.Get(ctx, "b.jpg").Status)

	storeGets := store.Gets()
	_, err = svc.LookupMetadata(ctx, "b.jpg")
	require.ErrorIs(t, err, metastore.ErrNotFound)
	assert.Equal(t, storeGets, store.Gets(), "second b.jpg lookup must add zero store queries")
}
