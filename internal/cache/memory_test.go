package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/imageflow/internal/metastore"
)

func testMetadata(key string) *metastore.Metadata {
	return &metastore.Metadata{
		Key:         key,
		SizeBytes:   1024,
		ContentType: "image/jpeg",
		Variants:    map[string]string{"thumb": "resized/" + key},
		CreatedAt:   time.Now().UTC(),
	}
}

func TestMemoryPutGet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "a.jpg", testMetadata("a.jpg"), time.Minute))

	res := c.Get(ctx, "a.jpg")
	require.Equal(t, Hit, res.Status)
	require.NotNil(t, res.Metadata)
	assert.Equal(t, "a.jpg", res.Metadata.Key)
}

func TestMemoryMissWhenEmpty(t *testing.T) {
	c := NewMemory()

	res := c.Get(context.Background(), "nope.jpg")
	assert.Equal(t, Miss, res.Status)
	assert.Nil(t, res.Metadata)
}

func TestMemoryNegativeHit(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.PutAbsent(ctx, "gone.jpg", 30*time.Second))

	res := c.Get(ctx, "gone.jpg")
	assert.Equal(t, NegativeHit, res.Status)
	assert.Nil(t, res.Metadata)
}

func TestMemoryPositiveExpiryIsMiss(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })
	require.NoError(t, c.Put(ctx, "a.jpg", testMetadata("a.jpg"), time.Minute))

	c.SetClock(func() time.Time { return now.Add(2 * time.Minute) })
	res := c.Get(ctx, "a.jpg")
	assert.Equal(t, Miss, res.Status)
}

func TestMemoryNegativeExpiryIsMiss(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })
	require.NoError(t, c.PutAbsent(ctx, "gone.jpg", 30*time.Second))

	c.SetClock(func() time.Time { return now.Add(time.Minute) })
	res := c.Get(ctx, "gone.jpg")
	assert.Equal(t, Miss, res.Status)
}

func TestMemoryOverwriteLastWriteWins(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.PutAbsent(ctx, "a.jpg", time.Minute))
	require.NoError(t, c.Put(ctx, "a.jpg", testMetadata("a.jpg"), time.Minute))

	res := c.Get(ctx, "a.jpg")
	assert.Equal(t, Hit, res.Status)
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.PutAbsent(ctx, "a.jpg", time.Minute))
	require.NoError(t, c.Delete(ctx, "a.jpg"))

	res := c.Get(ctx, "a.jpg")
	assert.Equal(t, Miss, res.Status)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "a.jpg", testMetadata("a.jpg"), time.Minute))

	first := c.Get(ctx, "a.jpg")
	first.Metadata.ContentType = "mutated"

	second := c.Get(ctx, "a.jpg")
	assert.Equal(t, "image/jpeg", second.Metadata.ContentType)
}

func TestNoopAlwaysMisses(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "a.jpg", testMetadata("a.jpg"), time.Minute))
	require.NoError(t, c.PutAbsent(ctx, "b.jpg", time.Minute))

	assert.Equal(t, Miss, c.Get(ctx, "a.jpg").Status)
	assert.Equal(t, Miss, c.Get(ctx, "b.jpg").Status)
}
