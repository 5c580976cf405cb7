package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/your-org/imageflow/internal/metastore"
	"github.com/your-org/imageflow/internal/metrics"
)

const (
	positivePrefix = "meta:"
	negativePrefix = "meta404:"
	tombstoneValue = "1"
)

// Redis is a MetaCache backed by a shared Redis instance. All operations run
// under a bounded per-call timeout; a slow or unreachable Redis is reported
// as a miss, never as an error.
type Redis struct {
	client    *redis.Client
	opTimeout time.Duration
	logger    *zap.Logger
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	OpTimeout time.Duration
}

// NewRedis creates a Redis-backed cache. The connection is verified once so
// misconfiguration fails at startup rather than degrading every request.
func NewRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.OpTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable at startup, lookups will degrade to store", zap.Error(err))
	}

	return &Redis{client: client, opTimeout: cfg.OpTimeout, logger: logger}, nil
}

// Get checks the tombstone first, then the positive entry, matching the
// authoritative read order of the negative-caching scheme.
func (r *Redis) Get(ctx context.Context, key string) Result {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if _, err := r.client.Get(ctx, negativePrefix+key).Result(); err == nil {
		return Result{Status: NegativeHit}
	} else if err != redis.Nil {
		metrics.CacheErrors.Inc()
		r.logger.Debug("cache get degraded to miss", zap.String("key", key), zap.Error(err))
		return Result{Status: Miss}
	}

	raw, err := r.client.Get(ctx, positivePrefix+key).Bytes()
	if err == redis.Nil {
		return Result{Status: Miss}
	}
	if err != nil {
		metrics.CacheErrors.Inc()
		r.logger.Debug("cache get degraded to miss", zap.String("key", key), zap.Error(err))
		return Result{Status: Miss}
	}

	md := &metastore.Metadata{}
	if err := json.Unmarshal(raw, md); err != nil {
		// A corrupt entry is as good as no entry.
		metrics.CacheErrors.Inc()
		r.logger.Warn("corrupt cache entry", zap.String("key", key), zap.Error(err))
		return Result{Status: Miss}
	}
	return Result{Status: Hit, Metadata: md}
}

func (r *Redis) Put(ctx context.Context, key string, md *metastore.Metadata, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	raw, err := json.Marshal(md)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, positivePrefix+key, raw, ttl).Err()
}

func (r *Redis) PutAbsent(ctx context.Context, key string, negativeTTL time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	return r.client.Set(ctx, negativePrefix+key, tombstoneValue, negativeTTL).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	return r.client.Del(ctx, positivePrefix+key, negativePrefix+key).Err()
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
