// Package register consumes processed-image events from the pipeline and
// writes the corresponding metadata records. It is the only writer of
// authoritative metadata in this repository.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/your-org/imageflow/internal/cache"
	"github.com/your-org/imageflow/internal/metastore"
	"github.com/your-org/imageflow/internal/metrics"
)

// ProcessedEvent is emitted by the processing pipeline once an image and its
// variants are in the bucket.
type ProcessedEvent struct {
	ID          string            `json:"id"`
	Key         string            `json:"key"`
	SizeBytes   int64             `json:"size_bytes"`
	ContentType string            `json:"content_type"`
	Variants    map[string]string `json:"variants,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   int64             `json:"expires_at,omitempty"`
}

// Source yields pipeline messages; satisfied by the kafka consumer wrapper.
type Source interface {
	Fetch(ctx context.Context) (kafkago.Message, error)
}

// Registrar turns pipeline events into metadata records and clears any
// negative-cache tombstone for the key, so a freshly processed image becomes
// discoverable without waiting out the negative TTL.
type Registrar struct {
	source Source
	writer metastore.Writer
	cache  cache.MetaCache
	logger *zap.Logger
}

type Params struct {
	Source Source
	Writer metastore.Writer
	Cache  cache.MetaCache
	Logger *zap.Logger
}

// New constructs a Registrar.
func New(p Params) *Registrar {
	return &Registrar{
		source: p.Source,
		writer: p.Writer,
		cache:  p.Cache,
		logger: p.Logger,
	}
}

// Run consumes events until the context is cancelled. Malformed events are
// logged and skipped; store write failures are logged and the event dropped,
// the pipeline re-emits on the next reprocessing run.
func (r *Registrar) Run(ctx context.Context) error {
	for {
		msg, err := r.source.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		evt := ProcessedEvent{}
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			r.logger.Warn("malformed pipeline event", zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		if evt.Key == "" {
			r.logger.Warn("pipeline event without key", zap.Int64("offset", msg.Offset))
			continue
		}

		if err := r.Register(ctx, &evt); err != nil {
			r.logger.Error("register metadata", zap.String("key", evt.Key), zap.Error(err))
		}
	}
}

// Register writes one event's metadata record and invalidates its cache
// entries.
func (r *Registrar) Register(ctx context.Context, evt *ProcessedEvent) error {
	md := &metastore.Metadata{
		Key:         evt.Key,
		SizeBytes:   evt.SizeBytes,
		ContentType: evt.ContentType,
		Variants:    evt.Variants,
		CreatedAt:   evt.CreatedAt,
		ExpiresAt:   evt.ExpiresAt,
	}

	if err := r.writer.Put(ctx, md); err != nil {
		return err
	}
	metrics.RecordsRegistered.Inc()

	// Stale entries are only a latency cost, so a failed invalidation is not
	// a failed registration.
	if err := r.cache.Delete(ctx, evt.Key); err != nil {
		r.logger.Debug("cache invalidation failed", zap.String("key", evt.Key), zap.Error(err))
	}

	r.logger.Info("metadata registered",
		zap.String("key", evt.Key),
		zap.Int64("size_bytes", evt.SizeBytes),
	)
	return nil
}
