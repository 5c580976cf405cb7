package kafka

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Consumer wraps a kafka-go Reader bound to a consumer group. The processing
// pipeline produces the events; this side only consumes.
type Consumer struct {
	reader *kafkago.Reader
}

type ConsumerConfig struct {
	Brokers        []string
	Topic          string
	GroupID        string
	MinBytes       int
	MaxBytes       int
	CommitInterval time.Duration
}

// NewConsumer constructs a Consumer from the given configuration.
func NewConsumer(cfg ConsumerConfig) *Consumer {
	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:        cfg.Brokers,
			Topic:          cfg.Topic,
			GroupID:        cfg.GroupID,
			MinBytes:       cfg.MinBytes,
			MaxBytes:       cfg.MaxBytes,
			CommitInterval: cfg.CommitInterval,
		}),
	}
}

// Fetch blocks until the next message arrives or the context is cancelled.
// The message offset is committed automatically per CommitInterval.
func (c *Consumer) Fetch(ctx context.Context) (kafkago.Message, error) {
	return c.reader.ReadMessage(ctx)
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
