package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/glimte/reqlog-go/interceptors"
	"github.com/glimte/reqlog-go/messaging"
)

// Config holds Kafka consumer configuration.
type Config struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	StartOffset   string // "earliest" or "latest" (default: "latest")
}

// client abstracts the kafka client methods used by Consumer for testing.
type client interface {
	PollFetches(ctx context.Context) kgo.Fetches
	MarkCommitRecords(rs ...*kgo.Record)
	CommitMarkedOffsets(ctx context.Context) error
	Close()
}

// Consumer polls a topic and runs every record through an interceptor.
type Consumer struct {
	client      client
	topic       string
	interceptor interceptors.Interceptor
	handler     messaging.MessageHandler
	logger      *slog.Logger
}

// NewConsumer creates a new Kafka consumer. Offsets are committed only for
// records whose handler succeeded.
func NewConsumer(cfg Config, interceptor interceptors.Interceptor, handler messaging.MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if cfg.ConsumerGroup == "" {
		return nil, fmt.Errorf("consumer group is required")
	}

	offset := kgo.NewOffset().AtEnd()
	if cfg.StartOffset == "earliest" {
		offset = kgo.NewOffset().AtStart()
	}

	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(offset),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	return newConsumer(cl, cfg.Topic, interceptor, handler, logger), nil
}

func newConsumer(cl client, topic string, interceptor interceptors.Interceptor, handler messaging.MessageHandler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		client:      cl,
		topic:       topic,
		interceptor: interceptor,
		handler:     handler,
		logger:      logger,
	}
}

// HandleRecord intercepts a single record. The handler result and error are
// returned unchanged.
func (c *Consumer) HandleRecord(ctx context.Context, record *kgo.Record) (any, error) {
	env := EnvelopeFromRecord(record)
	return c.interceptor.Intercept(ctx, interceptors.NewMessageInvocation(env),
		interceptors.HandlerFunc(func(ctx context.Context) (any, error) {
			return c.handler.Handle(ctx, env)
		}))
}

// Run consumes records until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("starting kafka consumer", "topic", c.topic)

	for {
		fetches := c.client.PollFetches(ctx)

		// Partitions that failed to fetch carry no records; the rest of the
		// fetch is still handled.
		for _, err := range fetches.Errors() {
			c.logger.Error("fetch error", "topic", err.Topic, "partition", err.Partition, "error", err.Err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		failed := make(map[topicPartition]bool)
		fetches.EachRecord(func(record *kgo.Record) {
			tp := topicPartition{topic: record.Topic, partition: record.Partition}
			_, err := c.HandleRecord(ctx, record)
			if err != nil || failed[tp] {
				// A partition stops committing at its first failure, so the
				// failed record and everything after it is redelivered after a
				// restart or rebalance.
				failed[tp] = true
				return
			}

			c.client.MarkCommitRecords(record)
			if err := c.client.CommitMarkedOffsets(ctx); err != nil {
				c.logger.Error("commit error", "topic", record.Topic, "partition", record.Partition, "offset", record.Offset, "error", err)
			}
		})

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type topicPartition struct {
	topic     string
	partition int32
}

func (c *Consumer) Close() error {
	c.client.Close()
	return nil
}
