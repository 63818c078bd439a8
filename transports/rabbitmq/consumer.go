package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/reqlog-go/interceptors"
	"github.com/glimte/reqlog-go/messaging"
)

// Channel is the subset of *amqp.Channel used to start a subscription
type Channel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Consumer feeds deliveries through an interceptor to a message handler
type Consumer struct {
	interceptor   interceptors.Interceptor
	handler       messaging.MessageHandler
	logger        *slog.Logger
	requeue       bool
	prefetchCount int
	consumerTag   string
}

// ConsumerOption configures the consumer
type ConsumerOption func(*Consumer)

// WithRequeue sets whether failed deliveries are requeued
func WithRequeue(requeue bool) ConsumerOption {
	return func(c *Consumer) {
		c.requeue = requeue
	}
}

// WithPrefetchCount sets the prefetch count used by Subscribe
func WithPrefetchCount(count int) ConsumerOption {
	return func(c *Consumer) {
		c.prefetchCount = count
	}
}

// WithConsumerTag sets the consumer tag used by Subscribe
func WithConsumerTag(tag string) ConsumerOption {
	return func(c *Consumer) {
		c.consumerTag = tag
	}
}

// WithConsumerLogger sets the logger
func WithConsumerLogger(logger *slog.Logger) ConsumerOption {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewConsumer creates a new consumer
func NewConsumer(interceptor interceptors.Interceptor, handler messaging.MessageHandler, options ...ConsumerOption) *Consumer {
	c := &Consumer{
		interceptor:   interceptor,
		handler:       handler,
		logger:        slog.Default(),
		prefetchCount: 10,
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// HandleDelivery intercepts a single delivery and acknowledges it.
// The handler result and error are returned unchanged.
func (c *Consumer) HandleDelivery(ctx context.Context, d amqp.Delivery) (any, error) {
	env := EnvelopeFromDelivery(d)
	inv := interceptors.NewMessageInvocation(env)

	result, err := c.interceptor.Intercept(ctx, inv, interceptors.HandlerFunc(func(ctx context.Context) (any, error) {
		return c.handler.Handle(ctx, env)
	}))

	if err != nil {
		if nackErr := d.Nack(false, c.requeue); nackErr != nil {
			c.logger.Error("failed to nack delivery",
				"messageId", env.ID,
				"deliveryTag", d.DeliveryTag,
				"error", nackErr)
		}
		return result, err
	}

	if ackErr := d.Ack(false); ackErr != nil {
		c.logger.Error("failed to ack delivery",
			"messageId", env.ID,
			"deliveryTag", d.DeliveryTag,
			"error", ackErr)
	}
	return result, nil
}

// Consume handles deliveries until the channel closes or ctx is done
func (c *Consumer) Consume(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			// Failures are already logged by the interceptor and nacked.
			_, _ = c.HandleDelivery(ctx, d)
		}
	}
}

// Subscribe starts consuming queue on ch and blocks until ctx is done or the
// delivery channel closes
func (c *Consumer) Subscribe(ctx context.Context, ch Channel, queue string) error {
	if err := ch.Qos(c.prefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.Consume(
		queue,
		c.consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to consume: %w", err)
	}

	c.logger.Info("consuming queue", "queue", queue, "prefetchCount", c.prefetchCount)
	return c.Consume(ctx, deliveries)
}
