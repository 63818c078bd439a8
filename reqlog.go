// Copyright 2024 Mmate Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reqlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.temporal.io/sdk/interceptor"
	"google.golang.org/grpc"

	"github.com/glimte/reqlog-go/config"
	"github.com/glimte/reqlog-go/interceptors"
	"github.com/glimte/reqlog-go/masking"
	"github.com/glimte/reqlog-go/messaging"
	"github.com/glimte/reqlog-go/transports/cloudevents"
	grpcTransport "github.com/glimte/reqlog-go/transports/grpc"
	"github.com/glimte/reqlog-go/transports/kafka"
	"github.com/glimte/reqlog-go/transports/nethttp"
	"github.com/glimte/reqlog-go/transports/rabbitmq"
	temporalTransport "github.com/glimte/reqlog-go/transports/temporal"
)

// Client provides the main entry point for reqlog-go
type Client struct {
	cfg        config.Config
	logger     *slog.Logger
	masker     *masking.Masker
	logging    *interceptors.LoggingInterceptor
	chain      *interceptors.InterceptorChain
	dispatcher *messaging.MessageDispatcher
}

// NewClient creates a new client from a validated configuration
func NewClient(cfg config.Config, options ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opts := &clientConfig{}
	for _, opt := range options {
		opt(opts)
	}

	logger := opts.logger
	if logger == nil {
		var err error
		logger, err = NewLogger(cfg.Logging, os.Stderr)
		if err != nil {
			return nil, err
		}
	}

	masker := NewMasker(cfg.Masking)

	loggingOpts := []interceptors.LoggingOption{interceptors.WithMasker(masker)}
	if opts.sink != nil {
		loggingOpts = append(loggingOpts, interceptors.WithSink(opts.sink))
	}
	logging := interceptors.NewLoggingInterceptor(logger, loggingOpts...)

	chain := interceptors.NewInterceptorChain(logger)
	for _, ic := range opts.interceptors {
		chain.Add(ic)
	}
	if len(cfg.HTTP.ExcludePaths) > 0 {
		chain.Add(interceptors.NewConditionalInterceptor(
			interceptors.Not(interceptors.NewPathFilter(cfg.HTTP.ExcludePaths...)),
			logging,
		))
	} else {
		chain.Add(logging)
	}

	return &Client{
		cfg:        cfg,
		logger:     logger,
		masker:     masker,
		logging:    logging,
		chain:      chain,
		dispatcher: messaging.NewMessageDispatcher(messaging.WithDispatcherLogger(logger)),
	}, nil
}

// Logger returns the client logger
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Masker returns the masker applied to every logged payload
func (c *Client) Masker() *masking.Masker {
	return c.masker
}

// Interceptor returns the interceptor chain. The logging interceptor is the
// innermost element.
func (c *Client) Interceptor() interceptors.Interceptor {
	return c.chain
}

// Logging returns the logging interceptor
func (c *Client) Logging() *interceptors.LoggingInterceptor {
	return c.logging
}

// Dispatcher returns the dispatcher used by the broker adapters
func (c *Client) Dispatcher() *messaging.MessageDispatcher {
	return c.dispatcher
}

// HTTP returns net/http middleware bound to the client interceptor
func (c *Client) HTTP() *nethttp.Middleware {
	return nethttp.New(c.chain,
		nethttp.WithMaxBodyBytes(c.cfg.HTTP.MaxBodyBytes),
		nethttp.WithLogger(c.logger),
	)
}

// RabbitMQConsumer returns an AMQP consumer dispatching to the client dispatcher
func (c *Client) RabbitMQConsumer(options ...rabbitmq.ConsumerOption) *rabbitmq.Consumer {
	options = append([]rabbitmq.ConsumerOption{rabbitmq.WithConsumerLogger(c.logger)}, options...)
	return rabbitmq.NewConsumer(c.chain, c.dispatcher, options...)
}

// KafkaConsumer returns a Kafka consumer dispatching to the client dispatcher
func (c *Client) KafkaConsumer(cfg kafka.Config) (*kafka.Consumer, error) {
	return kafka.NewConsumer(cfg, c.chain, c.dispatcher, c.logger)
}

// CloudEventsReceiver returns a receiver for client.StartReceiver
func (c *Client) CloudEventsReceiver() cloudevents.ReceiverFunc {
	return cloudevents.Receiver(c.chain, c.dispatcher)
}

// GRPCUnaryInterceptor returns a gRPC server interceptor
func (c *Client) GRPCUnaryInterceptor() grpc.UnaryServerInterceptor {
	return grpcTransport.UnaryServerInterceptor(c.chain)
}

// TemporalWorkerInterceptor returns a Temporal worker interceptor
func (c *Client) TemporalWorkerInterceptor() interceptor.WorkerInterceptor {
	return temporalTransport.NewWorkerInterceptor(c.chain)
}

// NewLogger builds a slog logger writing to w in the configured format
func NewLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("logging.format: unsupported format %q", cfg.Format)
	}
}

// NewMasker builds the masker described by cfg
func NewMasker(cfg config.MaskingConfig) *masking.Masker {
	var opts []masking.Option
	if cfg.Marker != "" {
		opts = append(opts, masking.WithMarker(cfg.Marker))
	}
	return masking.New(cfg.Fields, opts...)
}

// ClientOption configures the client
type ClientOption func(*clientConfig)

type clientConfig struct {
	logger       *slog.Logger
	sink         interceptors.Sink
	interceptors []interceptors.Interceptor
}

// WithLogger sets the logger instead of building one from config
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithSink sends log entries to sink instead of the logger
func WithSink(sink interceptors.Sink) ClientOption {
	return func(c *clientConfig) {
		c.sink = sink
	}
}

// WithInterceptors adds interceptors that run outside the logging interceptor
func WithInterceptors(ics ...interceptors.Interceptor) ClientOption {
	return func(c *clientConfig) {
		c.interceptors = append(c.interceptors, ics...)
	}
}
