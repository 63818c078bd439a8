package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/glimte/reqlog-go/contracts"
)

var (
	// ErrNoHandler is returned when no handler is registered for a message type
	ErrNoHandler = errors.New("no handler registered for message type")
	// ErrHandlerExists is returned when a message type already has a handler
	ErrHandlerExists = errors.New("handler already registered for message type")
)

// MessageHandler processes a message and returns its reply
type MessageHandler interface {
	Handle(ctx context.Context, msg contracts.Message) (any, error)
}

// MessageHandlerFunc is a function adapter for MessageHandler
type MessageHandlerFunc func(ctx context.Context, msg contracts.Message) (any, error)

// Handle implements MessageHandler
func (f MessageHandlerFunc) Handle(ctx context.Context, msg contracts.Message) (any, error) {
	return f(ctx, msg)
}

// MiddlewareFunc processes messages before they reach handlers
type MiddlewareFunc func(ctx context.Context, msg contracts.Message, next MessageHandler) (any, error)

// MessageDispatcher routes messages to the handler registered for their type
type MessageDispatcher struct {
	handlers   map[string]MessageHandler
	fallback   MessageHandler
	mu         sync.RWMutex
	logger     *slog.Logger
	middleware []MiddlewareFunc
}

// DispatcherOption configures the MessageDispatcher
type DispatcherOption func(*MessageDispatcher)

// WithDispatcherLogger sets the logger
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *MessageDispatcher) {
		d.logger = logger
	}
}

// WithMiddleware adds middleware to the dispatcher
func WithMiddleware(middleware ...MiddlewareFunc) DispatcherOption {
	return func(d *MessageDispatcher) {
		d.middleware = append(d.middleware, middleware...)
	}
}

// NewMessageDispatcher creates a new message dispatcher
func NewMessageDispatcher(options ...DispatcherOption) *MessageDispatcher {
	d := &MessageDispatcher{
		handlers: make(map[string]MessageHandler),
		logger:   slog.Default(),
	}

	for _, opt := range options {
		opt(d)
	}

	return d
}

// RegisterHandler registers the handler for a message type
func (d *MessageDispatcher) RegisterHandler(messageType string, handler MessageHandler) error {
	if messageType == "" {
		return fmt.Errorf("message type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[messageType]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerExists, messageType)
	}
	d.handlers[messageType] = handler

	d.logger.Info("registered message handler", "messageType", messageType)

	return nil
}

// RegisterHandlerFunc registers a function as a handler
func (d *MessageDispatcher) RegisterHandlerFunc(messageType string, handler MessageHandlerFunc) error {
	return d.RegisterHandler(messageType, handler)
}

// UnregisterHandler removes the handler for a message type
func (d *MessageDispatcher) UnregisterHandler(messageType string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[messageType]; !exists {
		return fmt.Errorf("%w: %s", ErrNoHandler, messageType)
	}
	delete(d.handlers, messageType)

	d.logger.Info("unregistered message handler", "messageType", messageType)
	return nil
}

// SetDefaultHandler sets the handler used for types without a registered
// handler. A nil handler removes it.
func (d *MessageDispatcher) SetDefaultHandler(handler MessageHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = handler
}

// Handle implements MessageHandler by dispatching to the registered handler
func (d *MessageDispatcher) Handle(ctx context.Context, msg contracts.Message) (any, error) {
	return d.Dispatch(ctx, msg)
}

// Dispatch sends a message to its handler and returns the handler's reply.
// Handler errors are returned unchanged.
func (d *MessageDispatcher) Dispatch(ctx context.Context, msg contracts.Message) (any, error) {
	if msg == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}

	messageType := msg.GetType()

	d.mu.RLock()
	handler, exists := d.handlers[messageType]
	if !exists && d.fallback != nil {
		handler, exists = d.fallback, true
	}
	d.mu.RUnlock()

	if !exists {
		d.logger.Warn("no handler registered for message type", "messageType", messageType)
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, messageType)
	}

	return d.buildMiddlewareChain(handler).Handle(ctx, msg)
}

// GetRegisteredTypes returns all message types that have handlers, sorted
func (d *MessageDispatcher) GetRegisteredTypes() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	types := make([]string, 0, len(d.handlers))
	for messageType := range d.handlers {
		types = append(types, messageType)
	}
	sort.Strings(types)
	return types
}

// buildMiddlewareChain builds the middleware execution chain
func (d *MessageDispatcher) buildMiddlewareChain(handler MessageHandler) MessageHandler {
	if len(d.middleware) == 0 {
		return handler
	}

	// Build chain in reverse order
	result := handler
	for i := len(d.middleware) - 1; i >= 0; i-- {
		middleware := d.middleware[i]
		next := result
		result = MessageHandlerFunc(func(ctx context.Context, msg contracts.Message) (any, error) {
			return middleware(ctx, msg, next)
		})
	}

	return result
}
