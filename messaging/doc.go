// Package messaging routes messages to the handler registered for their type.
//
// MessageDispatcher is the business handler the broker transports hand their
// decoded messages to. Each message type has exactly one handler, and the
// handler's reply or error is returned to the transport unchanged so the
// interceptors can log it.
//
// Example usage:
//
//	dispatcher := messaging.NewMessageDispatcher()
//	err := dispatcher.RegisterHandlerFunc("CREATE_ORDER",
//		func(ctx context.Context, msg contracts.Message) (any, error) {
//			return map[string]any{"orderId": 99}, nil
//		})
//
//	consumer := rabbitmq.NewConsumer(logging, dispatcher)
package messaging
