// Package cloudevents adapts the CloudEvents SDK receiver to the interceptor.
//
// Receiver returns a function that can be passed to client.StartReceiver.
// Each event is logged as a message invocation and the handler result is
// sent back as a reply event.
package cloudevents
