// Package rabbitmq runs AMQP deliveries through an interceptor.
//
// Each delivery becomes a contracts.Envelope. Bodies that already are
// envelopes are used as is, anything else is wrapped using the AMQP
// properties. The consumer acks deliveries whose handler succeeded and
// nacks the rest.
package rabbitmq
