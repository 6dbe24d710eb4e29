// Package broker defines the at-least-once messaging contract used between
// registration and team provisioning, plus an in-process implementation.
//
// A Consumer hands out one Delivery at a time (prefetch = 1). Every delivery
// must be settled with Ack or Nack before the next Receive. A message nacked
// with requeue is redelivered until it has been delivered MaxDeliveries times,
// after which it is moved to the dead-letter topic instead.
package broker

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	DefaultMaxDeliveries = 5

	// HeaderDeliveryAttempts and HeaderDeadLetterReason are set on messages
	// moved to a dead-letter topic.
	HeaderDeliveryAttempts = "x-delivery-attempts"
	HeaderDeadLetterReason = "x-dead-letter-reason"

	ReasonRejected    = "rejected"
	ReasonMaxAttempts = "max-deliveries-exceeded"
)

var (
	ErrUnsettled      = errors.New("broker: previous delivery not settled")
	ErrAlreadySettled = errors.New("broker: delivery already settled")
	ErrClosed         = errors.New("broker: closed")
)

// DeadLetterTopic names the topic that receives messages dead-lettered from topic.
func DeadLetterTopic(topic string) string {
	return topic + ".dlq"
}

// Message is the broker-neutral envelope.
type Message struct {
	ID      string
	Key     string
	Body    []byte
	Headers map[string]string
	// Attempt is 1 on first delivery and grows with every redelivery.
	Attempt int
}

// Delivery is one received message awaiting a settle decision.
type Delivery interface {
	Message() Message
	Ack(ctx context.Context) error
	// Nack rejects the message. With requeue it is redelivered unless the
	// delivery limit is reached; without requeue it is dead-lettered at once.
	Nack(ctx context.Context, requeue bool) error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) error
}

type Consumer interface {
	// Receive blocks until a message is available or ctx is done.
	Receive(ctx context.Context) (Delivery, error)
	Close() error
}

type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (Consumer, error)
}

// InjectTraceContext copies the span context of ctx into the message headers
// using the global propagator.
func InjectTraceContext(ctx context.Context, msg *Message) {
	if msg.Headers == nil {
		msg.Headers = map[string]string{}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(msg.Headers))
}

// ExtractTraceContext returns ctx carrying the remote span context found in
// the message headers, if any.
func ExtractTraceContext(ctx context.Context, msg Message) context.Context {
	if len(msg.Headers) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Headers))
}
