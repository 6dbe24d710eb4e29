package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fantasy/internal/platform/broker"
	"fantasy/internal/platform/logger"
	"fantasy/internal/provisioning/metrics"
)

const (
	DefaultConnectBaseDelay   = 5 * time.Second
	DefaultConnectMaxAttempts = 5

	settleTimeout = 5 * time.Second
)

// ErrBootstrapExhausted is returned by Run when the consumer could not be
// connected within the configured number of attempts.
var ErrBootstrapExhausted = errors.New("provisioning: consumer bootstrap exhausted")

type TeamProvisioner interface {
	Provision(ctx context.Context, req TeamCreation) (Outcome, error)
}

// Worker consumes Topic one message at a time. A message is acknowledged only
// after its unit of work committed; failures are requeued and poison messages
// are rejected straight to the dead-letter topic.
type Worker struct {
	subscriber    broker.Subscriber
	provisioner   TeamProvisioner
	topic         string
	baseDelay     time.Duration
	maxAttempts   int
	maxDeliveries int
	logger        *slog.Logger
	limited       *logger.Limited
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	sleep         func(ctx context.Context, d time.Duration) error
}

type WorkerOption func(*Worker)

func WithTopic(topic string) WorkerOption {
	return func(w *Worker) { w.topic = topic }
}

// WithBackoff sets the linear reconnect schedule: attempt n waits base*n.
func WithBackoff(base time.Duration, maxAttempts int) WorkerOption {
	return func(w *Worker) {
		if base > 0 {
			w.baseDelay = base
		}
		if maxAttempts > 0 {
			w.maxAttempts = maxAttempts
		}
	}
}

// WithMaxDeliveries mirrors the broker limit so the final failed attempt is
// counted as dead-lettered.
func WithMaxDeliveries(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.maxDeliveries = n
		}
	}
}

func WithLogger(l *slog.Logger) WorkerOption {
	return func(w *Worker) { w.logger = l }
}

func WithMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) { w.metrics = m }
}

func WithTracer(t trace.Tracer) WorkerOption {
	return func(w *Worker) { w.tracer = t }
}

func NewWorker(subscriber broker.Subscriber, provisioner TeamProvisioner, opts ...WorkerOption) *Worker {
	w := &Worker{
		subscriber:    subscriber,
		provisioner:   provisioner,
		topic:         Topic,
		baseDelay:     DefaultConnectBaseDelay,
		maxAttempts:   DefaultConnectMaxAttempts,
		maxDeliveries: broker.DefaultMaxDeliveries,
		logger:        slog.Default(),
		tracer:        otel.Tracer("fantasy/internal/provisioning"),
		sleep:         sleepContext,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.limited = logger.NewLimited(w.logger, 30*time.Second)
	return w
}

// Run connects and consumes until ctx is cancelled. A consumer that fails at
// runtime is closed and the worker goes back through bootstrap. Run returns
// nil on cancellation and ErrBootstrapExhausted when reconnecting gives up.
func (w *Worker) Run(ctx context.Context) error {
	for {
		consumer, err := w.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		err = w.consume(ctx, consumer)
		_ = consumer.Close()
		if ctx.Err() != nil {
			w.logger.InfoContext(ctx, "provisioning worker stopped")
			return nil
		}
		w.logger.ErrorContext(ctx, "consumer failed, reconnecting", "topic", w.topic, "error", err)
	}
}

func (w *Worker) connect(ctx context.Context) (broker.Consumer, error) {
	for attempt := 1; ; attempt++ {
		consumer, err := w.subscriber.Subscribe(ctx, w.topic)
		w.metrics.ObserveConnect(err == nil)
		if err == nil {
			w.logger.InfoContext(ctx, "provisioning worker started", "topic", w.topic, "attempt", attempt)
			return consumer, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w.limited.Warn(ctx, "connect", "consumer connect failed",
			"topic", w.topic,
			"attempt", attempt,
			"max_attempts", w.maxAttempts,
			"error", err,
		)
		if attempt >= w.maxAttempts {
			return nil, fmt.Errorf("%w after %d attempts: %v", ErrBootstrapExhausted, attempt, err)
		}
		if err := w.sleep(ctx, w.baseDelay*time.Duration(attempt)); err != nil {
			return nil, err
		}
	}
}

func (w *Worker) consume(ctx context.Context, consumer broker.Consumer) error {
	for {
		delivery, err := consumer.Receive(ctx)
		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}
		if err := w.handle(ctx, delivery); err != nil {
			return err
		}
	}
}

// handle processes one delivery and settles it. Only settle failures are
// returned; they mean the consumer is no longer usable.
func (w *Worker) handle(ctx context.Context, d broker.Delivery) error {
	msg := d.Message()
	ctx, span := w.tracer.Start(broker.ExtractTraceContext(ctx, msg), "provisioning.handle", trace.WithAttributes(
		attribute.String("messaging.message.id", msg.ID),
		attribute.Int("messaging.delivery.attempt", msg.Attempt),
	))
	defer span.End()

	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	req, err := Decode(msg.Body)
	if err == nil {
		var outcome Outcome
		outcome, err = w.provisioner.Provision(ctx, req)
		if err == nil {
			span.SetAttributes(attribute.String("provisioning.outcome", outcome.String()))
			if outcome == OutcomeSkipped {
				w.metrics.IncrementSkipped()
			} else {
				w.metrics.IncrementProvisioned()
			}
			return settle(d.Ack(settleCtx), "ack")
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "provisioning failed")

	if errors.Is(err, ErrPoison) {
		w.logger.ErrorContext(ctx, "rejecting poison message",
			"message_id", msg.ID,
			"key", msg.Key,
			"error", err,
		)
		w.metrics.IncrementDeadLettered()
		return settle(d.Nack(settleCtx, false), "reject")
	}

	w.metrics.IncrementFailed()
	if msg.Attempt >= w.maxDeliveries {
		w.metrics.IncrementDeadLettered()
	}
	w.limited.Error(ctx, "provision:"+msg.Key, "team provisioning failed, requeueing",
		"message_id", msg.ID,
		"key", msg.Key,
		"attempt", msg.Attempt,
		"error", err,
	)
	return settle(d.Nack(settleCtx, true), "nack")
}

func settle(err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
