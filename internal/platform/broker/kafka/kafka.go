// Package kafka implements the broker contract on top of franz-go.
//
// Each Subscribe opens a group consumer with auto-commit disabled and polls one
// record at a time. Offsets are committed only when a delivery is settled.
// Redelivery counts are tracked in-process, so a restart resets them.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"fantasy/internal/platform/broker"
)

const (
	DefaultGroup = "fantasy-provisioning"

	headerMessageID = "x-message-id"
)

type Broker struct {
	seeds         []string
	group         string
	maxDeliveries int
	logger        *slog.Logger
	producer      *kgo.Client
}

type Option func(*Broker)

func WithGroup(group string) Option {
	return func(b *Broker) {
		if group != "" {
			b.group = group
		}
	}
}

func WithMaxDeliveries(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.maxDeliveries = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Broker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a producer client for seeds. Consumers are created per Subscribe.
func New(seeds []string, opts ...Option) (*Broker, error) {
	b := &Broker{
		seeds:         seeds,
		group:         DefaultGroup,
		maxDeliveries: broker.DefaultMaxDeliveries,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	producer, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	b.producer = producer
	return b, nil
}

func (b *Broker) Ping(ctx context.Context) error {
	return b.producer.Ping(ctx)
}

// EnsureTopics creates topics and their dead-letter topics. Existing topics are left alone.
func (b *Broker) EnsureTopics(ctx context.Context, partitions int32, replication int16, topics ...string) error {
	all := make([]string, 0, len(topics)*2)
	for _, t := range topics {
		all = append(all, t, broker.DeadLetterTopic(t))
	}

	adm := kadm.NewClient(b.producer)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, all...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, r := range resp.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (b *Broker) Publish(ctx context.Context, topic string, msg broker.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	rec := toRecord(topic, msg)
	if err := b.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe joins the consumer group for topic. The broker must be reachable.
func (b *Broker) Subscribe(ctx context.Context, topic string) (broker.Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(b.seeds...),
		kgo.ConsumerGroup(b.group),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.FetchMaxWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect kafka consumer: %w", err)
	}
	return &consumer{
		client:        client,
		topic:         topic,
		maxDeliveries: b.maxDeliveries,
		logger:        b.logger,
	}, nil
}

func (b *Broker) Close() error {
	b.producer.Close()
	return nil
}

type consumer struct {
	client        *kgo.Client
	topic         string
	maxDeliveries int
	logger        *slog.Logger

	// buffered holds a polled record not yet handed out; pending holds a
	// nacked record awaiting redelivery, with its delivery count.
	buffered     []*kgo.Record
	pending      *kgo.Record
	pendingCount int
	inflight     *delivery
}

func (c *consumer) Receive(ctx context.Context) (broker.Delivery, error) {
	if c.inflight != nil && !c.inflight.isSettled() {
		return nil, broker.ErrUnsettled
	}
	if c.pending != nil {
		rec, attempt := c.pending, c.pendingCount+1
		c.pending, c.pendingCount = nil, 0
		return c.deliver(rec, attempt), nil
	}

	for len(c.buffered) == 0 {
		fetches := c.client.PollRecords(ctx, 1)
		if fetches.IsClientClosed() {
			return nil, broker.ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var pollErr error
		fetches.EachError(func(topic string, partition int32, err error) {
			if pollErr == nil {
				pollErr = fmt.Errorf("poll %s[%d]: %w", topic, partition, err)
			}
		})
		if pollErr != nil {
			return nil, pollErr
		}
		c.buffered = append(c.buffered, fetches.Records()...)
	}

	rec := c.buffered[0]
	c.buffered = c.buffered[1:]
	return c.deliver(rec, 1), nil
}

func (c *consumer) deliver(rec *kgo.Record, attempt int) *delivery {
	c.inflight = &delivery{consumer: c, record: rec, msg: fromRecord(rec, attempt)}
	return c.inflight
}

// Close leaves unsettled records uncommitted so the group redelivers them.
func (c *consumer) Close() error {
	c.client.Close()
	return nil
}

func (c *consumer) deadLetter(ctx context.Context, d *delivery, reason string) error {
	msg := d.msg
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[broker.HeaderDeliveryAttempts] = strconv.Itoa(msg.Attempt)
	headers[broker.HeaderDeadLetterReason] = reason
	msg.Headers = headers

	dlq := broker.DeadLetterTopic(c.topic)
	if err := c.client.ProduceSync(ctx, toRecord(dlq, msg)).FirstErr(); err != nil {
		return fmt.Errorf("publish to %s: %w", dlq, err)
	}
	c.logger.WarnContext(ctx, "message dead-lettered",
		"topic", c.topic,
		"message_id", msg.ID,
		"attempts", msg.Attempt,
		"reason", reason,
	)
	return c.client.CommitRecords(ctx, d.record)
}

type delivery struct {
	consumer *consumer
	record   *kgo.Record
	msg      broker.Message

	mu      sync.Mutex
	settled bool
}

func (d *delivery) Message() broker.Message { return d.msg }

func (d *delivery) isSettled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

func (d *delivery) settle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settled {
		return false
	}
	d.settled = true
	return true
}

func (d *delivery) Ack(ctx context.Context) error {
	if !d.settle() {
		return broker.ErrAlreadySettled
	}
	if err := d.consumer.client.CommitRecords(ctx, d.record); err != nil {
		return fmt.Errorf("commit offset: %w", err)
	}
	return nil
}

func (d *delivery) Nack(ctx context.Context, requeue bool) error {
	if !d.settle() {
		return broker.ErrAlreadySettled
	}
	c := d.consumer
	switch {
	case requeue && d.msg.Attempt < c.maxDeliveries:
		c.pending, c.pendingCount = d.record, d.msg.Attempt
		return nil
	case requeue:
		return c.deadLetter(ctx, d, broker.ReasonMaxAttempts)
	default:
		return c.deadLetter(ctx, d, broker.ReasonRejected)
	}
}

func toRecord(topic string, msg broker.Message) *kgo.Record {
	rec := &kgo.Record{
		Topic: topic,
		Value: msg.Body,
	}
	if msg.Key != "" {
		rec.Key = []byte(msg.Key)
	}
	rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: headerMessageID, Value: []byte(msg.ID)})
	for k, v := range msg.Headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return rec
}

func fromRecord(rec *kgo.Record, attempt int) broker.Message {
	msg := broker.Message{
		Key:     string(rec.Key),
		Body:    rec.Value,
		Attempt: attempt,
	}
	for _, h := range rec.Headers {
		if h.Key == headerMessageID {
			msg.ID = string(h.Value)
			continue
		}
		if msg.Headers == nil {
			msg.Headers = make(map[string]string, len(rec.Headers))
		}
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
