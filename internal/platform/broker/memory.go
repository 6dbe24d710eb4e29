package broker

import (
	"context"
	"maps"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process broker. Topics are FIFO queues shared by all
// consumers of the topic; each message goes to exactly one consumer.
type Memory struct {
	mu            sync.Mutex
	maxDeliveries int
	queues        map[string]*queue
	closed        bool
}

type queue struct {
	items  []Message
	signal chan struct{}
}

type MemoryOption func(*Memory)

func WithMaxDeliveries(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxDeliveries = n
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		maxDeliveries: DefaultMaxDeliveries,
		queues:        make(map[string]*queue),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// queue must be called with mu held.
func (m *Memory) queue(topic string) *queue {
	q, ok := m.queues[topic]
	if !ok {
		q = &queue{signal: make(chan struct{})}
		m.queues[topic] = q
	}
	return q
}

// push must be called with mu held.
func (m *Memory) push(topic string, msg Message, front bool) {
	q := m.queue(topic)
	if front {
		q.items = append([]Message{msg}, q.items...)
	} else {
		q.items = append(q.items, msg)
	}
	close(q.signal)
	q.signal = make(chan struct{})
}

func (m *Memory) Publish(_ context.Context, topic string, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Headers = maps.Clone(msg.Headers)
	msg.Attempt = 0
	m.push(topic, msg, false)
	return nil
}

func (m *Memory) Subscribe(_ context.Context, topic string) (Consumer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	m.queue(topic)
	return &memoryConsumer{broker: m, topic: topic, done: make(chan struct{})}, nil
}

// Len reports the number of queued messages on topic.
func (m *Memory) Len(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue(topic).items)
}

// Close stops all consumers; pending Receive calls return ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for _, q := range m.queues {
		close(q.signal)
		q.signal = make(chan struct{})
	}
	return nil
}

type memoryConsumer struct {
	broker   *Memory
	topic    string
	inflight *memoryDelivery
	done     chan struct{}
	once     sync.Once
}

func (c *memoryConsumer) Receive(ctx context.Context) (Delivery, error) {
	if c.inflight != nil && !c.inflight.isSettled() {
		return nil, ErrUnsettled
	}
	for {
		c.broker.mu.Lock()
		if c.broker.closed {
			c.broker.mu.Unlock()
			return nil, ErrClosed
		}
		q := c.broker.queue(c.topic)
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items = q.items[1:]
			c.broker.mu.Unlock()

			msg.Attempt++
			c.inflight = &memoryDelivery{consumer: c, msg: msg}
			return c.inflight, nil
		}
		wait := q.signal
		c.broker.mu.Unlock()

		select {
		case <-wait:
		case <-c.done:
			return nil, ErrClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close returns an unsettled delivery to the queue.
func (c *memoryConsumer) Close() error {
	c.once.Do(func() {
		close(c.done)
		if d := c.inflight; d != nil && d.settle() {
			c.broker.mu.Lock()
			msg := d.msg
			msg.Attempt--
			c.broker.push(c.topic, msg, true)
			c.broker.mu.Unlock()
		}
	})
	return nil
}

type memoryDelivery struct {
	consumer *memoryConsumer
	msg      Message

	mu      sync.Mutex
	settled bool
}

func (d *memoryDelivery) Message() Message { return d.msg }

func (d *memoryDelivery) isSettled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

// settle marks the delivery settled and reports whether this call did it.
func (d *memoryDelivery) settle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settled {
		return false
	}
	d.settled = true
	return true
}

func (d *memoryDelivery) Ack(context.Context) error {
	if !d.settle() {
		return ErrAlreadySettled
	}
	return nil
}

func (d *memoryDelivery) Nack(_ context.Context, requeue bool) error {
	if !d.settle() {
		return ErrAlreadySettled
	}
	b := d.consumer.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case requeue && d.msg.Attempt < b.maxDeliveries:
		b.push(d.consumer.topic, d.msg, true)
	case requeue:
		b.push(DeadLetterTopic(d.consumer.topic), deadLetter(d.msg, ReasonMaxAttempts), false)
	default:
		b.push(DeadLetterTopic(d.consumer.topic), deadLetter(d.msg, ReasonRejected), false)
	}
	return nil
}

func deadLetter(msg Message, reason string) Message {
	headers := maps.Clone(msg.Headers)
	if headers == nil {
		headers = make(map[string]string, 2)
	}
	headers[HeaderDeliveryAttempts] = strconv.Itoa(msg.Attempt)
	headers[HeaderDeadLetterReason] = reason
	msg.Headers = headers
	msg.Attempt = 0
	return msg
}
