package provisioning

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy/internal/platform/broker"
)

// flakySubscriber fails the first failures Subscribe calls.
type flakySubscriber struct {
	inner    broker.Subscriber
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakySubscriber) Subscribe(ctx context.Context, topic string) (broker.Consumer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection refused")
	}
	return f.inner.Subscribe(ctx, topic)
}

type noopProvisioner struct{}

func (noopProvisioner) Provision(context.Context, TeamCreation) (Outcome, error) {
	return OutcomeProvisioned, nil
}

func newBootstrapWorker(sub broker.Subscriber, slept *[]time.Duration) *Worker {
	w := NewWorker(sub, noopProvisioner{},
		WithBackoff(5*time.Second, 5),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	w.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return w
}

func TestBootstrapBacksOffLinearlyThenConnects(t *testing.T) {
	var slept []time.Duration
	sub := &flakySubscriber{inner: broker.NewMemory(), failures: 3}
	w := newBootstrapWorker(sub, &slept)

	consumer, err := w.connect(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = consumer.Close() })

	assert.Equal(t, 4, sub.calls)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second}, slept)
}

func TestBootstrapGivesUpAtCeiling(t *testing.T) {
	var slept []time.Duration
	sub := &flakySubscriber{inner: broker.NewMemory(), failures: 100}
	w := newBootstrapWorker(sub, &slept)

	err := w.Run(context.Background())
	require.ErrorIs(t, err, ErrBootstrapExhausted)
	assert.Equal(t, 5, sub.calls)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second, 20 * time.Second}, slept)
}

func TestBootstrapStopsOnCancel(t *testing.T) {
	sub := &flakySubscriber{inner: broker.NewMemory(), failures: 100}
	w := NewWorker(sub, noopProvisioner{},
		WithBackoff(time.Hour, 5),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.NoError(t, w.Run(ctx))
}

// closingSubscriber hands out consumers that fail after the first Receive.
type closingSubscriber struct {
	mu    sync.Mutex
	calls int
}

type brokenConsumer struct{}

func (brokenConsumer) Receive(context.Context) (broker.Delivery, error) {
	return nil, errors.New("connection lost")
}

func (brokenConsumer) Close() error { return nil }

func (c *closingSubscriber) Subscribe(context.Context, string) (broker.Consumer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls > 1 {
		return nil, errors.New("connection refused")
	}
	return brokenConsumer{}, nil
}

func TestRuntimeFailureGoesBackThroughBootstrap(t *testing.T) {
	var slept []time.Duration
	sub := &closingSubscriber{}
	w := newBootstrapWorker(sub, &slept)

	err := w.Run(context.Background())
	require.ErrorIs(t, err, ErrBootstrapExhausted)
	assert.Equal(t, 6, sub.calls)
	assert.Len(t, slept, 4)
}
