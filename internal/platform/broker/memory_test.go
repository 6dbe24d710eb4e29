package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const topic = "team.creation"

type MemoryBrokerSuite struct {
	suite.Suite
	ctx    context.Context
	broker *Memory
}

func TestMemoryBrokerSuite(t *testing.T) {
	suite.Run(t, new(MemoryBrokerSuite))
}

func (s *MemoryBrokerSuite) SetupTest() {
	s.ctx = context.Background()
	s.broker = NewMemory(WithMaxDeliveries(3))
}

func (s *MemoryBrokerSuite) subscribe(name string) Consumer {
	c, err := s.broker.Subscribe(s.ctx, name)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = c.Close() })
	return c
}

func (s *MemoryBrokerSuite) receive(c Consumer) Delivery {
	ctx, cancel := context.WithTimeout(s.ctx, time.Second)
	defer cancel()
	d, err := c.Receive(ctx)
	s.Require().NoError(err)
	return d
}

// =============================================================================
// Delivery
// =============================================================================

func (s *MemoryBrokerSuite) TestDeliversInPublishOrder() {
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "a", Body: []byte("1")}))
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "b", Body: []byte("2")}))
	c := s.subscribe(topic)

	first := s.receive(c)
	s.Equal("a", first.Message().Key)
	s.Equal(1, first.Message().Attempt)
	s.NotEmpty(first.Message().ID)
	s.Require().NoError(first.Ack(s.ctx))

	second := s.receive(c)
	s.Equal("b", second.Message().Key)
	s.Require().NoError(second.Ack(s.ctx))
	s.Zero(s.broker.Len(topic))
}

func (s *MemoryBrokerSuite) TestReceiveBlocksUntilPublish() {
	c := s.subscribe(topic)
	got := make(chan Delivery, 1)
	go func() {
		d, err := c.Receive(s.ctx)
		if err == nil {
			got <- d
		}
	}()

	time.Sleep(20 * time.Millisecond)
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "late"}))

	select {
	case d := <-got:
		s.Equal("late", d.Message().Key)
	case <-time.After(time.Second):
		s.Fail("receive did not wake up")
	}
}

func (s *MemoryBrokerSuite) TestReceiveHonoursContext() {
	c := s.subscribe(topic)
	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()

	_, err := c.Receive(ctx)
	s.ErrorIs(err, context.DeadlineExceeded)
}

// =============================================================================
// Prefetch
// =============================================================================

func (s *MemoryBrokerSuite) TestRefusesSecondReceiveWhileUnsettled() {
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "a"}))
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "b"}))
	c := s.subscribe(topic)

	d := s.receive(c)
	_, err := c.Receive(s.ctx)
	s.ErrorIs(err, ErrUnsettled)

	s.Require().NoError(d.Ack(s.ctx))
	s.Equal("b", s.receive(c).Message().Key)
}

func (s *MemoryBrokerSuite) TestSettleTwiceFails() {
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "a"}))
	d := s.receive(s.subscribe(topic))

	s.Require().NoError(d.Ack(s.ctx))
	s.ErrorIs(d.Ack(s.ctx), ErrAlreadySettled)
	s.ErrorIs(d.Nack(s.ctx, true), ErrAlreadySettled)
}

// =============================================================================
// Redelivery and dead-lettering
// =============================================================================

func (s *MemoryBrokerSuite) TestRequeueRedeliversWithIncrementedAttempt() {
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "a"}))
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "b"}))
	c := s.subscribe(topic)

	d := s.receive(c)
	s.Require().NoError(d.Nack(s.ctx, true))

	again := s.receive(c)
	s.Equal("a", again.Message().Key)
	s.Equal(2, again.Message().Attempt)
}

func (s *MemoryBrokerSuite) TestDeadLettersAfterMaxDeliveries() {
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "a", Body: []byte("payload")}))
	c := s.subscribe(topic)

	for attempt := 1; attempt <= 3; attempt++ {
		d := s.receive(c)
		s.Equal(attempt, d.Message().Attempt)
		s.Require().NoError(d.Nack(s.ctx, true))
	}
	s.Zero(s.broker.Len(topic))
	s.Equal(1, s.broker.Len(DeadLetterTopic(topic)))

	dead := s.receive(s.subscribe(DeadLetterTopic(topic)))
	s.Equal([]byte("payload"), dead.Message().Body)
	s.Equal("3", dead.Message().Headers[HeaderDeliveryAttempts])
	s.Equal(ReasonMaxAttempts, dead.Message().Headers[HeaderDeadLetterReason])
}

func (s *MemoryBrokerSuite) TestRejectDeadLettersImmediately() {
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "poison"}))
	d := s.receive(s.subscribe(topic))

	s.Require().NoError(d.Nack(s.ctx, false))

	s.Zero(s.broker.Len(topic))
	dead := s.receive(s.subscribe(DeadLetterTopic(topic)))
	s.Equal("poison", dead.Message().Key)
	s.Equal("1", dead.Message().Headers[HeaderDeliveryAttempts])
	s.Equal(ReasonRejected, dead.Message().Headers[HeaderDeadLetterReason])
}

// =============================================================================
// Shutdown
// =============================================================================

func (s *MemoryBrokerSuite) TestConsumerCloseReturnsUnsettledMessage() {
	s.Require().NoError(s.broker.Publish(s.ctx, topic, Message{Key: "a"}))
	c := s.subscribe(topic)
	_ = s.receive(c)

	s.Require().NoError(c.Close())

	d := s.receive(s.subscribe(topic))
	s.Equal("a", d.Message().Key)
	s.Equal(1, d.Message().Attempt)
}

func (s *MemoryBrokerSuite) TestBrokerCloseStopsReceivers() {
	c := s.subscribe(topic)
	errs := make(chan error, 1)
	go func() {
		_, err := c.Receive(s.ctx)
		errs <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Require().NoError(s.broker.Close())

	select {
	case err := <-errs:
		s.ErrorIs(err, ErrClosed)
	case <-time.After(time.Second):
		s.Fail("receive did not return after close")
	}
	s.ErrorIs(s.broker.Publish(s.ctx, topic, Message{}), ErrClosed)
	_, err := s.broker.Subscribe(s.ctx, topic)
	s.ErrorIs(err, ErrClosed)
}
