package producer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafka "github.com/vogiaan1904/ticketbottle-reservation/internal/delivery/kafka"
	pkgLog "github.com/vogiaan1904/ticketbottle-reservation/pkg/logger"
)

func newMockProducer(t *testing.T) (*mocks.SyncProducer, Producer) {
	t.Helper()
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mp := mocks.NewSyncProducer(t, cfg)
	return mp, NewProducer(mp, pkgLog.InitializeTestZapLogger())
}

func TestPublishHoldCreated(t *testing.T) {
	mp, p := newMockProducer(t)

	mp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, kafka.TopicHoldCreated, msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "event-1", string(key))

		val, err := msg.Value.Encode()
		require.NoError(t, err)
		var e kafka.HoldCreatedEvent
		require.NoError(t, json.Unmarshal(val, &e))
		assert.Equal(t, "hold-1", e.HoldID)
		assert.Equal(t, 2, e.Quantity)
		assert.False(t, e.Timestamp.IsZero())
		return nil
	})

	err := p.PublishHoldCreated(context.Background(), kafka.HoldCreatedEvent{
		HoldID:     "hold-1",
		EventID:    "event-1",
		TicketType: "general",
		Quantity:   2,
		OwnerID:    "user-1",
	})
	assert.NoError(t, err)
	assert.NoError(t, mp.Close())
}

func TestPublishCommitFailedKeyedByHold(t *testing.T) {
	mp, p := newMockProducer(t)

	mp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, kafka.TopicCommitFailed, msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "hold-9", string(key))
		return nil
	})

	err := p.PublishCommitFailed(context.Background(), kafka.CommitFailedEvent{
		HoldID: "hold-9",
		Reason: "hold_not_found",
	})
	assert.NoError(t, err)
	assert.NoError(t, mp.Close())
}

func TestNopProducerDropsEverything(t *testing.T) {
	p := NewNopProducer(pkgLog.InitializeTestZapLogger())

	ctx := context.Background()
	assert.NoError(t, p.PublishHoldCreated(ctx, kafka.HoldCreatedEvent{}))
	assert.NoError(t, p.PublishHoldCancelled(ctx, kafka.HoldCancelledEvent{}))
	assert.NoError(t, p.PublishHoldCommitted(ctx, kafka.HoldCommittedEvent{}))
	assert.NoError(t, p.PublishCommitFailed(ctx, kafka.CommitFailedEvent{}))
	assert.NoError(t, p.Close())
}
