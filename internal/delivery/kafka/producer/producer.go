package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	kafka "github.com/vogiaan1904/ticketbottle-reservation/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-reservation/pkg/logger"
)

type Producer interface {
	PublishHoldCreated(ctx context.Context, event kafka.HoldCreatedEvent) error
	PublishHoldCancelled(ctx context.Context, event kafka.HoldCancelledEvent) error
	PublishHoldCommitted(ctx context.Context, event kafka.HoldCommittedEvent) error
	PublishCommitFailed(ctx context.Context, event kafka.CommitFailedEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishHoldCreated(ctx context.Context, event kafka.HoldCreatedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicHoldCreated, event.EventID, event)
}

func (p *implProducer) PublishHoldCancelled(ctx context.Context, event kafka.HoldCancelledEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicHoldCancelled, event.EventID, event)
}

func (p *implProducer) PublishHoldCommitted(ctx context.Context, event kafka.HoldCommittedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicHoldCommitted, event.EventID, event)
}

func (p *implProducer) PublishCommitFailed(ctx context.Context, event kafka.CommitFailedEvent) error {
	event.Timestamp = time.Now()
	// Keyed by hold so replayed commits of the same hold stay ordered.
	return p.publish(ctx, kafka.TopicCommitFailed, event.HoldID, event)
}

func (p *implProducer) publish(ctx context.Context, topic, key string, event any) error {
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.publish: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key), // Partition by event_id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	_, _, err = p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) Close() error {
	return p.prod.Close()
}

// nopProducer drops every event. Used when Kafka is disabled by config.
type nopProducer struct {
	l logger.Logger
}

func NewNopProducer(l logger.Logger) Producer {
	return &nopProducer{l: l}
}

func (p *nopProducer) PublishHoldCreated(ctx context.Context, event kafka.HoldCreatedEvent) error {
	p.l.Debugf(ctx, "Kafka disabled, dropping event - topic: %s", kafka.TopicHoldCreated)
	return nil
}

func (p *nopProducer) PublishHoldCancelled(ctx context.Context, event kafka.HoldCancelledEvent) error {
	p.l.Debugf(ctx, "Kafka disabled, dropping event - topic: %s", kafka.TopicHoldCancelled)
	return nil
}

func (p *nopProducer) PublishHoldCommitted(ctx context.Context, event kafka.HoldCommittedEvent) error {
	p.l.Debugf(ctx, "Kafka disabled, dropping event - topic: %s", kafka.TopicHoldCommitted)
	return nil
}

func (p *nopProducer) PublishCommitFailed(ctx context.Context, event kafka.CommitFailedEvent) error {
	p.l.Debugf(ctx, "Kafka disabled, dropping event - topic: %s", kafka.TopicCommitFailed)
	return nil
}

func (p *nopProducer) Close() error {
	return nil
}
