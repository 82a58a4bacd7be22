package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/IBM/sarama"

	kafka "github.com/vogiaan1904/ticketbottle-reservation/internal/delivery/kafka"
	errs "github.com/vogiaan1904/ticketbottle-reservation/internal/errors"
	"github.com/vogiaan1904/ticketbottle-reservation/internal/service"
)

// HandlePaymentCompleted commits the hold named by a confirmed payment. A
// missing hold is NOT retried: the service has already pushed the mismatch to
// the audit topic, and replaying the message can never make the hold come
// back. Store outages are returned so the message is redelivered.
func (c *Consumer) HandlePaymentCompleted(ctx context.Context, message *sarama.ConsumerMessage) error {
	c.l.Info(ctx, "HandlePaymentCompleted consumed")

	var e kafka.PaymentCompletedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandlePaymentCompleted: %v", err)
		return err
	}

	if _, err := c.rsvSvc.Commit(ctx, service.CommitInput{
		HoldID:        e.HoldID,
		TransactionID: e.TransactionID,
	}); err != nil {
		if errors.Is(err, errs.ErrHoldNotFound) || errors.Is(err, errs.ErrTicketTypeNotFound) {
			c.l.Errorf(ctx, "Payment confirmed but commit impossible - hold_id: %s, transaction_id: %s, error: %v",
				e.HoldID, e.TransactionID, err)
			return nil
		}
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandlePaymentCompleted: %v", err)
		return err
	}

	return nil
}

// HandlePaymentFailed releases the hold early so the capacity returns to the
// pool before the TTL would have lapsed it. Best effort only - an
// already-gone hold is fine.
func (c *Consumer) HandlePaymentFailed(ctx context.Context, message *sarama.ConsumerMessage) error {
	c.l.Info(ctx, "HandlePaymentFailed consumed")

	var e kafka.PaymentFailedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandlePaymentFailed: %v", err)
		return err
	}

	if err := c.rsvSvc.Cancel(ctx, e.HoldID, "payment_failed"); err != nil {
		if errors.Is(err, errs.ErrHoldNotFound) {
			return nil
		}
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandlePaymentFailed: %v", err)
		return err
	}

	return nil
}
