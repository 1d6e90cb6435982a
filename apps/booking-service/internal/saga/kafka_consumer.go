package saga

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/domain"
	"github.com/bennyworkz/ticketblitz/pkg/kafka"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
	"github.com/bennyworkz/ticketblitz/pkg/retry"
)

// consumerDLQRetries bounds the "booking not found" retry documented for the
// payment-result consumers: PaymentSuccess/PaymentFailed can arrive before
// the booking row is visible to this consumer because of cross-partition
// lag between booking.created and the result topics.
const consumerDLQRetries = 10

// Consumer polls payment.success and payment.failed and dispatches to the
// BookingSaga. It commits offsets after every record regardless of outcome:
// a record that exhausts its retries is parked in the DLQ rather than
// retried forever, so it never blocks the partition behind it.
type Consumer struct {
	consumer *kafka.Consumer
	dlq      *retry.DLQHandler
	saga     *BookingSaga
	log      *logger.Logger
}

func NewConsumer(consumer *kafka.Consumer, dlqPublisher retry.DLQPublisher, saga *BookingSaga) *Consumer {
	dlq := retry.NewDLQHandler(dlqPublisher, &retry.DLQHandlerConfig{
		RetryConfig: &retry.Config{
			MaxRetries:      consumerDLQRetries,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.2,
		},
		Source: "booking-saga-consumer",
	})
	return &Consumer{consumer: consumer, dlq: dlq, saga: saga, log: logger.Get()}
}

// Run polls in a loop until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("starting booking saga consumer")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		records, err := c.consumer.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("poll failed", "error", err)
			continue
		}

		for _, record := range records {
			c.handle(ctx, record)
		}

		if len(records) > 0 {
			if err := c.consumer.CommitRecords(ctx, records); err != nil {
				c.log.Error("commit failed", "error", err)
			}
		}
	}
}

// handle processes one record to completion: retried internally up to
// consumerDLQRetries times on ErrBookingNotFound, DLQ'd otherwise. A
// deserialisation failure is permanent and skips straight to the DLQ.
func (c *Consumer) handle(ctx context.Context, record *kafka.Record) {
	msgCtx := &retry.MessageContext{
		ID:      fmt.Sprintf("%s-%d-%d", record.Topic, record.Partition, record.Offset),
		Topic:   record.Topic,
		Key:     string(record.Key),
		Payload: record.Value,
		Headers: record.Headers,
	}

	op := func(ctx context.Context) error {
		err := c.dispatch(ctx, record)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrBookingNotFound) {
			return retry.Retryable(err)
		}
		return retry.Permanent(err)
	}

	if err := c.dlq.ProcessWithDLQ(ctx, msgCtx, op); err != nil {
		c.log.Error("record moved to DLQ", "topic", record.Topic, "key", msgCtx.Key, "error", err)
	}
}

func (c *Consumer) dispatch(ctx context.Context, record *kafka.Record) error {
	switch record.Topic {
	case TopicPaymentSuccess:
		var event PaymentSuccess
		if err := json.Unmarshal(record.Value, &event); err != nil {
			return fmt.Errorf("unmarshal PaymentSuccess: %w", err)
		}
		return c.saga.OnPaymentSuccess(ctx, event)
	case TopicPaymentFailed:
		var event PaymentFailed
		if err := json.Unmarshal(record.Value, &event); err != nil {
			return fmt.Errorf("unmarshal PaymentFailed: %w", err)
		}
		return c.saga.OnPaymentFailed(ctx, event)
	default:
		c.log.Warn("ignoring record on unexpected topic", "topic", record.Topic)
		return nil
	}
}
