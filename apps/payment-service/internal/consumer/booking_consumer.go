package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/service"
	"github.com/bennyworkz/ticketblitz/pkg/kafka"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
	"github.com/bennyworkz/ticketblitz/pkg/retry"
)

const (
	topicBookingCreated = "booking.created"

	consumerDLQRetries = 5
)

// bookingCreated mirrors the booking service's saga.BookingCreated wire
// schema. Kept as a local type rather than importing the booking service so
// the two services stay independently deployable.
type bookingCreated struct {
	BookingID int64     `json:"bookingId"`
	UserID    string    `json:"userId"`
	EventID   string    `json:"eventId"`
	SeatIDs   []string  `json:"seatIds"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// paymentSuccess and paymentFailed mirror service.PaymentSuccess and
// service.PaymentFailed's wire schema for this package's own tests.
type paymentSuccess struct {
	BookingID        int64     `json:"bookingId"`
	TransactionID    string    `json:"transactionId"`
	UserID           string    `json:"userId"`
	Amount           float64   `json:"amount"`
	GatewayReference string    `json:"gatewayReference"`
	Timestamp        time.Time `json:"timestamp"`
}

type paymentFailed struct {
	BookingID int64     `json:"bookingId"`
	UserID    string    `json:"userId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingConsumer polls booking.created and settles it through
// PaymentService. It never talks to Kafka to announce the outcome: the
// settlement's payment.success/payment.failed event is written to the
// outbox in the same transaction as the Transaction row, and the outbox
// worker is the only thing that publishes it.
type BookingConsumer struct {
	consumer *kafka.Consumer
	svc      service.PaymentService
	dlq      *retry.DLQHandler
	log      *logger.Logger
}

func NewBookingConsumer(consumer *kafka.Consumer, dlqPublisher retry.DLQPublisher, svc service.PaymentService) *BookingConsumer {
	dlq := retry.NewDLQHandler(dlqPublisher, &retry.DLQHandlerConfig{
		RetryConfig: &retry.Config{
			MaxRetries:      consumerDLQRetries,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.2,
		},
		Source: "payment-booking-consumer",
	})
	return &BookingConsumer{consumer: consumer, svc: svc, dlq: dlq, log: logger.Get()}
}

// Run polls in a loop until ctx is cancelled.
func (c *BookingConsumer) Run(ctx context.Context) error {
	c.log.Info("starting booking consumer")
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

func (c *BookingConsumer) handle(ctx context.Context, record *kafka.Record) {
	msgCtx := &retry.MessageContext{
		ID:      fmt.Sprintf("%s-%d-%d", record.Topic, record.Partition, record.Offset),
		Topic:   record.Topic,
		Key:     string(record.Key),
		Payload: record.Value,
		Headers: record.Headers,
	}

	op := func(ctx context.Context) error {
		if record.Topic != topicBookingCreated {
			c.log.Warn("ignoring record on unexpected topic", "topic", record.Topic)
			return nil
		}
		return retry.Permanent(c.dispatch(ctx, record))
	}

	if err := c.dlq.ProcessWithDLQ(ctx, msgCtx, op); err != nil {
		c.log.Error("record moved to DLQ", "topic", record.Topic, "key", msgCtx.Key, "error", err)
	}
}

func (c *BookingConsumer) dispatch(ctx context.Context, record *kafka.Record) error {
	var event bookingCreated
	if err := json.Unmarshal(record.Value, &event); err != nil {
		return fmt.Errorf("unmarshal BookingCreated: %w", err)
	}

	if _, err := c.svc.ProcessBookingCreated(ctx, event.BookingID, event.UserID, event.Amount, event.Currency); err != nil {
		return fmt.Errorf("process booking %d: %w", event.BookingID, err)
	}
	return nil
}
