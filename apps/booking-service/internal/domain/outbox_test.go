package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status OutboxStatus
		want   bool
	}{
		{"pending is valid", OutboxStatusPending, true},
		{"published is valid", OutboxStatusPublished, true},
		{"failed is valid", OutboxStatusFailed, true},
		{"unknown is invalid", OutboxStatus("unknown"), false},
		{"empty is invalid", OutboxStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsValid())
		})
	}
}

func TestNewOutboxMessage(t *testing.T) {
	payload := map[string]interface{}{
		"bookingId": "42",
		"userId":    "user-456",
	}

	msg, err := NewOutboxMessage("booking", "42", "booking.created", "booking.created", "42", payload, 5)
	require.NoError(t, err)

	assert.Equal(t, "booking", msg.AggregateType)
	assert.Equal(t, "42", msg.AggregateID)
	assert.Equal(t, "booking.created", msg.EventType)
	assert.Equal(t, "booking.created", msg.Topic)
	assert.Equal(t, "42", msg.PartitionKey)
	assert.Equal(t, OutboxStatusPending, msg.Status)
	assert.Equal(t, 0, msg.RetryCount)
	assert.Equal(t, 5, msg.MaxRetries)
	assert.NotEmpty(t, msg.ID)

	var decoded map[string]interface{}
	require.NoError(t, msg.GetPayload(&decoded))
	assert.Equal(t, "42", decoded["bookingId"])
}

func TestOutboxMessage_CanRetry(t *testing.T) {
	tests := []struct {
		name       string
		status     OutboxStatus
		retryCount int
		maxRetries int
		want       bool
	}{
		{"failed with retries left", OutboxStatusFailed, 2, 5, true},
		{"failed at max retries", OutboxStatusFailed, 5, 5, false},
		{"failed over max retries", OutboxStatusFailed, 6, 5, false},
		{"pending cannot retry", OutboxStatusPending, 0, 5, false},
		{"published cannot retry", OutboxStatusPublished, 0, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &OutboxMessage{Status: tt.status, RetryCount: tt.retryCount, MaxRetries: tt.maxRetries}
			assert.Equal(t, tt.want, msg.CanRetry())
		})
	}
}

func TestOutboxMessage_MarkAsPublished(t *testing.T) {
	msg := &OutboxMessage{ID: "msg-123", Status: OutboxStatusPending}
	msg.MarkAsPublished()

	assert.Equal(t, OutboxStatusPublished, msg.Status)
	assert.NotNil(t, msg.PublishedAt)
	assert.NotNil(t, msg.ProcessedAt)
}

func TestOutboxMessage_MarkAsFailed(t *testing.T) {
	msg := &OutboxMessage{ID: "msg-123", Status: OutboxStatusPending, RetryCount: 1}
	msg.MarkAsFailed("kafka connection failed")

	assert.Equal(t, OutboxStatusFailed, msg.Status)
	assert.Equal(t, "kafka connection failed", msg.LastError)
	assert.Equal(t, 2, msg.RetryCount)
	assert.NotNil(t, msg.ProcessedAt)
}

func TestOutboxMessage_ResetForRetry(t *testing.T) {
	now := time.Now()
	msg := &OutboxMessage{ID: "msg-123", Status: OutboxStatusFailed, ProcessedAt: &now}
	msg.ResetForRetry()

	assert.Equal(t, OutboxStatusPending, msg.Status)
	assert.Nil(t, msg.ProcessedAt)
}

func TestOutboxMessage_GetPayload(t *testing.T) {
	type payload struct {
		BookingID string `json:"booking_id"`
		UserID    string `json:"user_id"`
		Amount    int    `json:"amount"`
	}

	original := payload{BookingID: "book-123", UserID: "user-456", Amount: 1000}
	payloadBytes, err := json.Marshal(original)
	require.NoError(t, err)

	msg := &OutboxMessage{Payload: payloadBytes}

	var decoded payload
	require.NoError(t, msg.GetPayload(&decoded))
	assert.Equal(t, original, decoded)
}
