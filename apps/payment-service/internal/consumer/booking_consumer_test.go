package consumer

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBookingCreatedUnmarshal(t *testing.T) {
	payload := bookingCreated{
		BookingID: 42,
		UserID:    "user-1",
		EventID:   "event-9",
		SeatIDs:   []string{"A1", "A2"},
		Amount:    1500.00,
		Currency:  "THB",
		Timestamp: time.Now().UTC(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("unexpected error marshaling: %v", err)
	}

	var decoded bookingCreated
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error unmarshaling: %v", err)
	}

	if decoded.BookingID != payload.BookingID {
		t.Errorf("expected booking id %d, got %d", payload.BookingID, decoded.BookingID)
	}
	if decoded.UserID != payload.UserID {
		t.Errorf("expected user id %s, got %s", payload.UserID, decoded.UserID)
	}
	if len(decoded.SeatIDs) != 2 {
		t.Errorf("expected 2 seat ids, got %d", len(decoded.SeatIDs))
	}
}

func TestBookingCreatedWireSchema(t *testing.T) {
	raw := []byte(`{"bookingId":7,"userId":"u1","eventId":"e1","seatIds":["S1"],"amount":250.5,"currency":"THB","timestamp":"2026-01-01T00:00:00Z"}`)

	var decoded bookingCreated
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error unmarshaling wire payload: %v", err)
	}
	if decoded.BookingID != 7 {
		t.Errorf("expected booking id 7, got %d", decoded.BookingID)
	}
	if decoded.Amount != 250.5 {
		t.Errorf("expected amount 250.5, got %f", decoded.Amount)
	}
}

func TestPaymentSuccessMarshal(t *testing.T) {
	event := paymentSuccess{
		BookingID:        7,
		TransactionID:    "txn-1",
		UserID:           "u1",
		Amount:           250.5,
		GatewayReference: "gw-1",
		Timestamp:        time.Now().UTC(),
	}

	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m["bookingId"]; !ok {
		t.Error("expected bookingId field in wire payload")
	}
	if _, ok := m["gatewayReference"]; !ok {
		t.Error("expected gatewayReference field in wire payload")
	}
}

func TestPaymentFailedMarshal(t *testing.T) {
	event := paymentFailed{
		BookingID: 7,
		UserID:    "u1",
		Reason:    "card_declined",
		Timestamp: time.Now().UTC(),
	}

	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["reason"] != "card_declined" {
		t.Errorf("expected reason 'card_declined', got %v", m["reason"])
	}
}
