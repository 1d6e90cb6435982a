package service

import "time"

// Kafka topics the payment service produces to. Partition key is the
// bookingId so the booking saga's consumer observes a booking's payment
// outcome in the same order transactions settled.
const (
	TopicPaymentSuccess = "payment.success"
	TopicPaymentFailed  = "payment.failed"
)

// PaymentSuccess is published once a Transaction settles SUCCESS, consumed
// by the booking saga to confirm the booking.
type PaymentSuccess struct {
	BookingID        int64     `json:"bookingId"`
	TransactionID    string    `json:"transactionId"`
	UserID           string    `json:"userId"`
	Amount           float64   `json:"amount"`
	GatewayReference string    `json:"gatewayReference"`
	Timestamp        time.Time `json:"timestamp"`
}

// PaymentFailed is published once a Transaction settles FAILED, consumed by
// the booking saga to fail the booking and release its seat locks.
type PaymentFailed struct {
	BookingID int64     `json:"bookingId"`
	UserID    string    `json:"userId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
