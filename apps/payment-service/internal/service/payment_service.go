package service

import (
	"context"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/domain"
)

// PaymentService drives the settlement of a booking against the payment
// gateway. ProcessBookingCreated is idempotent: replaying the same
// (bookingID, userID) pair never charges the gateway twice.
type PaymentService interface {
	ProcessBookingCreated(ctx context.Context, bookingID int64, userID string, amount float64, currency string) (*domain.Transaction, error)

	GetByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Transaction, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
}

// PaymentServiceConfig holds tunables for the settlement flow.
type PaymentServiceConfig struct {
	// Currency used when a caller doesn't specify one explicitly.
	Currency string
}
