package repository

import (
	"context"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/domain"
)

// OutboxBuilder renders the outbox row for a booking whose status has just
// changed, deferring event-payload construction to the saga layer that knows
// the full event schema.
type OutboxBuilder func(*domain.Booking) (*domain.OutboxMessage, error)

// BookingRepository persists Booking aggregates. Every mutation that must
// announce a saga event also writes a matching outbox row in the same
// Postgres transaction.
type BookingRepository interface {
	// CreateWithOutbox inserts a PENDING booking and its BookingCreated
	// outbox row atomically, and fills in booking.ID.
	CreateWithOutbox(ctx context.Context, booking *domain.Booking, build OutboxBuilder) error

	GetByID(ctx context.Context, id int64) (*domain.Booking, error)

	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error)

	// ConfirmWithOutbox CAS-guards PENDING -> CONFIRMED and writes the
	// BookingConfirmed outbox row atomically. Returns domain.ErrIllegalTransition
	// if the booking was not PENDING (idempotent replay of PaymentSuccess).
	ConfirmWithOutbox(ctx context.Context, id int64, build OutboxBuilder) error

	// Fail CAS-guards PENDING -> FAILED. No outbox event is published: no
	// downstream service subscribes to a booking-failed signal, only to
	// PaymentFailed, which the payment service already publishes.
	Fail(ctx context.Context, id int64) (*domain.Booking, error)

	// CancelWithOutbox CAS-guards PENDING -> CANCELLED: a CONFIRMED booking
	// yields domain.ErrAlreadyConfirmed, any other terminal status
	// domain.ErrIllegalTransition.
	CancelWithOutbox(ctx context.Context, id int64, userID string) error

	// ExpireBatch CAS-guards PENDING+expired -> EXPIRED for up to limit rows
	// and returns the bookings it transitioned so the sweeper can release
	// their seat locks. No outbox event: nothing downstream subscribes to an
	// expiry signal, the seats just go back on sale.
	ExpireBatch(ctx context.Context, limit int) ([]*domain.Booking, error)
}
