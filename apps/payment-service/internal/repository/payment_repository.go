package repository

import (
	"context"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/domain"
)

// OutboxBuilder renders the outbox row for a transaction whose status has
// just settled, deferring event-payload construction to the service layer
// that knows the full event schema.
type OutboxBuilder func(*domain.Transaction) (*domain.OutboxMessage, error)

// PaymentRepository persists Transactions. CreateIfAbsent is the crux of
// the idempotency guarantee: two concurrent inserts for the same
// idempotency key must leave exactly one PENDING row, with the loser
// getting back the winner's row instead of an error.
type PaymentRepository interface {
	// CreateIfAbsent inserts tx unless a row already exists for its
	// idempotency key, in which case it returns the existing row and
	// created=false.
	CreateIfAbsent(ctx context.Context, tx *domain.Transaction) (existing *domain.Transaction, created bool, err error)

	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Transaction, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)

	// UpdateStatusWithOutbox persists a PENDING -> {SUCCESS,FAILED}
	// transition and its payment.success/payment.failed outbox row in one
	// transaction, guarded by a status = 'PENDING' predicate so a
	// concurrent duplicate charge attempt can't overwrite an
	// already-settled row or publish a second event for it.
	UpdateStatusWithOutbox(ctx context.Context, tx *domain.Transaction, build OutboxBuilder) error
}
