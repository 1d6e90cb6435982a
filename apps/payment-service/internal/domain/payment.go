package domain

import (
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the lifecycle state of a charge attempt. Terminal
// once it leaves PENDING: a Transaction never moves from SUCCESS or FAILED
// to anything else.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is one charge attempt against a booking. IdempotencyKey is
// derived from (bookingID, userID) and unique-indexed at the repository
// layer so a duplicate BookingCreated delivery converges on the same row
// instead of double-charging.
type Transaction struct {
	ID               string
	BookingID        int64
	UserID           string
	Amount           float64
	Currency         string
	Status           TransactionStatus
	IdempotencyKey   string
	GatewayReference string
	FailureReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IdempotencyKey derives the key a duplicate BookingCreated delivery for
// the same booking and user must collide on.
func IdempotencyKey(bookingID int64, userID string) string {
	return "booking_" + strconv.FormatInt(bookingID, 10) + "_user_" + userID
}

// NewTransaction creates a fresh PENDING transaction with its idempotency
// key already computed, ready to be inserted by the repository's
// check-then-insert path.
func NewTransaction(bookingID int64, userID string, amount float64, currency string) (*Transaction, error) {
	if bookingID <= 0 {
		return nil, errors.New("booking id is required")
	}
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		return nil, errors.New("currency is required")
	}

	now := time.Now().UTC()
	return &Transaction{
		ID:             uuid.New().String(),
		BookingID:      bookingID,
		UserID:         userID,
		Amount:         amount,
		Currency:       currency,
		Status:         TransactionStatusPending,
		IdempotencyKey: IdempotencyKey(bookingID, userID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Succeed transitions a PENDING transaction to SUCCESS, recording the
// gateway's reference. Returns ErrIllegalTransition on a non-pending
// transaction so a caller can treat a duplicate charge attempt as a no-op.
func (t *Transaction) Succeed(gatewayReference string) error {
	if t.Status != TransactionStatusPending {
		return ErrIllegalTransition
	}
	t.Status = TransactionStatusSuccess
	t.GatewayReference = gatewayReference
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail transitions a PENDING transaction to FAILED with the gateway's
// rejection reason.
func (t *Transaction) Fail(reason string) error {
	if t.Status != TransactionStatusPending {
		return ErrIllegalTransition
	}
	t.Status = TransactionStatusFailed
	t.FailureReason = reason
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// IsTerminal reports whether the transaction has left PENDING.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}
