package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/domain"
)

// MemoryPaymentRepository is an in-process PaymentRepository used in unit
// tests that don't need a real Postgres instance. It mirrors the Postgres
// implementation's outbox coupling: a settlement and its outbox row land
// together, so tests can assert both sides of the atomicity guarantee.
type MemoryPaymentRepository struct {
	mu        sync.Mutex
	byID      map[string]*domain.Transaction
	byIdemKey map[string]*domain.Transaction
	outbox    []*domain.OutboxMessage
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{
		byID:      make(map[string]*domain.Transaction),
		byIdemKey: make(map[string]*domain.Transaction),
	}
}

func (r *MemoryPaymentRepository) CreateIfAbsent(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byIdemKey[tx.IdempotencyKey]; ok {
		out := *existing
		return &out, false, nil
	}

	clone := *tx
	r.byID[tx.ID] = &clone
	r.byIdemKey[tx.IdempotencyKey] = &clone
	out := clone
	return &out, true, nil
}

func (r *MemoryPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	clone := *tx
	return &clone, nil
}

func (r *MemoryPaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tx := range r.byID {
		if tx.BookingID == bookingID {
			clone := *tx
			return &clone, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *MemoryPaymentRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []*domain.Transaction
	for _, tx := range r.byID {
		if tx.UserID == userID {
			clone := *tx
			matches = append(matches, &clone)
		}
	}
	if offset >= len(matches) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func (r *MemoryPaymentRepository) UpdateStatusWithOutbox(ctx context.Context, tx *domain.Transaction, build OutboxBuilder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[tx.ID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if existing.Status != domain.TransactionStatusPending {
		return domain.ErrIllegalTransition
	}

	outbox, err := build(tx)
	if err != nil {
		return fmt.Errorf("build outbox message: %w", err)
	}

	clone := *tx
	r.byID[tx.ID] = &clone
	r.byIdemKey[tx.IdempotencyKey] = &clone
	r.outbox = append(r.outbox, outbox)
	return nil
}

// Count returns the number of stored transactions, for test assertions.
func (r *MemoryPaymentRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// OutboxMessages returns the outbox rows written so far, for test
// assertions.
func (r *MemoryPaymentRepository) OutboxMessages() []*domain.OutboxMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.OutboxMessage, len(r.outbox))
	copy(out, r.outbox)
	return out
}

var _ PaymentRepository = (*MemoryPaymentRepository)(nil)
