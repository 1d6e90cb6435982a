package repository

import (
	"context"
	"testing"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/domain"
)

func TestNewMemoryPaymentRepository(t *testing.T) {
	repo := NewMemoryPaymentRepository()
	if repo.Count() != 0 {
		t.Error("expected empty repository")
	}
}

func TestMemoryPaymentRepository_CreateIfAbsent(t *testing.T) {
	repo := NewMemoryPaymentRepository()
	ctx := context.Background()

	tx, _ := domain.NewTransaction(123, "user-456", 1000.00, "THB")

	stored, created, err := repo.CreateIfAbsent(ctx, tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true on first insert")
	}
	if stored.ID != tx.ID {
		t.Errorf("expected stored ID %s, got %s", tx.ID, stored.ID)
	}
	if repo.Count() != 1 {
		t.Errorf("expected count 1, got %d", repo.Count())
	}
}

func TestMemoryPaymentRepository_CreateIfAbsent_Duplicate(t *testing.T) {
	repo := NewMemoryPaymentRepository()
	ctx := context.Background()

	first, _ := domain.NewTransaction(123, "user-456", 1000.00, "THB")
	second, _ := domain.NewTransaction(123, "user-456", 1000.00, "THB")

	stored1, created1, err := repo.CreateIfAbsent(ctx, first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created1 {
		t.Fatal("expected first insert to be created")
	}

	stored2, created2, err := repo.CreateIfAbsent(ctx, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created2 {
		t.Error("expected duplicate idempotency key to not be created")
	}
	if stored2.ID != stored1.ID {
		t.Errorf("expected duplicate to return the first row's ID %s, got %s", stored1.ID, stored2.ID)
	}
	if repo.Count() != 1 {
		t.Errorf("expected exactly one row after duplicate insert, got %d", repo.Count())
	}
}

func noopOutboxBuilder(tx *domain.Transaction) (*domain.OutboxMessage, error) {
	return domain.NewOutboxMessage("transaction", tx.ID, "payment.settled", "payment.settled", tx.ID, tx, 5)
}

func TestMemoryPaymentRepository_UpdateStatusWithOutbox(t *testing.T) {
	repo := NewMemoryPaymentRepository()
	ctx := context.Background()

	tx, _ := domain.NewTransaction(123, "user-456", 1000.00, "THB")
	repo.CreateIfAbsent(ctx, tx)

	tx.Succeed("gw-ref-1")
	if err := repo.UpdateStatusWithOutbox(ctx, tx, noopOutboxBuilder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.TransactionStatusSuccess {
		t.Errorf("expected SUCCESS, got %s", got.Status)
	}
	if len(repo.OutboxMessages()) != 1 {
		t.Errorf("expected one outbox row written alongside the settlement, got %d", len(repo.OutboxMessages()))
	}
}

func TestMemoryPaymentRepository_UpdateStatusWithOutbox_AlreadyTerminal(t *testing.T) {
	repo := NewMemoryPaymentRepository()
	ctx := context.Background()

	tx, _ := domain.NewTransaction(123, "user-456", 1000.00, "THB")
	repo.CreateIfAbsent(ctx, tx)

	tx.Succeed("gw-ref-1")
	repo.UpdateStatusWithOutbox(ctx, tx, noopOutboxBuilder)

	tx.Status = domain.TransactionStatusPending // simulate a second, racing settlement attempt
	tx.Fail("card_declined")
	if err := repo.UpdateStatusWithOutbox(ctx, tx, noopOutboxBuilder); err != domain.ErrIllegalTransition {
		t.Errorf("expected ErrIllegalTransition on already-settled row, got %v", err)
	}
	if len(repo.OutboxMessages()) != 1 {
		t.Errorf("expected the rejected transition to not write a second outbox row, got %d", len(repo.OutboxMessages()))
	}
}

func TestMemoryPaymentRepository_GetByBookingID_NotFound(t *testing.T) {
	repo := NewMemoryPaymentRepository()
	ctx := context.Background()

	if _, err := repo.GetByBookingID(ctx, 999); err != domain.ErrTransactionNotFound {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}
