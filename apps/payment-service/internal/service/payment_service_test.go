package service

import (
	"context"
	"testing"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/domain"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/gateway"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/repository"
)

func setupService(successRate float64) (PaymentService, *repository.MemoryPaymentRepository) {
	repo := repository.NewMemoryPaymentRepository()
	gw := gateway.NewMockGateway(&gateway.MockGatewayConfig{
		SuccessRate: successRate,
	})
	svc := NewPaymentService(repo, gw, &PaymentServiceConfig{Currency: "THB"})
	return svc, repo
}

func TestPaymentService_ProcessBookingCreated_Success(t *testing.T) {
	svc, _ := setupService(1.0)
	ctx := context.Background()

	tx, err := svc.ProcessBookingCreated(ctx, 501, "user-1", 1000.00, "THB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != domain.TransactionStatusSuccess {
		t.Errorf("expected SUCCESS, got %s", tx.Status)
	}
	if tx.GatewayReference == "" {
		t.Error("expected gateway reference to be set")
	}
}

func TestPaymentService_ProcessBookingCreated_GatewayFailure(t *testing.T) {
	svc, _ := setupService(0.0)
	ctx := context.Background()

	tx, err := svc.ProcessBookingCreated(ctx, 502, "user-2", 1000.00, "THB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != domain.TransactionStatusFailed {
		t.Errorf("expected FAILED, got %s", tx.Status)
	}
	if tx.FailureReason == "" {
		t.Error("expected failure reason to be set")
	}
}

// TestPaymentService_ProcessBookingCreated_Idempotent covers replaying the
// same booking.created event twice: exactly one Transaction row should
// exist, and the gateway must only be charged once.
func TestPaymentService_ProcessBookingCreated_Idempotent(t *testing.T) {
	svc, repo := setupService(1.0)
	ctx := context.Background()

	first, err := svc.ProcessBookingCreated(ctx, 503, "user-3", 500.00, "THB")
	if err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}

	second, err := svc.ProcessBookingCreated(ctx, 503, "user-3", 500.00, "THB")
	if err != nil {
		t.Fatalf("unexpected error on replayed call: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected replay to return the same transaction, got %s vs %s", first.ID, second.ID)
	}
	if second.GatewayReference != first.GatewayReference {
		t.Errorf("expected replay to reuse the original gateway reference, got %s vs %s", first.GatewayReference, second.GatewayReference)
	}
	if repo.Count() != 1 {
		t.Errorf("expected exactly one transaction row, got %d", repo.Count())
	}
}

func TestPaymentService_GetByID(t *testing.T) {
	svc, _ := setupService(1.0)
	ctx := context.Background()

	tx, _ := svc.ProcessBookingCreated(ctx, 504, "user-4", 750.00, "THB")

	got, err := svc.GetByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != tx.ID {
		t.Errorf("expected ID %s, got %s", tx.ID, got.ID)
	}
}

func TestPaymentService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupService(1.0)
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, "missing-id"); err != domain.ErrTransactionNotFound {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestPaymentService_GetByBookingID(t *testing.T) {
	svc, _ := setupService(1.0)
	ctx := context.Background()

	svc.ProcessBookingCreated(ctx, 505, "user-5", 200.00, "THB")

	got, err := svc.GetByBookingID(ctx, 505)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BookingID != 505 {
		t.Errorf("expected booking id 505, got %d", got.BookingID)
	}
}

func TestPaymentService_DefaultCurrency(t *testing.T) {
	svc, _ := setupService(1.0)
	ctx := context.Background()

	tx, err := svc.ProcessBookingCreated(ctx, 506, "user-6", 300.00, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Currency != "THB" {
		t.Errorf("expected default currency THB, got %s", tx.Currency)
	}
}
