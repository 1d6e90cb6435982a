package domain

import "testing"

func TestNewTransaction(t *testing.T) {
	tests := []struct {
		name      string
		bookingID int64
		userID    string
		amount    float64
		currency  string
		wantErr   bool
	}{
		{"valid", 123, "user-1", 100.00, "THB", false},
		{"missing booking id", 0, "user-1", 100.00, "THB", true},
		{"missing user id", 123, "", 100.00, "THB", true},
		{"zero amount", 123, "user-1", 0, "THB", true},
		{"negative amount", 123, "user-1", -50, "THB", true},
		{"missing currency", 123, "user-1", 100.00, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := NewTransaction(tt.bookingID, tt.userID, tt.amount, tt.currency)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tx.ID == "" {
				t.Error("expected ID to be set")
			}
			if tx.Status != TransactionStatusPending {
				t.Errorf("expected PENDING, got %s", tx.Status)
			}
			if tx.IdempotencyKey != IdempotencyKey(tt.bookingID, tt.userID) {
				t.Errorf("idempotency key mismatch: %s", tx.IdempotencyKey)
			}
		})
	}
}

func TestIdempotencyKeyDeterministic(t *testing.T) {
	a := IdempotencyKey(42, "user-1")
	b := IdempotencyKey(42, "user-1")
	if a != b {
		t.Errorf("expected deterministic key, got %s and %s", a, b)
	}

	c := IdempotencyKey(42, "user-2")
	if a == c {
		t.Error("expected different users to produce different keys")
	}
}

func TestTransactionSucceed(t *testing.T) {
	tx, _ := NewTransaction(1, "user-1", 100, "THB")

	if err := tx.Succeed("gw-ref-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != TransactionStatusSuccess {
		t.Errorf("expected SUCCESS, got %s", tx.Status)
	}
	if tx.GatewayReference != "gw-ref-1" {
		t.Errorf("expected gateway reference to be set")
	}

	if err := tx.Succeed("gw-ref-2"); err != ErrIllegalTransition {
		t.Errorf("expected ErrIllegalTransition on already-terminal transaction, got %v", err)
	}
}

func TestTransactionFail(t *testing.T) {
	tx, _ := NewTransaction(1, "user-1", 100, "THB")

	if err := tx.Fail("card_declined"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != TransactionStatusFailed {
		t.Errorf("expected FAILED, got %s", tx.Status)
	}
	if tx.FailureReason != "card_declined" {
		t.Errorf("expected failure reason to be set")
	}

	if err := tx.Fail("again"); err != ErrIllegalTransition {
		t.Errorf("expected ErrIllegalTransition on already-terminal transaction, got %v", err)
	}
}

func TestTransactionIsTerminal(t *testing.T) {
	tx, _ := NewTransaction(1, "user-1", 100, "THB")
	if tx.IsTerminal() {
		t.Error("pending transaction should not be terminal")
	}

	tx.Succeed("gw-ref")
	if !tx.IsTerminal() {
		t.Error("succeeded transaction should be terminal")
	}
}
