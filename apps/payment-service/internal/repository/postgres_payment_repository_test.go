package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/domain"
	"github.com/bennyworkz/ticketblitz/pkg/database"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func setupTestDB(t *testing.T) *database.PostgresDB {
	ctx := context.Background()

	cfg := &database.PostgresConfig{
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            5432,
		User:            getEnv("POSTGRES_USER", "postgres"),
		Password:        getEnv("POSTGRES_PASSWORD", ""),
		Database:        getEnv("POSTGRES_DB", "ticketblitz_payment"),
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 1 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
	}

	db, err := database.NewPostgres(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	_, err = db.Pool().Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id VARCHAR(36) PRIMARY KEY,
			booking_id BIGINT NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			amount DECIMAL(12,2) NOT NULL,
			currency VARCHAR(3) NOT NULL DEFAULT 'THB',
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			idempotency_key VARCHAR(255) NOT NULL UNIQUE,
			gateway_reference TEXT,
			failure_reason TEXT,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create transactions table: %v", err)
	}

	_, err = db.Pool().Exec(ctx, `
		CREATE TABLE IF NOT EXISTS outbox (
			id VARCHAR(36) PRIMARY KEY,
			aggregate_type VARCHAR(64) NOT NULL,
			aggregate_id VARCHAR(64) NOT NULL,
			event_type VARCHAR(64) NOT NULL,
			payload JSONB NOT NULL,
			topic VARCHAR(128) NOT NULL,
			partition_key VARCHAR(64) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			retry_count INT NOT NULL DEFAULT 0,
			max_retries INT NOT NULL DEFAULT 5,
			last_error TEXT,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			processed_at TIMESTAMP WITH TIME ZONE,
			published_at TIMESTAMP WITH TIME ZONE
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create outbox table: %v", err)
	}

	return db
}

func cleanupTestData(t *testing.T, db *database.PostgresDB) {
	ctx := context.Background()
	_, err := db.Pool().Exec(ctx, "DELETE FROM transactions WHERE user_id LIKE 'test-user-%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestPostgresPaymentRepository_CreateIfAbsent(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	outbox := NewPostgresOutboxRepository(db.Pool())
	repo := NewPostgresPaymentRepository(db, outbox)
	ctx := context.Background()

	tx, err := domain.NewTransaction(1001, "test-user-create", 1000.00, "THB")
	if err != nil {
		t.Fatalf("Failed to build transaction: %v", err)
	}

	stored, created, err := repo.CreateIfAbsent(ctx, tx)
	if err != nil {
		t.Fatalf("Failed to insert transaction: %v", err)
	}
	if !created {
		t.Error("expected created=true on first insert")
	}

	found, err := repo.GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("Failed to get transaction: %v", err)
	}
	if found.ID != tx.ID {
		t.Errorf("Expected ID %s, got %s", tx.ID, found.ID)
	}
	if found.BookingID != tx.BookingID {
		t.Errorf("Expected BookingID %d, got %d", tx.BookingID, found.BookingID)
	}
}

func TestPostgresPaymentRepository_CreateIfAbsent_Duplicate(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	outbox := NewPostgresOutboxRepository(db.Pool())
	repo := NewPostgresPaymentRepository(db, outbox)
	ctx := context.Background()

	first, _ := domain.NewTransaction(1002, "test-user-dup", 1000.00, "THB")
	second, _ := domain.NewTransaction(1002, "test-user-dup", 1000.00, "THB")

	stored1, created1, err := repo.CreateIfAbsent(ctx, first)
	if err != nil {
		t.Fatalf("Failed to insert first transaction: %v", err)
	}
	if !created1 {
		t.Fatal("expected first insert to be created")
	}

	stored2, created2, err := repo.CreateIfAbsent(ctx, second)
	if err != nil {
		t.Fatalf("Failed to insert second transaction: %v", err)
	}
	if created2 {
		t.Error("expected duplicate idempotency key to not be created")
	}
	if stored2.ID != stored1.ID {
		t.Errorf("expected duplicate to return the first row's ID %s, got %s", stored1.ID, stored2.ID)
	}
}

func TestPostgresPaymentRepository_GetByBookingID(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	outbox := NewPostgresOutboxRepository(db.Pool())
	repo := NewPostgresPaymentRepository(db, outbox)
	ctx := context.Background()

	tx, _ := domain.NewTransaction(1003, "test-user-get", 1500.00, "THB")
	repo.CreateIfAbsent(ctx, tx)

	found, err := repo.GetByBookingID(ctx, 1003)
	if err != nil {
		t.Fatalf("Failed to get transaction by booking ID: %v", err)
	}
	if found.BookingID != 1003 {
		t.Errorf("Expected BookingID 1003, got %d", found.BookingID)
	}
}

func TestPostgresPaymentRepository_GetByUserID(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	outbox := NewPostgresOutboxRepository(db.Pool())
	repo := NewPostgresPaymentRepository(db, outbox)
	ctx := context.Background()

	testUserID := "test-user-list"
	for i := 0; i < 3; i++ {
		tx, _ := domain.NewTransaction(int64(2000+i), testUserID, float64(100*(i+1)), "THB")
		repo.CreateIfAbsent(ctx, tx)
	}

	txs, err := repo.GetByUserID(ctx, testUserID, 10, 0)
	if err != nil {
		t.Fatalf("Failed to get transactions by user ID: %v", err)
	}
	if len(txs) != 3 {
		t.Errorf("Expected 3 transactions, got %d", len(txs))
	}
}

func TestPostgresPaymentRepository_UpdateStatusWithOutbox(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	outbox := NewPostgresOutboxRepository(db.Pool())
	repo := NewPostgresPaymentRepository(db, outbox)
	ctx := context.Background()

	tx, _ := domain.NewTransaction(1004, "test-user-update", 2000.00, "THB")
	repo.CreateIfAbsent(ctx, tx)

	tx.Succeed("gw-ref-test-123")
	if err := repo.UpdateStatusWithOutbox(ctx, tx, noopOutboxBuilder); err != nil {
		t.Fatalf("Failed to update transaction status: %v", err)
	}

	found, err := repo.GetByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("Failed to get transaction: %v", err)
	}
	if found.Status != domain.TransactionStatusSuccess {
		t.Errorf("Expected status SUCCESS, got %s", found.Status)
	}
	if found.GatewayReference != "gw-ref-test-123" {
		t.Errorf("Expected gateway reference 'gw-ref-test-123', got '%s'", found.GatewayReference)
	}
}

func TestPostgresPaymentRepository_UpdateStatusWithOutbox_AlreadyTerminal(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	outbox := NewPostgresOutboxRepository(db.Pool())
	repo := NewPostgresPaymentRepository(db, outbox)
	ctx := context.Background()

	tx, _ := domain.NewTransaction(1005, "test-user-terminal", 1000.00, "THB")
	repo.CreateIfAbsent(ctx, tx)

	tx.Succeed("gw-ref-1")
	if err := repo.UpdateStatusWithOutbox(ctx, tx, noopOutboxBuilder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tx.Status = domain.TransactionStatusPending
	tx.Fail("card_declined")
	if err := repo.UpdateStatusWithOutbox(ctx, tx, noopOutboxBuilder); err != domain.ErrIllegalTransition {
		t.Errorf("expected ErrIllegalTransition on already-settled row, got %v", err)
	}
}

func TestPostgresPaymentRepository_NotFound(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()

	outbox := NewPostgresOutboxRepository(db.Pool())
	repo := NewPostgresPaymentRepository(db, outbox)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "non-existent-id"); err != domain.ErrTransactionNotFound {
		t.Errorf("Expected ErrTransactionNotFound, got %v", err)
	}

	if _, err := repo.GetByBookingID(ctx, 999999); err != domain.ErrTransactionNotFound {
		t.Errorf("Expected ErrTransactionNotFound, got %v", err)
	}
}
