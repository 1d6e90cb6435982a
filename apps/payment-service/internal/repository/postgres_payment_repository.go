package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/domain"
	"github.com/bennyworkz/ticketblitz/pkg/database"
)

const pgUniqueViolationCode = "23505"

const transactionColumns = `id, booking_id, user_id, amount, currency, status, idempotency_key,
	gateway_reference, failure_reason, created_at, updated_at`

// PostgresPaymentRepository implements PaymentRepository against the
// unique index on idempotency_key that enforces exactly-one-Transaction
// per (bookingID, userID).
type PostgresPaymentRepository struct {
	db     *database.PostgresDB
	outbox OutboxRepository
}

func NewPostgresPaymentRepository(db *database.PostgresDB, outbox OutboxRepository) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db, outbox: outbox}
}

func (r *PostgresPaymentRepository) CreateIfAbsent(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO transactions (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, transactionColumns)

	_, err := r.db.Pool().Exec(ctx, query,
		tx.ID, tx.BookingID, tx.UserID, tx.Amount, tx.Currency, string(tx.Status),
		tx.IdempotencyKey, tx.GatewayReference, tx.FailureReason, tx.CreatedAt, tx.UpdatedAt,
	)
	if err == nil {
		return tx, true, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		existing, getErr := r.getByIdempotencyKey(ctx, tx.IdempotencyKey)
		if getErr != nil {
			return nil, false, fmt.Errorf("load existing transaction after unique violation: %w", getErr)
		}
		return existing, false, nil
	}
	return nil, false, fmt.Errorf("insert transaction: %w", err)
}

func (r *PostgresPaymentRepository) getByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE idempotency_key = $1`, transactionColumns)
	return scanTransaction(r.db.Pool().QueryRow(ctx, query, key))
}

func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, transactionColumns)
	return scanTransaction(r.db.Pool().QueryRow(ctx, query, id))
}

func (r *PostgresPaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE booking_id = $1`, transactionColumns)
	return scanTransaction(r.db.Pool().QueryRow(ctx, query, bookingID))
}

func (r *PostgresPaymentRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, transactionColumns)

	rows, err := r.db.Pool().Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransactionRows(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// UpdateStatusWithOutbox writes back a terminal transition and its
// payment.success/payment.failed outbox row in one transaction, so a crash
// between settling the charge and publishing the event can never happen:
// either both are durable or neither is. Guarded by status = 'PENDING' so a
// losing concurrent charge attempt can't clobber an already-settled row.
func (r *PostgresPaymentRepository) UpdateStatusWithOutbox(ctx context.Context, tx *domain.Transaction, build OutboxBuilder) error {
	pgTx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer pgTx.Rollback(ctx)

	query := `
		UPDATE transactions
		SET status = $2, gateway_reference = $3, failure_reason = $4, updated_at = $5
		WHERE id = $1 AND status = 'PENDING'`

	tag, err := pgTx.Exec(ctx, query, tx.ID, string(tx.Status), tx.GatewayReference, tx.FailureReason, tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIllegalTransition
	}

	outbox, err := build(tx)
	if err != nil {
		return fmt.Errorf("build outbox message: %w", err)
	}
	if err := r.outbox.CreateTx(ctx, pgTx, outbox); err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}

	return pgTx.Commit(ctx)
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var status string
	err := row.Scan(&tx.ID, &tx.BookingID, &tx.UserID, &tx.Amount, &tx.Currency, &status,
		&tx.IdempotencyKey, &tx.GatewayReference, &tx.FailureReason, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Status = domain.TransactionStatus(status)
	return &tx, nil
}

func scanTransactionRows(rows pgx.Rows) (*domain.Transaction, error) {
	var tx domain.Transaction
	var status string
	err := rows.Scan(&tx.ID, &tx.BookingID, &tx.UserID, &tx.Amount, &tx.Currency, &status,
		&tx.IdempotencyKey, &tx.GatewayReference, &tx.FailureReason, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Status = domain.TransactionStatus(status)
	return &tx, nil
}
