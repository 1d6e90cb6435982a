package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/domain"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL.
type PostgresBookingRepository struct {
	pool   *pgxpool.Pool
	outbox OutboxRepository
}

func NewPostgresBookingRepository(pool *pgxpool.Pool, outbox OutboxRepository) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool, outbox: outbox}
}

const bookingColumns = `
	id, user_id, event_id, seat_ids, amount, currency, status,
	created_at, confirmed_at, expires_at, updated_at
`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	var (
		status      string
		confirmedAt *time.Time
	)

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.EventID,
		&b.SeatIDs,
		&b.Amount,
		&b.Currency,
		&status,
		&b.CreatedAt,
		&confirmedAt,
		&b.ExpiresAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatus(status)
	b.ConfirmedAt = confirmedAt
	return b, nil
}

// CreateWithOutbox inserts the booking and its BookingCreated outbox row in
// one transaction so the event can never be observed without the booking
// existing, or vice versa.
func (r *PostgresBookingRepository) CreateWithOutbox(ctx context.Context, booking *domain.Booking, build OutboxBuilder) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO bookings (user_id, event_id, seat_ids, amount, currency, status, created_at, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err = tx.QueryRow(ctx, query,
		booking.UserID,
		booking.EventID,
		booking.SeatIDs,
		booking.Amount,
		booking.Currency,
		booking.Status.String(),
		booking.CreatedAt,
		booking.ExpiresAt,
		booking.UpdatedAt,
	).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	outbox, err := build(booking)
	if err != nil {
		return fmt.Errorf("build outbox message: %w", err)
	}
	if err := r.outbox.CreateTx(ctx, tx, outbox); err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PostgresBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

func (r *PostgresBookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, bookingColumns)

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// casUpdateAndLoad runs query (a CAS UPDATE guarded by current status) inside
// tx and, if it matched a row, reloads the booking. It returns
// domain.ErrIllegalTransition when no row matched but the booking exists
// (idempotent replay of a saga event) and domain.ErrBookingNotFound when the
// id doesn't exist at all.
func (r *PostgresBookingRepository) casUpdateAndLoad(ctx context.Context, tx pgx.Tx, id int64, query string, args ...interface{}) (*domain.Booking, error) {
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check booking existence: %w", err)
		}
		if !exists {
			return nil, domain.ErrBookingNotFound
		}
		return nil, domain.ErrIllegalTransition
	}

	return scanBooking(tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns), id))
}

// ConfirmWithOutbox CAS-guards PENDING -> CONFIRMED and writes the
// BookingConfirmed outbox row atomically.
func (r *PostgresBookingRepository) ConfirmWithOutbox(ctx context.Context, id int64, build OutboxBuilder) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	booking, err := r.casUpdateAndLoad(ctx, tx, id,
		`UPDATE bookings SET status = $1, confirmed_at = $2, updated_at = $2 WHERE id = $3 AND status = $4`,
		domain.BookingStatusConfirmed.String(), now, id, domain.BookingStatusPending.String(),
	)
	if err != nil {
		return err
	}

	outbox, err := build(booking)
	if err != nil {
		return fmt.Errorf("build outbox message: %w", err)
	}
	if err := r.outbox.CreateTx(ctx, tx, outbox); err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}
	return tx.Commit(ctx)
}

// Fail CAS-guards PENDING -> FAILED. No outbox write: nothing downstream
// subscribes to a booking-failed signal.
func (r *PostgresBookingRepository) Fail(ctx context.Context, id int64) (*domain.Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := r.casUpdateAndLoad(ctx, tx, id,
		`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		domain.BookingStatusFailed.String(), time.Now(), id, domain.BookingStatusPending.String(),
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return booking, nil
}

// CancelWithOutbox is the user-initiated cancel path. It does not write an
// outbox event: cancellation only needs to release the seat locks, which the
// saga service does synchronously after this call succeeds.
func (r *PostgresBookingRepository) CancelWithOutbox(ctx context.Context, id int64, userID string) error {
	query := `
		UPDATE bookings SET status = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND status != 'CONFIRMED' AND status != 'CANCELLED' AND status != 'FAILED' AND status != 'EXPIRED'
	`

	tag, err := r.pool.Exec(ctx, query, domain.BookingStatusCancelled.String(), time.Now(), id, userID)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}

	if tag.RowsAffected() == 0 {
		booking, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !booking.BelongsToUser(userID) {
			return domain.ErrSeatsNotOwned
		}
		if booking.Status == domain.BookingStatusConfirmed {
			return domain.ErrAlreadyConfirmed
		}
		return domain.ErrIllegalTransition
	}

	return nil
}

// ExpireBatch CAS-guards PENDING+expired bookings to EXPIRED in one
// transaction, using FOR UPDATE SKIP LOCKED so multiple sweeper instances can
// run the same query concurrently without fighting over rows.
func (r *PostgresBookingRepository) ExpireBatch(ctx context.Context, limit int) ([]*domain.Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	selectQuery := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE status = 'PENDING' AND expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, bookingColumns)

	rows, err := tx.Query(ctx, selectQuery, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("select expired bookings: %w", err)
	}

	var candidates []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan expired booking: %w", err)
		}
		candidates = append(candidates, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired bookings: %w", err)
	}

	now := time.Now()
	var expired []*domain.Booking
	for _, b := range candidates {
		tag, err := tx.Exec(ctx, `UPDATE bookings SET status = 'EXPIRED', updated_at = $1 WHERE id = $2 AND status = 'PENDING'`, now, b.ID)
		if err != nil {
			return nil, fmt.Errorf("expire booking %d: %w", b.ID, err)
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		b.Status = domain.BookingStatusExpired
		b.UpdatedAt = now
		expired = append(expired, b)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit expiry batch: %w", err)
	}
	return expired, nil
}

var _ BookingRepository = (*PostgresBookingRepository)(nil)
