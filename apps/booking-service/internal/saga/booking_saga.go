// Package saga drives the booking state machine: it creates PENDING
// bookings against verified seat locks, reacts to payment results, and
// sweeps expired holds. It has no HTTP surface of its own — handler and
// service code call into BookingSaga, and the Kafka consumer dispatches
// inbound payment events to it.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/domain"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/repository"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/reservation"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
)

// BookingSaga orchestrates the Booking aggregate's lifecycle against the
// seat lock it depends on. It never talks to Kafka directly; it hands the
// repository an OutboxBuilder and the repository writes the booking row and
// its outbox event in one transaction.
type BookingSaga struct {
	bookings repository.BookingRepository
	locker   *reservation.SeatLocker
	log      *logger.Logger
}

func NewBookingSaga(bookings repository.BookingRepository, locker *reservation.SeatLocker) *BookingSaga {
	return &BookingSaga{bookings: bookings, locker: locker, log: logger.Get()}
}

// CreateBooking verifies the caller still holds every requested seat, then
// persists a PENDING booking and its BookingCreated outbox event atomically.
func (s *BookingSaga) CreateBooking(ctx context.Context, userID, eventID string, seatIDs []string, amount float64, currency string) (*domain.Booking, error) {
	owned, err := s.locker.VerifyOwnership(ctx, eventID, seatIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("verify seat ownership: %w", err)
	}
	if !owned {
		return nil, domain.ErrSeatsNotOwned
	}

	booking := domain.NewBooking(userID, eventID, seatIDs, amount, currency)
	if err := booking.Validate(); err != nil {
		return nil, err
	}

	build := func(b *domain.Booking) (*domain.OutboxMessage, error) {
		event := BookingCreated{
			BookingID: b.ID,
			UserID:    b.UserID,
			EventID:   b.EventID,
			SeatIDs:   b.SeatIDs,
			Amount:    b.Amount,
			Currency:  b.Currency,
			Timestamp: b.CreatedAt,
		}
		return domain.NewOutboxMessage("booking", fmt.Sprintf("%d", b.ID), TopicBookingCreated, TopicBookingCreated, fmt.Sprintf("%d", b.ID), event, 5)
	}

	if err := s.bookings.CreateWithOutbox(ctx, booking, build); err != nil {
		return nil, err
	}

	s.log.Info("booking created", "bookingId", booking.ID, "userId", userID, "eventId", eventID)
	return booking, nil
}

// OnPaymentSuccess confirms the booking named by event and releases its
// seat locks. A replayed event against an already-terminal booking is
// treated as a harmless no-op, since Kafka consumer groups redeliver.
func (s *BookingSaga) OnPaymentSuccess(ctx context.Context, event PaymentSuccess) error {
	booking, err := s.bookings.GetByID(ctx, event.BookingID)
	if err != nil {
		return err
	}

	build := func(b *domain.Booking) (*domain.OutboxMessage, error) {
		confirmed := BookingConfirmed{
			BookingID: b.ID,
			UserID:    b.UserID,
			EventID:   b.EventID,
			SeatIDs:   b.SeatIDs,
			Timestamp: time.Now(),
		}
		return domain.NewOutboxMessage("booking", fmt.Sprintf("%d", b.ID), TopicBookingConfirmed, TopicBookingConfirmed, fmt.Sprintf("%d", b.ID), confirmed, 5)
	}

	err = s.bookings.ConfirmWithOutbox(ctx, event.BookingID, build)
	if errors.Is(err, domain.ErrIllegalTransition) {
		s.log.Warn("ignoring payment success for non-pending booking", "bookingId", event.BookingID, "status", booking.Status)
		return nil
	}
	if err != nil {
		return err
	}

	// Lock release failure doesn't fail the confirmation: locks expire on
	// their own TTL, and a stuck lock past that point is an ops concern,
	// not a correctness one.
	s.locker.ReleaseMany(ctx, booking.EventID, booking.SeatIDs, booking.UserID)

	s.log.Info("booking confirmed", "bookingId", event.BookingID)
	return nil
}

// OnPaymentFailed fails the booking named by event and releases its seat
// locks so the seats return to sale immediately rather than waiting out
// the lock TTL.
func (s *BookingSaga) OnPaymentFailed(ctx context.Context, event PaymentFailed) error {
	booking, err := s.bookings.GetByID(ctx, event.BookingID)
	if err != nil {
		return err
	}

	_, err = s.bookings.Fail(ctx, event.BookingID)
	if errors.Is(err, domain.ErrIllegalTransition) {
		s.log.Warn("ignoring payment failure for non-pending booking", "bookingId", event.BookingID, "status", booking.Status)
		return nil
	}
	if err != nil {
		return err
	}

	s.locker.ReleaseMany(ctx, booking.EventID, booking.SeatIDs, booking.UserID)

	s.log.Info("booking failed", "bookingId", event.BookingID, "reason", event.Reason)
	return nil
}

// Cancel is the user-initiated path: CAS-guarded against CONFIRMED, then
// locks are released synchronously.
func (s *BookingSaga) Cancel(ctx context.Context, bookingID int64, userID string) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.BelongsToUser(userID) {
		return domain.ErrBookingNotOwned
	}

	if err := s.bookings.CancelWithOutbox(ctx, bookingID, userID); err != nil {
		return err
	}

	s.locker.ReleaseMany(ctx, booking.EventID, booking.SeatIDs, booking.UserID)

	s.log.Info("booking cancelled", "bookingId", bookingID, "userId", userID)
	return nil
}
