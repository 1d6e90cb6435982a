package domain

import (
	"strings"
	"time"
)

// BookingStatus represents the status of a booking in the saga DAG.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusFailed    BookingStatus = "FAILED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

// IsValid reports whether s is a known BookingStatus.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusFailed, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusFailed, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

func (s BookingStatus) String() string {
	return string(s)
}

// Booking is the aggregate root of the booking saga.
type Booking struct {
	ID          int64         `json:"id"`
	UserID      string        `json:"userId"`
	EventID     string        `json:"eventId"`
	SeatIDs     []string      `json:"seatIds"`
	Amount      float64       `json:"amount"`
	Currency    string        `json:"currency"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	ConfirmedAt *time.Time    `json:"confirmedAt,omitempty"`
	ExpiresAt   time.Time     `json:"expiresAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// NewBooking constructs a PENDING booking with a 600s expiry from now.
func NewBooking(userID, eventID string, seatIDs []string, amount float64, currency string) *Booking {
	now := time.Now()
	return &Booking{
		UserID:    userID,
		EventID:   eventID,
		SeatIDs:   seatIDs,
		Amount:    amount,
		Currency:  currency,
		Status:    BookingStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(BookingExpiry),
		UpdatedAt: now,
	}
}

// Validate checks all invariants that must hold before persistence.
func (b *Booking) Validate() error {
	if err := b.ValidateUserID(); err != nil {
		return err
	}
	if err := b.ValidateEventID(); err != nil {
		return err
	}
	if err := b.ValidateSeatIDs(); err != nil {
		return err
	}
	if err := b.ValidateAmount(); err != nil {
		return err
	}
	if err := b.ValidateStatus(); err != nil {
		return err
	}
	return nil
}

func (b *Booking) ValidateUserID() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrInvalidUserID
	}
	return nil
}

func (b *Booking) ValidateEventID() error {
	if strings.TrimSpace(b.EventID) == "" {
		return ErrInvalidEventID
	}
	return nil
}

func (b *Booking) ValidateSeatIDs() error {
	if len(b.SeatIDs) == 0 {
		return ErrNoSeatsSelected
	}
	return nil
}

func (b *Booking) ValidateAmount() error {
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b *Booking) ValidateStatus() error {
	if !b.Status.IsValid() {
		return ErrInvalidBookingStatus
	}
	return nil
}

// IsExpired reports whether expiresAt has passed as of now.
func (b *Booking) IsExpired() bool {
	return time.Now().After(b.ExpiresAt)
}

// BelongsToUser reports ownership, used to reject cross-user reads/cancels.
func (b *Booking) BelongsToUser(userID string) bool {
	return b.UserID == userID
}

// Confirm transitions PENDING -> CONFIRMED. Idempotent replay of PaymentSuccess
// for an already-terminal booking is the caller's responsibility to detect
// (ErrIllegalTransition), not silently swallowed here.
func (b *Booking) Confirm() error {
	if b.Status != BookingStatusPending {
		return ErrIllegalTransition
	}
	now := time.Now()
	b.Status = BookingStatusConfirmed
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return nil
}

// Fail transitions PENDING -> FAILED.
func (b *Booking) Fail() error {
	if b.Status != BookingStatusPending {
		return ErrIllegalTransition
	}
	b.Status = BookingStatusFailed
	b.UpdatedAt = time.Now()
	return nil
}

// Cancel transitions to CANCELLED, rejected once CONFIRMED.
func (b *Booking) Cancel() error {
	if b.Status == BookingStatusConfirmed {
		return ErrAlreadyConfirmed
	}
	if b.Status.IsTerminal() {
		return ErrIllegalTransition
	}
	b.Status = BookingStatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// ExpireNow transitions PENDING -> EXPIRED, used by the sweeper.
func (b *Booking) ExpireNow() error {
	if b.Status != BookingStatusPending {
		return ErrIllegalTransition
	}
	b.Status = BookingStatusExpired
	b.UpdatedAt = time.Now()
	return nil
}
