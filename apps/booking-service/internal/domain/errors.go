package domain

import (
	"errors"
	"time"
)

// BookingExpiry is the TTL from creation after which a PENDING booking
// becomes eligible for the expiry sweeper.
const BookingExpiry = 600 * time.Second

// ExpirySweepInterval is the sweeper's polling cadence.
const ExpirySweepInterval = 60 * time.Second

var (
	// Booking errors
	ErrBookingNotFound      = errors.New("booking not found")
	ErrBookingAlreadyExists = errors.New("booking already exists")
	ErrInvalidBookingStatus = errors.New("invalid booking status")
	ErrIllegalTransition    = errors.New("illegal booking state transition")
	ErrAlreadyConfirmed     = errors.New("booking already confirmed")
	ErrBookingNotOwned      = errors.New("booking does not belong to requesting user")

	// Validation errors
	ErrInvalidUserID   = errors.New("invalid user id")
	ErrInvalidEventID  = errors.New("invalid event id")
	ErrNoSeatsSelected = errors.New("no seats selected")
	ErrInvalidAmount   = errors.New("invalid amount")

	// Reservation-engine errors surfaced to the saga
	ErrSeatsNotOwned = errors.New("seats not owned by requesting user")
)
