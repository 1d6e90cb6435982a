package dto

import (
	"time"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// BookingResponse is the public representation of a Booking.
type BookingResponse struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"userId"`
	EventID     string     `json:"eventId"`
	SeatIDs     []string   `json:"seatIds"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FromDomain renders a domain.Booking as its wire representation.
func FromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		EventID:     b.EventID,
		SeatIDs:     b.SeatIDs,
		Amount:      b.Amount,
		Currency:    b.Currency,
		Status:      b.Status.String(),
		CreatedAt:   b.CreatedAt,
		ConfirmedAt: b.ConfirmedAt,
		ExpiresAt:   b.ExpiresAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// PaginatedResponse represents a paginated response
type PaginatedResponse struct {
	Data     []*BookingResponse `json:"data"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// LockResponse mirrors {success, owner?, ttlSeconds?} for the lock endpoints.
type LockResponse struct {
	Success    bool   `json:"success"`
	Owner      string `json:"owner,omitempty"`
	TTLSeconds int    `json:"ttlSeconds,omitempty"`
}

// LockCheckResponse mirrors {locked, owner, ttlSeconds}.
type LockCheckResponse struct {
	Locked     bool   `json:"locked"`
	Owner      string `json:"owner,omitempty"`
	TTLSeconds int    `json:"ttlSeconds,omitempty"`
}

// InventoryStatusResponse mirrors {lockedSeatsCount, lockedSeats[], tatkalRemaining, tatkalSoldOut}.
type InventoryStatusResponse struct {
	LockedSeatsCount int      `json:"lockedSeatsCount"`
	LockedSeats      []string `json:"lockedSeats"`
	TatkalRemaining  int      `json:"tatkalRemaining"`
	TatkalSoldOut    bool     `json:"tatkalSoldOut"`
}

// TatkalReserveResponse mirrors {success, remainingSeats}.
type TatkalReserveResponse struct {
	Success        bool `json:"success"`
	RemainingSeats int  `json:"remainingSeats"`
}
