package dto

import (
	"time"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/domain"
)

// TransactionResponse is the public representation of a Transaction.
type TransactionResponse struct {
	ID               string    `json:"id"`
	BookingID        int64     `json:"bookingId"`
	UserID           string    `json:"userId"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	GatewayReference string    `json:"gatewayReference,omitempty"`
	FailureReason    string    `json:"failureReason,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// FromDomain renders a domain.Transaction as its wire representation.
func FromDomain(tx *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               tx.ID,
		BookingID:        tx.BookingID,
		UserID:           tx.UserID,
		Amount:           tx.Amount,
		Currency:         tx.Currency,
		Status:           string(tx.Status),
		GatewayReference: tx.GatewayReference,
		FailureReason:    tx.FailureReason,
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
}

// TransactionListResponse represents a page of transactions.
type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
}
