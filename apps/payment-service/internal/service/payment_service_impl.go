package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/domain"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/gateway"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/repository"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
)

type paymentServiceImpl struct {
	repo    repository.PaymentRepository
	gateway gateway.PaymentGateway
	config  *PaymentServiceConfig
}

func NewPaymentService(repo repository.PaymentRepository, gw gateway.PaymentGateway, config *PaymentServiceConfig) PaymentService {
	if config == nil {
		config = &PaymentServiceConfig{Currency: "THB"}
	}
	return &paymentServiceImpl{
		repo:    repo,
		gateway: gw,
		config:  config,
	}
}

// ProcessBookingCreated settles a booking exactly once. A losing concurrent
// call, or a replayed event for a booking already settled, returns the
// existing row without a second gateway charge.
func (s *paymentServiceImpl) ProcessBookingCreated(ctx context.Context, bookingID int64, userID string, amount float64, currency string) (*domain.Transaction, error) {
	if currency == "" {
		currency = s.config.Currency
	}

	tx, err := domain.NewTransaction(bookingID, userID, amount, currency)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	stored, created, err := s.repo.CreateIfAbsent(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	if !created {
		logger.Get().Info("booking already settled, skipping charge",
			"bookingId", bookingID, "userId", userID, "status", stored.Status)
		return stored, nil
	}

	chargeReq := &gateway.ChargeRequest{
		PaymentID: stored.ID,
		Amount:    stored.Amount,
		Currency:  stored.Currency,
		Method:    "card",
		CustomerID: userID,
	}

	chargeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	chargeResp, err := s.gateway.Charge(chargeCtx, chargeReq)
	if err != nil {
		if failErr := stored.Fail(err.Error()); failErr != nil {
			return nil, fmt.Errorf("mark failed after gateway error: %w", failErr)
		}
		if updErr := s.repo.UpdateStatusWithOutbox(ctx, stored, s.buildOutboxEvent); updErr != nil {
			return nil, fmt.Errorf("persist failed status: %w", updErr)
		}
		return stored, nil
	}

	if chargeResp.Success {
		if err := stored.Succeed(chargeResp.TransactionID); err != nil {
			return nil, fmt.Errorf("mark succeeded: %w", err)
		}
	} else {
		if err := stored.Fail(chargeResp.FailureReason); err != nil {
			return nil, fmt.Errorf("mark failed: %w", err)
		}
	}

	if err := s.repo.UpdateStatusWithOutbox(ctx, stored, s.buildOutboxEvent); err != nil {
		return nil, fmt.Errorf("persist settlement: %w", err)
	}

	return stored, nil
}

// buildOutboxEvent renders the payment.success or payment.failed row that
// must land in the transactions table's own outbox in the same commit as
// the settlement it announces. tx is the freshly settled Transaction.
func (s *paymentServiceImpl) buildOutboxEvent(tx *domain.Transaction) (*domain.OutboxMessage, error) {
	key := strconv.FormatInt(tx.BookingID, 10)

	if tx.Status == domain.TransactionStatusSuccess {
		event := PaymentSuccess{
			BookingID:        tx.BookingID,
			TransactionID:    tx.ID,
			UserID:           tx.UserID,
			Amount:           tx.Amount,
			GatewayReference: tx.GatewayReference,
			Timestamp:        tx.UpdatedAt,
		}
		return domain.NewOutboxMessage("transaction", tx.ID, TopicPaymentSuccess, TopicPaymentSuccess, key, event, 5)
	}

	event := PaymentFailed{
		BookingID: tx.BookingID,
		UserID:    tx.UserID,
		Reason:    tx.FailureReason,
		Timestamp: tx.UpdatedAt,
	}
	return domain.NewOutboxMessage("transaction", tx.ID, TopicPaymentFailed, TopicPaymentFailed, key, event, 5)
}

func (s *paymentServiceImpl) GetByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.repo.GetByID(ctx, transactionID)
}

func (s *paymentServiceImpl) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Transaction, error) {
	return s.repo.GetByBookingID(ctx, bookingID)
}

func (s *paymentServiceImpl) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

var _ PaymentService = (*paymentServiceImpl)(nil)
