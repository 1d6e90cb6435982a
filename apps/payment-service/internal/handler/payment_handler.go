package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/domain"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/dto"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/service"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
)

// PaymentHandler exposes the settlement engine's HTTP surface.
type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service, log: logger.Get()}
}

// GetTransaction handles GET /payments/{transactionId}.
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	id := c.Param("transactionId")
	if id == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "transaction id is required"})
		return
	}

	tx, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDomain(tx))
}

// GetUserTransactions handles GET /payments/user/{userId}.
func (h *PaymentHandler) GetUserTransactions(c *gin.Context) {
	userID := c.Param("userId")

	txs, err := h.service.GetByUserID(c.Request.Context(), userID, 20, 0)
	if err != nil {
		writePaymentError(c, err)
		return
	}

	responses := make([]*dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, dto.FromDomain(tx))
	}
	c.JSON(http.StatusOK, dto.TransactionListResponse{Transactions: responses})
}

func writePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrIllegalTransition):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
