package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/domain"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/dto"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/service"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
)

// BookingHandler exposes the booking saga's HTTP surface.
type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service, log: logger.Get()}
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GetBooking handles GET /bookings/{id}?userId=….
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid booking id"})
		return
	}
	userID := c.Query("userId")

	booking, err := h.service.GetBooking(c.Request.Context(), id, userID)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GetUserBookings handles GET /bookings/user/{userId}.
func (h *BookingHandler) GetUserBookings(c *gin.Context) {
	userID := c.Param("userId")
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))

	result, err := h.service.GetUserBookings(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CancelBooking handles DELETE /bookings/{id}?userId=….
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid booking id"})
		return
	}
	userID := c.Query("userId")

	if err := h.service.CancelBooking(c.Request.Context(), id, userID); err != nil {
		writeBookingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeBookingError maps domain errors to HTTP status codes.
func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrSeatsNotOwned), errors.Is(err, domain.ErrBookingNotOwned):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyConfirmed), errors.Is(err, domain.ErrIllegalTransition):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidUserID), errors.Is(err, domain.ErrInvalidEventID),
		errors.Is(err, domain.ErrNoSeatsSelected), errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidBookingStatus):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
