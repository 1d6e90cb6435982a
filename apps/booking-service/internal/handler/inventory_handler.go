package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/dto"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/lockstore"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/reservation"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
)

// InventoryHandler exposes the seat lock and Tatkal counter directly: these
// are the two reservation primitives the booking saga sits on top of, and
// clients that only need to hold a seat before a booking exists (e.g. a
// seat-map UI) talk to them without going through the saga at all.
type InventoryHandler struct {
	locker *reservation.SeatLocker
	tatkal *reservation.TatkalCounter
	log    *logger.Logger
}

func NewInventoryHandler(locker *reservation.SeatLocker, tatkal *reservation.TatkalCounter) *InventoryHandler {
	return &InventoryHandler{locker: locker, tatkal: tatkal, log: logger.Get()}
}

// Lock handles POST /inventory/lock.
func (h *InventoryHandler) Lock(c *gin.Context) {
	var req dto.LockSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	ok, err := h.locker.TryLock(c.Request.Context(), req.EventID, req.SeatID, req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, dto.LockResponse{Success: false})
		return
	}
	c.JSON(http.StatusOK, dto.LockResponse{Success: true, Owner: req.UserID, TTLSeconds: int(reservation.SeatLockTTL.Seconds())})
}

// LockMultiple handles POST /inventory/lock-multiple.
func (h *InventoryHandler) LockMultiple(c *gin.Context) {
	var req dto.LockSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	ok, err := h.locker.TryLockMany(c.Request.Context(), req.EventID, req.SeatIDs, req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, dto.LockResponse{Success: false})
		return
	}
	c.JSON(http.StatusOK, dto.LockResponse{Success: true, Owner: req.UserID, TTLSeconds: int(reservation.SeatLockTTL.Seconds())})
}

// Release handles POST /inventory/release.
func (h *InventoryHandler) Release(c *gin.Context) {
	var req dto.ReleaseSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	if len(req.SeatIDs) > 0 {
		h.locker.ReleaseMany(c.Request.Context(), req.EventID, req.SeatIDs, req.UserID)
		c.JSON(http.StatusOK, dto.LockResponse{Success: true})
		return
	}

	ok, err := h.locker.Release(c.Request.Context(), req.EventID, req.SeatID, req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.LockResponse{Success: ok})
}

// Check handles GET /inventory/check/{eventId}/{seatId}.
func (h *InventoryHandler) Check(c *gin.Context) {
	eventID := c.Param("eventId")
	seatID := c.Param("seatId")

	owner, err := h.locker.Owner(c.Request.Context(), eventID, seatID)
	if errors.Is(err, lockstore.ErrNotFound) {
		c.JSON(http.StatusOK, dto.LockCheckResponse{Locked: false})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	ttl, err := h.locker.TTL(c.Request.Context(), eventID, seatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.LockCheckResponse{Locked: true, Owner: owner, TTLSeconds: int(ttl.Seconds())})
}

// Status handles GET /inventory/status/{eventId}.
func (h *InventoryHandler) Status(c *gin.Context) {
	eventID := c.Param("eventId")
	ctx := c.Request.Context()

	lockedSeats, err := h.locker.LockedSeats(ctx, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	remaining, err := h.tatkal.Remaining(ctx, eventID)
	if err != nil && !errors.Is(err, lockstore.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	soldOut, err := h.tatkal.IsSoldOut(ctx, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, dto.InventoryStatusResponse{
		LockedSeatsCount: len(lockedSeats),
		LockedSeats:      lockedSeats,
		TatkalRemaining:  remaining,
		TatkalSoldOut:    soldOut,
	})
}

// TatkalInit handles POST /inventory/tatkal/init/{eventId}?totalSeats=N.
func (h *InventoryHandler) TatkalInit(c *gin.Context) {
	eventID := c.Param("eventId")
	totalSeats, err := strconv.Atoi(c.Query("totalSeats"))
	if err != nil || totalSeats <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "totalSeats must be a positive integer"})
		return
	}

	if err := h.tatkal.Initialize(c.Request.Context(), eventID, totalSeats); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.Status(http.StatusOK)
}

// TatkalReserve handles POST /inventory/tatkal/reserve/{eventId}.
func (h *InventoryHandler) TatkalReserve(c *gin.Context) {
	eventID := c.Param("eventId")
	ctx := c.Request.Context()

	ok, err := h.tatkal.TryReserve(ctx, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	remaining, err := h.tatkal.Remaining(ctx, eventID)
	if err != nil && !errors.Is(err, lockstore.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.TatkalReserveResponse{Success: ok, RemainingSeats: remaining})
}

// TatkalRelease handles POST /inventory/tatkal/release/{eventId}.
func (h *InventoryHandler) TatkalRelease(c *gin.Context) {
	eventID := c.Param("eventId")
	ctx := c.Request.Context()

	if err := h.tatkal.Release(ctx, eventID); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	remaining, err := h.tatkal.Remaining(ctx, eventID)
	if err != nil && !errors.Is(err, lockstore.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.TatkalReserveResponse{Success: true, RemainingSeats: remaining})
}
