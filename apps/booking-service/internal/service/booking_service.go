package service

import (
	"context"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/domain"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/dto"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/repository"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/saga"
)

// BookingService is the HTTP-facing wrapper around the booking saga: it
// translates DTOs to domain calls and enforces read-side ownership checks
// the saga itself doesn't need (it only ever acts on bookings it just loaded).
type BookingService interface {
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	GetBooking(ctx context.Context, bookingID int64, userID string) (*dto.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error)
	CancelBooking(ctx context.Context, bookingID int64, userID string) error
}

type bookingService struct {
	saga     *saga.BookingSaga
	bookings repository.BookingRepository
}

func NewBookingService(saga *saga.BookingSaga, bookings repository.BookingRepository) BookingService {
	return &bookingService{saga: saga, bookings: bookings}
}

const defaultCurrency = "USD"

func (s *bookingService) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	booking, err := s.saga.CreateBooking(ctx, req.UserID, req.EventID, req.SeatIDs, req.Amount, currency)
	if err != nil {
		return nil, err
	}
	return dto.FromDomain(booking), nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID int64, userID string) (*dto.BookingResponse, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsToUser(userID) {
		return nil, domain.ErrBookingNotOwned
	}
	return dto.FromDomain(booking), nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	bookings, err := s.bookings.GetByUserID(ctx, userID, pageSize, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		responses[i] = dto.FromDomain(b)
	}

	return &dto.PaginatedResponse{
		Data:     responses,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID int64, userID string) error {
	return s.saga.Cancel(ctx, bookingID, userID)
}

var _ BookingService = (*bookingService)(nil)
