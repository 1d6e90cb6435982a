package service

import (
	"context"
	"sync"
	"testing"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/domain"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/dto"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/lockstore"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/repository"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/reservation"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/saga"
)

// fakeBookingRepository mirrors the CAS semantics the Postgres
// implementation enforces, enough to exercise BookingService end-to-end
// through a real BookingSaga without a database.
type fakeBookingRepository struct {
	mu       sync.Mutex
	bookings map[int64]*domain.Booking
	nextID   int64
}

func newFakeBookingRepository() *fakeBookingRepository {
	return &fakeBookingRepository{bookings: map[int64]*domain.Booking{}}
}

func (r *fakeBookingRepository) CreateWithOutbox(ctx context.Context, booking *domain.Booking, build repository.OutboxBuilder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	booking.ID = r.nextID
	if _, err := build(booking); err != nil {
		return err
	}
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *fakeBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBookingRepository) ConfirmWithOutbox(ctx context.Context, id int64, build repository.OutboxBuilder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if err := b.Confirm(); err != nil {
		return err
	}
	_, err := build(b)
	return err
}

func (r *fakeBookingRepository) Fail(ctx context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if err := b.Fail(); err != nil {
		return nil, err
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepository) CancelWithOutbox(ctx context.Context, id int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if !b.BelongsToUser(userID) {
		return domain.ErrBookingNotOwned
	}
	return b.Cancel()
}

func (r *fakeBookingRepository) ExpireBatch(ctx context.Context, limit int) ([]*domain.Booking, error) {
	return nil, nil
}

func newTestService() (BookingService, *reservation.SeatLocker) {
	repo := newFakeBookingRepository()
	locker := reservation.NewSeatLocker(lockstore.NewMemoryStore())
	return NewBookingService(saga.NewBookingSaga(repo, locker), repo), locker
}

func TestBookingService_CreateBooking_DefaultsCurrency(t *testing.T) {
	svc, locker := newTestService()
	locker.TryLockMany(context.Background(), "event-1", []string{"A1"}, "user-1")

	resp, err := svc.CreateBooking(context.Background(), &dto.CreateBookingRequest{
		UserID:  "user-1",
		EventID: "event-1",
		SeatIDs: []string{"A1"},
		Amount:  150,
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	if resp.Currency != defaultCurrency {
		t.Errorf("Currency = %s, want %s", resp.Currency, defaultCurrency)
	}
	if resp.Status != domain.BookingStatusPending.String() {
		t.Errorf("Status = %s, want %s", resp.Status, domain.BookingStatusPending)
	}
}

func TestBookingService_GetBooking_RejectsOtherUsers(t *testing.T) {
	svc, locker := newTestService()
	locker.TryLockMany(context.Background(), "event-1", []string{"A1"}, "user-1")

	created, err := svc.CreateBooking(context.Background(), &dto.CreateBookingRequest{
		UserID:   "user-1",
		EventID:  "event-1",
		SeatIDs:  []string{"A1"},
		Amount:   100,
		Currency: "THB",
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	if _, err := svc.GetBooking(context.Background(), created.ID, "user-2"); err != domain.ErrBookingNotOwned {
		t.Fatalf("GetBooking() = %v, want %v", err, domain.ErrBookingNotOwned)
	}

	got, err := svc.GetBooking(context.Background(), created.ID, "user-1")
	if err != nil {
		t.Fatalf("GetBooking() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %d, want %d", got.ID, created.ID)
	}
}

func TestBookingService_GetUserBookings_ClampsPageSize(t *testing.T) {
	svc, locker := newTestService()
	locker.TryLockMany(context.Background(), "event-1", []string{"A1"}, "user-1")
	svc.CreateBooking(context.Background(), &dto.CreateBookingRequest{
		UserID: "user-1", EventID: "event-1", SeatIDs: []string{"A1"}, Amount: 100, Currency: "THB",
	})

	page, err := svc.GetUserBookings(context.Background(), "user-1", 0, 1000)
	if err != nil {
		t.Fatalf("GetUserBookings() error = %v", err)
	}
	if page.Page != 1 {
		t.Errorf("Page = %d, want 1", page.Page)
	}
	if page.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20", page.PageSize)
	}
	if len(page.Data) != 1 {
		t.Errorf("len(Data) = %d, want 1", len(page.Data))
	}
}

func TestBookingService_CancelBooking(t *testing.T) {
	svc, locker := newTestService()
	locker.TryLockMany(context.Background(), "event-1", []string{"A1"}, "user-1")
	created, _ := svc.CreateBooking(context.Background(), &dto.CreateBookingRequest{
		UserID: "user-1", EventID: "event-1", SeatIDs: []string{"A1"}, Amount: 100, Currency: "THB",
	})

	if err := svc.CancelBooking(context.Background(), created.ID, "user-1"); err != nil {
		t.Fatalf("CancelBooking() error = %v", err)
	}

	locked, _ := locker.IsLocked(context.Background(), "event-1", "A1")
	if locked {
		t.Error("expected seat lock to be released after cancellation")
	}
}
