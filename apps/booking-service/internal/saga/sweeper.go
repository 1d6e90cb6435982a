package saga

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/repository"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/reservation"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
)

// SweeperConfig controls how often expired PENDING bookings are reclaimed
// and how many are swept per tick.
type SweeperConfig struct {
	Interval  time.Duration
	BatchSize int
}

// Sweeper periodically expires PENDING bookings whose hold has outlived
// BOOKING_EXPIRY and releases their seat locks, so a customer who abandons
// checkout doesn't keep seats off sale until the lock TTL happens to also
// expire.
type Sweeper struct {
	bookings repository.BookingRepository
	locker   *reservation.SeatLocker
	config   SweeperConfig
	log      *logger.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func NewSweeper(bookings repository.BookingRepository, locker *reservation.SeatLocker, config SweeperConfig) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = 60 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	return &Sweeper{
		bookings: bookings,
		locker:   locker,
		config:   config,
		log:      logger.Get(),
		stopCh:   make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("sweeper already running")
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info("starting booking expiry sweeper", "interval", s.config.Interval, "batchSize", s.config.BatchSize)

	s.wg.Add(1)
	go s.run(ctx)
	return nil
}

func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.log.Info("booking expiry sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs a single pass: expire a batch, then release the seat locks of
// whatever the repository actually transitioned. ExpireBatch already
// CAS-guards against a booking that was confirmed or cancelled concurrently,
// so every booking it returns is safe to release here.
func (s *Sweeper) sweep(ctx context.Context) {
	expired, err := s.bookings.ExpireBatch(ctx, s.config.BatchSize)
	if err != nil {
		s.log.Error("expiry sweep failed", "error", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	for _, b := range expired {
		s.locker.ReleaseMany(ctx, b.EventID, b.SeatIDs, b.UserID)
		s.log.Info("expired booking swept", "bookingId", b.ID, "seatCount", len(b.SeatIDs))
	}
}
