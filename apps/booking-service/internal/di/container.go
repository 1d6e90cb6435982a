// Package di wires the booking service's dependency graph by hand:
// repositories onto the database pool, the reservation primitives onto
// Redis, the saga onto both, and handlers onto the saga. No framework,
// following the rest of this codebase's constructor-injection style.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/handler"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/lockstore"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/repository"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/reservation"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/saga"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/service"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/worker"
	"github.com/bennyworkz/ticketblitz/pkg/database"
	"github.com/bennyworkz/ticketblitz/pkg/kafka"
	pkgredis "github.com/bennyworkz/ticketblitz/pkg/redis"
	"github.com/bennyworkz/ticketblitz/pkg/retry"
)

// Config carries everything the container needs beyond the already-open
// infrastructure clients.
type Config struct {
	DB       *database.PostgresDB
	Redis    *pkgredis.Client
	Producer *kafka.Producer
	Consumer *kafka.Consumer

	SagaSweepInterval  time.Duration
	SagaSweepBatchSize int
}

// Container holds every wired component the booking service's main needs
// to start serving traffic and background work.
type Container struct {
	BookingRepo repository.BookingRepository
	OutboxRepo  repository.OutboxRepository

	Locker *reservation.SeatLocker
	Tatkal *reservation.TatkalCounter

	Saga *saga.BookingSaga

	BookingHandler   *handler.BookingHandler
	InventoryHandler *handler.InventoryHandler
	HealthHandler    *handler.HealthHandler

	OutboxWorker *worker.OutboxWorker
	Sweeper      *saga.Sweeper
	SagaConsumer *saga.Consumer
}

// NewContainer builds the full dependency graph. db and redisClient may be
// nil (degraded startup, matching the teacher's "warn and continue" pattern
// at the main.go call site); callers that pass nil for either get a
// Container with the repository/reservation layers left unset, and main.go
// is responsible for not registering routes that need them.
func NewContainer(ctx context.Context, cfg *Config) (*Container, error) {
	c := &Container{
		HealthHandler: handler.NewHealthHandler(cfg.DB, cfg.Redis),
	}

	if cfg.DB == nil || cfg.Redis == nil {
		return c, nil
	}

	outboxRepo := repository.NewPostgresOutboxRepository(cfg.DB.Pool())
	bookingRepo := repository.NewPostgresBookingRepository(cfg.DB.Pool(), outboxRepo)
	c.BookingRepo = bookingRepo
	c.OutboxRepo = outboxRepo

	store, err := lockstore.NewRedisStore(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("init lock store: %w", err)
	}
	c.Locker = reservation.NewSeatLocker(store)
	c.Tatkal = reservation.NewTatkalCounter(store)

	c.Saga = saga.NewBookingSaga(bookingRepo, c.Locker)

	c.BookingHandler = handler.NewBookingHandler(service.NewBookingService(c.Saga, bookingRepo))
	c.InventoryHandler = handler.NewInventoryHandler(c.Locker, c.Tatkal)

	if cfg.Producer != nil {
		c.OutboxWorker = worker.NewOutboxWorker(outboxRepo, cfg.Producer, nil)

		if cfg.Consumer != nil {
			dlqPublisher := retry.NewKafkaDLQPublisher(
				&retry.KafkaProducerAdapter{Producer: cfg.Producer},
				retry.DefaultDLQConfig(),
			)
			c.SagaConsumer = saga.NewConsumer(cfg.Consumer, dlqPublisher, c.Saga)
		}
	}

	c.Sweeper = saga.NewSweeper(bookingRepo, c.Locker, saga.SweeperConfig{
		Interval:  cfg.SagaSweepInterval,
		BatchSize: cfg.SagaSweepBatchSize,
	})

	return c, nil
}
