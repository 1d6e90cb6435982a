// Package di wires the payment service's dependency graph by hand: the
// repository onto the database pool, the gateway standalone, the service
// onto both, and the consumer/handler onto the service. No framework,
// mirroring the booking service's constructor-injection style.
package di

import (
	"os"

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/consumer"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/gateway"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/handler"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/repository"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/service"
	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/worker"
	"github.com/bennyworkz/ticketblitz/pkg/database"
	"github.com/bennyworkz/ticketblitz/pkg/kafka"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
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

	Currency string
}

// Container holds every wired component the payment service's main needs
// to start serving traffic and background work.
type Container struct {
	PaymentRepo repository.PaymentRepository
	OutboxRepo  repository.OutboxRepository
	Gateway     gateway.PaymentGateway
	Service     service.PaymentService

	PaymentHandler *handler.PaymentHandler
	HealthHandler  *handler.HealthHandler

	BookingConsumer *consumer.BookingConsumer
	OutboxWorker    *worker.OutboxWorker
}

// NewContainer builds the full dependency graph. db may be nil (degraded
// startup, matching the booking service's "warn and continue" pattern at
// the main.go call site); callers that pass nil get a Container with the
// repository/service layer left unset, and main.go is responsible for not
// registering routes that need them.
func NewContainer(cfg *Config) (*Container, error) {
	c := &Container{
		HealthHandler: handler.NewHealthHandler(cfg.DB, cfg.Redis),
	}

	if cfg.DB == nil {
		return c, nil
	}

	outboxRepo := repository.NewPostgresOutboxRepository(cfg.DB.Pool())
	c.OutboxRepo = outboxRepo
	c.PaymentRepo = repository.NewPostgresPaymentRepository(cfg.DB, outboxRepo)

	gw, err := gateway.NewPaymentGateway(os.Getenv("PAYMENT_GATEWAY_TYPE"), &gateway.GatewayConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Environment:   os.Getenv("STRIPE_ENVIRONMENT"),
	})
	if err != nil {
		logger.Get().Warn("payment gateway init failed, falling back to mock", "error", err)
		gw = gateway.NewMockGateway(nil)
	}
	c.Gateway = gw

	currency := cfg.Currency
	if currency == "" {
		currency = "THB"
	}
	c.Service = service.NewPaymentService(c.PaymentRepo, c.Gateway, &service.PaymentServiceConfig{Currency: currency})

	c.PaymentHandler = handler.NewPaymentHandler(c.Service)

	if cfg.Producer != nil {
		c.OutboxWorker = worker.NewOutboxWorker(outboxRepo, cfg.Producer, nil)
	}

	if cfg.Producer != nil && cfg.Consumer != nil {
		dlqPublisher := retry.NewKafkaDLQPublisher(
			&retry.KafkaProducerAdapter{Producer: cfg.Producer},
			retry.DefaultDLQConfig(),
		)
		c.BookingConsumer = consumer.NewBookingConsumer(cfg.Consumer, dlqPublisher, c.Service)
	}

	return c, nil
}
