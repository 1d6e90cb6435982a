package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/di"
	"github.com/bennyworkz/ticketblitz/apps/booking-service/internal/saga"
	"github.com/bennyworkz/ticketblitz/pkg/config"
	"github.com/bennyworkz/ticketblitz/pkg/database"
	"github.com/bennyworkz/ticketblitz/pkg/kafka"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
	pkgmiddleware "github.com/bennyworkz/ticketblitz/pkg/middleware"
	pkgredis "github.com/bennyworkz/ticketblitz/pkg/redis"
	"github.com/bennyworkz/ticketblitz/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	logFormat := "json"
	if cfg.IsDevelopment() {
		logFormat = "console"
	}
	if err := logger.Init(&logger.Config{Level: logLevel, Format: logFormat}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("starting booking service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    "booking-service",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Warn("telemetry init failed", "error", err)
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			appLog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	db := mustConnectDatabase(ctx, cfg, appLog)
	if db != nil {
		defer db.Close()
	}

	redisClient := mustConnectRedis(ctx, cfg, appLog)
	if redisClient != nil {
		defer redisClient.Close()
	}

	producer, err := kafka.NewProducer(&kafka.ProducerConfig{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn("kafka producer unavailable", "error", err)
	} else {
		defer producer.Close()
		appLog.Info("kafka producer connected")
	}

	consumer, err := kafka.NewConsumer(ctx, &kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.ConsumerGroup,
		Topics:  []string{saga.TopicPaymentSuccess, saga.TopicPaymentFailed},
	})
	if err != nil {
		appLog.Warn("kafka consumer unavailable", "error", err)
	} else {
		defer consumer.Close()
		appLog.Info("kafka consumer connected")
	}

	container, err := di.NewContainer(ctx, &di.Config{
		DB:                 db,
		Redis:              redisClient,
		Producer:           producer,
		Consumer:           consumer,
		SagaSweepInterval:  cfg.Saga.ExpirySweepInterval,
		SagaSweepBatchSize: cfg.Saga.ExpirySweepBatch,
	})
	if err != nil {
		appLog.Fatal("failed to build dependency graph", "error", err)
	}

	if container.OutboxWorker != nil {
		if err := container.OutboxWorker.Start(ctx); err != nil {
			appLog.Warn("outbox worker failed to start", "error", err)
		}
		defer container.OutboxWorker.Stop()
	}
	if container.Sweeper != nil {
		if err := container.Sweeper.Start(ctx); err != nil {
			appLog.Warn("expiry sweeper failed to start", "error", err)
		}
		defer container.Sweeper.Stop()
	}
	if container.SagaConsumer != nil {
		go func() {
			if err := container.SagaConsumer.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.Error("saga consumer stopped", "error", err)
			}
		}()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware("booking-service"))

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	if container.BookingHandler != nil {
		bookings := router.Group("/bookings")
		{
			if redisClient != nil {
				idem := pkgmiddleware.IdempotencyMiddleware(pkgmiddleware.DefaultIdempotencyConfig(redisClient.Client()))
				bookings.POST("", idem, container.BookingHandler.CreateBooking)
			} else {
				bookings.POST("", container.BookingHandler.CreateBooking)
			}
			bookings.GET("/user/:userId", container.BookingHandler.GetUserBookings)
			bookings.GET("/:id", container.BookingHandler.GetBooking)
			bookings.DELETE("/:id", container.BookingHandler.CancelBooking)
		}
	}

	if container.InventoryHandler != nil {
		inventory := router.Group("/inventory")
		var inventoryMutation gin.HandlerFunc
		if redisClient != nil {
			inventoryMutation = pkgmiddleware.IdempotencyMiddleware(pkgmiddleware.DefaultIdempotencyConfig(redisClient.Client()))
		}
		postMutation := func(relativePath string, handler gin.HandlerFunc) {
			if inventoryMutation != nil {
				inventory.POST(relativePath, inventoryMutation, handler)
			} else {
				inventory.POST(relativePath, handler)
			}
		}
		{
			postMutation("/lock", container.InventoryHandler.Lock)
			postMutation("/lock-multiple", container.InventoryHandler.LockMultiple)
			postMutation("/release", container.InventoryHandler.Release)
			inventory.GET("/check/:eventId/:seatId", container.InventoryHandler.Check)
			inventory.GET("/status/:eventId", container.InventoryHandler.Status)
			postMutation("/tatkal/init/:eventId", container.InventoryHandler.TatkalInit)
			postMutation("/tatkal/reserve/:eventId", container.InventoryHandler.TatkalReserve)
			postMutation("/tatkal/release/:eventId", container.InventoryHandler.TatkalRelease)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLog.Info("booking service listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server forced to shutdown", "error", err)
	}

	appLog.Info("server exited gracefully")
}

func mustConnectDatabase(ctx context.Context, cfg *config.Config, appLog *logger.Logger) *database.PostgresDB {
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.BookingDatabase.Host,
		Port:            cfg.BookingDatabase.Port,
		User:            cfg.BookingDatabase.User,
		Password:        cfg.BookingDatabase.Password,
		Database:        cfg.BookingDatabase.DBName,
		SSLMode:         cfg.BookingDatabase.SSLMode,
		MaxConns:        int32(cfg.BookingDatabase.MaxOpenConns),
		MinConns:        int32(cfg.BookingDatabase.MaxIdleConns),
		MaxConnLifetime: cfg.BookingDatabase.ConnMaxLifetime,
		MaxConnIdleTime: cfg.BookingDatabase.ConnMaxIdleTime,
		MaxRetries:      3,
		RetryInterval:   2 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     "booking-service",
	})
	if err != nil {
		appLog.Warn("database connection failed", "error", err)
		return nil
	}
	appLog.Info("database connected")
	return db
}

func mustConnectRedis(ctx context.Context, cfg *config.Config, appLog *logger.Logger) *pkgredis.Client {
	client, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	})
	if err != nil {
		appLog.Warn("redis connection failed", "error", err)
		return nil
	}
	appLog.Info("redis connected")
	return client
}
