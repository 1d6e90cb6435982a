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

	"github.com/bennyworkz/ticketblitz/apps/payment-service/internal/di"
	"github.com/bennyworkz/ticketblitz/pkg/config"
	"github.com/bennyworkz/ticketblitz/pkg/database"
	"github.com/bennyworkz/ticketblitz/pkg/kafka"
	"github.com/bennyworkz/ticketblitz/pkg/logger"
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
	appLog.Info("starting payment service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    "payment-service",
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
		Topics:  []string{"booking.created"},
	})
	if err != nil {
		appLog.Warn("kafka consumer unavailable", "error", err)
	} else {
		defer consumer.Close()
		appLog.Info("kafka consumer connected")
	}

	container, err := di.NewContainer(&di.Config{
		DB:       db,
		Redis:    redisClient,
		Producer: producer,
		Consumer: consumer,
		Currency: "THB",
	})
	if err != nil {
		appLog.Fatal("failed to build dependency graph", "error", err)
	}

	if container.BookingConsumer != nil {
		go func() {
			if err := container.BookingConsumer.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.Error("booking consumer stopped", "error", err)
			}
		}()
	}

	if container.OutboxWorker != nil {
		if err := container.OutboxWorker.Start(ctx); err != nil {
			appLog.Warn("outbox worker failed to start", "error", err)
		} else {
			defer container.OutboxWorker.Stop()
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware("payment-service"))

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	if container.PaymentHandler != nil {
		payments := router.Group("/payments")
		{
			payments.GET("/user/:userId", container.PaymentHandler.GetUserTransactions)
			payments.GET("/:transactionId", container.PaymentHandler.GetTransaction)
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
		appLog.Info("payment service listening", "addr", addr)
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
		Host:            cfg.PaymentDatabase.Host,
		Port:            cfg.PaymentDatabase.Port,
		User:            cfg.PaymentDatabase.User,
		Password:        cfg.PaymentDatabase.Password,
		Database:        cfg.PaymentDatabase.DBName,
		SSLMode:         cfg.PaymentDatabase.SSLMode,
		MaxConns:        int32(cfg.PaymentDatabase.MaxOpenConns),
		MinConns:        int32(cfg.PaymentDatabase.MaxIdleConns),
		MaxConnLifetime: cfg.PaymentDatabase.ConnMaxLifetime,
		MaxConnIdleTime: cfg.PaymentDatabase.ConnMaxIdleTime,
		MaxRetries:      3,
		RetryInterval:   2 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     "payment-service",
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
