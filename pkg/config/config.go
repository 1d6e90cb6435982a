package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App             AppConfig      `mapstructure:"app"`
	Server          ServerConfig   `mapstructure:"server"`
	BookingDatabase DatabaseConfig `mapstructure:"booking_database"` // Booking service database
	PaymentDatabase DatabaseConfig `mapstructure:"payment_database"` // Payment service database
	Redis           RedisConfig    `mapstructure:"redis"`
	Kafka           KafkaConfig    `mapstructure:"kafka"`
	Saga            SagaConfig     `mapstructure:"saga"`
	OTel            OTelConfig     `mapstructure:"otel"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka/Redpanda connection settings
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	ClientID      string   `mapstructure:"client_id"`
}

// SagaConfig holds the booking saga's timing parameters.
type SagaConfig struct {
	BookingExpiry       time.Duration `mapstructure:"booking_expiry"`
	ExpirySweepInterval time.Duration `mapstructure:"expiry_sweep_interval"`
	ExpirySweepBatch    int           `mapstructure:"expiry_sweep_batch"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	// Set config file
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// Read from .env file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithPath loads configuration from a specific path
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "ticketblitz")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	// Booking Database (booking-service)
	v.SetDefault("BOOKING_DATABASE_HOST", "localhost")
	v.SetDefault("BOOKING_DATABASE_PORT", 5432)
	v.SetDefault("BOOKING_DATABASE_USER", "postgres")
	v.SetDefault("BOOKING_DATABASE_PASSWORD", "postgres")
	v.SetDefault("BOOKING_DATABASE_DBNAME", "booking_db")
	v.SetDefault("BOOKING_DATABASE_SSLMODE", "disable")
	v.SetDefault("BOOKING_DATABASE_MAX_OPEN_CONNS", 100)
	v.SetDefault("BOOKING_DATABASE_MAX_IDLE_CONNS", 10)
	v.SetDefault("BOOKING_DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("BOOKING_DATABASE_CONN_MAX_IDLE_TIME", "30m")

	// Payment Database (payment-service)
	v.SetDefault("PAYMENT_DATABASE_HOST", "localhost")
	v.SetDefault("PAYMENT_DATABASE_PORT", 5432)
	v.SetDefault("PAYMENT_DATABASE_USER", "postgres")
	v.SetDefault("PAYMENT_DATABASE_PASSWORD", "postgres")
	v.SetDefault("PAYMENT_DATABASE_DBNAME", "payment_db")
	v.SetDefault("PAYMENT_DATABASE_SSLMODE", "disable")
	v.SetDefault("PAYMENT_DATABASE_MAX_OPEN_CONNS", 100)
	v.SetDefault("PAYMENT_DATABASE_MAX_IDLE_CONNS", 10)
	v.SetDefault("PAYMENT_DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("PAYMENT_DATABASE_CONN_MAX_IDLE_TIME", "30m")

	// Redis defaults
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 100)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// Kafka defaults
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CONSUMER_GROUP", "ticketblitz")
	v.SetDefault("KAFKA_CLIENT_ID", "ticketblitz")

	// Saga defaults
	v.SetDefault("SAGA_BOOKING_EXPIRY", "600s")
	v.SetDefault("SAGA_EXPIRY_SWEEP_INTERVAL", "60s")
	v.SetDefault("SAGA_EXPIRY_SWEEP_BATCH", 100)

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", true)
	v.SetDefault("OTEL_SERVICE_NAME", "ticketblitz")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
}

func bindConfig(v *viper.Viper, cfg *Config) error {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")

	// Booking Database (booking-service)
	cfg.BookingDatabase.Host = v.GetString("BOOKING_DATABASE_HOST")
	cfg.BookingDatabase.Port = v.GetInt("BOOKING_DATABASE_PORT")
	cfg.BookingDatabase.User = v.GetString("BOOKING_DATABASE_USER")
	cfg.BookingDatabase.Password = v.GetString("BOOKING_DATABASE_PASSWORD")
	cfg.BookingDatabase.DBName = v.GetString("BOOKING_DATABASE_DBNAME")
	cfg.BookingDatabase.SSLMode = v.GetString("BOOKING_DATABASE_SSLMODE")
	cfg.BookingDatabase.MaxOpenConns = v.GetInt("BOOKING_DATABASE_MAX_OPEN_CONNS")
	cfg.BookingDatabase.MaxIdleConns = v.GetInt("BOOKING_DATABASE_MAX_IDLE_CONNS")
	cfg.BookingDatabase.ConnMaxLifetime = v.GetDuration("BOOKING_DATABASE_CONN_MAX_LIFETIME")
	cfg.BookingDatabase.ConnMaxIdleTime = v.GetDuration("BOOKING_DATABASE_CONN_MAX_IDLE_TIME")

	// Payment Database (payment-service)
	cfg.PaymentDatabase.Host = v.GetString("PAYMENT_DATABASE_HOST")
	cfg.PaymentDatabase.Port = v.GetInt("PAYMENT_DATABASE_PORT")
	cfg.PaymentDatabase.User = v.GetString("PAYMENT_DATABASE_USER")
	cfg.PaymentDatabase.Password = v.GetString("PAYMENT_DATABASE_PASSWORD")
	cfg.PaymentDatabase.DBName = v.GetString("PAYMENT_DATABASE_DBNAME")
	cfg.PaymentDatabase.SSLMode = v.GetString("PAYMENT_DATABASE_SSLMODE")
	cfg.PaymentDatabase.MaxOpenConns = v.GetInt("PAYMENT_DATABASE_MAX_OPEN_CONNS")
	cfg.PaymentDatabase.MaxIdleConns = v.GetInt("PAYMENT_DATABASE_MAX_IDLE_CONNS")
	cfg.PaymentDatabase.ConnMaxLifetime = v.GetDuration("PAYMENT_DATABASE_CONN_MAX_LIFETIME")
	cfg.PaymentDatabase.ConnMaxIdleTime = v.GetDuration("PAYMENT_DATABASE_CONN_MAX_IDLE_TIME")

	// Redis
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// Kafka
	brokersStr := v.GetString("KAFKA_BROKERS")
	cfg.Kafka.Brokers = strings.Split(brokersStr, ",")
	cfg.Kafka.ConsumerGroup = v.GetString("KAFKA_CONSUMER_GROUP")
	cfg.Kafka.ClientID = v.GetString("KAFKA_CLIENT_ID")

	// Saga
	cfg.Saga.BookingExpiry = v.GetDuration("SAGA_BOOKING_EXPIRY")
	cfg.Saga.ExpirySweepInterval = v.GetDuration("SAGA_EXPIRY_SWEEP_INTERVAL")
	cfg.Saga.ExpirySweepBatch = v.GetInt("SAGA_EXPIRY_SWEEP_BATCH")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	return nil
}

// ValidateBookingDatabase validates booking database configuration
func (c *Config) ValidateBookingDatabase() error {
	if c.BookingDatabase.Host == "" {
		return fmt.Errorf("BOOKING_DATABASE_HOST is required")
	}
	if c.BookingDatabase.DBName == "" {
		return fmt.Errorf("BOOKING_DATABASE_DBNAME is required")
	}
	return nil
}

// ValidatePaymentDatabase validates payment database configuration
func (c *Config) ValidatePaymentDatabase() error {
	if c.PaymentDatabase.Host == "" {
		return fmt.Errorf("PAYMENT_DATABASE_HOST is required")
	}
	if c.PaymentDatabase.DBName == "" {
		return fmt.Errorf("PAYMENT_DATABASE_DBNAME is required")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
