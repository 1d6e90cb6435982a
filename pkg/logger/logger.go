package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the global logger's verbosity and encoding.
type Config struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// Logger wraps a zap.SugaredLogger with the small, string-first method set
// the rest of this module calls.
type Logger struct {
	sugar *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	current *Logger
)

// Init builds the process-wide logger from cfg. Must be called once at
// startup before Get.
func Init(cfg *Config) error {
	var zapLevel zapcore.Level
	switch cfg.Level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}

	mu.Lock()
	current = &Logger{sugar: built.Sugar()}
	mu.Unlock()
	return nil
}

// Get returns the process-wide logger. Falls back to a bare production
// logger if Init was never called, so misconfigured callers don't panic on
// a nil pointer mid-request.
func Get() *Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}

	built, _ := zap.NewProduction()
	return &Logger{sugar: built.Sugar()}
}

// Sync flushes the process-wide logger's buffers. Call via defer in main.
func Sync() error {
	l := Get()
	return l.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.sugar.Fatalw(msg, keysAndValues...)
}

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// With returns a child logger with the given key/value pairs attached to
// every subsequent log line.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}
