package config

import (
	"context"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a zap logger that adds trace and span ids from ctx to each entry.
type Logger struct {
	Logger      *otelzap.Logger
	serviceName string
}

func NewLogger(serviceName string, cfg LogConfig) (*Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	config.Level = zap.NewAtomicLevelAt(level)

	if cfg.File != "" {
		config.OutputPaths = []string{cfg.File}
		config.ErrorOutputPaths = []string{cfg.File}
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return &Logger{
		Logger:      otelzap.New(zapLogger.With(zap.String("service", serviceName))),
		serviceName: serviceName,
	}, nil
}

// NewNopLogger discards everything; used by tests and as a fallback.
func NewNopLogger() *Logger {
	return &Logger{Logger: otelzap.New(zap.NewNop()), serviceName: "nop"}
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func (l *Logger) DebugWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Logger.Ctx(ctx).Debug(msg, fields...)
}

func (l *Logger) InfoWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Logger.Ctx(ctx).Info(msg, fields...)
}

func (l *Logger) ErrorWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Logger.Ctx(ctx).Error(msg, fields...)
}

func LogError(ctx context.Context, logger *Logger, err error, msg string, fields ...zap.Field) {
	if logger == nil {
		return
	}
	logger.ErrorWithTrace(ctx, msg, append(fields, zap.Error(err))...)
}

func LogInfo(ctx context.Context, logger *Logger, msg string, fields ...zap.Field) {
	if logger == nil {
		return
	}
	logger.InfoWithTrace(ctx, msg, fields...)
}
