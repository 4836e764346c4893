package utils

import (
	"github.com/greengate/screening/internal/interfaces"
	"go.uber.org/zap"
)

// LoggerAdapter adapts *zap.Logger to interfaces.Logger
type LoggerAdapter struct {
	logger *zap.Logger
}

// NewLoggerAdapter creates a new LoggerAdapter
func NewLoggerAdapter(logger *zap.Logger) interfaces.Logger {
	return &LoggerAdapter{
		logger: logger,
	}
}

func (l *LoggerAdapter) Debug(msg string, fields ...zap.Field) { l.logger.Debug(msg, fields...) }
func (l *LoggerAdapter) Info(msg string, fields ...zap.Field)  { l.logger.Info(msg, fields...) }
func (l *LoggerAdapter) Warn(msg string, fields ...zap.Field)  { l.logger.Warn(msg, fields...) }
func (l *LoggerAdapter) Error(msg string, fields ...zap.Field) { l.logger.Error(msg, fields...) }
func (l *LoggerAdapter) Fatal(msg string, fields ...zap.Field) { l.logger.Fatal(msg, fields...) }

// With returns a new logger with the given fields bound.
func (l *LoggerAdapter) With(fields ...zap.Field) interfaces.Logger {
	return &LoggerAdapter{logger: l.logger.With(fields...)}
}

// Named returns a new logger scoped under the given name.
func (l *LoggerAdapter) Named(name string) interfaces.Logger {
	return &LoggerAdapter{logger: l.logger.Named(name)}
}

// Sync flushes any buffered log entries.
func (l *LoggerAdapter) Sync() error {
	return l.logger.Sync()
}
