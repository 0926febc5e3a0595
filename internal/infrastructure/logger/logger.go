package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap with component scoping used across the service.
type Logger struct {
	*zap.Logger
}

// NewLogger creates a logger for the given level and environment. The
// development environment gets console encoding; everything else logs
// structured JSON.
func NewLogger(level, env string) (*Logger, error) {
	config := zap.NewProductionConfig()
	if env == "development" {
		config = zap.NewDevelopmentConfig()
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	zl, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: zl}, nil
}

// WithComponent returns a logger scoped to one component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("component", component))}
}

// WithWallet returns a logger scoped to one focal wallet.
func (l *Logger) WithWallet(address string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("wallet", address))}
}
