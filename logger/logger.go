package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stocks-trader/config"
)

// New builds the process logger for the given environment.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config

	switch env {
	case config.EnvLocal:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case config.EnvDev:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		cfg = zap.NewProductionConfig()
	}

	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.MessageKey = "message"

	return cfg.Build(zap.AddCaller())
}
