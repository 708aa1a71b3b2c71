// Package utils provides logging and import-file helpers for the stand lead engine.
package utils

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName tags every log entry.
const ServiceName = "stand-lead-engine"

// Logger is the global logger instance.
var Logger *zap.Logger

// InitLogger builds the global logger. Inside Lambda, or with LOG_FORMAT=json,
// it writes JSON to stdout so CloudWatch can index the fields; otherwise it
// writes coloured console output.
func InitLogger(level string) error {
	var cfg zap.Config
	if jsonLogs() {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	fields := map[string]interface{}{"service": ServiceName}
	if stage := os.Getenv("STAGE"); stage != "" {
		fields["stage"] = stage
	}
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		fields["function"] = fn
	}
	cfg.InitialFields = fields

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

func jsonLogs() bool {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return true
	}
	return strings.EqualFold(os.Getenv("LOG_FORMAT"), "json")
}

func parseLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// GetLogger returns the global logger, initializing it at info level if needed.
func GetLogger() *zap.Logger {
	if Logger == nil {
		_ = InitLogger("info")
	}
	return Logger
}

// Component returns the global logger tagged with a component name.
func Component(name string) *zap.Logger {
	return GetLogger().With(zap.String("component", name))
}

// OrDefault returns l, or the named global logger when l is nil.
func OrDefault(l *zap.Logger, name string) *zap.Logger {
	if l != nil {
		return l
	}
	return Component(name)
}

// Sync flushes any buffered log entries.
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
