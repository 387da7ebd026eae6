// Package logging builds the zap loggers used by the container, the router
// and the application kernel.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config defines the logging configuration.
type Config struct {
	// Level is the log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Format is the log format (json, console)
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
	}
}

// New creates a zap logger from cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return buildZapConfig(cfg).Build()
}

// Must is like New but panics on error.
func Must(cfg *Config) *zap.Logger {
	logger, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return logger
}

func buildZapConfig(cfg *Config) zap.Config {
	var zc zap.Config

	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig = zap.NewProductionEncoderConfig()
		zc.EncoderConfig.TimeKey = "time"
		zc.EncoderConfig.LevelKey = "level"
		zc.EncoderConfig.MessageKey = "msg"
		zc.EncoderConfig.CallerKey = "caller"
		zc.EncoderConfig.StacktraceKey = "stacktrace"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}

	zc.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	return zc
}

// ParseLevel converts a level name to a zapcore.Level. Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ForScope returns a child logger tagged with a scope name and its values.
// Values are logged with zap.Any.
func ForScope(logger *zap.Logger, scope string, values map[string]any) *zap.Logger {
	fields := make([]zap.Field, 0, len(values)+1)
	fields = append(fields, zap.String("scope", scope))
	for k, v := range values {
		fields = append(fields, zap.Any(k, v))
	}
	return logger.With(fields...)
}
