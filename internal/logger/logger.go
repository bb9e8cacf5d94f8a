package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

const serviceName = "creatorlens"

var (
	// default logger instance
	defaultLogger *slog.Logger
)

// configures the logger from ENVIRONMENT and LOG_LEVEL
func init() {
	Configure(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
}

// rebuilds the default logger for the given environment
// production: JSON on stdout at INFO, otherwise text on stderr at DEBUG
func Configure(environment, level string) {
	var (
		out     io.Writer = os.Stderr
		handler slog.Handler
	)

	opts := &slog.HandlerOptions{Level: parseLevel(level, environment)}

	if environment == "production" {
		out = os.Stdout
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	defaultLogger = slog.New(handler).With("service", serviceName)
}

// replaces the default logger, used by tests to capture output
func SetDefault(l *slog.Logger) {
	defaultLogger = l
}

func parseLevel(level, environment string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if environment == "production" {
		return slog.LevelInfo
	}

	return slog.LevelDebug
}

// returns the default logger instance
func Default() *slog.Logger {
	return defaultLogger
}

// creates a logger with additional context fields
func With(args ...any) *slog.Logger {
	return defaultLogger.With(args...)
}

// returns the logger stored in ctx, or the default one
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// adds logger to context
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

type loggerKey struct{}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// logs an error under the "error" key
func ErrorErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	defaultLogger.Error(msg, args...)
}

// logs and exits (for CLI tools)
func Fatal(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}

// logs the error and exits (for CLI tools)
func FatalErr(err error, msg string, args ...any) {
	args = append(args, "error", err)
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}
