package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func isProduction() bool {
	return os.Getenv("ENVIRONMENT") == "production"
}

// analyzes an error and returns its category and sanitized message
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	prod := isProduction()

	// database errors (pgx-specific)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ErrorInfo{CategoryDatabase, ternary(prod, "database operation failed", err.Error())}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorInfo{CategoryNotFound, ternary(prod, "resource not found", err.Error())}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{CategoryTimeout, ternary(prod, "request timed out", err.Error())}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorInfo{CategoryTimeout, ternary(prod, "request canceled", err.Error())}
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline"):
		return ErrorInfo{CategoryTimeout, ternary(prod, "request timed out", err.Error())}

	case strings.Contains(errMsg, "not found") || strings.Contains(errMsg, "no rows"):
		return ErrorInfo{CategoryNotFound, ternary(prod, "resource not found", err.Error())}

	case strings.Contains(errMsg, "database") || strings.Contains(errMsg, "sql") ||
		strings.Contains(errMsg, "postgres") || strings.Contains(errMsg, "pgx"):
		return ErrorInfo{CategoryDatabase, ternary(prod, "database operation failed", err.Error())}

	case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial") || strings.Contains(errMsg, "redis"):
		return ErrorInfo{CategoryNetwork, ternary(prod, "connection error occurred", err.Error())}

	case strings.Contains(errMsg, "validation") || strings.Contains(errMsg, "binding") ||
		strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "required"):
		return ErrorInfo{CategoryValidation, ternary(prod, "validation failed", err.Error())}

	case strings.Contains(errMsg, "unauthorized") || strings.Contains(errMsg, "permission"):
		return ErrorInfo{CategoryAuth, ternary(prod, "permission denied", err.Error())}
	}

	return ErrorInfo{CategoryUnknown, ternary(prod, "an error occurred", err.Error())}
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}

func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}
