package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/creatorlens/server/internal/attribution"
	"codeberg.org/creatorlens/server/internal/logger"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.Respond() for errors coming back from services; it picks the
//     status from the error and logs server-side failures
//   - Use errors.BadRequest(), errors.NotFound(), etc. for request problems
//     detected in the handler itself
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Use the typed errors of the attribution package for fetch and persist failures
//   - Do not log errors in non-handler code (avoid double logging)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for binding failures
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: "request validation failed",
		Details: sanitizeError(err),
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 409 conflict error
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "resource conflict"
	}

	c.JSON(http.StatusConflict, ErrorResponse{
		Error:   CodeConflict,
		Message: message,
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// maps a service error to a response
func Respond(c *gin.Context, err error) {
	var (
		fetchErr   *attribution.FetchError
		persistErr *attribution.PersistError
	)

	switch {
	case errors.Is(err, attribution.ErrLockUnavailable):
		Conflict(c, "an attribution run is already in progress")

	case errors.Is(err, attribution.ErrRunNotFound):
		NotFound(c, "attribution run")

	case errors.As(err, &fetchErr):
		logger.ErrorErr(err, "attribution dependency unavailable",
			"path", c.Request.URL.Path,
			"user_id", c.GetString("user_id"),
			"op", fetchErr.Op,
		)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   CodeServiceUnavailable,
			Message: "attribution is temporarily unavailable",
			Details: sanitizeError(err),
		})

	case errors.As(err, &persistErr):
		InternalError(c, "failed to save attribution results", err)

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Error:   CodeTimeout,
			Message: "request timed out",
			Details: sanitizeError(err),
		})

	default:
		info := classifyError(err)
		if info.category == CategoryNotFound {
			NotFound(c, "")
			return
		}
		InternalError(c, "an error occurred", err)
	}
}
