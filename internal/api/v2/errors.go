package api

import (
	"crypto/rand"
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bitecast/bitecast-go/internal/errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates an error response with a fresh correlation ID.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a short random identifier for tracking an
// error across logs and responses.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// statusForError maps error categories to HTTP status codes. Anything
// uncategorized is a 500.
func statusForError(err error) int {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound
	}

	var ee *errors.EnhancedError
	if stderrors.As(err, &ee) {
		switch errors.ErrorCategory(ee.GetCategory()) {
		case errors.CategoryValidation:
			return http.StatusBadRequest
		case errors.CategoryNotFound:
			return http.StatusNotFound
		case errors.CategoryConflict:
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

// HandleError builds the error response, logs it with a correlation ID and
// returns the JSON body with the category-derived status code.
func (c *Controller) HandleError(ctx echo.Context, err error, message string) error {
	code := statusForError(err)
	errorResp := NewErrorResponse(err, message, code)

	logArgs := []any{
		"correlation_id", errorResp.CorrelationID,
		"message", message,
		"error", errorResp.Error,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	}
	if code >= http.StatusInternalServerError {
		c.logger.Error("API error", logArgs...)
	}
	if c.apiLogger != nil {
		c.apiLogger.Error("API error", logArgs...)
	}

	return ctx.JSON(code, errorResp)
}

// validationError builds a 400-category error for bad request input.
func validationError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("api").
		Category(errors.CategoryValidation).
		Build()
}

// notFoundError builds a 404-category error.
func notFoundError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("api").
		Category(errors.CategoryNotFound).
		Build()
}
