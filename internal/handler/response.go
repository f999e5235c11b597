package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://spendwise.app/errors/validation"
	ErrorTypeNotFound     = "https://spendwise.app/errors/not-found"
	ErrorTypeUnauthorized = "https://spendwise.app/errors/unauthorized"
	ErrorTypeRateLimit    = "https://spendwise.app/errors/rate-limit"
	ErrorTypeUpstream     = "https://spendwise.app/errors/upstream"
	ErrorTypeInternal     = "https://spendwise.app/errors/internal"
)

func problem(c echo.Context, status int, typ, title, detail string) error {
	return c.JSON(status, ProblemDetails{
		Type:     typ,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail)
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail)
}

// NewTooManyRequestsError is returned when the data service rate-limits us
func NewTooManyRequestsError(c echo.Context, detail string) error {
	return problem(c, http.StatusTooManyRequests, ErrorTypeRateLimit, "Rate Limit Exceeded", detail)
}

// NewBadGatewayError creates a response for a failed data service call
func NewBadGatewayError(c echo.Context, detail string) error {
	return problem(c, http.StatusBadGateway, ErrorTypeUpstream, "Bad Gateway", detail)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail)
}

// handleServiceError maps an error from the tracker to a problem response.
// action completes "Failed to ..." for unexpected errors.
func handleServiceError(c echo.Context, err error, action string) error {
	var (
		verr *domain.ValidationError
		terr *domain.TransportError
		perr *domain.PersistenceError
	)

	switch {
	case errors.As(err, &verr):
		return NewValidationError(c, "Validation failed", toValidationErrors(verr.FieldErrors()))
	case errors.Is(err, domain.ErrExpenseNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return NewUnauthorizedError(c, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrNoActiveSession), errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, "Please log in to continue")
	case errors.As(err, &terr):
		log.Warn().Err(err).Int("upstream_status", terr.Status).Msg("Data service request failed")
		if terr.Status == http.StatusTooManyRequests {
			return NewTooManyRequestsError(c, terr.Message)
		}
		return NewBadGatewayError(c, terr.Message)
	case errors.As(err, &perr):
		log.Error().Err(err).Str("op", perr.Op).Str("key", perr.Key).Msg("Storage failure")
		return NewInternalError(c, "Failed to save data")
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unexpected error")
		return NewInternalError(c, "Failed to "+action)
	}
}

func toValidationErrors(fields []domain.FieldError) []ValidationError {
	result := make([]ValidationError, len(fields))
	for i, f := range fields {
		result[i] = ValidationError{Field: f.Field, Message: f.Message}
	}
	return result
}
