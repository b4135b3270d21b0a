package common

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// MessageResponse is the body returned by operations that have nothing but a
// confirmation to report
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendConflictError sends a conflict error response
func SendConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, CreateErrorResponse("CONFLICT", message, nil))
}

// SendError renders err according to its Outcome. action is used in the
// message of server errors, e.g. "create order".
func SendError(c echo.Context, resource, action string, err error) error {
	switch Classify(err) {
	case OutcomeNotFound:
		return SendNotFoundError(c, resource)
	case OutcomeInvalidInput:
		var ve *ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			return SendValidationError(c, ve.Field, ve.Message)
		}
		return SendClientError(c, err.Error())
	case OutcomeConflict:
		return SendConflictError(c, err.Error())
	default:
		slog.ErrorContext(c.Request().Context(), "request failed",
			"action", action, "error", err)
		return SendServerError(c, fmt.Sprintf("Failed to %s", action))
	}
}

// SendRateLimited sends a too many requests response
func SendRateLimited(c echo.Context, retryAfterSeconds int) error {
	c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSeconds))
	return c.JSON(http.StatusTooManyRequests, CreateErrorResponse("RATE_LIMITED", "Too many requests", nil))
}
