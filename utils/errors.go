package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

func NewAPIErrorWithDetails(code int, message, details string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

var (
	ErrInvalidRequest = NewAPIError(http.StatusBadRequest, "Invalid request")
	ErrUnauthorized   = NewAPIError(http.StatusUnauthorized, "Unauthorized")
	ErrForbidden      = NewAPIError(http.StatusForbidden, "Forbidden")
	ErrNotFound       = NewAPIError(http.StatusNotFound, "Resource not found")
	ErrConflict       = NewAPIError(http.StatusConflict, "Resource conflict")
	ErrInternalServer = NewAPIError(http.StatusInternalServerError, "Internal server error")
)

var (
	ErrInvoiceNotFound     = NewAPIError(http.StatusNotFound, "Invoice not found")
	ErrUserNotFound        = NewAPIError(http.StatusNotFound, "User not found")
	ErrInvalidLineItems    = NewAPIError(http.StatusBadRequest, "Invalid line items")
	ErrCustomerNameMissing = NewAPIError(http.StatusBadRequest, "Customer name is required for new customer")
	ErrPhoneRegistered     = NewAPIError(http.StatusBadRequest, "Phone number already registered")
	ErrInvalidCredentials  = NewAPIError(http.StatusUnauthorized, "Invalid credentials")
	ErrUsernameMismatch    = NewAPIError(http.StatusForbidden, "Unauthorized")
)

// ErrNoUsername is the migration precondition failure: no resolved username
// means no migration attempt at all.
var ErrNoUsername = NewAPIError(http.StatusPreconditionFailed, "No username resolved")

var (
	ErrTokenExpired      = NewAPIError(http.StatusUnauthorized, "Token expired")
	ErrInvalidToken      = NewAPIError(http.StatusUnauthorized, "Invalid token")
	ErrRateLimitExceeded = NewAPIError(http.StatusTooManyRequests, "Rate limit exceeded")
)

func WrapError(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

func GetHTTPStatusFromError(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return http.StatusInternalServerError
}
