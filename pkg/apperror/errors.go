package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Stable error codes exposed to clients.
const (
	CodeAuthFailed   = "AUTH_FAILED"
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
	CodeRateLimited  = "RATE_LIMITED"
)

// ---- Validation (INVALID_INPUT) ----

// Validation returns an INVALID_INPUT error with a custom message.
func Validation(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidInput, "Invalid amount", http.StatusBadRequest)
}

// ErrInsufficientFunds reports a withdrawal that would overdraw the account.
// Always the validation class, even though it is detected via a conditional write.
func ErrInsufficientFunds() *AppError {
	return New(CodeInvalidInput, "Insufficient balance", http.StatusBadRequest)
}

// ---- Not found (NOT_FOUND) ----

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authentication & authorization (AUTH_FAILED) ----

// ErrAuth returns an AUTH_FAILED error with a custom message.
func ErrAuth(message string) *AppError {
	return New(CodeAuthFailed, message, http.StatusUnauthorized)
}

func ErrInvalidCredentials() *AppError {
	return New(CodeAuthFailed, "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New(CodeAuthFailed, "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate limiting ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Too many requests", http.StatusTooManyRequests)
}

// ---- System & infrastructure (INTERNAL_SERVER_ERROR) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error without leaking its cause to the client.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}
