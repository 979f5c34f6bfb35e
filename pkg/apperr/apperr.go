package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a classified application error. Code identifies the failure
// class, Status is the HTTP status it maps to, Cause carries the wrapped
// underlying error.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so sentinel comparisons survive wrapping and
// message customization.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrForbidden      = &AppError{Code: "FORBIDDEN", Message: "Insufficient privilege", Status: http.StatusForbidden}
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", Status: http.StatusBadRequest}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "Conflict", Status: http.StatusConflict}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrPartialFailure = &AppError{Code: "PARTIAL_FAILURE", Message: "Mutation partially applied", Status: http.StatusInternalServerError}
	ErrTimeout        = &AppError{Code: "TIMEOUT", Message: "Operation timed out", Status: http.StatusGatewayTimeout}
	ErrUpstream       = &AppError{Code: "UPSTREAM_FAILURE", Message: "Backing store error", Status: http.StatusBadGateway}
	ErrUnknown        = &AppError{Code: "UNKNOWN", Message: "Internal server error", Status: http.StatusInternalServerError}
)

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: ErrUnauthorized.Code, Message: message, Status: ErrUnauthorized.Status}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: ErrForbidden.Code, Message: message, Status: ErrForbidden.Status}
}

func NewInvalidInput(message string) *AppError {
	return &AppError{Code: ErrInvalidInput.Code, Message: message, Status: ErrInvalidInput.Status}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: ErrConflict.Code, Message: message, Status: ErrConflict.Status}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: ErrNotFound.Code, Message: message, Status: ErrNotFound.Status}
}

// NewPartialFailure reports a multi-step mutation that succeeded partway.
// The message must carry enough context (e.g. the created identity id) for
// an operator to reconcile manually.
func NewPartialFailure(message string, cause error) *AppError {
	return &AppError{Code: ErrPartialFailure.Code, Message: message, Status: ErrPartialFailure.Status, Cause: cause}
}

func NewTimeout(message string) *AppError {
	return &AppError{Code: ErrTimeout.Code, Message: message, Status: ErrTimeout.Status}
}

func NewUpstream(message string, cause error) *AppError {
	return &AppError{Code: ErrUpstream.Code, Message: message, Status: ErrUpstream.Status, Cause: cause}
}

func NewUnknown(message string, cause error) *AppError {
	return &AppError{Code: ErrUnknown.Code, Message: message, Status: ErrUnknown.Status, Cause: cause}
}

// Status returns the HTTP status for err, defaulting to 500 for
// unclassified errors.
func Status(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// Message returns the user-facing message for err without leaking
// internal error chains for unclassified failures.
func Message(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Internal server error"
}
