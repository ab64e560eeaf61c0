package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness. Ref optionally
// names the offending field, detail id, or product id.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Ref     string      `json:"ref,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on the error code so sentinel comparisons survive Clone/WithRef.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined plumbing errors.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Domain errors for stock mutation and request workflows. All of them are
// recoverable by the caller: state is left untouched when one is returned.
var (
	ErrInvalidAmount      = New("INVALID_AMOUNT", http.StatusBadRequest, "operation amount is invalid")
	ErrInvalidReason      = New("INVALID_REASON", http.StatusBadRequest, "operation reason is required")
	ErrInsufficientStock  = New("INSUFFICIENT_STOCK", http.StatusConflict, "insufficient stock for operation")
	ErrDuplicateProduct   = New("DUPLICATE_PRODUCT", http.StatusConflict, "product already present in request")
	ErrQuantityOutOfRange = New("QUANTITY_OUT_OF_RANGE", http.StatusBadRequest, "requested quantity is out of range")
	ErrInvalidTransition  = New("INVALID_TRANSITION", http.StatusConflict, "request status does not allow this action")
	ErrActionInProgress   = New("ACTION_IN_PROGRESS", http.StatusConflict, "another action is already in flight for this request")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithRef returns a copy of the error carrying the offending field or id.
func WithRef(err *Error, ref string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Ref = ref
	return &clone
}

// WithDetails returns a copy of the error carrying structured per-item
// failure data, e.g. the lines that blocked a multi-detail approval.
func WithDetails(err *Error, details interface{}) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Details = details
	return &clone
}
