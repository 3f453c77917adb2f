package payment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorKind classifies operation-boundary failures for callers.
// Only CONFLICT errors are safe to retry, and retry is always the
// caller's decision.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "VALIDATION" // Bad request shape or values; never retried
	ErrorKindConflict   ErrorKind = "CONFLICT"   // Lock timeout or concurrent mutation; retryable
	ErrorKindState      ErrorKind = "STATE"      // Transition not allowed from the current status
	ErrorKindNotFound   ErrorKind = "NOT_FOUND"  // Unknown invoice or record
	ErrorKindExternal   ErrorKind = "EXTERNAL"   // Accounting service failure; rolls back the caller
)

// Error is a structured operation error carrying the failure kind and the
// affected entity, so callers never have to parse messages
type Error struct {
	Kind      ErrorKind  `json:"kind"`
	Code      string     `json:"code"`
	Message   string     `json:"message"`
	InvoiceID *uuid.UUID `json:"invoice_id,omitempty"`
	RecordID  *uuid.UUID `json:"record_id,omitempty"`
	cause     error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.InvoiceID != nil:
		return fmt.Sprintf("%s: %s (invoice %s)", e.Code, e.Message, e.InvoiceID)
	case e.RecordID != nil:
		return fmt.Sprintf("%s: %s (record %s)", e.Code, e.Message, e.RecordID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// WithInvoice attaches the affected invoice ID
func (e *Error) WithInvoice(id uuid.UUID) *Error {
	e.InvoiceID = &id
	return e
}

// WithRecord attaches the affected record ID
func (e *Error) WithRecord(id uuid.UUID) *Error {
	e.RecordID = &id
	return e
}

// WithCause attaches the underlying error for wrapping
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// NewValidationError creates a VALIDATION error
func NewValidationError(code, message string) *Error {
	return &Error{Kind: ErrorKindValidation, Code: code, Message: message}
}

// NewConflictError creates a CONFLICT error
func NewConflictError(code, message string) *Error {
	return &Error{Kind: ErrorKindConflict, Code: code, Message: message}
}

// NewStateError creates a STATE error
func NewStateError(code, message string) *Error {
	return &Error{Kind: ErrorKindState, Code: code, Message: message}
}

// NewNotFoundError creates a NOT_FOUND error
func NewNotFoundError(code, message string) *Error {
	return &Error{Kind: ErrorKindNotFound, Code: code, Message: message}
}

// NewExternalError creates an EXTERNAL error
func NewExternalError(code, message string) *Error {
	return &Error{Kind: ErrorKindExternal, Code: code, Message: message}
}

// AsError extracts a *Error from an error chain
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the error kind, or empty string for foreign errors
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}
