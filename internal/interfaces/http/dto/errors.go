package dto

import (
	"net/http"

	"github.com/erp/payments/internal/domain/payment"
)

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeUnauthorized is used when tenant identification is missing or invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
)

// ErrorKindHTTPStatus maps operation error kinds to HTTP status codes
var ErrorKindHTTPStatus = map[payment.ErrorKind]int{
	payment.ErrorKindValidation: http.StatusBadRequest,
	payment.ErrorKindNotFound:   http.StatusNotFound,
	payment.ErrorKindConflict:   http.StatusConflict,
	payment.ErrorKindState:      http.StatusConflict,
	payment.ErrorKindExternal:   http.StatusBadGateway,
}

// GetHTTPStatusForKind returns the HTTP status code for an operation error kind.
// Returns 500 Internal Server Error for unknown kinds.
func GetHTTPStatusForKind(kind payment.ErrorKind) int {
	if status, ok := ErrorKindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NewOperationErrorResponse converts a structured operation error into the
// standard error envelope
func NewOperationErrorResponse(err *payment.Error, requestID string) Response {
	info := &ErrorInfo{
		Code:      err.Code,
		Message:   err.Message,
		Kind:      string(err.Kind),
		RequestID: requestID,
	}
	if err.InvoiceID != nil {
		info.InvoiceID = err.InvoiceID.String()
	}
	if err.RecordID != nil {
		info.RecordID = err.RecordID.String()
	}
	return Response{
		Success: false,
		Error:   info,
	}
}
