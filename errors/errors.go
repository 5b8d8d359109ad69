package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies an application error independently of its HTTP status
type ErrorCode int

// ErrorCode_HTTP_OK is the code of every success envelope
const ErrorCode_HTTP_OK ErrorCode = 200

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_UNAVAILABLE
)

// Analytics
const (
	ErrorCode_CALL_NOT_FOUND ErrorCode = 100 + iota
	ErrorCode_INVALID_DATE_RANGE
	ErrorCode_INVALID_PAYLOAD
)

// Infrastructure
const (
	ErrorCode_DB_QUERY_FAILED ErrorCode = 300 + iota
	ErrorCode_STORAGE_FAILED
	ErrorCode_EXPORT_FAILED
	ErrorCode_EXPORT_UNAVAILABLE
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:            "OK",
	ErrorCode_UNKNOWN:            "UNKNOWN",
	ErrorCode_INTERNAL:           "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:   "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:          "NOT_FOUND",
	ErrorCode_UNAVAILABLE:        "UNAVAILABLE",
	ErrorCode_CALL_NOT_FOUND:     "CALL_NOT_FOUND",
	ErrorCode_INVALID_DATE_RANGE: "INVALID_DATE_RANGE",
	ErrorCode_INVALID_PAYLOAD:    "INVALID_PAYLOAD",
	ErrorCode_DB_QUERY_FAILED:    "DB_QUERY_FAILED",
	ErrorCode_STORAGE_FAILED:     "STORAGE_FAILED",
	ErrorCode_EXPORT_FAILED:      "EXPORT_FAILED",
	ErrorCode_EXPORT_UNAVAILABLE: "EXPORT_UNAVAILABLE",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

// Analytics Errors
func ErrCallNotFound(callID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_CALL_NOT_FOUND,
		Message:  "Call not found",
	}.WithDetail("call_id", callID)
}

func ErrInvalidDateRange(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_DATE_RANGE,
		Message:  "Start date must not be after end date",
	}
}

func ErrInvalidPayload(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid request payload",
	}
}

// Infrastructure Errors
func ErrDBQueryFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Failed to query call data",
	}
}

func ErrStorageFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_STORAGE_FAILED,
		Message:  "Object storage error",
	}
}

func ErrExportFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_EXPORT_FAILED,
		Message:  "Failed to export lag report",
	}
}

func ErrExportUnavailable() AppError {
	return AppError{
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_EXPORT_UNAVAILABLE,
		Message:  "Report export is not configured",
	}
}
