package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
)

// Analytics errors
var (
	ErrInvalidCallType   = errors.New("invalid call type")
	ErrCallNotFound      = errors.New("call not found")
	ErrExportUnavailable = errors.New("report export is not configured")
	ErrExportFailed      = errors.New("report export failed")
)

// Infrastructure errors
var (
	ErrQueryFailed   = errors.New("call data query failed")
	ErrStorageFailed = errors.New("object storage request failed")
)
