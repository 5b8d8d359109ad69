package entities

import "errors"

// Domain errors
var (
	// Call errors
	ErrCallNotFound = errors.New("call not found")

	// Analytics errors
	ErrInvalidThreshold = errors.New("invalid lag threshold")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidDateRange = errors.New("start date is after end date")

	// Generic errors
	ErrInvalidRequest = errors.New("invalid request")
)
