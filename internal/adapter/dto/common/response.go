package common

import "time"

// PaginationResponse represents limit/offset pagination metadata
type PaginationResponse struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
}

// NewPagination builds pagination metadata for one page of results
func NewPagination(limit, offset, returned int, total int64) PaginationResponse {
	return PaginationResponse{
		Limit:      limit,
		Offset:     offset,
		TotalItems: total,
		HasMore:    int64(offset+returned) < total,
	}
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status      string            `json:"status"`
	Environment string            `json:"environment"`
	Time        time.Time         `json:"time"`
	Checks      map[string]string `json:"checks,omitempty"`
}
