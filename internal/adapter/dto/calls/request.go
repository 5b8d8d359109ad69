package calls

import (
	"github.com/johnquangdev/voice-call-analytics/internal/adapter/dto/analytics"
)

// ListCallsRequest represents query parameters for listing one day of calls
type ListCallsRequest struct {
	Date         string `query:"date" validate:"omitempty,isodate"`
	CallType     string `query:"callType" validate:"omitempty,oneof=all welcome daily"`
	ExcludeUsers string `query:"excludeUsers" validate:"omitempty,max=4096"`
	Limit        int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset       int    `query:"offset" validate:"min=0"`
}

// Users splits the comma separated excludeUsers parameter
func (r ListCallsRequest) Users() []string {
	return analytics.SplitList(r.ExcludeUsers)
}

// GetCallRequest represents the path parameters of the call detail endpoint
type GetCallRequest struct {
	CallID string `param:"callId" validate:"required,max=64"`
}
