package repositories

import (
	"context"
	"time"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
)

// CallRepository defines the interface for voice call data access
type CallRepository interface {
	// ListForLagAnalysis retrieves calls with a non-trivial transcript, newest first
	ListForLagAnalysis(ctx context.Context, filters LagAnalysisFilters) ([]entities.VoiceCall, error)

	// ListByDate retrieves the calls initiated on one day and the total matching count
	ListByDate(ctx context.Context, filters CallListFilters) ([]entities.VoiceCall, int64, error)

	// FindByID retrieves a call by its call ID
	FindByID(ctx context.Context, callID string) (*entities.VoiceCall, error)

	// DailyMetrics aggregates call volume per day, newest day first
	DailyMetrics(ctx context.Context, filters DateRangeFilters) ([]entities.DailyCallMetrics, error)

	// Summary aggregates call volume over the whole range
	Summary(ctx context.Context, filters DateRangeFilters) (*entities.CallSummary, error)

	// Upsert stores a call, replacing any row with the same call ID
	Upsert(ctx context.Context, call *entities.VoiceCall) error
}

// DateRangeFilters selects calls initiated between two UTC days, inclusive
type DateRangeFilters struct {
	StartDate    time.Time
	EndDate      time.Time
	ExcludeUsers []string
}

// LagAnalysisFilters represents filter options for the lag engine input
type LagAnalysisFilters struct {
	DateRangeFilters
	Limit int
}

// CallListFilters represents filter options for listing one day of calls
type CallListFilters struct {
	Date         time.Time
	CallType     entities.CallType
	ExcludeUsers []string
	Limit        int
	Offset       int
}
