package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	"github.com/johnquangdev/voice-call-analytics/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/voice-call-analytics/internal/usecase/errors"
)

// Service defines the interface for call volume analytics
type Service interface {
	// Overview aggregates call volume per day and over the whole range
	Overview(ctx context.Context, query RangeQuery) (*Overview, error)
}

// Ensure AnalyticsService implements Service interface
var _ Service = (*AnalyticsService)(nil)

// RangeQuery selects a range of UTC days
type RangeQuery struct {
	StartDate    string
	EndDate      string
	ExcludeUsers []string
}

// Overview is the call volume dashboard payload
type Overview struct {
	DailyMetrics []entities.DailyCallMetrics
	Summary      entities.CallSummary
	Thresholds   entities.Thresholds
	DateRange    entities.DateRange
}

// Config holds the settings of the overview
type Config struct {
	Thresholds       entities.Thresholds
	DefaultRangeDays int
	ExcludedUsers    []string
}

// AnalyticsService handles call volume analytics
type AnalyticsService struct {
	callRepo repositories.CallRepository
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(callRepo repositories.CallRepository, cfg Config, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		callRepo: callRepo,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Overview aggregates call volume per day and over the whole range
func (s *AnalyticsService) Overview(ctx context.Context, query RangeQuery) (*Overview, error) {
	dr, err := entities.ResolveDateRange(query.StartDate, query.EndDate, s.cfg.DefaultRangeDays, s.now())
	if err != nil {
		return nil, err
	}

	exclude := query.ExcludeUsers
	if len(exclude) == 0 {
		exclude = s.cfg.ExcludedUsers
	}
	filters := repositories.DateRangeFilters{
		StartDate:    dr.Start,
		EndDate:      dr.End,
		ExcludeUsers: exclude,
	}

	daily, err := s.callRepo.DailyMetrics(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load daily metrics: %w", usecaseErrors.ErrQueryFailed, err)
	}

	summary, err := s.callRepo.Summary(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load call summary: %w", usecaseErrors.ErrQueryFailed, err)
	}

	if daily == nil {
		daily = []entities.DailyCallMetrics{}
	}
	out := &Overview{
		DailyMetrics: daily,
		Thresholds:   s.cfg.Thresholds,
		DateRange:    dr,
	}
	if summary != nil {
		out.Summary = *summary
	}

	s.logger.Debug("overview computed",
		zap.String("start_date", dr.StartDate()),
		zap.String("end_date", dr.EndDate()),
		zap.Int("days", len(daily)),
		zap.Int64("calls", out.Summary.TotalCalls),
	)
	return out, nil
}
