package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	"github.com/johnquangdev/voice-call-analytics/internal/domain/repositories"
	ucErrors "github.com/johnquangdev/voice-call-analytics/internal/usecase/errors"
)

// minTranscriptLength skips rows whose transcript cannot hold a single turn
const minTranscriptLength = 10

const volumeColumns = `
	COUNT(*) AS total_calls,
	COUNT(*) FILTER (WHERE is_new_user) AS welcome_calls,
	COUNT(*) FILTER (WHERE NOT is_new_user) AS daily_calls,
	COUNT(*) FILTER (WHERE status = 'completed') AS completed_calls,
	COALESCE(AVG(duration_seconds), 0) AS avg_duration,
	COALESCE(SUM(duration_seconds), 0) AS total_duration,
	COUNT(DISTINCT user_id) AS unique_users`

// callRepository implements the CallRepository interface
type callRepository struct {
	db *gorm.DB
}

// NewCallRepository creates a new call repository
func NewCallRepository(db *gorm.DB) repositories.CallRepository {
	return &callRepository{db: db}
}

// dayBounds returns [start 00:00 UTC, day after end 00:00 UTC)
func dayBounds(start, end time.Time) (time.Time, time.Time) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return from, to
}

func (r *callRepository) rangeQuery(ctx context.Context, filters repositories.DateRangeFilters) *gorm.DB {
	from, to := dayBounds(filters.StartDate, filters.EndDate)
	query := r.db.WithContext(ctx).
		Model(&entities.VoiceCall{}).
		Where("initiated_at >= ? AND initiated_at < ?", from, to)

	if len(filters.ExcludeUsers) > 0 {
		query = query.Where("user_id NOT IN ?", filters.ExcludeUsers)
	}
	return query
}

// ListForLagAnalysis retrieves calls with a non-trivial transcript, newest first
func (r *callRepository) ListForLagAnalysis(ctx context.Context, filters repositories.LagAnalysisFilters) ([]entities.VoiceCall, error) {
	var calls []entities.VoiceCall

	query := r.rangeQuery(ctx, filters.DateRangeFilters).
		Select("call_id", "user_id", "initiated_at", "duration_seconds", "transcript", "status", "language", "is_user_initiated").
		Where("length(transcript) > ?", minTranscriptLength).
		Order("initiated_at DESC")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	if err := query.Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("failed to list calls for lag analysis: %w", err)
	}
	return calls, nil
}

// ListByDate retrieves the calls initiated on one day and the total matching count
func (r *callRepository) ListByDate(ctx context.Context, filters repositories.CallListFilters) ([]entities.VoiceCall, int64, error) {
	var calls []entities.VoiceCall
	var total int64

	query := r.rangeQuery(ctx, repositories.DateRangeFilters{
		StartDate:    filters.Date,
		EndDate:      filters.Date,
		ExcludeUsers: filters.ExcludeUsers,
	})

	switch filters.CallType {
	case entities.CallTypeWelcome:
		query = query.Where("is_new_user = ?", true)
	case entities.CallTypeDaily:
		query = query.Where("is_new_user = ?", false)
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count calls: %w", err)
	}

	query = query.Order("initiated_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&calls).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list calls: %w", err)
	}
	return calls, total, nil
}

// FindByID retrieves a call by its call ID
func (r *callRepository) FindByID(ctx context.Context, callID string) (*entities.VoiceCall, error) {
	var call entities.VoiceCall
	err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		First(&call).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ucErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find call: %w", err)
	}
	return &call, nil
}

// DailyMetrics aggregates call volume per day, newest day first
func (r *callRepository) DailyMetrics(ctx context.Context, filters repositories.DateRangeFilters) ([]entities.DailyCallMetrics, error) {
	var rows []entities.DailyCallMetrics

	err := r.rangeQuery(ctx, filters).
		Select("(initiated_at AT TIME ZONE 'UTC')::date AS date," + volumeColumns).
		Group("date").
		Order("date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily metrics: %w", err)
	}
	return rows, nil
}

// Summary aggregates call volume over the whole range
func (r *callRepository) Summary(ctx context.Context, filters repositories.DateRangeFilters) (*entities.CallSummary, error) {
	var summary entities.CallSummary

	err := r.rangeQuery(ctx, filters).
		Select(volumeColumns+`,
			COUNT(*) FILTER (WHERE duration_seconds < 10) AS short_calls,
			COUNT(*) FILTER (WHERE duration_seconds >= 60) AS long_calls`).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate call summary: %w", err)
	}
	return &summary, nil
}

// Upsert stores a call, replacing any row with the same call ID
func (r *callRepository) Upsert(ctx context.Context, call *entities.VoiceCall) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "call_id"}},
			UpdateAll: true,
		}).
		Create(call).Error
}
