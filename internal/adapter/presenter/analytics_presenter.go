package presenter

import (
	"time"

	"github.com/johnquangdev/voice-call-analytics/internal/adapter/dto/analytics"
	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	analyticsUsecase "github.com/johnquangdev/voice-call-analytics/internal/usecase/analytics"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

// ToDailyMetricResponse converts a daily rollup row to its DTO
func ToDailyMetricResponse(m entities.DailyCallMetrics) analytics.DailyMetricResponse {
	var rate float64
	if m.TotalCalls > 0 {
		rate = float64(m.CompletedCalls) / float64(m.TotalCalls) * 100
	}
	return analytics.DailyMetricResponse{
		Date:           time.Time(m.Date).UTC().Format(entities.DateLayout),
		TotalCalls:     m.TotalCalls,
		WelcomeCalls:   m.WelcomeCalls,
		DailyCalls:     m.DailyCalls,
		CompletedCalls: m.CompletedCalls,
		CompletionRate: rate,
		AvgDuration:    m.AvgDuration,
		TotalDuration:  m.TotalDuration,
		UniqueUsers:    m.UniqueUsers,
	}
}

// ToOverviewResponse converts the overview use case output to its DTO
func ToOverviewResponse(o *analyticsUsecase.Overview) *analytics.OverviewResponse {
	if o == nil {
		return nil
	}
	days := make([]analytics.DailyMetricResponse, len(o.DailyMetrics))
	for i, m := range o.DailyMetrics {
		days[i] = ToDailyMetricResponse(m)
	}
	return &analytics.OverviewResponse{
		DailyMetrics: days,
		Summary:      o.Summary,
		Thresholds:   o.Thresholds,
		DateRange:    o.DateRange,
	}
}

// ToLagAnalysisResponse converts a lag report to its DTO
func ToLagAnalysisResponse(r *lag.LagReport) *analytics.LagAnalysisResponse {
	if r == nil || r.Report == nil {
		return nil
	}

	episodes := r.LagEpisodes
	if episodes == nil {
		episodes = []entities.LagEpisode{}
	}
	daily := r.DailyStats
	if daily == nil {
		daily = []lag.DailyLagStat{}
	}

	return &analytics.LagAnalysisResponse{
		LagEpisodes:           episodes,
		DailyStats:            daily,
		ComponentBreakdown:    r.ComponentBreakdown,
		LanguageBreakdown:     r.LanguageBreakdown,
		Thresholds:            r.Thresholds,
		DateRange:             r.DateRange,
		CallsAnalyzed:         r.CallsAnalyzed,
		TotalEpisodes:         r.TotalEpisodes,
		EpisodeCounts:         r.EpisodeCounts,
		UnreadableTranscripts: r.UnreadableTranscripts,
		GeneratedAt:           r.GeneratedAt,
		Cached:                r.Cached,
	}
}

// ToExportResponse converts an export result to its DTO
func ToExportResponse(r *lag.ExportResult) *analytics.ExportResponse {
	if r == nil {
		return nil
	}
	return &analytics.ExportResponse{
		ObjectName: r.ObjectName,
		URL:        r.URL,
		ExpiresAt:  r.ExpiresAt,
	}
}
