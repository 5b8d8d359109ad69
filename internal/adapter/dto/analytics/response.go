package analytics

import (
	"time"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

// DailyMetricResponse is one day of call volume
type DailyMetricResponse struct {
	Date           string  `json:"date"`
	TotalCalls     int64   `json:"total_calls"`
	WelcomeCalls   int64   `json:"welcome_calls"`
	DailyCalls     int64   `json:"daily_calls"`
	CompletedCalls int64   `json:"completed_calls"`
	CompletionRate float64 `json:"completion_rate"`
	AvgDuration    float64 `json:"avg_duration"`
	TotalDuration  float64 `json:"total_duration"`
	UniqueUsers    int64   `json:"unique_users"`
}

// OverviewResponse is the call volume dashboard payload
type OverviewResponse struct {
	DailyMetrics []DailyMetricResponse `json:"dailyMetrics"`
	Summary      entities.CallSummary  `json:"summary"`
	Thresholds   entities.Thresholds   `json:"thresholds"`
	DateRange    entities.DateRange    `json:"dateRange"`
}

// LagAnalysisResponse is the lag report payload
type LagAnalysisResponse struct {
	LagEpisodes           []entities.LagEpisode             `json:"lagEpisodes"`
	DailyStats            []lag.DailyLagStat                `json:"dailyStats"`
	ComponentBreakdown    lag.ComponentBreakdown            `json:"componentBreakdown"`
	LanguageBreakdown     map[string]lag.ComponentBreakdown `json:"languageBreakdown"`
	Thresholds            entities.Thresholds               `json:"thresholds"`
	DateRange             entities.DateRange                `json:"dateRange"`
	CallsAnalyzed         int                               `json:"callsAnalyzed"`
	TotalEpisodes         int                               `json:"totalEpisodes"`
	EpisodeCounts         map[entities.LagType]int          `json:"episodeCounts"`
	UnreadableTranscripts int                               `json:"unreadableTranscripts"`
	GeneratedAt           time.Time                         `json:"generatedAt"`
	Cached                bool                              `json:"cached"`
}

// ExportResponse locates an exported lag report
type ExportResponse struct {
	ObjectName string    `json:"objectName"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
