package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	callsUsecase "github.com/johnquangdev/voice-call-analytics/internal/usecase/calls"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

func TestToDailyMetricResponse(t *testing.T) {
	row := entities.DailyCallMetrics{
		Date:           datatypes.Date(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)),
		TotalCalls:     8,
		CompletedCalls: 6,
	}

	resp := ToDailyMetricResponse(row)
	assert.Equal(t, "2025-03-09", resp.Date)
	assert.Equal(t, 75.0, resp.CompletionRate)
	assert.Zero(t, ToDailyMetricResponse(entities.DailyCallMetrics{}).CompletionRate)
}

func TestToLagAnalysisResponseFillsEmptyLists(t *testing.T) {
	resp := ToLagAnalysisResponse(&lag.LagReport{Report: &lag.Report{}})
	require.NotNil(t, resp)
	assert.NotNil(t, resp.LagEpisodes)
	assert.NotNil(t, resp.DailyStats)

	assert.Nil(t, ToLagAnalysisResponse(nil))
	assert.Nil(t, ToLagAnalysisResponse(&lag.LagReport{}))
}

func TestToCallListResponse(t *testing.T) {
	list := &callsUsecase.CallList{
		Date:     "2025-03-09",
		CallType: entities.CallTypeDaily,
		Calls: []callsUsecase.CallListEntry{{
			Call: &entities.VoiceCall{CallID: "c1", UserID: "u1", Transcript: "{}"},
			Lag:  lag.CallLagSummary{MaxLag: 5, LagEpisodes: 2, LagType: lag.SummaryLagE2E},
		}},
		Total: 3,
		Limit: 1,
	}

	resp := ToCallListResponse(list)
	require.Len(t, resp.Calls, 1)
	assert.Equal(t, "c1", resp.Calls[0].CallID)
	assert.Equal(t, entities.UnknownBucket, resp.Calls[0].Language)
	assert.Equal(t, 5.0, resp.Calls[0].MaxLag)
	assert.Equal(t, "daily", resp.CallType)
	assert.True(t, resp.Pagination.HasMore)
}
