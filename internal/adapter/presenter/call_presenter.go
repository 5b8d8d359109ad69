package presenter

import (
	"github.com/johnquangdev/voice-call-analytics/internal/adapter/dto/calls"
	"github.com/johnquangdev/voice-call-analytics/internal/adapter/dto/common"
	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	callsUsecase "github.com/johnquangdev/voice-call-analytics/internal/usecase/calls"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

// ToCallResponse converts a VoiceCall entity to CallResponse DTO. The raw
// transcript is left out; the detail endpoint renders it turn by turn.
func ToCallResponse(c *entities.VoiceCall) calls.CallResponse {
	if c == nil {
		return calls.CallResponse{}
	}
	return calls.CallResponse{
		CallID:           c.CallID,
		UserID:           c.UserID,
		CallType:         c.CallType,
		Language:         c.LanguageTag(),
		AgentName:        c.AgentName,
		IsNewUser:        c.IsNewUser,
		IsUserInitiated:  c.IsUserInitiated,
		InitiatedAt:      c.InitiatedAt,
		AnsweredAt:       c.AnsweredAt,
		EndedAt:          c.EndedAt,
		DurationSeconds:  c.DurationSeconds,
		Status:           c.Status,
		WelcomeCompleted: c.WelcomeCompleted,
		TotalTurns:       c.TotalTurns,
		Timezone:         c.Timezone,
	}
}

// ToCallListResponse converts one page of calls to CallListResponse
func ToCallListResponse(l *callsUsecase.CallList) *calls.CallListResponse {
	if l == nil {
		return nil
	}
	items := make([]calls.CallListItem, len(l.Calls))
	for i, entry := range l.Calls {
		items[i] = calls.CallListItem{
			CallResponse: ToCallResponse(entry.Call),
			MaxLag:       entry.Lag.MaxLag,
			LagEpisodes:  entry.Lag.LagEpisodes,
			LagType:      entry.Lag.LagType,
		}
	}
	return &calls.CallListResponse{
		Date:       l.Date,
		CallType:   string(l.CallType),
		Calls:      items,
		Pagination: common.NewPagination(l.Limit, l.Offset, len(items), l.Total),
	}
}

// ToCallDetailResponse converts a call detail to CallDetailResponse
func ToCallDetailResponse(d *callsUsecase.CallDetail) *calls.CallDetailResponse {
	if d == nil {
		return nil
	}
	turns := d.Turns
	if turns == nil {
		turns = []lag.TurnView{}
	}
	return &calls.CallDetailResponse{
		Call:         ToCallResponse(d.Call),
		ParseStatus:  string(d.ParseStatus),
		Stats:        d.Stats,
		Lag:          d.Summary,
		Transcript:   turns,
		UsageSummary: d.UsageSummary,
		Actions:      d.Actions,
	}
}
