package calls

import (
	"time"

	"github.com/johnquangdev/voice-call-analytics/internal/adapter/dto/common"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

// CallResponse represents a call in API responses
type CallResponse struct {
	CallID           string     `json:"call_id"`
	UserID           string     `json:"user_id"`
	CallType         string     `json:"call_type,omitempty"`
	Language         string     `json:"language"`
	AgentName        string     `json:"agent_name,omitempty"`
	IsNewUser        bool       `json:"is_new_user"`
	IsUserInitiated  bool       `json:"is_user_initiated"`
	InitiatedAt      time.Time  `json:"initiated_at"`
	AnsweredAt       *time.Time `json:"answered_at,omitempty"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	DurationSeconds  *float64   `json:"duration_seconds"`
	Status           string     `json:"status"`
	WelcomeCompleted bool       `json:"welcome_completed"`
	TotalTurns       int        `json:"total_turns"`
	Timezone         string     `json:"timezone,omitempty"`
}

// CallListItem is a listed call and its lag summary
type CallListItem struct {
	CallResponse
	MaxLag      float64 `json:"max_lag"`
	LagEpisodes int     `json:"lag_episodes"`
	LagType     string  `json:"lag_type,omitempty"`
}

// CallListResponse represents one page of a day's calls
type CallListResponse struct {
	Date       string                    `json:"date"`
	CallType   string                    `json:"call_type"`
	Calls      []CallListItem            `json:"calls"`
	Pagination common.PaginationResponse `json:"pagination"`
}

// CallDetailResponse represents a call with its graded transcript
type CallDetailResponse struct {
	Call         CallResponse        `json:"call"`
	ParseStatus  string              `json:"parse_status"`
	Stats        lag.CallDetailStats `json:"stats"`
	Lag          lag.CallLagSummary  `json:"lag"`
	Transcript   []lag.TurnView      `json:"transcript"`
	UsageSummary map[string]any      `json:"usage_summary"`
	Actions      map[string]any      `json:"actions"`
}
