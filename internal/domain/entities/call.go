package entities

import (
	"time"

	"gorm.io/datatypes"
)

// CallType filters calls by whether the caller was onboarding or a returning user
type CallType string

const (
	CallTypeAll     CallType = "all"
	CallTypeWelcome CallType = "welcome"
	CallTypeDaily   CallType = "daily"
)

// UnknownBucket labels calls whose date or language could not be determined
const UnknownBucket = "unknown"

// VoiceCall is one voice session as recorded by the agent runtime
type VoiceCall struct {
	CallID           string     `gorm:"column:call_id;type:varchar(64);primary_key" json:"call_id"`
	UserID           string     `gorm:"type:varchar(64);not null;index" json:"user_id"`
	CallType         string     `gorm:"type:varchar(32)" json:"call_type"`
	Language         string     `gorm:"type:varchar(20);index" json:"language"`
	AgentName        string     `gorm:"type:varchar(100)" json:"agent_name"`
	IsNewUser        bool       `gorm:"default:false" json:"is_new_user"`
	IsUserInitiated  bool       `gorm:"default:false" json:"is_user_initiated"`
	InitiatedAt      time.Time  `gorm:"not null;index" json:"initiated_at"`
	AnsweredAt       *time.Time `json:"answered_at"`
	EndedAt          *time.Time `json:"ended_at"`
	DurationSeconds  *float64   `json:"duration_seconds"`
	Status           string     `gorm:"type:varchar(32);index" json:"status"`
	WelcomeCompleted bool       `gorm:"default:false" json:"welcome_completed"`
	Transcript       string     `gorm:"type:text" json:"transcript"`
	TotalTurns       int        `gorm:"default:0" json:"total_turns"`
	UsageSummary     string     `gorm:"type:text" json:"usage_summary"`
	Actions          string     `gorm:"type:text" json:"actions"`
	Timezone         string     `gorm:"type:varchar(64)" json:"timezone"`
	ScheduledTime    *time.Time `json:"scheduled_time"`
	IngestedAt       time.Time  `gorm:"column:ingested_at;default:now()" json:"_timestamp"`
}

// TableName specifies the table name for VoiceCall
func (VoiceCall) TableName() string {
	return "voice_call_analytics"
}

// CallDate returns the UTC calendar day (YYYY-MM-DD) the call was initiated on
func (c *VoiceCall) CallDate() string {
	if c.InitiatedAt.IsZero() {
		return UnknownBucket
	}
	return c.InitiatedAt.UTC().Format("2006-01-02")
}

// LanguageTag returns the call language, or "unknown" when unset
func (c *VoiceCall) LanguageTag() string {
	if c.Language == "" {
		return UnknownBucket
	}
	return c.Language
}

// Completed reports whether the call finished normally
func (c *VoiceCall) Completed() bool {
	return c.Status == "completed"
}

// DailyCallMetrics is one row of the per-day call volume rollup
type DailyCallMetrics struct {
	Date           datatypes.Date `gorm:"column:date" json:"date"`
	TotalCalls     int64          `gorm:"column:total_calls" json:"total_calls"`
	WelcomeCalls   int64          `gorm:"column:welcome_calls" json:"welcome_calls"`
	DailyCalls     int64          `gorm:"column:daily_calls" json:"daily_calls"`
	CompletedCalls int64          `gorm:"column:completed_calls" json:"completed_calls"`
	AvgDuration    float64        `gorm:"column:avg_duration" json:"avg_duration"`
	TotalDuration  float64        `gorm:"column:total_duration" json:"total_duration"`
	UniqueUsers    int64          `gorm:"column:unique_users" json:"unique_users"`
}

// CallSummary holds range-wide call volume totals
type CallSummary struct {
	TotalCalls     int64   `gorm:"column:total_calls" json:"total_calls"`
	WelcomeCalls   int64   `gorm:"column:welcome_calls" json:"welcome_calls"`
	DailyCalls     int64   `gorm:"column:daily_calls" json:"daily_calls"`
	CompletedCalls int64   `gorm:"column:completed_calls" json:"completed_calls"`
	AvgDuration    float64 `gorm:"column:avg_duration" json:"avg_duration"`
	TotalDuration  float64 `gorm:"column:total_duration" json:"total_duration"`
	UniqueUsers    int64   `gorm:"column:unique_users" json:"unique_users"`
	ShortCalls     int64   `gorm:"column:short_calls" json:"short_calls"`
	LongCalls      int64   `gorm:"column:long_calls" json:"long_calls"`
}
