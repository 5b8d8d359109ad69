package entities

import (
	"fmt"
	"time"
)

// LagType names the pipeline stage a latency sample belongs to
type LagType string

const (
	LagTypeSTT       LagType = "stt"
	LagTypeLLMTTFT   LagType = "llm_ttft"
	LagTypeTTSTTFB   LagType = "tts_ttfb"
	LagTypeE2E       LagType = "e2e_latency"
	LagTypeEndOfTurn LagType = "end_of_turn"
)

// AllLagTypes lists the lag types in the order turns are scanned
var AllLagTypes = []LagType{LagTypeSTT, LagTypeEndOfTurn, LagTypeLLMTTFT, LagTypeTTSTTFB, LagTypeE2E}

// Severity grades a latency against its threshold
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities so callers can keep the worst one
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Thresholds are the latency limits, in seconds, above which a sample is a lag episode
type Thresholds struct {
	E2ELatency         float64 `json:"e2e_latency" envconfig:"E2E_LATENCY" default:"4.0"`
	LLMTTFT            float64 `json:"llm_ttft" envconfig:"LLM_TTFT" default:"3.0"`
	TTSTTFB            float64 `json:"tts_ttfb" envconfig:"TTS_TTFB" default:"0.5"`
	TranscriptionDelay float64 `json:"transcription_delay" envconfig:"TRANSCRIPTION_DELAY" default:"1.5"`
	EndOfTurn          float64 `json:"end_of_turn" envconfig:"END_OF_TURN" default:"2.0"`
}

// DefaultThresholds returns the limits used by the production dashboards
func DefaultThresholds() Thresholds {
	return Thresholds{
		E2ELatency:         4.0,
		LLMTTFT:            3.0,
		TTSTTFB:            0.5,
		TranscriptionDelay: 1.5,
		EndOfTurn:          2.0,
	}
}

// For returns the threshold that applies to the given lag type
func (t Thresholds) For(lagType LagType) float64 {
	switch lagType {
	case LagTypeSTT:
		return t.TranscriptionDelay
	case LagTypeEndOfTurn:
		return t.EndOfTurn
	case LagTypeLLMTTFT:
		return t.LLMTTFT
	case LagTypeTTSTTFB:
		return t.TTSTTFB
	case LagTypeE2E:
		return t.E2ELatency
	default:
		return 0
	}
}

// Validate checks every threshold is positive
func (t Thresholds) Validate() error {
	for _, lt := range AllLagTypes {
		if v := t.For(lt); v <= 0 {
			return fmt.Errorf("%w: threshold %s must be > 0, got %v", ErrInvalidThreshold, lt, v)
		}
	}
	return nil
}

// LagEpisode is a single latency sample that exceeded its threshold
type LagEpisode struct {
	CallID          string    `json:"call_id"`
	UserID          string    `json:"user_id"`
	Timestamp       time.Time `json:"timestamp"`
	ItemID          string    `json:"item_id"`
	LagType         LagType   `json:"lag_type"`
	LagValue        float64   `json:"lag_value"`
	Threshold       float64   `json:"threshold"`
	IsUserInitiated bool      `json:"is_user_initiated"`
}
