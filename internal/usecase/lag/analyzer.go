package lag

import "github.com/johnquangdev/voice-call-analytics/internal/domain/entities"

// Dropoff heuristic: a call shorter than DropoffMaxDurationSeconds with fewer
// than DropoffMaxItems turns never engaged the user.
const (
	DropoffMaxDurationSeconds = 30.0
	DropoffMaxItems           = 5
)

// Per-call summary lag categories
const (
	SummaryLagE2E = "e2e"
	SummaryLagLLM = "llm"
)

// Sample is one latency reading taken from a transcript turn
type Sample struct {
	ItemID  string
	LagType entities.LagType
	Value   float64
}

// CallLagSummary is the compact per-call view used by call listings
type CallLagSummary struct {
	MaxLag      float64 `json:"max_lag"`
	LagEpisodes int     `json:"lag_episodes"`
	LagType     string  `json:"lag_type,omitempty"`
}

// CallAnalysis is everything extracted from a single call
type CallAnalysis struct {
	CallID      string
	Date        string
	Language    string
	ItemCount   int
	ParseStatus ParseStatus
	Samples     []Sample
	Episodes    []entities.LagEpisode
	Summary     CallLagSummary
	Dropoff     bool

	e2eSum   float64
	e2eCount int
}

// E2EAverage returns the mean e2e latency of the call, false when it had none
func (a *CallAnalysis) E2EAverage() (float64, bool) {
	if a.e2eCount == 0 {
		return 0, false
	}
	return a.e2eSum / float64(a.e2eCount), true
}

// IsDropoff applies the dropoff heuristic. Calls with unknown or zero
// duration are never dropoffs.
func IsDropoff(durationSeconds *float64, itemCount int) bool {
	if durationSeconds == nil || *durationSeconds <= 0 {
		return false
	}
	return *durationSeconds < DropoffMaxDurationSeconds && itemCount < DropoffMaxItems
}

// TurnSamples extracts the latency readings of one turn. Speech-side stages
// come from user turns, generation stages from assistant turns, and e2e from
// either. Non-positive readings are skipped.
func TurnSamples(item entities.TurnItem) []Sample {
	if item.Message == nil || item.Message.Metrics == nil {
		return nil
	}
	m := item.Message.Metrics
	role := item.Message.Role

	var out []Sample
	push := func(lagType entities.LagType, v float64) {
		if v > 0 {
			out = append(out, Sample{ItemID: item.ID, LagType: lagType, Value: v})
		}
	}

	if role == entities.RoleUser {
		push(entities.LagTypeSTT, m.TranscriptionDelay)
		push(entities.LagTypeEndOfTurn, m.EndOfTurnDelay)
	}
	if role == entities.RoleAssistant {
		push(entities.LagTypeLLMTTFT, m.LLMNodeTTFT)
		push(entities.LagTypeTTSTTFB, m.TTSNodeTTFB)
	}
	push(entities.LagTypeE2E, m.E2ELatency)
	return out
}

// AnalyzeCall parses the call's transcript, extracts its samples and flags
// every sample strictly above its threshold as an episode.
func AnalyzeCall(call *entities.VoiceCall, thresholds entities.Thresholds) CallAnalysis {
	return AnalyzeParsed(call, ParseTranscript(call.Transcript), thresholds)
}

// AnalyzeParsed is AnalyzeCall for a transcript the caller already parsed
func AnalyzeParsed(call *entities.VoiceCall, parsed ParseResult, thresholds entities.Thresholds) CallAnalysis {
	a := CallAnalysis{
		CallID:      call.CallID,
		Date:        call.CallDate(),
		Language:    call.LanguageTag(),
		ItemCount:   parsed.Transcript.Len(),
		ParseStatus: parsed.Status,
	}

	for _, item := range parsed.Transcript.Items {
		for _, s := range TurnSamples(item) {
			a.Samples = append(a.Samples, s)
			if s.LagType == entities.LagTypeE2E {
				a.e2eSum += s.Value
				a.e2eCount++
			}

			threshold := thresholds.For(s.LagType)
			if s.Value <= threshold {
				continue
			}
			a.Episodes = append(a.Episodes, entities.LagEpisode{
				CallID:          call.CallID,
				UserID:          call.UserID,
				Timestamp:       call.InitiatedAt,
				ItemID:          s.ItemID,
				LagType:         s.LagType,
				LagValue:        s.Value,
				Threshold:       threshold,
				IsUserInitiated: call.IsUserInitiated,
			})
			a.Summary.LagEpisodes++

			// headline max tracks e2e and llm only
			var category string
			switch s.LagType {
			case entities.LagTypeE2E:
				category = SummaryLagE2E
			case entities.LagTypeLLMTTFT:
				category = SummaryLagLLM
			default:
				continue
			}
			if s.Value > a.Summary.MaxLag {
				a.Summary.MaxLag = s.Value
				a.Summary.LagType = category
			}
		}
	}

	a.Dropoff = IsDropoff(call.DurationSeconds, a.ItemCount)
	return a
}

// SummarizeCall returns only the per-call summary
func SummarizeCall(call *entities.VoiceCall, thresholds entities.Thresholds) CallLagSummary {
	return AnalyzeCall(call, thresholds).Summary
}
