package lag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
)

func detailTranscript(t *testing.T) entities.Transcript {
	t.Helper()
	raw := transcriptJSON(t,
		userTurn("u1", map[string]any{"transcription_delay": 2.0}),
		assistantTurn("a1", map[string]any{"e2e_latency": 3.0}),
		map[string]any{"id": "f1", "type": "function_call", "name": "lookup", "arguments": `{"q":"x"}`},
		map[string]any{"id": "f2", "type": "function_call_output", "name": "lookup", "output": "ok"},
		assistantTurn("a2", map[string]any{"e2e_latency": 5.0, "llm_node_ttft": 4.6}),
		assistantTurn("a3", map[string]any{"e2e_latency": 7.0}),
		map[string]any{"id": "h1", "type": "agent_handoff", "new_agent_id": "billing"},
		assistantTurn("a4", nil),
	)
	parsed := ParseTranscript(raw)
	require.True(t, parsed.OK())
	return parsed.Transcript
}

func TestDetailStats(t *testing.T) {
	stats := DetailStats(detailTranscript(t), entities.DefaultThresholds())

	assert.Equal(t, 4, stats.TotalMessages)
	assert.InDelta(t, 5.0, stats.AvgE2E, 1e-9)
	assert.Equal(t, 7.0, stats.MaxE2E)
	assert.Equal(t, 2, stats.HighLatencyCount)
	assert.Equal(t, 1, stats.CriticalCount)
}

func TestDetailStatsEmpty(t *testing.T) {
	assert.Equal(t, CallDetailStats{}, DetailStats(entities.Transcript{}, entities.DefaultThresholds()))
}

func TestTurnSeverity(t *testing.T) {
	th := entities.DefaultThresholds()

	sev, labels := TurnSeverity(nil, th)
	assert.Equal(t, entities.SeverityNormal, sev)
	assert.Empty(t, labels)

	sev, labels = TurnSeverity(&entities.TurnMetrics{E2ELatency: 4.5, LLMNodeTTFT: 4.6}, th)
	assert.Equal(t, entities.SeverityCritical, sev)
	assert.Equal(t, []string{"E2E: 4.50s", "LLM TTFT: 4.60s"}, labels)

	sev, labels = TurnSeverity(&entities.TurnMetrics{TranscriptionDelay: 1.6, TTSNodeTTFB: 9}, th)
	assert.Equal(t, entities.SeverityWarning, sev)
	assert.Equal(t, []string{"STT: 1.60s"}, labels)
}

func TestTurnViews(t *testing.T) {
	views := TurnViews(detailTranscript(t), entities.DefaultThresholds())
	require.Len(t, views, 8)

	assert.Equal(t, entities.RoleUser, views[0].Role)
	assert.Equal(t, "hi", views[0].Text)
	assert.Equal(t, entities.SeverityWarning, views[0].Severity)

	assert.Equal(t, entities.TurnKindFunctionCall, views[2].Type)
	assert.Equal(t, "lookup", views[2].Name)
	assert.Equal(t, `{"q":"x"}`, views[2].Arguments)
	assert.Equal(t, "ok", views[3].Output)

	assert.Equal(t, entities.SeverityCritical, views[4].Severity)
	assert.Equal(t, entities.SeverityCritical, views[5].Severity)
	assert.Equal(t, "billing", views[6].NewAgent)
	assert.Equal(t, entities.SeverityNormal, views[7].Severity)
	assert.Nil(t, views[7].Metrics)
}
