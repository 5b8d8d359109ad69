package lag

import (
	"fmt"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
)

// CallDetailStats summarizes assistant responsiveness within one call
type CallDetailStats struct {
	TotalMessages    int     `json:"total_messages"`
	AvgE2E           float64 `json:"avg_e2e"`
	MaxE2E           float64 `json:"max_e2e"`
	HighLatencyCount int     `json:"high_latency_count"`
	CriticalCount    int     `json:"critical_count"`
}

// DetailStats counts assistant messages and grades their e2e latency
func DetailStats(t entities.Transcript, thresholds entities.Thresholds) CallDetailStats {
	var (
		stats CallDetailStats
		sum   float64
		count int
	)
	limit := thresholds.E2ELatency

	for _, item := range t.Items {
		if item.Message == nil || item.Message.Role != entities.RoleAssistant {
			continue
		}
		stats.TotalMessages++

		if item.Message.Metrics == nil || item.Message.Metrics.E2ELatency <= 0 {
			continue
		}
		latency := item.Message.Metrics.E2ELatency
		sum += latency
		count++
		stats.MaxE2E = max(stats.MaxE2E, latency)
		if latency > limit {
			stats.HighLatencyCount++
		}
		if latency > limit*CriticalMultiplier {
			stats.CriticalCount++
		}
	}

	if count > 0 {
		stats.AvgE2E = sum / float64(count)
	}
	return stats
}

// TurnView is a transcript turn prepared for display
type TurnView struct {
	ID        string                `json:"id"`
	Type      entities.TurnKind     `json:"type"`
	Role      entities.Role         `json:"role,omitempty"`
	Text      string                `json:"text,omitempty"`
	Name      string                `json:"name,omitempty"`
	Arguments string                `json:"arguments,omitempty"`
	Output    string                `json:"output,omitempty"`
	NewAgent  string                `json:"new_agent_id,omitempty"`
	Metrics   *entities.TurnMetrics `json:"metrics,omitempty"`
	Severity  entities.Severity     `json:"severity"`
	LagLabels []string              `json:"lag_labels,omitempty"`
}

// TurnSeverity returns the worst grade across e2e, llm ttft and stt delay,
// plus a label for each stage that was not normal.
func TurnSeverity(m *entities.TurnMetrics, thresholds entities.Thresholds) (entities.Severity, []string) {
	worst := entities.SeverityNormal
	if m == nil {
		return worst, nil
	}

	checks := []struct {
		label string
		value float64
		limit float64
	}{
		{"E2E", m.E2ELatency, thresholds.E2ELatency},
		{"LLM TTFT", m.LLMNodeTTFT, thresholds.LLMTTFT},
		{"STT", m.TranscriptionDelay, thresholds.TranscriptionDelay},
	}

	var labels []string
	for _, c := range checks {
		if c.value <= 0 {
			continue
		}
		sev := Classify(c.value, c.limit)
		if sev == entities.SeverityNormal {
			continue
		}
		labels = append(labels, fmt.Sprintf("%s: %.2fs", c.label, c.value))
		if sev.Rank() > worst.Rank() {
			worst = sev
		}
	}
	return worst, labels
}

// TurnViews renders every turn of t, grading message turns
func TurnViews(t entities.Transcript, thresholds entities.Thresholds) []TurnView {
	views := make([]TurnView, 0, len(t.Items))
	for _, item := range t.Items {
		v := TurnView{ID: item.ID, Type: item.Kind, Severity: entities.SeverityNormal}
		switch {
		case item.Message != nil:
			v.Role = item.Message.Role
			v.Text = item.Message.Text()
			v.Metrics = item.Message.Metrics
			v.Severity, v.LagLabels = TurnSeverity(item.Message.Metrics, thresholds)
		case item.FunctionCall != nil:
			v.Name = item.FunctionCall.Name
			v.Arguments = item.FunctionCall.Arguments
		case item.FunctionOutput != nil:
			v.Name = item.FunctionOutput.Name
			v.Output = item.FunctionOutput.Output
		case item.Handoff != nil:
			v.NewAgent = item.Handoff.NewAgentID
		}
		views = append(views, v)
	}
	return views
}
