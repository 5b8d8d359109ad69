package lag

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
)

func ptr(f float64) *float64 { return &f }

func userTurn(id string, metrics map[string]any) map[string]any {
	return map[string]any{"id": id, "type": "message", "role": "user", "content": []string{"hi"}, "metrics": metrics}
}

func assistantTurn(id string, metrics map[string]any) map[string]any {
	return map[string]any{"id": id, "type": "message", "role": "assistant", "content": []string{"hello"}, "metrics": metrics}
}

func transcriptJSON(t *testing.T, items ...map[string]any) string {
	t.Helper()
	if items == nil {
		items = []map[string]any{}
	}
	data, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}
	return string(data)
}

func newCall(id, initiatedAt string, duration *float64, transcript string) entities.VoiceCall {
	ts, err := time.Parse(time.RFC3339, initiatedAt)
	if err != nil {
		panic(err)
	}
	return entities.VoiceCall{
		CallID:          id,
		UserID:          "user-" + id,
		InitiatedAt:     ts,
		DurationSeconds: duration,
		Language:        "en",
		Transcript:      transcript,
	}
}
