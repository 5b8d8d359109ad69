package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
)

// callExportSchema describes the JSON array lagctl accepts: one object per
// call, shaped like a row of the call table. The transcript may be the stored
// string or the decoded object.
var callExportSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type":     "object",
		"required": []string{"call_id", "initiated_at"},
		"properties": map[string]any{
			"call_id":           map[string]any{"type": "string", "minLength": 1},
			"user_id":           map[string]any{"type": "string"},
			"initiated_at":      map[string]any{"type": "string", "format": "date-time"},
			"duration_seconds":  map[string]any{"type": []string{"number", "null"}, "minimum": 0},
			"language":          map[string]any{"type": "string"},
			"is_user_initiated": map[string]any{"type": "boolean"},
			"status":            map[string]any{"type": "string"},
			"usage_summary":     map[string]any{"type": "string"},
			"actions":           map[string]any{"type": "string"},
			"transcript":        map[string]any{"type": []string{"string", "object", "null"}},
		},
	},
}

// callRow overrides the transcript so both stored forms decode
type callRow struct {
	entities.VoiceCall
	Transcript json.RawMessage `json:"transcript"`
}

// ValidateCalls checks data against the call export schema
func ValidateCalls(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(callExportSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("invalid call export: %s", strings.Join(errs, ", "))
}

// LoadCalls reads, validates and decodes a call export
func LoadCalls(r io.Reader) ([]entities.VoiceCall, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if err := ValidateCalls(data); err != nil {
		return nil, err
	}

	var rows []callRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}

	calls := make([]entities.VoiceCall, len(rows))
	for i, row := range rows {
		call := row.VoiceCall
		call.Transcript = transcriptText(row.Transcript)
		calls[i] = call
	}
	return calls, nil
}

// transcriptText returns the stored transcript string for either form
func transcriptText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
