package lag

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
)

// ParseStatus tells callers how a stored transcript was recovered
type ParseStatus string

const (
	ParseOK           ParseStatus = "ok"
	ParseEmpty        ParseStatus = "empty"
	ParseMalformed    ParseStatus = "malformed"
	ParseMissingItems ParseStatus = "missing_items"
)

// ParseResult is the outcome of ParseTranscript. Transcript is always usable;
// on anything but ParseOK it has no items.
type ParseResult struct {
	Transcript entities.Transcript
	Status     ParseStatus
}

// OK reports whether the stored form decoded cleanly
func (r ParseResult) OK() bool {
	return r.Status == ParseOK
}

type storedTranscript struct {
	Items json.RawMessage `json:"items"`
}

// ParseTranscript decodes a stored transcript. It accepts any input and never
// fails: blank, invalid or item-less input yields an empty transcript.
func ParseTranscript(raw string) ParseResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ParseResult{Status: ParseEmpty}
	}

	var stored storedTranscript
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return ParseResult{Status: ParseMalformed}
	}

	items := bytes.TrimSpace(stored.Items)
	if len(items) == 0 || bytes.Equal(items, []byte("null")) {
		return ParseResult{Status: ParseMissingItems}
	}

	var turns []entities.TurnItem
	if err := json.Unmarshal(items, &turns); err != nil {
		return ParseResult{Status: ParseMalformed}
	}

	return ParseResult{
		Transcript: entities.Transcript{Items: turns},
		Status:     ParseOK,
	}
}
