package entities

import (
	"encoding/json"
	"strings"
)

// TurnKind identifies which variant a TurnItem carries
type TurnKind string

const (
	TurnKindMessage            TurnKind = "message"
	TurnKindFunctionCall       TurnKind = "function_call"
	TurnKindFunctionCallOutput TurnKind = "function_call_output"
	TurnKindAgentHandoff       TurnKind = "agent_handoff"
	TurnKindUnknown            TurnKind = "unknown"
)

// Role is the speaker of a message turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TurnMetrics holds per-stage timings in seconds. A zero field means the
// runtime did not report that stage for the turn.
type TurnMetrics struct {
	TranscriptionDelay float64 `json:"transcription_delay,omitempty"`
	EndOfTurnDelay     float64 `json:"end_of_turn_delay,omitempty"`
	LLMNodeTTFT        float64 `json:"llm_node_ttft,omitempty"`
	TTSNodeTTFB        float64 `json:"tts_node_ttfb,omitempty"`
	E2ELatency         float64 `json:"e2e_latency,omitempty"`
	StartedSpeakingAt  float64 `json:"started_speaking_at,omitempty"`
	StoppedSpeakingAt  float64 `json:"stopped_speaking_at,omitempty"`
}

// UnmarshalJSON keeps every numeric field it can read and ignores the rest,
// so one bad value does not discard the whole transcript.
func (m *TurnMetrics) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*m = TurnMetrics{}
		return nil
	}

	m.TranscriptionDelay = numberField(raw, "transcription_delay")
	m.EndOfTurnDelay = numberField(raw, "end_of_turn_delay")
	m.LLMNodeTTFT = numberField(raw, "llm_node_ttft")
	m.TTSNodeTTFB = numberField(raw, "tts_node_ttfb")
	m.E2ELatency = numberField(raw, "e2e_latency")
	m.StartedSpeakingAt = numberField(raw, "started_speaking_at")
	m.StoppedSpeakingAt = numberField(raw, "stopped_speaking_at")
	return nil
}

func numberField(raw map[string]json.RawMessage, key string) float64 {
	v, ok := raw[key]
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0
	}
	return f
}

// MessageTurn is a spoken user or assistant turn
type MessageTurn struct {
	Role                 Role         `json:"role"`
	Content              []string     `json:"content,omitempty"`
	Metrics              *TurnMetrics `json:"metrics,omitempty"`
	Interrupted          bool         `json:"interrupted,omitempty"`
	TranscriptConfidence float64      `json:"transcript_confidence,omitempty"`
}

// Text joins the message content lines
func (m *MessageTurn) Text() string {
	return strings.Join(m.Content, "\n")
}

// FunctionCallTurn is a tool invocation requested by the agent
type FunctionCallTurn struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// FunctionOutputTurn is the result returned by a tool
type FunctionOutputTurn struct {
	Name    string `json:"name"`
	Output  string `json:"output,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
}

// HandoffTurn records control passing between agents
type HandoffTurn struct {
	OldAgentID string `json:"old_agent_id,omitempty"`
	NewAgentID string `json:"new_agent_id"`
}

// TurnItem is one entry of a call transcript. Exactly one of the variant
// pointers is set, selected by Kind; TurnKindUnknown carries none.
type TurnItem struct {
	ID   string
	Kind TurnKind

	Message        *MessageTurn
	FunctionCall   *FunctionCallTurn
	FunctionOutput *FunctionOutputTurn
	Handoff        *HandoffTurn
}

// wireTurnItem is the flat stored shape of a transcript item
type wireTurnItem struct {
	ID                   string          `json:"id"`
	Type                 string          `json:"type"`
	Role                 string          `json:"role,omitempty"`
	Content              json.RawMessage `json:"content,omitempty"`
	Metrics              *TurnMetrics    `json:"metrics,omitempty"`
	Interrupted          bool            `json:"interrupted,omitempty"`
	TranscriptConfidence float64         `json:"transcript_confidence,omitempty"`
	Name                 string          `json:"name,omitempty"`
	Arguments            string          `json:"arguments,omitempty"`
	Output               string          `json:"output,omitempty"`
	IsError              bool            `json:"is_error,omitempty"`
	OldAgentID           string          `json:"old_agent_id,omitempty"`
	NewAgentID           string          `json:"new_agent_id,omitempty"`
}

// UnmarshalJSON decodes the flat stored item into its variant. Items without
// a type but with a role are treated as messages.
func (t *TurnItem) UnmarshalJSON(data []byte) error {
	var w wireTurnItem
	if err := json.Unmarshal(data, &w); err != nil {
		*t = TurnItem{Kind: TurnKindUnknown}
		return nil
	}

	*t = TurnItem{ID: w.ID}
	kind := TurnKind(w.Type)
	if kind == "" && w.Role != "" {
		kind = TurnKindMessage
	}

	switch kind {
	case TurnKindMessage:
		t.Kind = TurnKindMessage
		t.Message = &MessageTurn{
			Role:                 Role(w.Role),
			Content:              decodeContent(w.Content),
			Metrics:              w.Metrics,
			Interrupted:          w.Interrupted,
			TranscriptConfidence: w.TranscriptConfidence,
		}
	case TurnKindFunctionCall:
		t.Kind = TurnKindFunctionCall
		t.FunctionCall = &FunctionCallTurn{Name: w.Name, Arguments: w.Arguments}
	case TurnKindFunctionCallOutput:
		t.Kind = TurnKindFunctionCallOutput
		t.FunctionOutput = &FunctionOutputTurn{Name: w.Name, Output: w.Output, IsError: w.IsError}
	case TurnKindAgentHandoff:
		t.Kind = TurnKindAgentHandoff
		t.Handoff = &HandoffTurn{OldAgentID: w.OldAgentID, NewAgentID: w.NewAgentID}
	default:
		t.Kind = TurnKindUnknown
	}
	return nil
}

// MarshalJSON writes the item back in its flat stored shape
func (t TurnItem) MarshalJSON() ([]byte, error) {
	w := wireTurnItem{ID: t.ID, Type: string(t.Kind)}
	switch {
	case t.Message != nil:
		w.Role = string(t.Message.Role)
		if len(t.Message.Content) > 0 {
			content, err := json.Marshal(t.Message.Content)
			if err != nil {
				return nil, err
			}
			w.Content = content
		}
		w.Metrics = t.Message.Metrics
		w.Interrupted = t.Message.Interrupted
		w.TranscriptConfidence = t.Message.TranscriptConfidence
	case t.FunctionCall != nil:
		w.Name = t.FunctionCall.Name
		w.Arguments = t.FunctionCall.Arguments
	case t.FunctionOutput != nil:
		w.Name = t.FunctionOutput.Name
		w.Output = t.FunctionOutput.Output
		w.IsError = t.FunctionOutput.IsError
	case t.Handoff != nil:
		w.OldAgentID = t.Handoff.OldAgentID
		w.NewAgentID = t.Handoff.NewAgentID
	}
	return json.Marshal(w)
}

// decodeContent accepts either a list of strings or a single string
func decodeContent(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return lines
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

// Transcript is the ordered list of turns of one call
type Transcript struct {
	Items []TurnItem `json:"items"`
}

// Len returns the number of turns, including undecodable ones
func (t Transcript) Len() int {
	return len(t.Items)
}
