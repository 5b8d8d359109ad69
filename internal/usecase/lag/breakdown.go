package lag

// StageStats summarizes one pipeline stage
type StageStats struct {
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Count int     `json:"count"`
}

// ShareStats is a stage that is also reported as a share of e2e latency
type ShareStats struct {
	StageStats
	PctOfE2E float64 `json:"pctOfE2E"`
}

// OtherStats is the part of e2e latency not explained by llm and tts
type OtherStats struct {
	Avg      float64 `json:"avg"`
	PctOfE2E float64 `json:"pctOfE2E"`
}

// ComponentBreakdown is the finalized form of ComponentStats
type ComponentBreakdown struct {
	STT       StageStats `json:"stt"`
	LLM       ShareStats `json:"llm"`
	TTS       ShareStats `json:"tts"`
	E2E       StageStats `json:"e2e"`
	EndOfTurn StageStats `json:"endOfTurn"`
	Other     OtherStats `json:"other"`
}

func stageStats(s Series) StageStats {
	return StageStats{
		Avg:   s.Avg(),
		P50:   Percentile(s.Values, 50),
		P95:   Percentile(s.Values, 95),
		Count: s.Count,
	}
}

func pctOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

// FormatBreakdown computes averages, percentiles and e2e shares from c
func FormatBreakdown(c *ComponentStats) ComponentBreakdown {
	if c == nil {
		c = &ComponentStats{}
	}

	e2e := stageStats(c.E2E)
	llm := stageStats(c.LLM)
	tts := stageStats(c.TTS)

	var other float64
	if e2e.Avg > 0 {
		other = max(0, e2e.Avg-llm.Avg-tts.Avg)
	}

	return ComponentBreakdown{
		STT:       stageStats(c.STT),
		LLM:       ShareStats{StageStats: llm, PctOfE2E: pctOf(llm.Avg, e2e.Avg)},
		TTS:       ShareStats{StageStats: tts, PctOfE2E: pctOf(tts.Avg, e2e.Avg)},
		E2E:       e2e,
		EndOfTurn: stageStats(c.EndOfTurn),
		Other:     OtherStats{Avg: other, PctOfE2E: pctOf(other, e2e.Avg)},
	}
}
