package lag

import "github.com/johnquangdev/voice-call-analytics/internal/domain/entities"

// Series accumulates one stage's samples. Values is only filled for buckets
// that need percentiles.
type Series struct {
	Sum    float64
	Count  int
	Values []float64
}

func (s *Series) add(v float64, keepValues bool) {
	s.Sum += v
	s.Count++
	if keepValues {
		s.Values = append(s.Values, v)
	}
}

func (s *Series) merge(o Series) {
	s.Sum += o.Sum
	s.Count += o.Count
	s.Values = append(s.Values, o.Values...)
}

// Avg returns Sum/Count, or 0 when nothing was recorded
func (s Series) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// ComponentStats holds one Series per pipeline stage
type ComponentStats struct {
	STT       Series
	LLM       Series
	TTS       Series
	E2E       Series
	EndOfTurn Series
}

func (c *ComponentStats) series(lagType entities.LagType) *Series {
	switch lagType {
	case entities.LagTypeSTT:
		return &c.STT
	case entities.LagTypeLLMTTFT:
		return &c.LLM
	case entities.LagTypeTTSTTFB:
		return &c.TTS
	case entities.LagTypeE2E:
		return &c.E2E
	case entities.LagTypeEndOfTurn:
		return &c.EndOfTurn
	default:
		return nil
	}
}

func (c *ComponentStats) add(lagType entities.LagType, v float64) {
	if s := c.series(lagType); s != nil {
		s.add(v, true)
	}
}

// Merge folds o into c. Sums and counts add, value lists concatenate.
func (c *ComponentStats) Merge(o *ComponentStats) {
	if o == nil {
		return
	}
	c.STT.merge(o.STT)
	c.LLM.merge(o.LLM)
	c.TTS.merge(o.TTS)
	c.E2E.merge(o.E2E)
	c.EndOfTurn.merge(o.EndOfTurn)
}

// DailyAvgMode selects how a day's average e2e latency is folded
type DailyAvgMode string

const (
	// DailyAvgRunning keeps the true mean of per-call averages
	DailyAvgRunning DailyAvgMode = "running"
	// DailyAvgLegacy halves toward each new per-call average: (old+new)/2
	DailyAvgLegacy DailyAvgMode = "legacy"
)

// Valid reports whether m is a known mode
func (m DailyAvgMode) Valid() bool {
	return m == DailyAvgRunning || m == DailyAvgLegacy
}

// dayBucket is the per-date accumulator. Stage series keep sums and counts
// only, no value lists.
type dayBucket struct {
	date             string
	highLatencyCount int
	maxE2E           float64
	dropoffCount     int

	legacyAvgE2E float64
	callAvgSum   float64
	callAvgCount int

	stt Series
	llm Series
	tts Series
}

func (d *dayBucket) addSample(lagType entities.LagType, v float64) {
	switch lagType {
	case entities.LagTypeSTT:
		d.stt.add(v, false)
	case entities.LagTypeLLMTTFT:
		d.llm.add(v, false)
	case entities.LagTypeTTSTTFB:
		d.tts.add(v, false)
	case entities.LagTypeE2E:
		if v > d.maxE2E {
			d.maxE2E = v
		}
	}
}

func (d *dayBucket) addCallAverage(avg float64) {
	d.legacyAvgE2E = (d.legacyAvgE2E + avg) / 2
	d.callAvgSum += avg
	d.callAvgCount++
}

func (d *dayBucket) merge(o *dayBucket) {
	d.highLatencyCount += o.highLatencyCount
	if o.maxE2E > d.maxE2E {
		d.maxE2E = o.maxE2E
	}
	d.dropoffCount += o.dropoffCount
	d.callAvgSum += o.callAvgSum
	d.callAvgCount += o.callAvgCount
	d.stt.merge(o.stt)
	d.llm.merge(o.llm)
	d.tts.merge(o.tts)
}

func (d *dayBucket) finalize(mode DailyAvgMode) DailyLagStat {
	avg := d.legacyAvgE2E
	if mode != DailyAvgLegacy {
		avg = 0
		if d.callAvgCount > 0 {
			avg = d.callAvgSum / float64(d.callAvgCount)
		}
	}
	return DailyLagStat{
		Date:             d.date,
		HighLatencyCount: d.highLatencyCount,
		AvgE2ELatency:    avg,
		MaxE2ELatency:    d.maxE2E,
		DropoffCount:     d.dropoffCount,
		AvgSTT:           d.stt.Avg(),
		AvgLLM:           d.llm.Avg(),
		AvgTTS:           d.tts.Avg(),
	}
}

// DailyLagStat is the finalized rollup for one calendar day
type DailyLagStat struct {
	Date             string  `json:"date"`
	HighLatencyCount int     `json:"high_latency_count"`
	AvgE2ELatency    float64 `json:"avg_e2e_latency"`
	MaxE2ELatency    float64 `json:"max_e2e_latency"`
	DropoffCount     int     `json:"dropoff_count"`
	AvgSTT           float64 `json:"avg_stt"`
	AvgLLM           float64 `json:"avg_llm"`
	AvgTTS           float64 `json:"avg_tts"`
}
