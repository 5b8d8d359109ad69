package lag

import (
	"sort"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
)

// DefaultEpisodeLimit caps how many episodes a report returns
const DefaultEpisodeLimit = 100

// Options configures one aggregation run
type Options struct {
	Thresholds   entities.Thresholds
	EpisodeLimit int
	DailyAvgMode DailyAvgMode

	// OnUnreadable is called for every call whose transcript did not parse cleanly
	OnUnreadable func(callID string, status ParseStatus)
}

func (o Options) withDefaults() Options {
	if o.EpisodeLimit <= 0 {
		o.EpisodeLimit = DefaultEpisodeLimit
	}
	if !o.DailyAvgMode.Valid() {
		o.DailyAvgMode = DailyAvgRunning
	}
	return o
}

// Report is the finalized output of an aggregation run
type Report struct {
	LagEpisodes           []entities.LagEpisode         `json:"lagEpisodes"`
	DailyStats            []DailyLagStat                `json:"dailyStats"`
	ComponentBreakdown    ComponentBreakdown            `json:"componentBreakdown"`
	LanguageBreakdown     map[string]ComponentBreakdown `json:"languageBreakdown"`
	CallsAnalyzed         int                           `json:"callsAnalyzed"`
	TotalEpisodes         int                           `json:"totalEpisodes"`
	EpisodeCounts         map[entities.LagType]int      `json:"episodeCounts"`
	UnreadableTranscripts int                           `json:"unreadableTranscripts"`
}

// Accumulator folds calls into the global, per-day and per-language buckets.
// It is owned by a single run and is not safe for concurrent use.
type Accumulator struct {
	opts       Options
	episodes   []entities.LagEpisode
	byType     map[entities.LagType]int
	days       map[string]*dayBucket
	global     ComponentStats
	languages  map[string]*ComponentStats
	calls      int
	unreadable int
}

// NewAccumulator returns an empty accumulator
func NewAccumulator(opts Options) *Accumulator {
	return &Accumulator{
		opts:      opts.withDefaults(),
		byType:    make(map[entities.LagType]int),
		days:      make(map[string]*dayBucket),
		languages: make(map[string]*ComponentStats),
	}
}

// Calls returns how many calls have been added
func (a *Accumulator) Calls() int {
	return a.calls
}

// Add analyzes one call and folds it into the accumulator
func (a *Accumulator) Add(call *entities.VoiceCall) CallAnalysis {
	analysis := AnalyzeCall(call, a.opts.Thresholds)
	a.AddAnalysis(analysis)
	return analysis
}

// AddAnalysis folds an already computed CallAnalysis
func (a *Accumulator) AddAnalysis(analysis CallAnalysis) {
	a.calls++
	if analysis.ParseStatus != ParseOK {
		a.unreadable++
		if a.opts.OnUnreadable != nil {
			a.opts.OnUnreadable(analysis.CallID, analysis.ParseStatus)
		}
	}

	day := a.day(analysis.Date)
	lang := a.language(analysis.Language)

	for _, s := range analysis.Samples {
		a.global.add(s.LagType, s.Value)
		lang.add(s.LagType, s.Value)
		day.addSample(s.LagType, s.Value)
	}

	for _, ep := range analysis.Episodes {
		a.byType[ep.LagType]++
		if ep.LagType == entities.LagTypeE2E {
			day.highLatencyCount++
		}
	}
	a.episodes = append(a.episodes, analysis.Episodes...)

	if avg, ok := analysis.E2EAverage(); ok {
		day.addCallAverage(avg)
	}
	if analysis.Dropoff {
		day.dropoffCount++
	}
}

func (a *Accumulator) day(date string) *dayBucket {
	d, ok := a.days[date]
	if !ok {
		d = &dayBucket{date: date}
		a.days[date] = d
	}
	return d
}

func (a *Accumulator) language(tag string) *ComponentStats {
	l, ok := a.languages[tag]
	if !ok {
		l = &ComponentStats{}
		a.languages[tag] = l
	}
	return l
}

// Finalize builds the report. The accumulator is left untouched, so calling
// Finalize twice yields equal reports.
func (a *Accumulator) Finalize() *Report {
	limit := min(a.opts.EpisodeLimit, len(a.episodes))
	episodes := make([]entities.LagEpisode, limit)
	copy(episodes, a.episodes[:limit])

	daily := make([]DailyLagStat, 0, len(a.days))
	for _, d := range a.days {
		daily = append(daily, d.finalize(a.opts.DailyAvgMode))
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date > daily[j].Date
	})

	languages := make(map[string]ComponentBreakdown, len(a.languages))
	for tag, stats := range a.languages {
		languages[tag] = FormatBreakdown(stats)
	}

	counts := make(map[entities.LagType]int, len(a.byType))
	for lagType, n := range a.byType {
		counts[lagType] = n
	}

	return &Report{
		LagEpisodes:           episodes,
		DailyStats:            daily,
		ComponentBreakdown:    FormatBreakdown(&a.global),
		LanguageBreakdown:     languages,
		CallsAnalyzed:         a.calls,
		TotalEpisodes:         len(a.episodes),
		EpisodeCounts:         counts,
		UnreadableTranscripts: a.unreadable,
	}
}

// Aggregate runs the whole pipeline over calls in order. Calls are expected
// newest first so the episode cut keeps the most recent ones.
func Aggregate(calls []entities.VoiceCall, opts Options) *Report {
	acc := NewAccumulator(opts)
	for i := range calls {
		acc.Add(&calls[i])
	}
	return acc.Finalize()
}
