package lag

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
)

func sampleCalls(t *testing.T, n int) []entities.VoiceCall {
	t.Helper()
	days := []string{"2025-03-01", "2025-03-02", "2025-03-03"}
	langs := []string{"en", "vi", ""}

	calls := make([]entities.VoiceCall, 0, n)
	for i := 0; i < n; i++ {
		tr := transcriptJSON(t,
			userTurn(fmt.Sprintf("u%d", i), map[string]any{
				"transcription_delay": 0.5 + float64(i%4)*0.5,
				"end_of_turn_delay":   1.0 + float64(i%3),
			}),
			assistantTurn(fmt.Sprintf("a%d", i), map[string]any{
				"llm_node_ttft": 1.0 + float64(i%5)*0.75,
				"tts_node_ttfb": 0.25 * float64(i%4),
				"e2e_latency":   2.0 + float64(i%6)*0.5,
			}),
		)
		if i%7 == 0 {
			tr = "garbage"
		}
		call := newCall(fmt.Sprintf("c%02d", i), days[i%len(days)]+"T10:00:00Z", ptr(float64(10+i*3)), tr)
		call.Language = langs[i%len(langs)]
		calls = append(calls, call)
	}
	return calls
}

func TestMergeShardsEqualsSequential(t *testing.T) {
	calls := sampleCalls(t, 20)
	opts := defaultOptions()

	whole := Aggregate(calls, opts)

	a := NewAccumulator(opts)
	b := NewAccumulator(opts)
	for i := range calls[:8] {
		a.Add(&calls[i])
	}
	for i := range calls[8:] {
		b.Add(&calls[8+i])
	}
	merged, err := MergeAccumulators(opts, a, b)
	require.NoError(t, err)
	got := merged.Finalize()

	assert.Equal(t, whole.CallsAnalyzed, got.CallsAnalyzed)
	assert.Equal(t, whole.TotalEpisodes, got.TotalEpisodes)
	assert.Equal(t, whole.EpisodeCounts, got.EpisodeCounts)
	assert.Equal(t, whole.UnreadableTranscripts, got.UnreadableTranscripts)
	assert.Equal(t, whole.LagEpisodes, got.LagEpisodes)
	assert.Equal(t, len(whole.DailyStats), len(got.DailyStats))
	for i := range whole.DailyStats {
		w, g := whole.DailyStats[i], got.DailyStats[i]
		assert.Equal(t, w.Date, g.Date)
		assert.Equal(t, w.HighLatencyCount, g.HighLatencyCount)
		assert.Equal(t, w.MaxE2ELatency, g.MaxE2ELatency)
		assert.Equal(t, w.DropoffCount, g.DropoffCount)
		assert.InDelta(t, w.AvgE2ELatency, g.AvgE2ELatency, 1e-9)
		assert.InDelta(t, w.AvgSTT, g.AvgSTT, 1e-9)
	}

	assert.InDelta(t, whole.ComponentBreakdown.E2E.Avg, got.ComponentBreakdown.E2E.Avg, 1e-9)
	assert.Equal(t, whole.ComponentBreakdown.E2E.P50, got.ComponentBreakdown.E2E.P50)
	assert.Equal(t, whole.ComponentBreakdown.E2E.P95, got.ComponentBreakdown.E2E.P95)
	assert.Equal(t, whole.ComponentBreakdown.LLM.P95, got.ComponentBreakdown.LLM.P95)
	assert.Equal(t, whole.ComponentBreakdown.EndOfTurn.Count, got.ComponentBreakdown.EndOfTurn.Count)
	assert.Len(t, got.LanguageBreakdown, len(whole.LanguageBreakdown))
}

func TestMergeNilShard(t *testing.T) {
	acc := NewAccumulator(defaultOptions())
	assert.NoError(t, acc.Merge(nil))
	assert.Zero(t, acc.Calls())
}

func TestMergeRejectsLegacyMode(t *testing.T) {
	opts := defaultOptions()
	opts.DailyAvgMode = DailyAvgLegacy

	a := NewAccumulator(opts)
	b := NewAccumulator(opts)
	assert.ErrorIs(t, a.Merge(b), ErrLegacyMerge)
}

func TestAggregateParallelMatchesAggregate(t *testing.T) {
	calls := sampleCalls(t, 31)

	var hooked []string
	opts := defaultOptions()
	opts.OnUnreadable = func(callID string, _ ParseStatus) {
		hooked = append(hooked, callID)
	}

	want := Aggregate(calls, Options{Thresholds: opts.Thresholds})

	for _, workers := range []int{2, 4, 64} {
		hooked = nil
		got, err := AggregateParallel(context.Background(), calls, opts, workers)
		require.NoError(t, err)

		assert.Equal(t, want.CallsAnalyzed, got.CallsAnalyzed, "workers=%d", workers)
		assert.Equal(t, want.LagEpisodes, got.LagEpisodes, "workers=%d", workers)
		assert.Equal(t, want.EpisodeCounts, got.EpisodeCounts, "workers=%d", workers)
		assert.Equal(t, want.ComponentBreakdown.STT.P50, got.ComponentBreakdown.STT.P50, "workers=%d", workers)
		assert.Equal(t, want.ComponentBreakdown.TTS.P95, got.ComponentBreakdown.TTS.P95, "workers=%d", workers)
		assert.Equal(t, want.UnreadableTranscripts, got.UnreadableTranscripts, "workers=%d", workers)
		assert.Equal(t, want.UnreadableTranscripts, len(hooked), "workers=%d", workers)
		assert.True(t, sort.StringsAreSorted(hooked), "workers=%d", workers)
	}
}

func TestAggregateParallelLegacyRunsSequentially(t *testing.T) {
	calls := sampleCalls(t, 12)
	opts := defaultOptions()
	opts.DailyAvgMode = DailyAvgLegacy

	got, err := AggregateParallel(context.Background(), calls, opts, 4)
	require.NoError(t, err)
	assert.Equal(t, Aggregate(calls, opts).DailyStats, got.DailyStats)
}

func TestAggregateParallelCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AggregateParallel(ctx, sampleCalls(t, 10), defaultOptions(), 1)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = AggregateParallel(ctx, sampleCalls(t, 10), defaultOptions(), 3)
	assert.ErrorIs(t, err, context.Canceled)
}
