package lag

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
)

// ErrLegacyMerge is returned when merging accumulators that fold daily
// averages with the legacy formula, which depends on call order.
var ErrLegacyMerge = errors.New("lag: legacy daily average mode cannot be merged")

// Merge folds o into a. Episodes of o are appended after those of a, so
// shards must be merged in input order.
func (a *Accumulator) Merge(o *Accumulator) error {
	if o == nil {
		return nil
	}
	if a.opts.DailyAvgMode == DailyAvgLegacy || o.opts.DailyAvgMode == DailyAvgLegacy {
		return ErrLegacyMerge
	}

	a.calls += o.calls
	a.unreadable += o.unreadable
	a.episodes = append(a.episodes, o.episodes...)
	for lagType, n := range o.byType {
		a.byType[lagType] += n
	}
	a.global.Merge(&o.global)

	for date, d := range o.days {
		a.day(date).merge(d)
	}
	for tag, stats := range o.languages {
		a.language(tag).Merge(stats)
	}
	return nil
}

// MergeAccumulators merges shards, in order, into a fresh accumulator
func MergeAccumulators(opts Options, shards ...*Accumulator) (*Accumulator, error) {
	out := NewAccumulator(opts)
	for _, s := range shards {
		if err := out.Merge(s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AggregateParallel splits calls into contiguous shards, analyzes them on
// up to workers goroutines and merges the shards in order. The result equals
// Aggregate. Legacy daily averages are order dependent and always run
// sequentially.
func AggregateParallel(ctx context.Context, calls []entities.VoiceCall, opts Options, workers int) (*Report, error) {
	opts = opts.withDefaults()
	if workers <= 1 || len(calls) < 2 || opts.DailyAvgMode == DailyAvgLegacy {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Aggregate(calls, opts), nil
	}
	workers = min(workers, len(calls))

	// OnUnreadable is replayed on this goroutine after the merge
	hook := opts.OnUnreadable
	shardOpts := opts
	shardOpts.OnUnreadable = nil

	type unreadable struct {
		callID string
		status ParseStatus
	}

	shards := make([]*Accumulator, workers)
	bad := make([][]unreadable, workers)
	size := (len(calls) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * size
		end := min(start+size, len(calls))
		if start >= end {
			continue
		}
		g.Go(func() error {
			acc := NewAccumulator(shardOpts)
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				analysis := acc.Add(&calls[i])
				if analysis.ParseStatus != ParseOK {
					bad[w] = append(bad[w], unreadable{analysis.CallID, analysis.ParseStatus})
				}
			}
			shards[w] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := MergeAccumulators(shardOpts, shards...)
	if err != nil {
		return nil, err
	}
	if hook != nil {
		for _, list := range bad {
			for _, u := range list {
				hook(u.callID, u.status)
			}
		}
	}
	return merged.Finalize(), nil
}
