// Package aggregation compresses raw per-minute events into daily and
// monthly rollups and schedules that work.
package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/headcount-lab/headcount/internal/core/demographics"
	"github.com/headcount-lab/headcount/internal/core/storage"
	"github.com/headcount-lab/headcount/internal/metrics"
)

const (
	flightRun     = "run"
	flightRebuild = "rebuild"
)

// Invalidator drops cached responses once rollups change.
type Invalidator interface {
	InvalidateAll()
}

// Error is returned when a run fails. The daily commit is all-or-nothing, so
// a failure in "commit daily" leaves no partial state behind.
type Error struct {
	Op    string
	RunID uuid.UUID
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("aggregation run %s: %s: %v", e.RunID, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RunResult summarizes one rollup run.
type RunResult struct {
	RunID                 uuid.UUID     `json:"run_id" yaml:"run_id"`
	Rebuilt               bool          `json:"rebuilt" yaml:"rebuilt"`
	EventsReset           int64         `json:"events_reset,omitempty" yaml:"events_reset,omitempty"`
	DetectionRecords      int64         `json:"detection_records" yaml:"detection_records"`
	Processed             int64         `json:"processed_records" yaml:"processed_records"`
	RemainingUnaggregated int64         `json:"remaining_unaggregated" yaml:"remaining_unaggregated"`
	DailyCreated          int64         `json:"daily_aggregations_created" yaml:"daily_aggregations_created"`
	MonthlyCreated        int64         `json:"monthly_aggregations_created" yaml:"monthly_aggregations_created"`
	TotalDaily            int64         `json:"total_daily_aggregations" yaml:"total_daily_aggregations"`
	TotalMonthly          int64         `json:"total_monthly_aggregations" yaml:"total_monthly_aggregations"`
	ElapsedSeconds        float64       `json:"processing_time_seconds" yaml:"processing_time_seconds"`
	Elapsed               time.Duration `json:"-" yaml:"-"`
}

// NoData reports whether the run found nothing to fold.
func (r RunResult) NoData() bool { return r.Processed == 0 }

// Aggregator runs rollups. Concurrent Run calls share one execution, and
// runs never overlap with a Rebuild.
type Aggregator struct {
	rawStore    storage.RawEventStore
	rollupStore storage.RollupStore
	invalidator Invalidator
	opts        BatchJobParameter

	group singleflight.Group
	mu    sync.Mutex
}

// NewAggregator wires an aggregator over the given stores. invalidator may be nil.
func NewAggregator(
	rawStore storage.RawEventStore,
	rollupStore storage.RollupStore,
	invalidator Invalidator,
	opts BatchJobParameter,
) *Aggregator {
	if rawStore == nil {
		panic("aggregation: raw event store must not be nil")
	}
	if rollupStore == nil {
		panic("aggregation: rollup store must not be nil")
	}
	return &Aggregator{
		rawStore:    rawStore,
		rollupStore: rollupStore,
		invalidator: invalidator,
		opts:        opts.normalized(),
	}
}

// Run folds every unconsumed raw event into daily rollups, then rebuilds
// monthly rollups. A call made while another Run is in flight waits for it
// and receives the same result.
func (a *Aggregator) Run(ctx context.Context) (RunResult, error) {
	return a.do(ctx, flightRun, false)
}

// Rebuild discards every rollup, marks all raw events unconsumed and runs
// again, so the result equals a single clean run over all data.
func (a *Aggregator) Rebuild(ctx context.Context) (RunResult, error) {
	return a.do(ctx, flightRebuild, true)
}

// do runs one shared flight per key. The flight is detached from the
// caller's cancellation: joined callers must not lose their run because the
// caller that started it went away.
func (a *Aggregator) do(ctx context.Context, key string, rebuild bool) (RunResult, error) {
	runCtx := context.WithoutCancel(ctx)
	v, err, shared := a.group.Do(key, func() (interface{}, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.run(runCtx, rebuild)
	})
	if shared {
		slog.Debug("[Aggregator] Joined in-flight run", "kind", key)
	}
	result, _ := v.(RunResult)
	return result, err
}

func (a *Aggregator) run(ctx context.Context, rebuild bool) (RunResult, error) {
	started := time.Now()
	result := RunResult{RunID: uuid.New(), Rebuilt: rebuild}

	fail := func(op string, err error) (RunResult, error) {
		result = finish(result, started)
		metrics.AggregationRuns.WithLabelValues("failure").Inc()
		slog.Error("[Aggregator] Run failed",
			"run_id", result.RunID,
			"op", op,
			"elapsed", result.Elapsed,
			"error", err,
		)
		return result, &Error{Op: op, RunID: result.RunID, Err: err}
	}

	slog.Info("[Aggregator] Starting rollup run",
		"run_id", result.RunID,
		"rebuild", rebuild,
		"mark_batch_size", a.opts.MarkBatchSize,
		"timezone", a.opts.Location.String(),
	)

	if rebuild {
		reset, err := a.rollupStore.ResetRollups(ctx)
		if err != nil {
			return fail("reset rollups", err)
		}
		result.EventsReset = reset
	}

	before, err := a.rollupStore.Counts(ctx)
	if err != nil {
		return fail("read counts", err)
	}

	events, err := a.rawStore.ListUnconsumed(ctx)
	if err != nil {
		return fail("list unconsumed", err)
	}

	if len(events) == 0 {
		slog.Info("[Aggregator] No data to aggregate", "run_id", result.RunID)
	} else {
		ids := make([]int64, len(events))
		for i, evt := range events {
			ids[i] = evt.ID
		}
		increments := demographics.GroupByDay(events, a.opts.Location)

		if err := a.rollupStore.CommitDaily(ctx, storage.DailyCommit{
			EventIDs:   ids,
			Increments: increments,
			BatchSize:  a.opts.MarkBatchSize,
		}); err != nil {
			return fail("commit daily", err)
		}
		result.Processed = int64(len(events))

		slog.Info("[Aggregator] Daily rollups committed",
			"run_id", result.RunID,
			"events", len(events),
			"days", len(increments),
		)
	}

	// Monthly rows are recomputed on every run, so a failed rebuild heals on
	// the next one even when no new raw data arrived.
	if err := a.rebuildMonthly(ctx); err != nil {
		a.invalidate()
		return fail("rebuild monthly", err)
	}

	after, err := a.rollupStore.Counts(ctx)
	if err != nil {
		a.invalidate()
		return fail("read counts", err)
	}

	result = withCounts(result, before, after)
	result = finish(result, started)
	a.invalidate()

	outcome := "success"
	if result.NoData() {
		outcome = "noop"
	}
	metrics.AggregationRuns.WithLabelValues(outcome).Inc()
	metrics.AggregationEvents.Add(float64(result.Processed))
	metrics.AggregationDuration.Observe(result.Elapsed.Seconds())

	slog.Info("[Aggregator] Run complete",
		"run_id", result.RunID,
		"processed", result.Processed,
		"daily_created", result.DailyCreated,
		"monthly_created", result.MonthlyCreated,
		"remaining", result.RemainingUnaggregated,
		"elapsed_seconds", result.ElapsedSeconds,
	)
	return result, nil
}

// rebuildMonthly recomputes every month from all daily rows and overwrites
// the stored monthly rollups.
func (a *Aggregator) rebuildMonthly(ctx context.Context) error {
	dailies, err := a.rollupStore.ListDailyRollups(ctx, storage.DailyFilter{})
	if err != nil {
		return fmt.Errorf("list daily rollups: %w", err)
	}

	monthly := FoldMonthly(dailies)
	if err := a.rollupStore.ReplaceMonthly(ctx, monthly); err != nil {
		return fmt.Errorf("replace monthly rollups: %w", err)
	}

	slog.Info("[Aggregator] Monthly rollups rebuilt", "months", len(monthly))
	return nil
}

func (a *Aggregator) invalidate() {
	if a.invalidator != nil {
		a.invalidator.InvalidateAll()
	}
}

// FoldMonthly sums daily rollups into one rollup per calendar month,
// ascending by month.
func FoldMonthly(dailies []demographics.DailyRollup) []demographics.MonthlyRollup {
	type monthKey struct {
		year  int
		month time.Month
	}

	sums := make(map[monthKey]demographics.Buckets)
	for _, d := range dailies {
		k := monthKey{year: d.Day.Year(), month: d.Day.Month()}
		b := sums[k]
		b.Add(d.Buckets)
		sums[k] = b
	}

	monthly := make([]demographics.MonthlyRollup, 0, len(sums))
	for k, b := range sums {
		monthly = append(monthly, demographics.MonthlyRollup{Year: k.year, Month: k.month, Buckets: b})
	}
	sort.Slice(monthly, func(i, j int) bool {
		if monthly[i].Year != monthly[j].Year {
			return monthly[i].Year < monthly[j].Year
		}
		return monthly[i].Month < monthly[j].Month
	})
	return monthly
}

func withCounts(r RunResult, before, after storage.Counts) RunResult {
	r.DetectionRecords = after.RawEvents
	r.RemainingUnaggregated = after.Unconsumed
	r.DailyCreated = after.DailyRollups - before.DailyRollups
	r.MonthlyCreated = after.MonthlyRollups - before.MonthlyRollups
	r.TotalDaily = after.DailyRollups
	r.TotalMonthly = after.MonthlyRollups
	return r
}

func finish(r RunResult, started time.Time) RunResult {
	r.Elapsed = time.Since(started)
	r.ElapsedSeconds = decimal.NewFromInt(r.Elapsed.Microseconds()).
		Div(decimal.NewFromInt(int64(time.Second / time.Microsecond))).
		Round(2).
		InexactFloat64()
	return r
}
