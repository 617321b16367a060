package storage

import (
	"context"
	"errors"
	"time"

	"github.com/headcount-lab/headcount/internal/core/demographics"
)

var (
	// ErrTransient marks a data-layer failure that persisted through every
	// retry attempt.
	ErrTransient = errors.New("transient store error")

	// ErrConcurrentRollup is returned by CommitDaily when some of the listed
	// raw events were consumed by another run before this one could mark
	// them. The whole commit is rolled back.
	ErrConcurrentRollup = errors.New("raw events already consumed by a concurrent rollup")
)

// DefaultMarkBatchSize is the number of raw event ids marked consumed per
// UPDATE statement.
const DefaultMarkBatchSize = 1000

// RawEventStore persists per-minute detection records.
type RawEventStore interface {
	// SaveRawEvent inserts a new unconsumed event and populates its ID.
	SaveRawEvent(ctx context.Context, event *demographics.RawEvent) error

	// ListRawEvents returns events with from <= timestamp < to, oldest first.
	ListRawEvents(ctx context.Context, from, to time.Time) ([]demographics.RawEvent, error)

	// ListUnconsumed returns every event not yet folded into a daily rollup,
	// ordered by id.
	ListUnconsumed(ctx context.Context) ([]demographics.RawEvent, error)

	// SumRawBuckets sums each bucket over events with from <= timestamp < to
	// in the database.
	SumRawBuckets(ctx context.Context, from, to time.Time) (demographics.Buckets, error)

	// CountRawEvents counts events, optionally filtered by consumed state.
	CountRawEvents(ctx context.Context, consumed *bool) (int64, error)
}

// DailyCommit is the unit of work of one rollup run's transactional step:
// mark EventIDs consumed and add Increments (keyed by ISO day) to the daily
// rollups.
type DailyCommit struct {
	EventIDs   []int64
	Increments map[string]demographics.Buckets
	// BatchSize bounds the ids per consumed-marking statement.
	// Zero means DefaultMarkBatchSize.
	BatchSize int
}

// DailyFilter selects daily rollups. Zero From/To are unbounded; zero Limit
// returns every match. Results are ordered newest day first.
type DailyFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

// MonthlyFilter selects monthly rollups by first-of-month bounds. Zero
// From/To are unbounded; zero Limit returns every match. Results are ordered
// newest month first.
type MonthlyFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Counts summarizes table sizes for status reporting.
type Counts struct {
	RawEvents      int64 `json:"raw_events" yaml:"raw_events"`
	Unconsumed     int64 `json:"unconsumed" yaml:"unconsumed"`
	DailyRollups   int64 `json:"daily_rollups" yaml:"daily_rollups"`
	MonthlyRollups int64 `json:"monthly_rollups" yaml:"monthly_rollups"`
}

// RollupStore persists daily and monthly rollups.
//
// CommitDaily is the only write path into daily rollups and must be atomic:
// either every listed event is marked consumed and every increment is
// applied, or nothing changes. This is the contract that keeps raw and
// daily totals equal.
type RollupStore interface {
	CommitDaily(ctx context.Context, commit DailyCommit) error

	ListDailyRollups(ctx context.Context, filter DailyFilter) ([]demographics.DailyRollup, error)

	// ReplaceMonthly upserts each monthly rollup, overwriting all counters.
	ReplaceMonthly(ctx context.Context, rollups []demographics.MonthlyRollup) error

	ListMonthlyRollups(ctx context.Context, filter MonthlyFilter) ([]demographics.MonthlyRollup, error)

	// ResetRollups clears every consumed flag and deletes all daily and
	// monthly rollups in one transaction. Returns the number of events reset.
	ResetRollups(ctx context.Context) (int64, error)

	Counts(ctx context.Context) (Counts, error)

	// Purge deletes every raw event and rollup. Returns the counts removed.
	Purge(ctx context.Context) (Counts, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
