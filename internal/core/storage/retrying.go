package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/headcount-lab/headcount/internal/core/demographics"
	"github.com/headcount-lab/headcount/internal/core/retry"
)

// RetryingRawEventStore retries transient failures of the wrapped store.
type RetryingRawEventStore struct {
	next   RawEventStore
	policy retry.Policy
}

// RetryingRollupStore retries transient failures of the wrapped store.
type RetryingRollupStore struct {
	next   RollupStore
	policy retry.Policy
}

func NewRetryingRawEventStore(next RawEventStore, policy retry.Policy) *RetryingRawEventStore {
	if next == nil {
		panic("storage: raw event store must not be nil")
	}
	return &RetryingRawEventStore{next: next, policy: policy}
}

func NewRetryingRollupStore(next RollupStore, policy retry.Policy) *RetryingRollupStore {
	if next == nil {
		panic("storage: rollup store must not be nil")
	}
	return &RetryingRollupStore{next: next, policy: policy}
}

// markTransient tags exhausted retries with ErrTransient so callers can map
// them without knowing about the retry package.
func markTransient(err error) error {
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}

func (s *RetryingRawEventStore) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return markTransient(retry.Do(ctx, s.policy, op, fn))
}

func (s *RetryingRawEventStore) SaveRawEvent(ctx context.Context, event *demographics.RawEvent) error {
	return s.do(ctx, "save_raw_event", func(ctx context.Context) error {
		return s.next.SaveRawEvent(ctx, event)
	})
}

func (s *RetryingRawEventStore) ListRawEvents(ctx context.Context, from, to time.Time) ([]demographics.RawEvent, error) {
	var out []demographics.RawEvent
	err := s.do(ctx, "list_raw_events", func(ctx context.Context) error {
		var err error
		out, err = s.next.ListRawEvents(ctx, from, to)
		return err
	})
	return out, err
}

func (s *RetryingRawEventStore) ListUnconsumed(ctx context.Context) ([]demographics.RawEvent, error) {
	var out []demographics.RawEvent
	err := s.do(ctx, "list_unconsumed", func(ctx context.Context) error {
		var err error
		out, err = s.next.ListUnconsumed(ctx)
		return err
	})
	return out, err
}

func (s *RetryingRawEventStore) SumRawBuckets(ctx context.Context, from, to time.Time) (demographics.Buckets, error) {
	var out demographics.Buckets
	err := s.do(ctx, "sum_raw_buckets", func(ctx context.Context) error {
		var err error
		out, err = s.next.SumRawBuckets(ctx, from, to)
		return err
	})
	return out, err
}

func (s *RetryingRawEventStore) CountRawEvents(ctx context.Context, consumed *bool) (int64, error) {
	var n int64
	err := s.do(ctx, "count_raw_events", func(ctx context.Context) error {
		var err error
		n, err = s.next.CountRawEvents(ctx, consumed)
		return err
	})
	return n, err
}

func (s *RetryingRollupStore) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return markTransient(retry.Do(ctx, s.policy, op, fn))
}

// CommitDaily is retried as a whole transaction. A retry after a commit
// whose acknowledgement was lost fails with ErrConcurrentRollup instead of
// applying the increments twice.
func (s *RetryingRollupStore) CommitDaily(ctx context.Context, commit DailyCommit) error {
	return s.do(ctx, "commit_daily", func(ctx context.Context) error {
		return s.next.CommitDaily(ctx, commit)
	})
}

func (s *RetryingRollupStore) ListDailyRollups(ctx context.Context, filter DailyFilter) ([]demographics.DailyRollup, error) {
	var out []demographics.DailyRollup
	err := s.do(ctx, "list_daily_rollups", func(ctx context.Context) error {
		var err error
		out, err = s.next.ListDailyRollups(ctx, filter)
		return err
	})
	return out, err
}

func (s *RetryingRollupStore) ReplaceMonthly(ctx context.Context, rollups []demographics.MonthlyRollup) error {
	return s.do(ctx, "replace_monthly", func(ctx context.Context) error {
		return s.next.ReplaceMonthly(ctx, rollups)
	})
}

func (s *RetryingRollupStore) ListMonthlyRollups(ctx context.Context, filter MonthlyFilter) ([]demographics.MonthlyRollup, error) {
	var out []demographics.MonthlyRollup
	err := s.do(ctx, "list_monthly_rollups", func(ctx context.Context) error {
		var err error
		out, err = s.next.ListMonthlyRollups(ctx, filter)
		return err
	})
	return out, err
}

func (s *RetryingRollupStore) ResetRollups(ctx context.Context) (int64, error) {
	var n int64
	err := s.do(ctx, "reset_rollups", func(ctx context.Context) error {
		var err error
		n, err = s.next.ResetRollups(ctx)
		return err
	})
	return n, err
}

func (s *RetryingRollupStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.do(ctx, "counts", func(ctx context.Context) error {
		var err error
		c, err = s.next.Counts(ctx)
		return err
	})
	return c, err
}

func (s *RetryingRollupStore) Purge(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.do(ctx, "purge", func(ctx context.Context) error {
		var err error
		c, err = s.next.Purge(ctx)
		return err
	})
	return c, err
}
