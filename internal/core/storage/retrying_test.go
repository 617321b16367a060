package storage_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/headcount-lab/headcount/internal/core/demographics"
	"github.com/headcount-lab/headcount/internal/core/retry"
	"github.com/headcount-lab/headcount/internal/core/storage"
	storagemocks "github.com/headcount-lab/headcount/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fastPolicy = retry.Policy{Attempts: 3, Delay: time.Millisecond}

func TestRetryingRawEventStore_RetriesTransientList(t *testing.T) {
	inner := storagemocks.NewRawEventStore(t)
	want := []demographics.RawEvent{{ID: 7}}

	inner.EXPECT().ListUnconsumed(mock.Anything).Return(nil, driver.ErrBadConn).Once()
	inner.EXPECT().ListUnconsumed(mock.Anything).Return(want, nil).Once()

	store := storage.NewRetryingRawEventStore(inner, fastPolicy)
	got, err := store.ListUnconsumed(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestRetryingRawEventStore_ExhaustedIsTransient(t *testing.T) {
	inner := storagemocks.NewRawEventStore(t)
	inner.EXPECT().SaveRawEvent(mock.Anything, mock.Anything).Return(driver.ErrBadConn).Times(3)

	store := storage.NewRetryingRawEventStore(inner, fastPolicy)
	err := store.SaveRawEvent(context.Background(), &demographics.RawEvent{})
	require.Error(t, err)
	require.True(t, errors.Is(err, storage.ErrTransient))
	require.True(t, errors.Is(err, driver.ErrBadConn))
}

func TestRetryingRollupStore_PermanentErrorNotRetried(t *testing.T) {
	inner := storagemocks.NewRollupStore(t)
	inner.EXPECT().CommitDaily(mock.Anything, mock.Anything).Return(storage.ErrConcurrentRollup).Once()

	store := storage.NewRetryingRollupStore(inner, fastPolicy)
	err := store.CommitDaily(context.Background(), storage.DailyCommit{EventIDs: []int64{1}})
	require.ErrorIs(t, err, storage.ErrConcurrentRollup)
	require.False(t, errors.Is(err, storage.ErrTransient))
}

func TestRetryingRollupStore_CountsPassThrough(t *testing.T) {
	inner := storagemocks.NewRollupStore(t)
	want := storage.Counts{RawEvents: 10, Unconsumed: 2, DailyRollups: 3, MonthlyRollups: 1}
	inner.EXPECT().Counts(mock.Anything).Return(want, nil).Once()

	store := storage.NewRetryingRollupStore(inner, fastPolicy)
	got, err := store.Counts(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}
