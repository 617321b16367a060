package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/headcount-lab/headcount/internal/core/demographics"
	"github.com/headcount-lab/headcount/internal/core/storage"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var dailyColumns = []string{
	"day",
	"male_0_9", "male_10_19", "male_20_29", "male_30_39", "male_40_49", "male_50_plus",
	"female_0_9", "female_10_19", "female_20_29", "female_30_39", "female_40_49", "female_50_plus",
}

func newMockRollupAdapter(t *testing.T) (*RollupAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := NewRollupAdapter(db, time.UTC)
	adapter.now = func() time.Time { return time.Date(2024, 5, 15, 3, 0, 0, 0, time.UTC) }
	return adapter, mock
}

func bucketsWith(g demographics.Gender, band int, v int64) demographics.Buckets {
	var b demographics.Buckets
	b.Set(g, band, v)
	return b
}

func TestRollupAdapter_CommitDailyMarksInBatches(t *testing.T) {
	adapter, mock := newMockRollupAdapter(t)

	commit := storage.DailyCommit{
		EventIDs: []int64{1, 2, 3, 4, 5},
		Increments: map[string]demographics.Buckets{
			"2024-05-14": bucketsWith(demographics.Male, 2, 3),
			"2024-05-13": bucketsWith(demographics.Female, 0, 2),
		},
		BatchSize: 2,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryAdvisoryXactLock)).
		WithArgs(rollupLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))

	markPrep := mock.ExpectPrepare(regexp.QuoteMeta(queryMarkConsumed))
	markPrep.ExpectExec().WithArgs(pq.Array([]int64{1, 2})).WillReturnResult(sqlmock.NewResult(0, 2))
	markPrep.ExpectExec().WithArgs(pq.Array([]int64{3, 4})).WillReturnResult(sqlmock.NewResult(0, 2))
	markPrep.ExpectExec().WithArgs(pq.Array([]int64{5})).WillReturnResult(sqlmock.NewResult(0, 1))

	upsertPrep := mock.ExpectPrepare(regexp.QuoteMeta(queryIncrementDaily))
	upsertPrep.ExpectExec().WithArgs("2024-05-13",
		int64(0), int64(0), int64(0), int64(0), int64(0), int64(0),
		int64(2), int64(0), int64(0), int64(0), int64(0), int64(0),
		sqlmock.AnyArg(),
	).WillReturnResult(sqlmock.NewResult(0, 1))
	upsertPrep.ExpectExec().WithArgs("2024-05-14",
		int64(0), int64(0), int64(3), int64(0), int64(0), int64(0),
		int64(0), int64(0), int64(0), int64(0), int64(0), int64(0),
		sqlmock.AnyArg(),
	).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := adapter.CommitDaily(context.Background(), commit)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollupAdapter_CommitDailyRollsBackWhenAlreadyConsumed(t *testing.T) {
	adapter, mock := newMockRollupAdapter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryAdvisoryXactLock)).
		WithArgs(rollupLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(regexp.QuoteMeta(queryMarkConsumed)).
		ExpectExec().
		WithArgs(pq.Array([]int64{1, 2, 3})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := adapter.CommitDaily(context.Background(), storage.DailyCommit{
		EventIDs:   []int64{1, 2, 3},
		Increments: map[string]demographics.Buckets{"2024-05-14": bucketsWith(demographics.Male, 0, 1)},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, storage.ErrConcurrentRollup))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollupAdapter_CommitDailyRollsBackOnUpsertFailure(t *testing.T) {
	adapter, mock := newMockRollupAdapter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryAdvisoryXactLock)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(regexp.QuoteMeta(queryMarkConsumed)).
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(regexp.QuoteMeta(queryIncrementDaily)).
		ExpectExec().
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := adapter.CommitDaily(context.Background(), storage.DailyCommit{
		EventIDs:   []int64{9},
		Increments: map[string]demographics.Buckets{"2024-05-14": bucketsWith(demographics.Male, 0, 1)},
	})
	require.ErrorContains(t, err, "upsert day 2024-05-14")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollupAdapter_ListDailyRollups(t *testing.T) {
	adapter, mock := newMockRollupAdapter(t)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryListDailyRollups)).
		WithArgs("2024-05-01", "2024-05-31", nil).
		WillReturnRows(sqlmock.NewRows(dailyColumns).
			AddRow("2024-05-14", 0, 0, 30, 0, 0, 0, 0, 0, 0, 12, 0, 0).
			AddRow("2024-05-02", 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0))

	rollups, err := adapter.ListDailyRollups(context.Background(), storage.DailyFilter{From: from, To: to})
	require.NoError(t, err)
	require.Len(t, rollups, 2)
	require.Equal(t, time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC), rollups[0].Day)
	require.Equal(t, int64(42), rollups[0].Buckets.Total())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollupAdapter_ListMonthlyRollupsWithLimit(t *testing.T) {
	adapter, mock := newMockRollupAdapter(t)

	columns := append([]string{"year", "month"}, dailyColumns[1:]...)
	mock.ExpectQuery(regexp.QuoteMeta(queryListMonthlyRollups)).
		WithArgs(0, 999912, int64(12)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2024, 4, 0, 0, 5, 0, 0, 0, 0, 0, 0, 0, 0, 0))

	rollups, err := adapter.ListMonthlyRollups(context.Background(), storage.MonthlyFilter{Limit: 12})
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	require.Equal(t, time.April, rollups[0].Month)
	require.Equal(t, "2024-04", rollups[0].Key())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollupAdapter_ReplaceMonthly(t *testing.T) {
	adapter, mock := newMockRollupAdapter(t)

	rollups := []demographics.MonthlyRollup{
		{Year: 2024, Month: time.May, Buckets: bucketsWith(demographics.Female, 3, 12)},
	}

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta(queryReplaceMonthly)).
		ExpectExec().
		WithArgs(2024, 5,
			int64(0), int64(0), int64(0), int64(0), int64(0), int64(0),
			int64(0), int64(0), int64(0), int64(12), int64(0), int64(0),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, adapter.ReplaceMonthly(context.Background(), rollups))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollupAdapter_ResetRollups(t *testing.T) {
	adapter, mock := newMockRollupAdapter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryAdvisoryXactLock)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(queryResetConsumed)).WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteDailyRollups)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteMonthlyRollups)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := adapter.ResetRollups(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollupAdapter_Counts(t *testing.T) {
	adapter, mock := newMockRollupAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta(queryCounts)).
		WillReturnRows(sqlmock.NewRows([]string{"raw", "unconsumed", "daily", "monthly"}).AddRow(100, 4, 10, 2))

	c, err := adapter.Counts(context.Background())
	require.NoError(t, err)
	require.Equal(t, storage.Counts{RawEvents: 100, Unconsumed: 4, DailyRollups: 10, MonthlyRollups: 2}, c)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollupAdapter_Purge(t *testing.T) {
	adapter, mock := newMockRollupAdapter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryAdvisoryXactLock)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteMonthlyRollups)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteDailyRollups)).WillReturnResult(sqlmock.NewResult(0, 30))
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteRawEvents)).WillReturnResult(sqlmock.NewResult(0, 900))
	mock.ExpectCommit()

	removed, err := adapter.Purge(context.Background())
	require.NoError(t, err)
	require.Equal(t, storage.Counts{RawEvents: 900, DailyRollups: 30, MonthlyRollups: 2}, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}
