package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/headcount-lab/headcount/internal/core/demographics"
	"github.com/stretchr/testify/require"
)

var rawEventColumns = []string{
	"id", "ts",
	"male_0_9", "male_10_19", "male_20_29", "male_30_39", "male_40_49", "male_50_plus",
	"female_0_9", "female_10_19", "female_20_29", "female_30_39", "female_40_49", "female_50_plus",
	"consumed",
}

func TestAdapter_SaveRawEvent(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	ts := time.Date(2024, 5, 14, 9, 31, 0, 0, time.UTC)
	evt := &demographics.RawEvent{Timestamp: ts}
	evt.Buckets.Set(demographics.Male, 2, 3)
	evt.Buckets.Set(demographics.Female, 5, 1)

	mock.ExpectQuery(regexp.QuoteMeta(querySaveRawEvent)).
		WithArgs(ts,
			int64(0), int64(0), int64(3), int64(0), int64(0), int64(0),
			int64(0), int64(0), int64(0), int64(0), int64(0), int64(1),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	err := adapter.SaveRawEvent(context.Background(), evt)
	require.NoError(t, err)
	require.Equal(t, int64(42), evt.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_SaveRawEventWrapsError(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(querySaveRawEvent)).WillReturnError(errors.New("disk full"))

	err := adapter.SaveRawEvent(context.Background(), &demographics.RawEvent{Timestamp: time.Now()})
	require.ErrorContains(t, err, "failed to save raw event")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_ListUnconsumed(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	ts := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(rawEventColumns).
		AddRow(int64(1), ts, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, false).
		AddRow(int64(2), ts.Add(time.Minute), 0, 0, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, false)

	mock.ExpectQuery(regexp.QuoteMeta(queryListUnconsumed)).WillReturnRows(rows)

	events, err := adapter.ListUnconsumed(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, int64(1), events[0].Buckets.Male())
	require.Equal(t, int64(2), events[0].Buckets.Female())
	require.Equal(t, int64(4), events[1].Buckets.Get(demographics.Male, 2))
	require.False(t, events[1].Consumed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_SumRawBuckets(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	from := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	sumColumns := make([]string, demographics.BucketCount)
	for i := range sumColumns {
		sumColumns[i] = "sum"
	}

	mock.ExpectQuery(regexp.QuoteMeta(querySumRawBuckets)).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(sumColumns).AddRow(0, 0, 30, 0, 0, 0, 0, 0, 0, 12, 0, 0))

	b, err := adapter.SumRawBuckets(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, demographics.Totals{Male: 30, Female: 12, Total: 42}, b.Totals())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CountRawEvents(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	consumed := false
	mock.ExpectQuery(regexp.QuoteMeta(queryCountRawEventsByConsumed)).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta(queryCountRawEvents)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(9)))

	n, err := adapter.CountRawEvents(context.Background(), &consumed)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)

	n, err = adapter.CountRawEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(9), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CloseReturnsDBCloseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dbCloseErr := errors.New("db close failed")

	adapter := &Adapter{db: db}
	for _, target := range []struct {
		query string
		stmt  **sql.Stmt
	}{
		{querySaveRawEvent, &adapter.stmtSaveRawEvent},
		{queryListRawEvents, &adapter.stmtListRawEvents},
		{queryListUnconsumed, &adapter.stmtListUnconsumed},
		{querySumRawBuckets, &adapter.stmtSumRawBuckets},
	} {
		mock.ExpectPrepare(regexp.QuoteMeta(target.query)).WillBeClosed()
		stmt, err := db.Prepare(target.query)
		require.NoError(t, err)
		*target.stmt = stmt
	}

	mock.ExpectClose().WillReturnError(dbCloseErr)

	err = adapter.Close()
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to close database")
	require.ErrorIs(t, err, dbCloseErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	adapter := &Adapter{
		db:                 db,
		stmtSaveRawEvent:   mustPrepareStmt(t, db, mock, querySaveRawEvent),
		stmtListRawEvents:  mustPrepareStmt(t, db, mock, queryListRawEvents),
		stmtListUnconsumed: mustPrepareStmt(t, db, mock, queryListUnconsumed),
		stmtSumRawBuckets:  mustPrepareStmt(t, db, mock, querySumRawBuckets),
	}

	return adapter, mock, db
}

func mustPrepareStmt(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock, query string) *sql.Stmt {
	t.Helper()

	mock.ExpectPrepare(regexp.QuoteMeta(query))
	stmt, err := db.Prepare(query)
	require.NoError(t, err)

	return stmt
}
