// Package sqlite implements the raw event and rollup stores on an embedded
// SQLite database for single-node and local deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/headcount-lab/headcount/internal/core/demographics"
	"github.com/headcount-lab/headcount/internal/core/storage"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// Store implements storage.RawEventStore and storage.RollupStore.
type Store struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies pragmas.
// A single connection is used: SQLite serializes writers anyway, and it keeps
// ":memory:" databases shared by every caller.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	slog.Info("[SQLite] Database opened", "path", path)
	return db, nil
}

// NewStore wraps an opened, migrated database. loc is the service time zone
// that rollup days are expressed in.
func NewStore(db *sql.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		db:  db,
		loc: loc,
		now: time.Now,
	}
}

func (s *Store) SaveRawEvent(ctx context.Context, event *demographics.RawEvent) error {
	args := append([]interface{}{event.Timestamp.UnixMilli()}, bucketArgs(event.Buckets)...)

	result, err := s.db.ExecContext(ctx, querySaveRawEvent, args...)
	if err != nil {
		return fmt.Errorf("failed to save raw event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read raw event id: %w", err)
	}
	event.ID = id
	event.Consumed = false
	return nil
}

func (s *Store) ListRawEvents(ctx context.Context, from, to time.Time) ([]demographics.RawEvent, error) {
	rows, err := s.db.QueryContext(ctx, queryListRawEvents, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query raw events: %w", err)
	}
	return collectRawEvents(rows)
}

func (s *Store) ListUnconsumed(ctx context.Context) ([]demographics.RawEvent, error) {
	rows, err := s.db.QueryContext(ctx, queryListUnconsumed)
	if err != nil {
		return nil, fmt.Errorf("failed to query unconsumed raw events: %w", err)
	}
	return collectRawEvents(rows)
}

func (s *Store) SumRawBuckets(ctx context.Context, from, to time.Time) (demographics.Buckets, error) {
	var b demographics.Buckets
	if err := s.db.QueryRowContext(ctx, querySumRawBuckets, from.UnixMilli(), to.UnixMilli()).Scan(bucketDest(&b)...); err != nil {
		return demographics.Buckets{}, fmt.Errorf("failed to sum raw buckets: %w", err)
	}
	return b, nil
}

func (s *Store) CountRawEvents(ctx context.Context, consumed *bool) (int64, error) {
	var (
		n   int64
		err error
	)
	if consumed == nil {
		err = s.db.QueryRowContext(ctx, queryCountRawEvents).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, queryCountRawEventsByConsumed, *consumed).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count raw events: %w", err)
	}
	return n, nil
}

// CommitDaily marks ids consumed and applies the increments in one
// transaction. Any shortfall in marked rows rolls everything back.
func (s *Store) CommitDaily(ctx context.Context, commit storage.DailyCommit) error {
	batchSize := commit.BatchSize
	if batchSize <= 0 {
		batchSize = storage.DefaultMarkBatchSize
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rollup commit: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for start := 0; start < len(commit.EventIDs); start += batchSize {
		end := min(start+batchSize, len(commit.EventIDs))
		chunk := commit.EventIDs[start:end]

		query, args := markConsumedQuery(chunk)
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("rollup commit: mark consumed batch at %d: %w", start, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rollup commit: check mark consumed batch: %w", err)
		}
		if affected != int64(len(chunk)) {
			return fmt.Errorf("rollup commit: marked %d of %d events: %w", affected, len(chunk), storage.ErrConcurrentRollup)
		}
	}

	stmt, err := tx.PrepareContext(ctx, queryIncrementDaily)
	if err != nil {
		return fmt.Errorf("rollup commit: prepare daily upsert: %w", err)
	}
	defer stmt.Close()

	updatedAt := s.now().UnixMilli()
	days := make([]string, 0, len(commit.Increments))
	for day := range commit.Increments {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		args := append([]interface{}{day}, bucketArgs(commit.Increments[day])...)
		args = append(args, updatedAt)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("rollup commit: upsert day %s: %w", day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rollup commit: commit: %w", err)
	}

	slog.Info("[SQLite] Committed daily rollups", "events", len(commit.EventIDs), "days", len(days))
	return nil
}

func markConsumedQuery(ids []int64) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(queryMarkConsumedPrefix)
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
		args[i] = id
	}
	b.WriteString(")")
	return b.String(), args
}

func (s *Store) ListDailyRollups(ctx context.Context, filter storage.DailyFilter) ([]demographics.DailyRollup, error) {
	from, to := "0001-01-01", "9999-12-31"
	if !filter.From.IsZero() {
		from = demographics.DayKey(filter.From, s.loc)
	}
	if !filter.To.IsZero() {
		to = demographics.DayKey(filter.To, s.loc)
	}

	rows, err := s.db.QueryContext(ctx, queryListDailyRollups, from, to, sqliteLimit(filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("query daily rollups: %w", err)
	}
	defer rows.Close()

	var rollups []demographics.DailyRollup
	for rows.Next() {
		var (
			day string
			r   demographics.DailyRollup
		)
		if err := rows.Scan(append([]interface{}{&day}, bucketDest(&r.Buckets)...)...); err != nil {
			return nil, fmt.Errorf("scan daily rollup: %w", err)
		}
		if r.Day, err = time.ParseInLocation(demographics.DayLayout, day, s.loc); err != nil {
			return nil, fmt.Errorf("parse rollup day %q: %w", day, err)
		}
		rollups = append(rollups, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily rollups: %w", err)
	}
	return rollups, nil
}

func (s *Store) ReplaceMonthly(ctx context.Context, rollups []demographics.MonthlyRollup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace monthly: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, queryReplaceMonthly)
	if err != nil {
		return fmt.Errorf("replace monthly: prepare upsert: %w", err)
	}
	defer stmt.Close()

	updatedAt := s.now().UnixMilli()
	for _, m := range rollups {
		args := append([]interface{}{m.Year, int(m.Month)}, bucketArgs(m.Buckets)...)
		args = append(args, updatedAt)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("replace monthly: upsert %s: %w", m.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace monthly: commit: %w", err)
	}
	return nil
}

func (s *Store) ListMonthlyRollups(ctx context.Context, filter storage.MonthlyFilter) ([]demographics.MonthlyRollup, error) {
	from, to := 0, 999912
	if !filter.From.IsZero() {
		from = filter.From.Year()*100 + int(filter.From.Month())
	}
	if !filter.To.IsZero() {
		to = filter.To.Year()*100 + int(filter.To.Month())
	}

	rows, err := s.db.QueryContext(ctx, queryListMonthlyRollups, from, to, sqliteLimit(filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("query monthly rollups: %w", err)
	}
	defer rows.Close()

	var rollups []demographics.MonthlyRollup
	for rows.Next() {
		var (
			month int
			r     demographics.MonthlyRollup
		)
		if err := rows.Scan(append([]interface{}{&r.Year, &month}, bucketDest(&r.Buckets)...)...); err != nil {
			return nil, fmt.Errorf("scan monthly rollup: %w", err)
		}
		r.Month = time.Month(month)
		rollups = append(rollups, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly rollups: %w", err)
	}
	return rollups, nil
}

func (s *Store) ResetRollups(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("reset rollups: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, queryResetConsumed)
	if err != nil {
		return 0, fmt.Errorf("reset rollups: clear consumed: %w", err)
	}
	reset, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset rollups: check clear consumed: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryDeleteDailyRollups); err != nil {
		return 0, fmt.Errorf("reset rollups: delete daily: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryDeleteMonthlyRollups); err != nil {
		return 0, fmt.Errorf("reset rollups: delete monthly: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("reset rollups: commit: %w", err)
	}

	slog.Warn("[SQLite] Reset all rollups", "events_reset", reset)
	return reset, nil
}

func (s *Store) Counts(ctx context.Context) (storage.Counts, error) {
	var c storage.Counts
	if err := s.db.QueryRowContext(ctx, queryCounts).Scan(&c.RawEvents, &c.Unconsumed, &c.DailyRollups, &c.MonthlyRollups); err != nil {
		return storage.Counts{}, fmt.Errorf("read counts: %w", err)
	}
	return c, nil
}

func (s *Store) Purge(ctx context.Context) (storage.Counts, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Counts{}, fmt.Errorf("purge: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var removed storage.Counts
	targets := []struct {
		query string
		into  *int64
	}{
		{queryDeleteMonthlyRollups, &removed.MonthlyRollups},
		{queryDeleteDailyRollups, &removed.DailyRollups},
		{queryDeleteRawEvents, &removed.RawEvents},
	}
	for _, target := range targets {
		result, err := tx.ExecContext(ctx, target.query)
		if err != nil {
			return storage.Counts{}, fmt.Errorf("purge: %w", err)
		}
		if *target.into, err = result.RowsAffected(); err != nil {
			return storage.Counts{}, fmt.Errorf("purge: rows affected: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storage.Counts{}, fmt.Errorf("purge: commit: %w", err)
	}

	slog.Warn("[SQLite] Purged all data",
		"raw_events", removed.RawEvents,
		"daily_rollups", removed.DailyRollups,
		"monthly_rollups", removed.MonthlyRollups,
	)
	return removed, nil
}

// Ping verifies connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func sqliteLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func bucketArgs(b demographics.Buckets) []interface{} {
	args := make([]interface{}, 0, demographics.BucketCount)
	for _, v := range b {
		args = append(args, v)
	}
	return args
}

func bucketDest(b *demographics.Buckets) []interface{} {
	dest := make([]interface{}, 0, demographics.BucketCount)
	for i := range b {
		dest = append(dest, &b[i])
	}
	return dest
}

func scanRawEvent(row scanner) (demographics.RawEvent, error) {
	var (
		evt  demographics.RawEvent
		tsMs int64
	)
	dest := []interface{}{&evt.ID, &tsMs}
	dest = append(dest, bucketDest(&evt.Buckets)...)
	dest = append(dest, &evt.Consumed)
	if err := row.Scan(dest...); err != nil {
		return demographics.RawEvent{}, fmt.Errorf("failed to scan raw event row: %w", err)
	}
	evt.Timestamp = time.UnixMilli(tsMs).UTC()
	return evt, nil
}

func collectRawEvents(rows *sql.Rows) ([]demographics.RawEvent, error) {
	defer rows.Close()

	var events []demographics.RawEvent
	for rows.Next() {
		evt, err := scanRawEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating raw events: %w", err)
	}
	return events, nil
}
