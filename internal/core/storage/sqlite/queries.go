package sqlite

// SQLite keeps timestamps as unix milliseconds and days as ISO text so that
// range filters compare plain integers and strings.

const (
	bucketColumns = `
			male_0_9, male_10_19, male_20_29, male_30_39, male_40_49, male_50_plus,
			female_0_9, female_10_19, female_20_29, female_30_39, female_40_49, female_50_plus`

	querySaveRawEvent = `
		INSERT INTO raw_events (ts_ms,` + bucketColumns + `
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	queryListRawEvents = `
		SELECT id, ts_ms,` + bucketColumns + `,
			consumed
		FROM raw_events
		WHERE ts_ms >= ? AND ts_ms < ?
		ORDER BY ts_ms ASC, id ASC
	`

	queryListUnconsumed = `
		SELECT id, ts_ms,` + bucketColumns + `,
			consumed
		FROM raw_events
		WHERE consumed = 0
		ORDER BY id ASC
	`

	querySumRawBuckets = `
		SELECT
			COALESCE(SUM(male_0_9), 0), COALESCE(SUM(male_10_19), 0), COALESCE(SUM(male_20_29), 0),
			COALESCE(SUM(male_30_39), 0), COALESCE(SUM(male_40_49), 0), COALESCE(SUM(male_50_plus), 0),
			COALESCE(SUM(female_0_9), 0), COALESCE(SUM(female_10_19), 0), COALESCE(SUM(female_20_29), 0),
			COALESCE(SUM(female_30_39), 0), COALESCE(SUM(female_40_49), 0), COALESCE(SUM(female_50_plus), 0)
		FROM raw_events
		WHERE ts_ms >= ? AND ts_ms < ?
	`

	queryCountRawEvents = `SELECT COUNT(*) FROM raw_events`

	queryCountRawEventsByConsumed = `SELECT COUNT(*) FROM raw_events WHERE consumed = ?`

	// queryMarkConsumedPrefix is completed with one placeholder per id.
	queryMarkConsumedPrefix = `UPDATE raw_events SET consumed = 1 WHERE consumed = 0 AND id IN (`

	queryIncrementDaily = `
		INSERT INTO daily_rollups (day,` + bucketColumns + `,
			updated_at_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (day) DO UPDATE SET
			male_0_9       = daily_rollups.male_0_9 + excluded.male_0_9,
			male_10_19     = daily_rollups.male_10_19 + excluded.male_10_19,
			male_20_29     = daily_rollups.male_20_29 + excluded.male_20_29,
			male_30_39     = daily_rollups.male_30_39 + excluded.male_30_39,
			male_40_49     = daily_rollups.male_40_49 + excluded.male_40_49,
			male_50_plus   = daily_rollups.male_50_plus + excluded.male_50_plus,
			female_0_9     = daily_rollups.female_0_9 + excluded.female_0_9,
			female_10_19   = daily_rollups.female_10_19 + excluded.female_10_19,
			female_20_29   = daily_rollups.female_20_29 + excluded.female_20_29,
			female_30_39   = daily_rollups.female_30_39 + excluded.female_30_39,
			female_40_49   = daily_rollups.female_40_49 + excluded.female_40_49,
			female_50_plus = daily_rollups.female_50_plus + excluded.female_50_plus,
			updated_at_ms  = excluded.updated_at_ms
	`

	// queryListDailyRollups uses LIMIT -1 for "no limit".
	queryListDailyRollups = `
		SELECT day,` + bucketColumns + `
		FROM daily_rollups
		WHERE day >= ? AND day <= ?
		ORDER BY day DESC
		LIMIT ?
	`

	queryReplaceMonthly = `
		INSERT INTO monthly_rollups (year, month,` + bucketColumns + `,
			updated_at_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (year, month) DO UPDATE SET
			male_0_9       = excluded.male_0_9,
			male_10_19     = excluded.male_10_19,
			male_20_29     = excluded.male_20_29,
			male_30_39     = excluded.male_30_39,
			male_40_49     = excluded.male_40_49,
			male_50_plus   = excluded.male_50_plus,
			female_0_9     = excluded.female_0_9,
			female_10_19   = excluded.female_10_19,
			female_20_29   = excluded.female_20_29,
			female_30_39   = excluded.female_30_39,
			female_40_49   = excluded.female_40_49,
			female_50_plus = excluded.female_50_plus,
			updated_at_ms  = excluded.updated_at_ms
	`

	queryListMonthlyRollups = `
		SELECT year, month,` + bucketColumns + `
		FROM monthly_rollups
		WHERE (year * 100 + month) BETWEEN ? AND ?
		ORDER BY year DESC, month DESC
		LIMIT ?
	`

	queryResetConsumed = `UPDATE raw_events SET consumed = 0 WHERE consumed = 1`

	queryDeleteDailyRollups = `DELETE FROM daily_rollups`

	queryDeleteMonthlyRollups = `DELETE FROM monthly_rollups`

	queryDeleteRawEvents = `DELETE FROM raw_events`

	queryCounts = `
		SELECT
			(SELECT COUNT(*) FROM raw_events),
			(SELECT COUNT(*) FROM raw_events WHERE consumed = 0),
			(SELECT COUNT(*) FROM daily_rollups),
			(SELECT COUNT(*) FROM monthly_rollups)
	`
)
