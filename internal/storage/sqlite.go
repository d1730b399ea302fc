package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver (no CGO required)

	"github.com/yourname/healthsync/internal"
)

// timeLayout is RFC 3339 with fixed-width nanoseconds so stored UTC
// timestamps compare correctly as text in range scans.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var migrations = []struct {
	version int
	sql     string
}{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS sleep (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    subject_id  TEXT NOT NULL,
    start_time  TEXT NOT NULL,
    end_time    TEXT NOT NULL,
    quality     INTEGER NOT NULL,
    deep_sleep  INTEGER NOT NULL,
    light_sleep INTEGER NOT NULL,
    rem_sleep   INTEGER NOT NULL,
    awake_time  INTEGER NOT NULL,
    source      TEXT NOT NULL,
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sleep_subject_time ON sleep(subject_id, start_time);

CREATE TABLE IF NOT EXISTS heart_rate (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    subject_id    TEXT NOT NULL,
    timestamp     TEXT NOT NULL,
    value         INTEGER NOT NULL,
    resting_rate  INTEGER,
    activity_type TEXT,
    source        TEXT NOT NULL,
    created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hr_subject_time ON heart_rate(subject_id, timestamp);

CREATE TABLE IF NOT EXISTS weight (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    subject_id       TEXT NOT NULL,
    timestamp        TEXT NOT NULL,
    value            REAL NOT NULL,
    bmi              REAL,
    body_fat         REAL,
    muscle_mass      REAL,
    water_percentage REAL,
    bone_mass        REAL,
    source           TEXT NOT NULL,
    created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_weight_subject_time ON weight(subject_id, timestamp);
`,
	},
}

type SQLiteStore struct {
	db     *sql.DB
	logger internal.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path and
// applies pending schema migrations. Pass ":memory:" for an in-memory store.
func NewSQLiteStore(path string, logger internal.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// A single connection keeps in-memory databases coherent and lets the
	// sql pool serialize writers instead of returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_versions (
        version    INTEGER PRIMARY KEY,
        applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM schema_versions WHERE version = ?`, m.version).Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_versions(version) VALUES(?)`, m.version); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func encodeTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func decodeTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		// Rows written by external tooling may carry plain RFC 3339.
		t, err = time.Parse(time.RFC3339Nano, v)
	}
	return t, err
}

func (s *SQLiteStore) Insert(ctx context.Context, subject string, rec internal.Record) (int64, error) {
	now := time.Now().UTC()
	var (
		res sql.Result
		err error
	)
	switch r := rec.(type) {
	case *internal.SleepRecord:
		r.CreatedAt = now
		res, err = s.db.ExecContext(ctx, `INSERT INTO sleep
            (subject_id, start_time, end_time, quality, deep_sleep, light_sleep, rem_sleep, awake_time, source, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			subject, encodeTime(r.StartTime), encodeTime(r.EndTime), r.Quality,
			r.Phases.Deep, r.Phases.Light, r.Phases.Rem, r.Phases.Awake,
			r.Source, encodeTime(now))
	case *internal.HeartRateRecord:
		r.CreatedAt = now
		res, err = s.db.ExecContext(ctx, `INSERT INTO heart_rate
            (subject_id, timestamp, value, resting_rate, activity_type, source, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			subject, encodeTime(r.Timestamp), r.Value,
			nullableInt(r.RestingRate), nullableString(r.ActivityType),
			r.Source, encodeTime(now))
	case *internal.WeightRecord:
		r.CreatedAt = now
		var bodyFat, muscleMass, water, boneMass interface{}
		if bc := r.BodyComposition; bc != nil {
			bodyFat, muscleMass, water = bc.BodyFat, bc.MuscleMass, bc.WaterPercentage
			boneMass = nullableFloat(bc.BoneMass)
		}
		res, err = s.db.ExecContext(ctx, `INSERT INTO weight
            (subject_id, timestamp, value, bmi, body_fat, muscle_mass, water_percentage, bone_mass, source, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			subject, encodeTime(r.Timestamp), r.Value, nullableFloat(r.BMI),
			bodyFat, muscleMass, water, boneMass,
			r.Source, encodeTime(now))
	default:
		return 0, &internal.StorageError{Op: "insert", Err: fmt.Errorf("unknown record kind %q", rec.Kind())}
	}
	if err != nil {
		s.logger.Errorf("sqlite insert %s failed: %v", rec.Kind(), err)
		return 0, &internal.StorageError{Op: "insert " + string(rec.Kind()), Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &internal.StorageError{Op: "insert " + string(rec.Kind()), Err: err}
	}
	return id, nil
}

const sleepColumns = `id, start_time, end_time, quality, deep_sleep, light_sleep, rem_sleep, awake_time, source, created_at`

func (s *SQLiteStore) querySleep(ctx context.Context, where string, args ...interface{}) ([]internal.SleepRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sleepColumns+` FROM sleep WHERE `+where+` ORDER BY start_time DESC`, args...)
	if err != nil {
		return nil, &internal.StorageError{Op: "query sleep", Err: err}
	}
	defer rows.Close()

	out := []internal.SleepRecord{}
	for rows.Next() {
		var (
			r                              internal.SleepRecord
			startRaw, endRaw, createdAtRaw string
		)
		if err := rows.Scan(&r.ID, &startRaw, &endRaw, &r.Quality,
			&r.Phases.Deep, &r.Phases.Light, &r.Phases.Rem, &r.Phases.Awake,
			&r.Source, &createdAtRaw); err != nil {
			return nil, &internal.StorageError{Op: "scan sleep", Err: err}
		}
		if r.StartTime, err = decodeTime(startRaw); err != nil {
			return nil, &internal.StorageError{Op: "scan sleep", Err: err}
		}
		if r.EndTime, err = decodeTime(endRaw); err != nil {
			return nil, &internal.StorageError{Op: "scan sleep", Err: err}
		}
		if r.CreatedAt, err = decodeTime(createdAtRaw); err != nil {
			return nil, &internal.StorageError{Op: "scan sleep", Err: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &internal.StorageError{Op: "query sleep", Err: err}
	}
	return out, nil
}

func (s *SQLiteStore) SleepSince(ctx context.Context, subject string, since time.Time) ([]internal.SleepRecord, error) {
	return s.querySleep(ctx, `subject_id = ? AND start_time >= ?`, subject, encodeTime(since))
}

func (s *SQLiteStore) SleepBetween(ctx context.Context, subject string, start, end time.Time) ([]internal.SleepRecord, error) {
	return s.querySleep(ctx, `subject_id = ? AND start_time >= ? AND start_time < ?`,
		subject, encodeTime(start), encodeTime(end))
}

const heartRateColumns = `id, timestamp, value, resting_rate, activity_type, source, created_at`

func (s *SQLiteStore) queryHeartRate(ctx context.Context, where string, args ...interface{}) ([]internal.HeartRateRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+heartRateColumns+` FROM heart_rate WHERE `+where+` ORDER BY timestamp DESC`, args...)
	if err != nil {
		return nil, &internal.StorageError{Op: "query heart_rate", Err: err}
	}
	defer rows.Close()

	out := []internal.HeartRateRecord{}
	for rows.Next() {
		var (
			r                 internal.HeartRateRecord
			tsRaw, createdRaw string
			resting           sql.NullInt64
			activity          sql.NullString
		)
		if err := rows.Scan(&r.ID, &tsRaw, &r.Value, &resting, &activity, &r.Source, &createdRaw); err != nil {
			return nil, &internal.StorageError{Op: "scan heart_rate", Err: err}
		}
		if r.Timestamp, err = decodeTime(tsRaw); err != nil {
			return nil, &internal.StorageError{Op: "scan heart_rate", Err: err}
		}
		if r.CreatedAt, err = decodeTime(createdRaw); err != nil {
			return nil, &internal.StorageError{Op: "scan heart_rate", Err: err}
		}
		if resting.Valid {
			v := int(resting.Int64)
			r.RestingRate = &v
		}
		if activity.Valid {
			v := activity.String
			r.ActivityType = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &internal.StorageError{Op: "query heart_rate", Err: err}
	}
	return out, nil
}

func (s *SQLiteStore) HeartRateSince(ctx context.Context, subject string, since time.Time) ([]internal.HeartRateRecord, error) {
	return s.queryHeartRate(ctx, `subject_id = ? AND timestamp >= ?`, subject, encodeTime(since))
}

func (s *SQLiteStore) HeartRateBetween(ctx context.Context, subject string, start, end time.Time) ([]internal.HeartRateRecord, error) {
	return s.queryHeartRate(ctx, `subject_id = ? AND timestamp >= ? AND timestamp < ?`,
		subject, encodeTime(start), encodeTime(end))
}

const weightColumns = `id, timestamp, value, bmi, body_fat, muscle_mass, water_percentage, bone_mass, source, created_at`

func (s *SQLiteStore) queryWeight(ctx context.Context, where string, args ...interface{}) ([]internal.WeightRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+weightColumns+` FROM weight WHERE `+where+` ORDER BY timestamp DESC`, args...)
	if err != nil {
		return nil, &internal.StorageError{Op: "query weight", Err: err}
	}
	defer rows.Close()

	out := []internal.WeightRecord{}
	for rows.Next() {
		var (
			r                             internal.WeightRecord
			tsRaw, createdRaw             string
			bmi, fat, muscle, water, bone sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &tsRaw, &r.Value, &bmi, &fat, &muscle, &water, &bone, &r.Source, &createdRaw); err != nil {
			return nil, &internal.StorageError{Op: "scan weight", Err: err}
		}
		if r.Timestamp, err = decodeTime(tsRaw); err != nil {
			return nil, &internal.StorageError{Op: "scan weight", Err: err}
		}
		if r.CreatedAt, err = decodeTime(createdRaw); err != nil {
			return nil, &internal.StorageError{Op: "scan weight", Err: err}
		}
		if bmi.Valid {
			v := bmi.Float64
			r.BMI = &v
		}
		if fat.Valid || muscle.Valid || water.Valid || bone.Valid {
			bc := &internal.BodyComposition{
				BodyFat:         fat.Float64,
				MuscleMass:      muscle.Float64,
				WaterPercentage: water.Float64,
			}
			if bone.Valid {
				v := bone.Float64
				bc.BoneMass = &v
			}
			r.BodyComposition = bc
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &internal.StorageError{Op: "query weight", Err: err}
	}
	return out, nil
}

func (s *SQLiteStore) WeightSince(ctx context.Context, subject string, since time.Time) ([]internal.WeightRecord, error) {
	return s.queryWeight(ctx, `subject_id = ? AND timestamp >= ?`, subject, encodeTime(since))
}

func (s *SQLiteStore) WeightBetween(ctx context.Context, subject string, start, end time.Time) ([]internal.WeightRecord, error) {
	return s.queryWeight(ctx, `subject_id = ? AND timestamp >= ? AND timestamp < ?`,
		subject, encodeTime(start), encodeTime(end))
}

func (s *SQLiteStore) LatestTimestamp(ctx context.Context, subject string) (time.Time, bool, error) {
	var latest time.Time
	found := false
	for _, q := range []string{
		`SELECT MAX(start_time) FROM sleep WHERE subject_id = ?`,
		`SELECT MAX(timestamp) FROM heart_rate WHERE subject_id = ?`,
		`SELECT MAX(timestamp) FROM weight WHERE subject_id = ?`,
	} {
		var raw sql.NullString
		if err := s.db.QueryRowContext(ctx, q, subject).Scan(&raw); err != nil {
			return time.Time{}, false, &internal.StorageError{Op: "latest timestamp", Err: err}
		}
		if !raw.Valid {
			continue
		}
		t, err := decodeTime(raw.String)
		if err != nil {
			return time.Time{}, false, &internal.StorageError{Op: "latest timestamp", Err: err}
		}
		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

var _ MetricStore = (*SQLiteStore)(nil)
