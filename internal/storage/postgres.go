package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourname/healthsync/internal"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sleep (
    id          BIGSERIAL PRIMARY KEY,
    subject_id  TEXT NOT NULL,
    start_time  TIMESTAMPTZ NOT NULL,
    end_time    TIMESTAMPTZ NOT NULL,
    quality     INTEGER NOT NULL,
    deep_sleep  INTEGER NOT NULL,
    light_sleep INTEGER NOT NULL,
    rem_sleep   INTEGER NOT NULL,
    awake_time  INTEGER NOT NULL,
    source      TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_sleep_subject_time ON sleep(subject_id, start_time);

CREATE TABLE IF NOT EXISTS heart_rate (
    id            BIGSERIAL PRIMARY KEY,
    subject_id    TEXT NOT NULL,
    timestamp     TIMESTAMPTZ NOT NULL,
    value         INTEGER NOT NULL,
    resting_rate  INTEGER,
    activity_type TEXT,
    source        TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_hr_subject_time ON heart_rate(subject_id, timestamp);

CREATE TABLE IF NOT EXISTS weight (
    id               BIGSERIAL PRIMARY KEY,
    subject_id       TEXT NOT NULL,
    timestamp        TIMESTAMPTZ NOT NULL,
    value            DOUBLE PRECISION NOT NULL,
    bmi              DOUBLE PRECISION,
    body_fat         DOUBLE PRECISION,
    muscle_mass      DOUBLE PRECISION,
    water_percentage DOUBLE PRECISION,
    bone_mass        DOUBLE PRECISION,
    source           TEXT NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_weight_subject_time ON weight(subject_id, timestamp);
`

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStore(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStore) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *PostgresStore) Insert(ctx context.Context, subject string, rec internal.Record) (int64, error) {
	now := time.Now().UTC()
	var (
		id  int64
		err error
	)
	switch r := rec.(type) {
	case *internal.SleepRecord:
		r.CreatedAt = now
		err = p.pool.QueryRow(ctx, `INSERT INTO sleep
            (subject_id, start_time, end_time, quality, deep_sleep, light_sleep, rem_sleep, awake_time, source, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
			subject, r.StartTime, r.EndTime, r.Quality,
			r.Phases.Deep, r.Phases.Light, r.Phases.Rem, r.Phases.Awake,
			r.Source, now).Scan(&id)
	case *internal.HeartRateRecord:
		r.CreatedAt = now
		err = p.pool.QueryRow(ctx, `INSERT INTO heart_rate
            (subject_id, timestamp, value, resting_rate, activity_type, source, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			subject, r.Timestamp, r.Value, r.RestingRate, r.ActivityType, r.Source, now).Scan(&id)
	case *internal.WeightRecord:
		r.CreatedAt = now
		var bodyFat, muscleMass, water, boneMass *float64
		if bc := r.BodyComposition; bc != nil {
			bodyFat, muscleMass, water = &bc.BodyFat, &bc.MuscleMass, &bc.WaterPercentage
			boneMass = bc.BoneMass
		}
		err = p.pool.QueryRow(ctx, `INSERT INTO weight
            (subject_id, timestamp, value, bmi, body_fat, muscle_mass, water_percentage, bone_mass, source, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
			subject, r.Timestamp, r.Value, r.BMI,
			bodyFat, muscleMass, water, boneMass, r.Source, now).Scan(&id)
	default:
		return 0, &internal.StorageError{Op: "insert", Err: fmt.Errorf("unknown record kind %q", rec.Kind())}
	}
	if err != nil {
		p.logger.Errorf("postgres insert %s failed: %v", rec.Kind(), err)
		return 0, &internal.StorageError{Op: "insert " + string(rec.Kind()), Err: err}
	}
	return id, nil
}

func (p *PostgresStore) scanSleep(rows pgx.Rows) ([]internal.SleepRecord, error) {
	defer rows.Close()
	out := []internal.SleepRecord{}
	for rows.Next() {
		var r internal.SleepRecord
		if err := rows.Scan(&r.ID, &r.StartTime, &r.EndTime, &r.Quality,
			&r.Phases.Deep, &r.Phases.Light, &r.Phases.Rem, &r.Phases.Awake,
			&r.Source, &r.CreatedAt); err != nil {
			return nil, &internal.StorageError{Op: "scan sleep", Err: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &internal.StorageError{Op: "query sleep", Err: err}
	}
	return out, nil
}

func (p *PostgresStore) SleepSince(ctx context.Context, subject string, since time.Time) ([]internal.SleepRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+sleepColumns+` FROM sleep
        WHERE subject_id = $1 AND start_time >= $2 ORDER BY start_time DESC`, subject, since)
	if err != nil {
		return nil, &internal.StorageError{Op: "query sleep", Err: err}
	}
	return p.scanSleep(rows)
}

func (p *PostgresStore) SleepBetween(ctx context.Context, subject string, start, end time.Time) ([]internal.SleepRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+sleepColumns+` FROM sleep
        WHERE subject_id = $1 AND start_time >= $2 AND start_time < $3 ORDER BY start_time DESC`, subject, start, end)
	if err != nil {
		return nil, &internal.StorageError{Op: "query sleep", Err: err}
	}
	return p.scanSleep(rows)
}

func (p *PostgresStore) scanHeartRate(rows pgx.Rows) ([]internal.HeartRateRecord, error) {
	defer rows.Close()
	out := []internal.HeartRateRecord{}
	for rows.Next() {
		var r internal.HeartRateRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Value, &r.RestingRate,
			&r.ActivityType, &r.Source, &r.CreatedAt); err != nil {
			return nil, &internal.StorageError{Op: "scan heart_rate", Err: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &internal.StorageError{Op: "query heart_rate", Err: err}
	}
	return out, nil
}

func (p *PostgresStore) HeartRateSince(ctx context.Context, subject string, since time.Time) ([]internal.HeartRateRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+heartRateColumns+` FROM heart_rate
        WHERE subject_id = $1 AND timestamp >= $2 ORDER BY timestamp DESC`, subject, since)
	if err != nil {
		return nil, &internal.StorageError{Op: "query heart_rate", Err: err}
	}
	return p.scanHeartRate(rows)
}

func (p *PostgresStore) HeartRateBetween(ctx context.Context, subject string, start, end time.Time) ([]internal.HeartRateRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+heartRateColumns+` FROM heart_rate
        WHERE subject_id = $1 AND timestamp >= $2 AND timestamp < $3 ORDER BY timestamp DESC`, subject, start, end)
	if err != nil {
		return nil, &internal.StorageError{Op: "query heart_rate", Err: err}
	}
	return p.scanHeartRate(rows)
}

func (p *PostgresStore) scanWeight(rows pgx.Rows) ([]internal.WeightRecord, error) {
	defer rows.Close()
	out := []internal.WeightRecord{}
	for rows.Next() {
		var (
			r                        internal.WeightRecord
			fat, muscle, water, bone *float64
		)
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Value, &r.BMI,
			&fat, &muscle, &water, &bone, &r.Source, &r.CreatedAt); err != nil {
			return nil, &internal.StorageError{Op: "scan weight", Err: err}
		}
		if fat != nil || muscle != nil || water != nil || bone != nil {
			bc := &internal.BodyComposition{BoneMass: bone}
			if fat != nil {
				bc.BodyFat = *fat
			}
			if muscle != nil {
				bc.MuscleMass = *muscle
			}
			if water != nil {
				bc.WaterPercentage = *water
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

func (p *PostgresStore) WeightSince(ctx context.Context, subject string, since time.Time) ([]internal.WeightRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+weightColumns+` FROM weight
        WHERE subject_id = $1 AND timestamp >= $2 ORDER BY timestamp DESC`, subject, since)
	if err != nil {
		return nil, &internal.StorageError{Op: "query weight", Err: err}
	}
	return p.scanWeight(rows)
}

func (p *PostgresStore) WeightBetween(ctx context.Context, subject string, start, end time.Time) ([]internal.WeightRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+weightColumns+` FROM weight
        WHERE subject_id = $1 AND timestamp >= $2 AND timestamp < $3 ORDER BY timestamp DESC`, subject, start, end)
	if err != nil {
		return nil, &internal.StorageError{Op: "query weight", Err: err}
	}
	return p.scanWeight(rows)
}

func (p *PostgresStore) LatestTimestamp(ctx context.Context, subject string) (time.Time, bool, error) {
	var latest *time.Time
	err := p.pool.QueryRow(ctx, `SELECT GREATEST(
        (SELECT MAX(start_time) FROM sleep WHERE subject_id = $1),
        (SELECT MAX(timestamp) FROM heart_rate WHERE subject_id = $1),
        (SELECT MAX(timestamp) FROM weight WHERE subject_id = $1))`, subject).Scan(&latest)
	if err != nil {
		return time.Time{}, false, &internal.StorageError{Op: "latest timestamp", Err: err}
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return *latest, true, nil
}

var _ MetricStore = (*PostgresStore)(nil)
