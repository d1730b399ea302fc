package storage

import (
	"context"
	"time"

	"github.com/yourname/healthsync/internal"
)

// MetricStore is the durable persistence layer for the three record kinds.
// All relations are append-only; there is no update or delete. Range reads
// return newest-first and an empty window yields an empty slice, never an
// error. Implementations must be safe for concurrent use.
type MetricStore interface {
	// Insert persists one record of the matching kind after dispatching on
	// the Record variant, and returns the generated identifier. Engine
	// failures are wrapped as *internal.StorageError.
	Insert(ctx context.Context, subject string, rec internal.Record) (int64, error)

	// Range reads: primary time >= since.
	SleepSince(ctx context.Context, subject string, since time.Time) ([]internal.SleepRecord, error)
	HeartRateSince(ctx context.Context, subject string, since time.Time) ([]internal.HeartRateRecord, error)
	WeightSince(ctx context.Context, subject string, since time.Time) ([]internal.WeightRecord, error)

	// Window reads: half-open interval [start, end).
	SleepBetween(ctx context.Context, subject string, start, end time.Time) ([]internal.SleepRecord, error)
	HeartRateBetween(ctx context.Context, subject string, start, end time.Time) ([]internal.HeartRateRecord, error)
	WeightBetween(ctx context.Context, subject string, start, end time.Time) ([]internal.WeightRecord, error)

	// LatestTimestamp returns the newest primary time across all three
	// relations, with ok=false when the store holds no records. Used to
	// re-anchor trend windows against back-dated data.
	LatestTimestamp(ctx context.Context, subject string) (latest time.Time, ok bool, err error)

	Ping(ctx context.Context) error
	Close() error
}
