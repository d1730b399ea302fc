package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/healthsync/internal"
	"github.com/yourname/healthsync/internal/storage"
)

func newTestEngine(t *testing.T) (*AggregationEngine, *storage.SQLiteStore) {
	t.Helper()
	s := newTestStore(t)
	return NewAggregationEngine(s, internal.NewNopLogger()), s
}

func insertSleep(t *testing.T, s *storage.SQLiteStore, start time.Time, hours int, quality int) {
	t.Helper()
	_, err := s.Insert(context.Background(), testSubject, &internal.SleepRecord{
		StartTime: start,
		EndTime:   start.Add(time.Duration(hours) * time.Hour),
		Quality:   quality,
		Phases:    internal.SleepPhases{Deep: 60, Light: hours*60 - 120, Rem: 60},
		Source:    "test",
	})
	require.NoError(t, err)
}

func insertHeartRate(t *testing.T, s *storage.SQLiteStore, ts time.Time, value int) {
	t.Helper()
	_, err := s.Insert(context.Background(), testSubject, &internal.HeartRateRecord{
		Timestamp: ts, Value: value, Source: "test",
	})
	require.NoError(t, err)
}

func insertWeight(t *testing.T, s *storage.SQLiteStore, ts time.Time, value float64) {
	t.Helper()
	_, err := s.Insert(context.Background(), testSubject, &internal.WeightRecord{
		Timestamp: ts, Value: value, Source: "test",
	})
	require.NoError(t, err)
}

func TestDailySummaryEmptyDay(t *testing.T) {
	e, _ := newTestEngine(t)

	sum, err := e.DailySummary(context.Background(), testSubject, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, sum.Sleep)
	assert.NotNil(t, sum.Sleep)
	assert.Empty(t, sum.HeartRate)
	assert.Empty(t, sum.Weight)
	assert.Nil(t, sum.HeartRateAverage)
}

func TestDailySummaryHeartRateAverage(t *testing.T) {
	e, s := newTestEngine(t)
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	insertHeartRate(t, s, day.Add(8*time.Hour), 60)
	insertHeartRate(t, s, day.Add(12*time.Hour), 80)
	insertHeartRate(t, s, day.Add(24*time.Hour), 180) // next day, excluded

	sum, err := e.DailySummary(context.Background(), testSubject, day)
	require.NoError(t, err)
	require.Len(t, sum.HeartRate, 2)
	require.NotNil(t, sum.HeartRateAverage)
	assert.InDelta(t, 70.0, *sum.HeartRateAverage, 1e-9)
}

func TestDailySummaryIdempotent(t *testing.T) {
	e, s := newTestEngine(t)
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	insertSleep(t, s, day.Add(-2*time.Hour).Add(24*time.Hour), 8, 82)
	insertWeight(t, s, day.Add(7*time.Hour), 81.4)

	first, err := e.DailySummary(context.Background(), testSubject, day)
	require.NoError(t, err)
	second, err := e.DailySummary(context.Background(), testSubject, day)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestTrendReportDistinctDayDivision(t *testing.T) {
	e, s := newTestEngine(t)
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	// Two sleep sessions on one day, one on another.
	day1 := time.Date(2024, 2, 8, 1, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 2, 9, 1, 0, 0, 0, time.UTC)
	insertSleep(t, s, day1, 6, 70)
	insertSleep(t, s, day1.Add(14*time.Hour), 2, 90) // nap, same day
	insertSleep(t, s, day2, 8, 84)

	report, err := e.TrendReport(context.Background(), testSubject, now, 7)
	require.NoError(t, err)

	// Sums divide by 2 distinct days, not 3 records.
	assert.InDelta(t, float64(6*60+2*60+8*60)/2, report.Sleep.AverageDurationMinutes, 1e-9)
	assert.InDelta(t, float64(70+90+84)/2, report.Sleep.AverageQuality, 1e-9)

	// Best day by per-day mean quality: day2 (84) beats day1 ((70+90)/2 = 80).
	require.NotNil(t, report.Sleep.BestDay)
	require.NotNil(t, report.Sleep.WorstDay)
	assert.Equal(t, "2024-02-09", *report.Sleep.BestDay)
	assert.Equal(t, "2024-02-08", *report.Sleep.WorstDay)
}

func TestTrendReportHeartRateExtrema(t *testing.T) {
	e, s := newTestEngine(t)
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	insertHeartRate(t, s, now.Add(-30*time.Hour), 55)
	insertHeartRate(t, s, now.Add(-29*time.Hour), 140)
	insertHeartRate(t, s, now.Add(-5*time.Hour), 72)

	report, err := e.TrendReport(context.Background(), testSubject, now, 7)
	require.NoError(t, err)
	require.NotNil(t, report.HeartRate.Highest)
	require.NotNil(t, report.HeartRate.Lowest)
	assert.Equal(t, 140, *report.HeartRate.Highest)
	assert.Equal(t, 55, *report.HeartRate.Lowest)
	// Sum over two distinct days.
	assert.InDelta(t, float64(55+140+72)/2, report.HeartRate.Average, 1e-9)
}

func TestTrendReportWeightSeriesOldestFirst(t *testing.T) {
	e, s := newTestEngine(t)
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	insertWeight(t, s, now.Add(-72*time.Hour), 82.0)
	insertWeight(t, s, now.Add(-24*time.Hour), 81.0)

	report, err := e.TrendReport(context.Background(), testSubject, now, 7)
	require.NoError(t, err)
	assert.InDelta(t, 81.5, report.Weight.Average, 1e-9)
	require.Len(t, report.Weight.Trend, 2)
	assert.Equal(t, 82.0, report.Weight.Trend[0].Weight)
	assert.Equal(t, 81.0, report.Weight.Trend[1].Weight)
	assert.Equal(t, "2024-02-07", report.Weight.Trend[0].Date)
}

func TestTrendReportEmptyStore(t *testing.T) {
	e, _ := newTestEngine(t)

	report, err := e.TrendReport(context.Background(), testSubject, time.Now(), 30)
	require.NoError(t, err)
	assert.Zero(t, report.Sleep.AverageQuality)
	assert.Nil(t, report.Sleep.BestDay)
	assert.Nil(t, report.HeartRate.Highest)
	assert.Zero(t, report.Weight.Average)
	assert.NotNil(t, report.Weight.Trend)
	assert.Empty(t, report.Weight.Trend)
}

func TestTrendReportReAnchorsToLatestData(t *testing.T) {
	e, s := newTestEngine(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// All data is months older than the requested window.
	old := time.Date(2024, 2, 9, 7, 0, 0, 0, time.UTC)
	insertWeight(t, s, old, 80.5)
	insertWeight(t, s, old.Add(-24*time.Hour), 81.5)

	report, err := e.TrendReport(context.Background(), testSubject, now, 7)
	require.NoError(t, err)
	assert.InDelta(t, 81.0, report.Weight.Average, 1e-9)
	require.Len(t, report.Weight.Trend, 2)
}

func TestRecentRecordsKindDispatch(t *testing.T) {
	e, s := newTestEngine(t)
	now := time.Now().UTC()
	insertHeartRate(t, s, now.Add(-time.Hour), 72)

	got, err := e.RecentRecords(context.Background(), testSubject, internal.KindHeartRate, now, 7)
	require.NoError(t, err)
	records, ok := got.([]internal.HeartRateRecord)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, 72, records[0].Value)
}

func TestRecentMetricsFlattened(t *testing.T) {
	e, s := newTestEngine(t)
	now := time.Now().UTC()

	insertSleep(t, s, now.Add(-20*time.Hour), 8, 82)
	insertHeartRate(t, s, now.Add(-6*time.Hour), 72)
	insertWeight(t, s, now.Add(-5*time.Hour), 81.4)

	metrics, err := e.RecentMetrics(context.Background(), testSubject, now, 7)
	require.NoError(t, err)
	require.Len(t, metrics, 3)
	assert.Equal(t, internal.KindSleep, metrics[0].Kind)
	assert.Equal(t, internal.KindHeartRate, metrics[1].Kind)
	assert.Equal(t, internal.KindWeight, metrics[2].Kind)
}
