package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourname/healthsync/internal"
	"github.com/yourname/healthsync/internal/storage"
)

// AggregationEngine derives daily summaries and multi-day trend statistics
// purely from MetricStore reads. It holds no state of its own; every
// operation takes the subject explicitly.
type AggregationEngine struct {
	store  storage.MetricStore
	logger internal.Logger
}

func NewAggregationEngine(store storage.MetricStore, logger internal.Logger) *AggregationEngine {
	return &AggregationEngine{store: store, logger: logger}
}

const dayLayout = "2006-01-02"

func dayKey(t time.Time) string { return t.UTC().Format(dayLayout) }

// DailySummary aggregates all records in the half-open UTC day window
// [date, date+1). Fails only on a storage error; a day with no records is a
// legitimate empty summary with a null heart-rate average.
func (e *AggregationEngine) DailySummary(ctx context.Context, subject string, date time.Time) (*internal.DailySummary, error) {
	start := date.UTC()
	end := start.Add(24 * time.Hour)

	sleep, err := e.store.SleepBetween(ctx, subject, start, end)
	if err != nil {
		return nil, err
	}
	heartRate, err := e.store.HeartRateBetween(ctx, subject, start, end)
	if err != nil {
		return nil, err
	}
	weight, err := e.store.WeightBetween(ctx, subject, start, end)
	if err != nil {
		return nil, err
	}

	summary := &internal.DailySummary{
		Date:      start,
		Sleep:     sleep,
		HeartRate: heartRate,
		Weight:    weight,
	}
	if len(heartRate) > 0 {
		var sum float64
		for _, hr := range heartRate {
			sum += float64(hr.Value)
		}
		avg := sum / float64(len(heartRate))
		summary.HeartRateAverage = &avg
	}
	return summary, nil
}

// TrendReport rolls up the window [now-days, now). When that window holds no
// records the window is re-anchored at the latest stored timestamp, which
// keeps the report correct against back-dated synthetic data. Sleep and
// heart-rate averages divide by the count of distinct calendar days carrying
// data of that kind, not by record count, so dense heart-rate sampling does
// not bias the day-level average. Empty categories report zero/null.
func (e *AggregationEngine) TrendReport(ctx context.Context, subject string, now time.Time, days int) (*internal.TrendReport, error) {
	end := now.UTC()
	start := end.AddDate(0, 0, -days)

	latest, ok, err := e.store.LatestTimestamp(ctx, subject)
	if err != nil {
		return nil, err
	}
	if ok && latest.Before(start) {
		end = latest
		start = end.AddDate(0, 0, -days)
		e.logger.Debugf("trend window re-anchored to %s", end.Format(time.RFC3339))
	}

	sleeps, err := e.store.SleepSince(ctx, subject, start)
	if err != nil {
		return nil, err
	}
	heartRates, err := e.store.HeartRateSince(ctx, subject, start)
	if err != nil {
		return nil, err
	}
	weights, err := e.store.WeightSince(ctx, subject, start)
	if err != nil {
		return nil, err
	}

	report := &internal.TrendReport{
		Weight: internal.WeightTrend{Trend: []internal.WeightPoint{}},
	}

	type dayQuality struct {
		sum float64
		n   int
	}
	sleepDays := map[string]*dayQuality{}
	var durationSum, qualitySum float64
	for _, s := range sleeps {
		durationSum += float64(s.AsleepMinutes())
		qualitySum += float64(s.Quality)
		key := dayKey(s.StartTime)
		dq := sleepDays[key]
		if dq == nil {
			dq = &dayQuality{}
			sleepDays[key] = dq
		}
		dq.sum += float64(s.Quality)
		dq.n++
	}
	if len(sleepDays) > 0 {
		n := float64(len(sleepDays))
		report.Sleep.AverageDurationMinutes = durationSum / n
		report.Sleep.AverageQuality = qualitySum / n

		var bestDay, worstDay string
		var bestMean, worstMean float64
		for key, dq := range sleepDays {
			mean := dq.sum / float64(dq.n)
			if bestDay == "" || mean > bestMean || (mean == bestMean && key < bestDay) {
				bestDay, bestMean = key, mean
			}
			if worstDay == "" || mean < worstMean || (mean == worstMean && key < worstDay) {
				worstDay, worstMean = key, mean
			}
		}
		report.Sleep.BestDay = &bestDay
		report.Sleep.WorstDay = &worstDay
	}

	hrDays := map[string]struct{}{}
	var hrSum float64
	for _, hr := range heartRates {
		hrSum += float64(hr.Value)
		hrDays[dayKey(hr.Timestamp)] = struct{}{}
		v := hr.Value
		if report.HeartRate.Highest == nil || v > *report.HeartRate.Highest {
			report.HeartRate.Highest = &v
		}
		if report.HeartRate.Lowest == nil || v < *report.HeartRate.Lowest {
			report.HeartRate.Lowest = &v
		}
	}
	if len(hrDays) > 0 {
		report.HeartRate.Average = hrSum / float64(len(hrDays))
	}

	var weightSum float64
	for _, w := range weights {
		weightSum += w.Value
	}
	if len(weights) > 0 {
		report.Weight.Average = weightSum / float64(len(weights))
	}
	// Since queries return newest-first; the series reads oldest-first.
	for i := len(weights) - 1; i >= 0; i-- {
		report.Weight.Trend = append(report.Weight.Trend, internal.WeightPoint{
			Date:   dayKey(weights[i].Timestamp),
			Weight: weights[i].Value,
		})
	}

	return report, nil
}

// RecentRecords answers the "recent N days of one kind" query shape with an
// exhaustive dispatch over the closed kind set.
func (e *AggregationEngine) RecentRecords(ctx context.Context, subject string, kind internal.MetricKind, now time.Time, days int) (interface{}, error) {
	since := now.UTC().AddDate(0, 0, -days)
	switch kind {
	case internal.KindSleep:
		return e.store.SleepSince(ctx, subject, since)
	case internal.KindHeartRate:
		return e.store.HeartRateSince(ctx, subject, since)
	case internal.KindWeight:
		return e.store.WeightSince(ctx, subject, since)
	}
	return nil, &internal.ValidationError{Field: "metric_type", Reason: fmt.Sprintf("unknown kind %q", kind)}
}

// RecentMetrics flattens the last N days of every kind into the entry list
// the insight pipeline consumes: sleep first, then heart rate, then weight.
func (e *AggregationEngine) RecentMetrics(ctx context.Context, subject string, now time.Time, days int) ([]internal.Metric, error) {
	since := now.UTC().AddDate(0, 0, -days)

	sleeps, err := e.store.SleepSince(ctx, subject, since)
	if err != nil {
		return nil, err
	}
	heartRates, err := e.store.HeartRateSince(ctx, subject, since)
	if err != nil {
		return nil, err
	}
	weights, err := e.store.WeightSince(ctx, subject, since)
	if err != nil {
		return nil, err
	}
	return flattenMetrics(sleeps, heartRates, weights), nil
}
