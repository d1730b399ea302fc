package service

import "github.com/yourname/healthsync/internal"

// flattenMetrics converts typed records into the flat entries the insight
// pipeline partitions by kind.
func flattenMetrics(sleeps []internal.SleepRecord, heartRates []internal.HeartRateRecord, weights []internal.WeightRecord) []internal.Metric {
	metrics := make([]internal.Metric, 0, len(sleeps)+len(heartRates)+len(weights))
	for i := range sleeps {
		s := &sleeps[i]
		q := s.Quality
		metrics = append(metrics, internal.Metric{
			Timestamp: s.StartTime,
			Kind:      internal.KindSleep,
			Value:     float64(s.AsleepMinutes()),
			Quality:   &q,
		})
	}
	for i := range heartRates {
		hr := &heartRates[i]
		metrics = append(metrics, internal.Metric{
			Timestamp:   hr.Timestamp,
			Kind:        internal.KindHeartRate,
			Value:       float64(hr.Value),
			RestingRate: hr.RestingRate,
		})
	}
	for i := range weights {
		w := &weights[i]
		metrics = append(metrics, internal.Metric{
			Timestamp: w.Timestamp,
			Kind:      internal.KindWeight,
			Value:     w.Value,
			BMI:       w.BMI,
		})
	}
	return metrics
}

// SummaryMetrics flattens one daily summary for the per-day insight path.
func SummaryMetrics(summary *internal.DailySummary) []internal.Metric {
	return flattenMetrics(summary.Sleep, summary.HeartRate, summary.Weight)
}
