package internal

import "time"

// MetricKind is the closed set of telemetry categories the system understands.
type MetricKind string

const (
	KindSleep     MetricKind = "sleep"
	KindHeartRate MetricKind = "heart_rate"
	KindWeight    MetricKind = "weight"
)

// ParseMetricKind returns the kind for s, or false when s is not one of the
// three known categories.
func ParseMetricKind(s string) (MetricKind, bool) {
	switch MetricKind(s) {
	case KindSleep, KindHeartRate, KindWeight:
		return MetricKind(s), true
	}
	return "", false
}

// Record is the tagged variant over the three stored record types. Code that
// dispatches on a Record switches exhaustively over the concrete types.
type Record interface {
	Kind() MetricKind
	// EffectiveTime is the record's primary time column: start_time for
	// sleep, timestamp otherwise.
	EffectiveTime() time.Time
}

type SleepPhases struct {
	Deep  int `json:"deep"`
	Light int `json:"light"`
	Rem   int `json:"rem"`
	Awake int `json:"awake"`
}

type SleepRecord struct {
	ID        int64       `json:"id"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
	Quality   int         `json:"quality"` // 0–100
	Phases    SleepPhases `json:"phases"`  // minutes per phase
	Source    string      `json:"source"`
	CreatedAt time.Time   `json:"created_at"`
}

func (r *SleepRecord) Kind() MetricKind { return KindSleep }

func (r *SleepRecord) EffectiveTime() time.Time { return r.StartTime }

// AsleepMinutes is the time actually asleep: deep + light + rem, awake
// excluded. Phase sums need not match end_time - start_time exactly since
// sync clients round phase durations.
func (r *SleepRecord) AsleepMinutes() int {
	return r.Phases.Deep + r.Phases.Light + r.Phases.Rem
}

type HeartRateRecord struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Value        int       `json:"value"` // bpm, 30–220
	RestingRate  *int      `json:"resting_rate,omitempty"`
	ActivityType *string   `json:"activity_type,omitempty"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *HeartRateRecord) Kind() MetricKind { return KindHeartRate }

func (r *HeartRateRecord) EffectiveTime() time.Time { return r.Timestamp }

type BodyComposition struct {
	BodyFat         float64  `json:"body_fat"`
	MuscleMass      float64  `json:"muscle_mass"`
	WaterPercentage float64  `json:"water_percentage"`
	BoneMass        *float64 `json:"bone_mass,omitempty"` // kg
}

type WeightRecord struct {
	ID              int64            `json:"id"`
	Timestamp       time.Time        `json:"timestamp"`
	Value           float64          `json:"value"` // kg
	BMI             *float64         `json:"bmi,omitempty"`
	BodyComposition *BodyComposition `json:"body_composition,omitempty"`
	Source          string           `json:"source"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (r *WeightRecord) Kind() MetricKind { return KindWeight }

func (r *WeightRecord) EffectiveTime() time.Time { return r.Timestamp }

// DailySummary holds every record of every kind whose primary time falls in
// the half-open day window [date, date+1), plus the day's heart-rate mean.
// Derived, never persisted.
type DailySummary struct {
	Date             time.Time         `json:"date"`
	Sleep            []SleepRecord     `json:"sleep"`
	HeartRate        []HeartRateRecord `json:"heart_rate"`
	Weight           []WeightRecord    `json:"weight"`
	HeartRateAverage *float64          `json:"heart_rate_average"`
}

type WeightPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

type SleepTrend struct {
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
	AverageQuality         float64 `json:"average_quality"`
	BestDay                *string `json:"best_day"`
	WorstDay               *string `json:"worst_day"`
}

type HeartRateTrend struct {
	Average float64 `json:"average"`
	Highest *int    `json:"highest"`
	Lowest  *int    `json:"lowest"`
}

type WeightTrend struct {
	Average float64       `json:"average"`
	Trend   []WeightPoint `json:"trend"`
}

// TrendReport is the multi-day rollup over an N-day window.
type TrendReport struct {
	Sleep     SleepTrend     `json:"sleep"`
	HeartRate HeartRateTrend `json:"heart_rate"`
	Weight    WeightTrend    `json:"weight"`
}

// Metric is a stored record flattened into the single shape the insight
// pipeline consumes. Value is asleep minutes for sleep, bpm for heart rate,
// and kg for weight.
type Metric struct {
	Timestamp   time.Time  `json:"timestamp"`
	Kind        MetricKind `json:"metric_type"`
	Value       float64    `json:"value"`
	Quality     *int       `json:"quality,omitempty"`
	RestingRate *int       `json:"resting_heart_rate,omitempty"`
	BMI         *float64   `json:"bmi,omitempty"`
}
