package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yourname/healthsync/internal"
	"github.com/yourname/healthsync/internal/storage"
)

var validate = validator.New()

// Bounds mirror what the wearable-sync clients are allowed to submit.
// Integer and float fields whose zero value is legal are pointers so that
// "required" distinguishes absent from zero.

type SleepPhasesRequest struct {
	Deep  *int `json:"deep" validate:"required,gte=0"`
	Light *int `json:"light" validate:"required,gte=0"`
	Rem   *int `json:"rem" validate:"required,gte=0"`
	Awake *int `json:"awake" validate:"required,gte=0"`
}

type SleepRequest struct {
	StartTime time.Time           `json:"start_time" validate:"required"`
	EndTime   time.Time           `json:"end_time" validate:"required,gtfield=StartTime"`
	Quality   *int                `json:"quality" validate:"required,gte=0,lte=100"`
	Phases    *SleepPhasesRequest `json:"phases" validate:"required"`
	Source    string              `json:"source" validate:"required"`
}

type HeartRateRequest struct {
	Timestamp    time.Time `json:"timestamp" validate:"required"`
	Value        int       `json:"value" validate:"required,gte=30,lte=220"`
	RestingRate  *int      `json:"resting_rate" validate:"omitempty,gte=30,lte=100"`
	ActivityType *string   `json:"activity_type"`
	Source       string    `json:"source" validate:"required"`
}

type BodyCompositionRequest struct {
	BodyFat         *float64 `json:"body_fat" validate:"required,gte=0,lte=100"`
	MuscleMass      *float64 `json:"muscle_mass" validate:"required,gte=0,lte=100"`
	WaterPercentage *float64 `json:"water_percentage" validate:"required,gte=0,lte=100"`
	BoneMass        *float64 `json:"bone_mass" validate:"omitempty,gte=0"`
}

type WeightRequest struct {
	Timestamp       time.Time               `json:"timestamp" validate:"required"`
	Value           float64                 `json:"value" validate:"required,gt=0"`
	BMI             *float64                `json:"bmi" validate:"omitempty,gt=0"`
	BodyComposition *BodyCompositionRequest `json:"body_composition"`
	Source          string                  `json:"source" validate:"required"`
}

// asValidationError converts validator output to the field-level error the
// boundary reports.
func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := "failed constraint " + fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return &internal.ValidationError{Field: strings.ToLower(fe.Field()), Reason: reason}
	}
	return &internal.ValidationError{Reason: err.Error()}
}

// CreateSleep validates the request and appends one sleep row. Violations
// never reach storage.
func CreateSleep(ctx context.Context, store storage.MetricStore, subject string, req *SleepRequest) (*internal.SleepRecord, error) {
	if err := validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}
	rec := &internal.SleepRecord{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Quality:   *req.Quality,
		Phases: internal.SleepPhases{
			Deep:  *req.Phases.Deep,
			Light: *req.Phases.Light,
			Rem:   *req.Phases.Rem,
			Awake: *req.Phases.Awake,
		},
		Source: req.Source,
	}
	id, err := store.Insert(ctx, subject, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	return rec, nil
}

func CreateHeartRate(ctx context.Context, store storage.MetricStore, subject string, req *HeartRateRequest) (*internal.HeartRateRecord, error) {
	if err := validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}
	rec := &internal.HeartRateRecord{
		Timestamp:    req.Timestamp,
		Value:        req.Value,
		RestingRate:  req.RestingRate,
		ActivityType: req.ActivityType,
		Source:       req.Source,
	}
	id, err := store.Insert(ctx, subject, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	return rec, nil
}

func CreateWeight(ctx context.Context, store storage.MetricStore, subject string, req *WeightRequest) (*internal.WeightRecord, error) {
	if err := validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}
	rec := &internal.WeightRecord{
		Timestamp: req.Timestamp,
		Value:     req.Value,
		BMI:       req.BMI,
		Source:    req.Source,
	}
	if bc := req.BodyComposition; bc != nil {
		rec.BodyComposition = &internal.BodyComposition{
			BodyFat:         *bc.BodyFat,
			MuscleMass:      *bc.MuscleMass,
			WaterPercentage: *bc.WaterPercentage,
			BoneMass:        bc.BoneMass,
		}
	}
	id, err := store.Insert(ctx, subject, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	return rec, nil
}
