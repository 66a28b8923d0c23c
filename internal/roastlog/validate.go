package roastlog

import (
	"math"

	"roastlog/internal/models"
)

// Control level bounds shared by fan and heat settings.
const (
	MinLevel = 0
	MaxLevel = 9
)

// ValidationError reports a malformed event at ingestion.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid roast event: " + e.Field + ": " + e.Reason
}

// EventInput is an event as submitted by a client, before admission.
// Pointer fields are optional; TimeOffsetSeconds is required.
type EventInput struct {
	Kind              string
	TimeOffsetSeconds *int
	TemperatureF      *float64
	FanLevel          *int
	HeatLevel         *int
	Note              *string
}

// Validate checks the input and returns a *ValidationError for the first problem.
func (in EventInput) Validate() error {
	_, err := in.admit()
	return err
}

func (in EventInput) admit() (models.EventKind, error) {
	kind, err := models.ParseEventKind(in.Kind)
	if err != nil {
		return "", &ValidationError{Field: "kind", Reason: err.Error()}
	}
	if in.TimeOffsetSeconds == nil {
		return "", &ValidationError{Field: "time_offset_seconds", Reason: "is required"}
	}
	if *in.TimeOffsetSeconds < 0 {
		return "", &ValidationError{Field: "time_offset_seconds", Reason: "must be >= 0"}
	}
	if t := in.TemperatureF; t != nil && (math.IsNaN(*t) || math.IsInf(*t, 0)) {
		return "", &ValidationError{Field: "temperature_f", Reason: "must be a finite number"}
	}
	if err := checkLevel("fan_level", in.FanLevel); err != nil {
		return "", err
	}
	if err := checkLevel("heat_level", in.HeatLevel); err != nil {
		return "", err
	}
	return kind, nil
}

func checkLevel(field string, v *int) error {
	if v == nil {
		return nil
	}
	if *v < MinLevel || *v > MaxLevel {
		return &ValidationError{Field: field, Reason: "must be between 0 and 9"}
	}
	return nil
}

// NewEvent admits in as an event of roastID. ID and CreatedAt are left for
// the storage layer to assign.
func NewEvent(roastID string, in EventInput) (models.RoastEvent, error) {
	kind, err := in.admit()
	if err != nil {
		return models.RoastEvent{}, err
	}
	return models.RoastEvent{
		RoastID:           roastID,
		Kind:              kind,
		TimeOffsetSeconds: *in.TimeOffsetSeconds,
		TemperatureF:      in.TemperatureF,
		FanLevel:          in.FanLevel,
		HeatLevel:         in.HeatLevel,
		Note:              in.Note,
	}, nil
}
