package roastlog

import (
	"fmt"
	"iter"
	"strings"

	"roastlog/internal/models"
)

// Mode selects how events are split between curve samples and markers.
type Mode int

const (
	// ModeHistorical annotates milestones only.
	ModeHistorical Mode = iota
	// ModeLive also annotates SET events that change fan or heat, so the
	// operator sees control changes on the running curve.
	ModeLive
)

// ParseMode accepts "live", "historical" or "comparison"; empty means historical.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "historical", "comparison":
		return ModeHistorical, nil
	case "live":
		return ModeLive, nil
	default:
		return ModeHistorical, fmt.Errorf("unknown curve mode %q", s)
	}
}

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "historical"
}

// Point is one raw temperature sample.
type Point struct {
	OffsetSeconds int     `json:"t"`
	TemperatureF  float64 `json:"temp_f"`
}

// Marker is an overlay annotation. TemperatureF is the event's own reading,
// else the latest sample at or before its offset, else nil.
type Marker struct {
	Kind          models.EventKind `json:"kind"`
	OffsetSeconds int              `json:"t"`
	TemperatureF  *float64         `json:"temp_f"`
	FanLevel      *int             `json:"fan_level,omitempty"`
	HeatLevel     *int             `json:"heat_level,omitempty"`
}

// Curve holds lazy sequences over a private ordered snapshot. Both may be
// ranged over any number of times.
type Curve struct {
	Points  iter.Seq[Point]
	Markers iter.Seq[Marker]
}

// ResampleForCurve selects plot samples and markers from events. Every event
// with a temperature reading is a sample, whatever its kind; values are not
// interpolated or smoothed.
func ResampleForCurve(events []models.RoastEvent, mode Mode) Curve {
	ordered := Ordered(events)

	points := func(yield func(Point) bool) {
		for _, e := range ordered {
			if e.TemperatureF == nil {
				continue
			}
			if !yield(Point{OffsetSeconds: e.TimeOffsetSeconds, TemperatureF: *e.TemperatureF}) {
				return
			}
		}
	}

	markers := func(yield func(Marker) bool) {
		for _, e := range ordered {
			if !isMarker(e, mode) {
				continue
			}
			m := Marker{
				Kind:          e.Kind,
				OffsetSeconds: e.TimeOffsetSeconds,
				TemperatureF:  temperatureAt(ordered, e),
				FanLevel:      e.FanLevel,
				HeatLevel:     e.HeatLevel,
			}
			if !yield(m) {
				return
			}
		}
	}

	return Curve{Points: points, Markers: markers}
}

func isMarker(e models.RoastEvent, mode Mode) bool {
	if e.Kind.IsMilestone() {
		return true
	}
	return mode == ModeLive && e.Kind == models.KindSet && (e.FanLevel != nil || e.HeatLevel != nil)
}

func temperatureAt(ordered []models.RoastEvent, e models.RoastEvent) *float64 {
	if e.TemperatureF != nil {
		v := *e.TemperatureF
		return &v
	}
	var last *float64
	for _, s := range ordered {
		if s.TimeOffsetSeconds > e.TimeOffsetSeconds {
			break
		}
		if s.TemperatureF != nil {
			v := *s.TemperatureF
			last = &v
		}
	}
	return last
}

// RORPoint is the rate of rise ending at OffsetSeconds, in °F per minute.
type RORPoint struct {
	OffsetSeconds    int     `json:"t"`
	DegreesPerMinute float64 `json:"f_per_min"`
}

// RateOfRise pairs consecutive samples. The first sample yields nothing and a
// pair sharing an offset is skipped rather than producing Inf or NaN.
func RateOfRise(points iter.Seq[Point]) iter.Seq[RORPoint] {
	return func(yield func(RORPoint) bool) {
		var prev Point
		havePrev := false
		for p := range points {
			if havePrev && p.OffsetSeconds > prev.OffsetSeconds {
				minutes := float64(p.OffsetSeconds-prev.OffsetSeconds) / 60
				r := RORPoint{
					OffsetSeconds:    p.OffsetSeconds,
					DegreesPerMinute: (p.TemperatureF - prev.TemperatureF) / minutes,
				}
				if !yield(r) {
					return
				}
			}
			prev = p
			havePrev = true
		}
	}
}
