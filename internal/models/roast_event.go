package models

import (
	"fmt"
	"strings"
	"time"
)

// EventKind is the closed set of roast event kinds.
type EventKind string

const (
	KindSet         EventKind = "SET" // fan/heat/temperature adjustment
	KindDryEnd      EventKind = "DRY_END"
	KindFirstCrack  EventKind = "FIRST_CRACK"
	KindSecondCrack EventKind = "SECOND_CRACK"
	KindCool        EventKind = "COOL"
	KindDrop        EventKind = "DROP"
	KindEnd         EventKind = "END"
)

// EventKinds lists every valid kind in roast order.
var EventKinds = []EventKind{
	KindSet,
	KindDryEnd,
	KindFirstCrack,
	KindSecondCrack,
	KindDrop,
	KindCool,
	KindEnd,
}

// ParseEventKind normalizes s (trim + upper) and reports whether it names a known kind.
func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(strings.ToUpper(strings.TrimSpace(s)))
	if k.Valid() {
		return k, nil
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

func (k EventKind) Valid() bool {
	for _, known := range EventKinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsMilestone reports whether k marks a phase transition rather than a control change.
func (k EventKind) IsMilestone() bool {
	return k.Valid() && k != KindSet
}

// RoastEvent is one recorded occurrence during a roast.
type RoastEvent struct {
	ID                string    `json:"id"`
	RoastID           string    `json:"roast_id"`
	Kind              EventKind `json:"kind"`
	TimeOffsetSeconds int       `json:"time_offset_seconds"` // seconds since charge
	TemperatureF      *float64  `json:"temperature_f,omitempty"`
	FanLevel          *int      `json:"fan_level,omitempty"`  // 0-9
	HeatLevel         *int      `json:"heat_level,omitempty"` // 0-9
	Note              *string   `json:"note,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
