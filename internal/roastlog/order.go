package roastlog

import (
	"slices"

	"roastlog/internal/models"
)

// Ordered returns a copy of events sorted by time offset. Equal offsets keep
// their relative input order.
func Ordered(events []models.RoastEvent) []models.RoastEvent {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b models.RoastEvent) int {
		return a.TimeOffsetSeconds - b.TimeOffsetSeconds
	})
	return out
}
