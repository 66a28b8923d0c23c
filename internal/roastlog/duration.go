package roastlog

import "roastlog/internal/models"

// ComputeDuration resolves the roast length, first match wins:
// earliest COOL offset, earliest END offset, then session updatedAt-createdAt
// (whole seconds, clamped at 0). Unknown when none apply.
func ComputeDuration(events []models.RoastEvent, session models.RoastSession) Seconds {
	if off := MilestoneOffset(events, models.KindCool); off.Known() {
		return off
	}
	if off := MilestoneOffset(events, models.KindEnd); off.Known() {
		return off
	}
	if session.CreatedAt.IsZero() || session.UpdatedAt.IsZero() {
		return Unknown
	}
	sec := int(session.UpdatedAt.Sub(session.CreatedAt).Seconds())
	if sec < 0 {
		sec = 0
	}
	return KnownSeconds(sec)
}
