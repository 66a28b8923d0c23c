package roastlog

import "roastlog/internal/models"

// MilestoneOffset returns the lowest offset of an event of kind, or Unknown
// when the roast has not reached it.
func MilestoneOffset(events []models.RoastEvent, kind models.EventKind) Seconds {
	found := false
	best := 0
	for _, e := range events {
		if e.Kind != kind {
			continue
		}
		if !found || e.TimeOffsetSeconds < best {
			best = e.TimeOffsetSeconds
			found = true
		}
	}
	if !found {
		return Unknown
	}
	return KnownSeconds(best)
}

// ReachedMilestones lists the milestone kinds present, ordered by their
// first occurrence.
func ReachedMilestones(events []models.RoastEvent) []models.EventKind {
	var out []models.EventKind
	seen := make(map[models.EventKind]bool)
	for _, e := range Ordered(events) {
		if !e.Kind.IsMilestone() || seen[e.Kind] {
			continue
		}
		seen[e.Kind] = true
		out = append(out, e.Kind)
	}
	return out
}

// Phase is the roast stage inferred from a snapshot of events.
type Phase string

const (
	PhaseNotStarted  Phase = "not_started"
	PhaseCharging    Phase = "charging"
	PhaseDrying      Phase = "drying"
	PhaseMaillard    Phase = "maillard"
	PhaseFirstCrack  Phase = "first_crack"
	PhaseSecondCrack Phase = "second_crack"
	PhaseCooling     Phase = "cooling"
	PhaseComplete    Phase = "complete"
)

// ClassifyPhase reports the furthest phase the events show. Transitions are
// not enforced: a SECOND_CRACK without FIRST_CRACK still classifies as
// second crack.
func ClassifyPhase(events []models.RoastEvent) Phase {
	if len(events) == 0 {
		return PhaseNotStarted
	}
	has := make(map[models.EventKind]bool, len(events))
	pastCharge := false
	for _, e := range events {
		has[e.Kind] = true
		if e.TimeOffsetSeconds > 0 {
			pastCharge = true
		}
	}
	switch {
	case has[models.KindEnd]:
		return PhaseComplete
	case has[models.KindCool], has[models.KindDrop]:
		return PhaseCooling
	case has[models.KindSecondCrack]:
		return PhaseSecondCrack
	case has[models.KindFirstCrack]:
		return PhaseFirstCrack
	case has[models.KindDryEnd]:
		return PhaseMaillard
	case pastCharge:
		return PhaseDrying
	default:
		return PhaseCharging
	}
}
