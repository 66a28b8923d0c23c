package roastlog

import (
	"slices"

	"roastlog/internal/models"
)

// Summary bundles the derived values dashboards and detail views render.
type Summary struct {
	Duration    Seconds `json:"duration"`
	DryEnd      Seconds `json:"dry_end"`
	FirstCrack  Seconds `json:"first_crack"`
	SecondCrack Seconds `json:"second_crack"`
	Drop        Seconds `json:"drop"`
	// Development is the time from first crack to the end of the roast.
	Development    Seconds            `json:"development"`
	DevelopmentPct Percent            `json:"development_pct"`
	WeightLoss     Percent            `json:"weight_loss"`
	Phase          Phase              `json:"phase"`
	Milestones     []models.EventKind `json:"milestones"`
	EventCount     int                `json:"event_count"`
	SampleCount    int                `json:"sample_count"`
	PeakROR        *RORPoint          `json:"peak_ror"`
	LastROR        *RORPoint          `json:"last_ror"`
}

// Summarize computes every summary field from one snapshot.
func Summarize(events []models.RoastEvent, session models.RoastSession) Summary {
	s := Summary{
		Duration:    ComputeDuration(events, session),
		DryEnd:      MilestoneOffset(events, models.KindDryEnd),
		FirstCrack:  MilestoneOffset(events, models.KindFirstCrack),
		SecondCrack: MilestoneOffset(events, models.KindSecondCrack),
		Drop:        MilestoneOffset(events, models.KindDrop),
		WeightLoss:  WeightLossPct(session),
		Phase:       ClassifyPhase(events),
		Milestones:  ReachedMilestones(events),
		EventCount:  len(events),
	}
	if s.Milestones == nil {
		s.Milestones = []models.EventKind{}
	}

	s.Development, s.DevelopmentPct = development(s.FirstCrack, s.Duration)

	curve := ResampleForCurve(events, ModeHistorical)
	for range curve.Points {
		s.SampleCount++
	}
	ror := slices.Collect(RateOfRise(curve.Points))
	if len(ror) > 0 {
		last := ror[len(ror)-1]
		s.LastROR = &last
		peak := slices.MaxFunc(ror, func(a, b RORPoint) int {
			switch {
			case a.DegreesPerMinute < b.DegreesPerMinute:
				return -1
			case a.DegreesPerMinute > b.DegreesPerMinute:
				return 1
			}
			return 0
		})
		s.PeakROR = &peak
	}
	return s
}

func development(firstCrack, duration Seconds) (Seconds, Percent) {
	fc, ok1 := firstCrack.Value()
	total, ok2 := duration.Value()
	if !ok1 || !ok2 || total < fc {
		return Unknown, UnknownPercent
	}
	dev := total - fc
	if total == 0 {
		return KnownSeconds(dev), UnknownPercent
	}
	return KnownSeconds(dev), KnownPercent(float64(dev) / float64(total) * 100)
}
