package roastlog

import "roastlog/internal/models"

// WeightLossPct is (before-after)/before*100, unknown unless both weights are
// present and before is positive.
func WeightLossPct(session models.RoastSession) Percent {
	before, after := session.WeightBeforeG, session.WeightAfterG
	if before == nil || after == nil || *before <= 0 {
		return UnknownPercent
	}
	return KnownPercent((*before - *after) / *before * 100)
}
