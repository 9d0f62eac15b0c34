package formation

// MaxTeamSizeCasual caps one side of any casual PvP match.
const MaxTeamSizeCasual = 20

// Queue-age thresholds (seconds) gating the smaller match tiers. Small
// matches only form once the queue has aged enough, and never against a
// bursty stream of fresh arrivals.
const (
	lowOldestThreshold    = 60
	lowNewestThreshold    = 20
	mediumOldestThreshold = 45
	mediumNewestThreshold = 20
)

// CasualSizing picks the casual PvP match tier from the faction totals and
// queue ages. The admission cap is the larger faction clamped to the pool
// maximum; the tier is decided by the smaller faction.
func CasualSizing(faction1Count, faction2Count int, oldestAge, newestAge float64) (Sizing, bool) {
	teamSize := min(faction1Count, faction2Count, MaxTeamSizeCasual)
	maxTeamSize := max(faction1Count, faction2Count)

	switch {
	case teamSize < 1:
		return Sizing{}, false
	case teamSize < 5:
		if oldestAge >= lowOldestThreshold && newestAge >= lowNewestThreshold {
			return Sizing{
				TeamSize:    min(maxTeamSize, MaxTeamSizeCasual),
				MinTeamSize: 1,
				MaxTeamSize: MaxTeamSizeCasual,
				MatchType:   MatchTypeLow,
			}, true
		}
		return Sizing{}, false
	case teamSize < 8:
		if oldestAge >= mediumOldestThreshold && newestAge >= mediumNewestThreshold {
			return Sizing{
				TeamSize:    min(maxTeamSize, MaxTeamSizeCasual),
				MinTeamSize: 5,
				MaxTeamSize: MaxTeamSizeCasual,
				MatchType:   MatchTypeMedium,
			}, true
		}
		return Sizing{}, false
	default:
		return Sizing{
			TeamSize:    min(maxTeamSize, MaxTeamSizeCasual),
			MinTeamSize: 8,
			MaxTeamSize: MaxTeamSizeCasual,
			MatchType:   MatchTypeLarge,
		}, true
	}
}

// InstantPvPSizing bypasses all waiting: whatever is queued starts a medium
// match immediately, one side possibly empty.
func InstantPvPSizing(faction1Count, faction2Count int, _, _ float64) (Sizing, bool) {
	return Sizing{
		TeamSize:    max(faction1Count, faction2Count),
		MinTeamSize: 0,
		MaxTeamSize: MaxTeamSizeCasual,
		MatchType:   MatchTypeMedium,
	}, true
}

// FormCasual attempts to form a casual PvP match.
func FormCasual(cands []Candidate, oldestAge, newestAge float64, cfg ModeConfig) *Match {
	return formPvP(cands, oldestAge, newestAge, cfg, CasualSizing, false)
}

// FormCasualInstant attempts to form an instant casual PvP match, allowing a
// synthetic empty side when only one faction is queued.
func FormCasualInstant(cands []Candidate, oldestAge, newestAge float64, cfg ModeConfig) *Match {
	return formPvP(cands, oldestAge, newestAge, cfg, InstantPvPSizing, true)
}
