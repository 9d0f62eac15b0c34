package formation

// MaxTeamSizePvE is the raid party size.
const MaxTeamSizePvE = 4

// Queue-age thresholds (seconds) before a raid launches under strength.
const (
	aloneOldestThreshold        = 360
	partialGroupOldestThreshold = 180
)

// PvESizing picks the raid sizing from the faction total and the oldest
// queue age. Lone players and partial groups launch only after waiting out
// their respective thresholds.
func PvESizing(factionCount int, oldestAge float64) (Sizing, bool) {
	teamSize := min(factionCount, MaxTeamSizePvE)

	switch {
	case teamSize < 2:
		if oldestAge >= aloneOldestThreshold {
			return Sizing{TeamSize: teamSize, MinTeamSize: 1, MaxTeamSize: MaxTeamSizePvE, MatchType: MatchTypeRaid4}, true
		}
		return Sizing{}, false
	case teamSize < MaxTeamSizePvE:
		if oldestAge >= partialGroupOldestThreshold {
			return Sizing{TeamSize: teamSize, MinTeamSize: 2, MaxTeamSize: MaxTeamSizePvE, MatchType: MatchTypeRaid4}, true
		}
		return Sizing{}, false
	default:
		return Sizing{TeamSize: MaxTeamSizePvE, MinTeamSize: MaxTeamSizePvE, MaxTeamSize: MaxTeamSizePvE, MatchType: MatchTypeRaid4}, true
	}
}

// InstantPvESizing starts a raid with whoever is queued.
func InstantPvESizing(factionCount int, _ float64) (Sizing, bool) {
	return Sizing{
		TeamSize:    min(factionCount, MaxTeamSizePvE),
		MinTeamSize: 1,
		MaxTeamSize: MaxTeamSizePvE,
		MatchType:   MatchTypeRaid4,
	}, true
}

// FormPvE attempts to form a PvE raid.
func FormPvE(cands []Candidate, oldestAge float64, cfg ModeConfig) *Match {
	return formPvE(cands, oldestAge, cfg, PvESizing)
}

// FormPvEInstant forms a raid immediately with whoever is queued.
func FormPvEInstant(cands []Candidate, oldestAge float64, cfg ModeConfig) *Match {
	return formPvE(cands, oldestAge, cfg, InstantPvESizing)
}
