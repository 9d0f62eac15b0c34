package formation

// MaxTeamSizeDuel caps one side of a duel PvP match.
const MaxTeamSizeDuel = 5

// DuelSizing forms small skirmishes only once both factions can field a full
// duel roster; admission then caps at the duel maximum with a two-player
// minimum per side.
func DuelSizing(faction1Count, faction2Count int, _, _ float64) (Sizing, bool) {
	teamSize := min(faction1Count, faction2Count)
	if teamSize < MaxTeamSizeDuel {
		return Sizing{}, false
	}
	return Sizing{
		TeamSize:    min(max(faction1Count, faction2Count), MaxTeamSizeDuel),
		MinTeamSize: 2,
		MaxTeamSize: MaxTeamSizeDuel,
		MatchType:   MatchTypeDuel,
	}, true
}

// FormDuel attempts to form a duel PvP match.
func FormDuel(cands []Candidate, oldestAge, newestAge float64, cfg ModeConfig) *Match {
	return formPvP(cands, oldestAge, newestAge, cfg, DuelSizing, false)
}
