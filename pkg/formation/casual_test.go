package formation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pvpConfig() ModeConfig {
	return ModeConfig{
		"group1": {
			MatchTypeLow:    {"m1": 1},
			MatchTypeMedium: {"m1": 1},
			MatchTypeLarge:  {"m1": 1},
		},
	}
}

func solo(id, faction string) Candidate {
	return Candidate{PlayerID: id, Faction: faction, PartyMembers: []string{id}, DesiredMatchGroup: "group1"}
}

func party(faction string, members ...string) Candidate {
	return Candidate{PlayerID: members[0], Faction: faction, PartyMembers: members, DesiredMatchGroup: "group1"}
}

func TestCasualSizing(t *testing.T) {
	tests := []struct {
		name     string
		f1, f2   int
		oldest   float64
		newest   float64
		ok       bool
		teamSize int
		minTeam  int
		mtype    string
	}{
		{"no opposition", 1, 0, 100, 100, false, 0, 0, ""},
		{"low tier after threshold", 1, 1, 100, 100, true, 1, 1, MatchTypeLow},
		{"low tier 2v2", 2, 2, 61, 61, true, 2, 1, MatchTypeLow},
		{"low tier still waiting", 2, 2, 30, 30, false, 0, 0, ""},
		{"medium tier after threshold", 6, 6, 46, 46, true, 6, 5, MatchTypeMedium},
		{"medium tier bursty newest", 6, 6, 100, 10, false, 0, 0, ""},
		{"large tier no wait", 10, 12, 1, 1, true, 12, 8, MatchTypeLarge},
		{"large tier caps at 20", 24, 18, 1, 1, true, 20, 8, MatchTypeLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := CasualSizing(tt.f1, tt.f2, tt.oldest, tt.newest)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.teamSize, s.TeamSize)
			assert.Equal(t, tt.minTeam, s.MinTeamSize)
			assert.Equal(t, MaxTeamSizeCasual, s.MaxTeamSize)
			assert.Equal(t, tt.mtype, s.MatchType)
		})
	}
}

func TestFormCasualLowTier(t *testing.T) {
	cands := []Candidate{
		solo("p1", "A"),
		solo("p2", "A"),
		party("B", "p3", "p4"),
	}
	m := FormCasual(cands, 61, 61, pvpConfig())
	require.NotNil(t, m)
	assert.ElementsMatch(t, []string{"p1", "p2", "p3", "p4"}, m.Players)
	assert.Equal(t, "m1", m.Mission)
	assert.Equal(t, MatchTypeLow, m.MatchType)
	assert.Equal(t, map[string]int{"A": 2, "B": 2}, m.FactionCounts)
}

func TestFormCasualDeclinesSingleFaction(t *testing.T) {
	cands := []Candidate{
		solo("p1", "A"),
		solo("p2", "A"),
	}
	assert.Nil(t, FormCasual(cands, 100, 100, pvpConfig()))
}

func TestFormCasualMediumTier(t *testing.T) {
	cands := []Candidate{
		solo("p1", "A"),
		party("A", "p2", "p3", "p4"),
		solo("p5", "A"),
		solo("p6", "B"),
		party("B", "p7", "p8", "p9", "p10"),
	}
	m := FormCasual(cands, 50, 50, pvpConfig())
	require.NotNil(t, m)
	want := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10"}
	assert.ElementsMatch(t, want, m.Players)
	assert.Equal(t, MatchTypeMedium, m.MatchType)
	assert.Equal(t, "m1", m.Mission)
}

// A large match admits whole parties until the side cap; the party that would
// overflow is left queued in one piece.
func TestFormCasualLargeTierPartyAtomicity(t *testing.T) {
	cands := []Candidate{
		solo("p1", "A"),
		party("A", "p2", "p3", "p4"),
		solo("p5", "A"),
		solo("p6", "A"),
		party("A", "p7", "p8", "p9", "p10"),
		party("B", "p11", "p12", "p13", "p14"),
		party("B", "p15", "p16", "p17", "p18"),
		party("B", "p19", "p20", "p21", "p22"),
		party("B", "p23", "p24", "p25", "p26"),
		party("B", "p27", "p28", "p29"),
		party("B", "p30", "p31", "p32"),
	}
	// A fields 10, B fields 22; the admission cap is min(22, 20) = 20, so the
	// final three-member party on the B side no longer fits.
	m := FormCasual(cands, 50, 50, pvpConfig())
	require.NotNil(t, m)
	assert.Equal(t, MatchTypeLarge, m.MatchType)
	assert.Len(t, m.Players, 29)
	for _, banned := range []string{"p30", "p31", "p32"} {
		assert.NotContains(t, m.Players, banned)
	}
	// The declined party stayed intact; everyone else is in.
	assert.Equal(t, map[string]int{"B": 19, "A": 10}, m.FactionCounts)

	seen := make(map[string]bool)
	for _, p := range m.Players {
		assert.False(t, seen[p], "player %s appears twice", p)
		seen[p] = true
	}
}

func TestFormCasualInstantSinglePlayer(t *testing.T) {
	cands := []Candidate{solo("p1", "A")}
	m := FormCasualInstant(cands, 2, 2, pvpConfig())
	require.NotNil(t, m)
	assert.ElementsMatch(t, []string{"p1", SyntheticSlot}, m.Players)
	assert.Equal(t, MatchTypeMedium, m.MatchType)
	assert.Equal(t, "m1", m.Mission)
}

func TestFormCasualEmptyQueue(t *testing.T) {
	assert.Nil(t, FormCasual(nil, 100, 100, pvpConfig()))
	assert.Nil(t, FormCasualInstant(nil, 100, 100, pvpConfig()))
}

func TestFormCasualVoteFallback(t *testing.T) {
	cands := []Candidate{
		{PlayerID: "p1", Faction: "A", PartyMembers: []string{"p1"}, DesiredMatchGroup: "unconfigured"},
		{PlayerID: "p2", Faction: "B", PartyMembers: []string{"p2"}, DesiredMatchGroup: "unconfigured"},
	}
	m := FormCasual(cands, 61, 61, pvpConfig())
	require.NotNil(t, m)
	// Winner absent from configuration falls back to a configured group.
	assert.Equal(t, "m1", m.Mission)
}

func TestFormCasualFactionSetup(t *testing.T) {
	cands := []Candidate{
		solo("p1", FactionLoyalists),
		solo("p2", FactionChaos),
	}
	m := FormCasual(cands, 61, 61, pvpConfig())
	require.NotNil(t, m)
	valid := map[string]bool{
		FactionLoyalists + ":" + FactionChaos: true,
		FactionChaos + ":" + FactionLoyalists: true,
	}
	assert.True(t, valid[m.FactionSetup], "unexpected faction setup %q", m.FactionSetup)
}
