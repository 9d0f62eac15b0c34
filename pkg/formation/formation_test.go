package formation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleWeighted(t *testing.T) {
	assert.Equal(t, "only", sampleWeighted(map[string]float64{"only": 1}))
	assert.Equal(t, "", sampleWeighted(nil))
	assert.Equal(t, "", sampleWeighted(map[string]float64{"zero": 0}))

	// Zero-weight entries are never drawn.
	for i := 0; i < 50; i++ {
		got := sampleWeighted(map[string]float64{"dead": 0, "live": 0.5})
		assert.Equal(t, "live", got)
	}
}

func TestChooseMissionPluralityTiebreak(t *testing.T) {
	cfg := ModeConfig{
		"alpha": {MatchTypeLow: {"ma": 1}},
		"beta":  {MatchTypeLow: {"mb": 1}},
	}
	byID := map[string]Candidate{
		"p1": {PlayerID: "p1", DesiredMatchGroup: "beta"},
		"p2": {PlayerID: "p2", DesiredMatchGroup: "alpha"},
	}
	// A tied vote resolves to the smallest group name.
	mission, ok := chooseMission([]leader{{id: "p1", size: 1}, {id: "p2", size: 1}}, byID, cfg, MatchTypeLow)
	require.True(t, ok)
	assert.Equal(t, "ma", mission)
}

func TestChooseMissionEmptyConfig(t *testing.T) {
	_, ok := chooseMission([]leader{{id: "p1", size: 1}}, map[string]Candidate{
		"p1": {PlayerID: "p1", DesiredMatchGroup: "alpha"},
	}, ModeConfig{}, MatchTypeLow)
	assert.False(t, ok)

	// Configured group without the requested match type also declines.
	_, ok = chooseMission([]leader{{id: "p1", size: 1}}, map[string]Candidate{
		"p1": {PlayerID: "p1", DesiredMatchGroup: "alpha"},
	}, ModeConfig{"alpha": {MatchTypeLarge: {"m": 1}}}, MatchTypeLow)
	assert.False(t, ok)
}

// Invariants that must hold for every produced match, exercised over a
// mixed-party population.
func TestFormationInvariants(t *testing.T) {
	cands := []Candidate{
		party("A", "a1", "a2", "a3"),
		solo("a4", "A"),
		party("A", "a5", "a6"),
		party("B", "b1", "b2", "b3", "b4"),
		solo("b5", "B"),
		party("B", "b6", "b7"),
		solo("b8", "B"),
	}
	m := FormCasual(cands, 100, 100, pvpConfig())
	require.NotNil(t, m)

	// Uniqueness across both sides.
	seen := make(map[string]bool)
	for _, p := range m.Players {
		require.False(t, seen[p], "duplicate player %s", p)
		seen[p] = true
	}

	// Party atomicity: a party is either fully in or fully out.
	for _, c := range cands {
		admitted := 0
		for _, member := range c.PartyMembers {
			if seen[member] {
				admitted++
			}
		}
		assert.True(t, admitted == 0 || admitted == len(c.PartyMembers),
			"party of %s split: %d of %d admitted", c.PlayerID, admitted, len(c.PartyMembers))
	}

	// Team cap and minimum viability.
	for f, used := range m.FactionCounts {
		assert.LessOrEqual(t, used, MaxTeamSizeCasual, "faction %s over cap", f)
		assert.GreaterOrEqual(t, used, 1, "faction %s below minimum", f)
	}
}

func TestBucketizeKeepsEnqueueOrder(t *testing.T) {
	cands := []Candidate{
		solo("p1", "A"),
		solo("p2", "A"),
		solo("p3", "A"),
	}
	factions, parties := bucketize(cands)
	require.Len(t, factions, 1)

	// Equal-sized parties must keep queue order through the stable sort.
	selected, _, used := admit(factions[0], 2, parties)
	assert.Equal(t, 2, used)
	assert.Equal(t, []string{"p1", "p2"}, selected)
}
