// Package formation holds the pure pool-formation rules: given a snapshot of
// queued candidates and queue-age aggregates, decide whether a match can form
// and which players, mission and faction setup it gets. Nothing in this
// package performs I/O.
package formation

import (
	"math/rand"
	"sort"
)

// Match types, ordered by size tier.
const (
	MatchTypeDuel   = "duel"
	MatchTypeLow    = "low"
	MatchTypeMedium = "medium"
	MatchTypeLarge  = "large"
	MatchTypeRaid4  = "raid4"
)

// SyntheticSlot fills the empty side of an instant PvP match formed with a
// single faction present. It flows through Match.Players and must be filtered
// out before any per-player write.
const SyntheticSlot = ""

// Candidate is one eligible queue entry. Only party leaders appear as
// candidates; the full party is substituted on selection. Candidates must be
// supplied in enqueue order so that equal-sized parties keep their place.
type Candidate struct {
	PlayerID          string
	Faction           string
	PartyMembers      []string
	DesiredMatchGroup string
}

// ModeConfig maps match group -> match type -> mission name -> weight.
type ModeConfig map[string]map[string]map[string]float64

// Sizing is the outcome of a size policy: the per-side admission cap, the
// minimum viable side, the advertised maximum and the match type.
type Sizing struct {
	TeamSize    int
	MinTeamSize int
	MaxTeamSize int
	MatchType   string
}

// PvPSizePolicy decides match sizing from both faction totals and the
// queue-age aggregates. Returns false to decline.
type PvPSizePolicy func(faction1Count, faction2Count int, oldestAge, newestAge float64) (Sizing, bool)

// PvESizePolicy decides match sizing from the single faction total and the
// oldest queue age. Returns false to decline.
type PvESizePolicy func(factionCount int, oldestAge float64) (Sizing, bool)

// Match is a formed, not yet dispatched match.
type Match struct {
	Players       []string
	Mission       string
	MatchType     string
	FactionSetup  string
	MaxTeamSize   int
	FactionCounts map[string]int
}

type leader struct {
	id   string
	size int
}

type faction struct {
	name    string
	leaders []leader
	total   int
}

// bucketize groups candidates by faction, keeping enqueue order, and records
// the party behind each leader.
func bucketize(cands []Candidate) ([]faction, map[string][]string) {
	byName := make(map[string]*faction)
	var order []*faction
	parties := make(map[string][]string, len(cands))

	for _, c := range cands {
		party := c.PartyMembers
		if len(party) == 0 {
			party = []string{c.PlayerID}
		}
		parties[c.PlayerID] = party

		f, ok := byName[c.Faction]
		if !ok {
			f = &faction{name: c.Faction}
			byName[c.Faction] = f
			order = append(order, f)
		}
		f.leaders = append(f.leaders, leader{id: c.PlayerID, size: len(party)})
		f.total += len(party)
	}

	out := make([]faction, len(order))
	for i, f := range order {
		out[i] = *f
	}
	// Largest faction first; name breaks ties so the outcome does not depend
	// on arrival order of the factions themselves.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].total != out[j].total {
			return out[i].total > out[j].total
		}
		return out[i].name < out[j].name
	})
	return out, parties
}

// admit walks leaders (larger parties first, stable) and selects whole
// parties while the side stays within teamSize.
func admit(f faction, teamSize int, parties map[string][]string) (players []string, leaders []leader, used int) {
	sorted := make([]leader, len(f.leaders))
	copy(sorted, f.leaders)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].size > sorted[j].size })

	for _, l := range sorted {
		if used+l.size > teamSize {
			continue
		}
		players = append(players, parties[l.id]...)
		leaders = append(leaders, l)
		used += l.size
	}
	return players, leaders, used
}

// chooseMission tallies the admitted leaders' desired match groups, takes the
// plurality (ties resolve to the smallest group name) and samples a mission
// by weight from the winning group's sub-catalog for the match type. Falls
// back to a uniformly random configured group when the winner has no
// configuration. Returns false when no mission can be chosen.
func chooseMission(leaders []leader, byID map[string]Candidate, cfg ModeConfig, matchType string) (string, bool) {
	votes := make(map[string]int)
	for _, l := range leaders {
		c, ok := byID[l.id]
		if !ok {
			continue
		}
		votes[c.DesiredMatchGroup]++
	}

	winner := ""
	best := 0
	for group, n := range votes {
		if n > best || (n == best && (winner == "" || group < winner)) {
			winner, best = group, n
		}
	}

	if _, ok := cfg[winner]; !ok {
		groups := make([]string, 0, len(cfg))
		for g := range cfg {
			groups = append(groups, g)
		}
		if len(groups) == 0 {
			return "", false
		}
		sort.Strings(groups)
		winner = groups[rand.Intn(len(groups))]
	}

	weights := cfg[winner][matchType]
	if len(weights) == 0 {
		return "", false
	}
	return sampleWeighted(weights), true
}

func sampleWeighted(weights map[string]float64) string {
	names := make([]string, 0, len(weights))
	total := 0.0
	for name, w := range weights {
		if w <= 0 {
			continue
		}
		names = append(names, name)
		total += w
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)

	r := rand.Float64() * total
	for _, name := range names {
		r -= weights[name]
		if r < 0 {
			return name
		}
	}
	return names[len(names)-1]
}

// formPvP is the common two-faction skeleton shared by the casual, duel and
// instant pools.
func formPvP(cands []Candidate, oldestAge, newestAge float64, cfg ModeConfig, policy PvPSizePolicy, instant bool) *Match {
	factions, parties := bucketize(cands)
	if len(factions) == 0 {
		return nil
	}
	if len(factions) < 2 {
		if !instant {
			return nil
		}
		// Single faction in an instant pool: synthesize an empty opposing
		// side so the two-faction path still applies.
		synth := faction{
			name:    opposingFaction(factions[0].name),
			leaders: []leader{{id: SyntheticSlot, size: 1}},
			total:   1,
		}
		parties[SyntheticSlot] = []string{SyntheticSlot}
		factions = append(factions, synth)
	}

	f1, f2 := factions[0], factions[1]

	sizing, ok := policy(f1.total, f2.total, oldestAge, newestAge)
	if !ok {
		return nil
	}

	side1, leaders1, used1 := admit(f1, sizing.TeamSize, parties)
	side2, leaders2, used2 := admit(f2, sizing.TeamSize, parties)

	if used1 < sizing.MinTeamSize || used2 < sizing.MinTeamSize {
		return nil
	}

	byID := make(map[string]Candidate, len(cands))
	for _, c := range cands {
		byID[c.PlayerID] = c
	}
	mission, ok := chooseMission(append(append([]leader{}, leaders1...), leaders2...), byID, cfg, sizing.MatchType)
	if !ok {
		return nil
	}

	setup := f1.name + ":" + f2.name
	if rand.Intn(2) == 0 {
		setup = f2.name + ":" + f1.name
	}

	return &Match{
		Players:      append(side1, side2...),
		Mission:      mission,
		MatchType:    sizing.MatchType,
		FactionSetup: setup,
		MaxTeamSize:  sizing.MaxTeamSize,
		FactionCounts: map[string]int{
			f1.name: realCount(side1),
			f2.name: realCount(side2),
		},
	}
}

// formPvE is the single-faction skeleton.
func formPvE(cands []Candidate, oldestAge float64, cfg ModeConfig, policy PvESizePolicy) *Match {
	factions, parties := bucketize(cands)
	if len(factions) == 0 {
		return nil
	}
	f1 := factions[0]

	sizing, ok := policy(f1.total, oldestAge)
	if !ok {
		return nil
	}

	side, leaders, used := admit(f1, sizing.TeamSize, parties)
	if used < sizing.MinTeamSize {
		return nil
	}

	byID := make(map[string]Candidate, len(cands))
	for _, c := range cands {
		byID[c.PlayerID] = c
	}
	mission, ok := chooseMission(leaders, byID, cfg, sizing.MatchType)
	if !ok {
		return nil
	}

	return &Match{
		Players:       side,
		Mission:       mission,
		MatchType:     sizing.MatchType,
		FactionSetup:  f1.name,
		MaxTeamSize:   sizing.MaxTeamSize,
		FactionCounts: map[string]int{f1.name: used},
	}
}

func realCount(players []string) int {
	n := 0
	for _, p := range players {
		if p != SyntheticSlot {
			n++
		}
	}
	return n
}

// Factions currently shipped by the game.
const (
	FactionLoyalists = "LoyalSpaceMarines"
	FactionChaos     = "ChaosSpaceMarines"
)

func opposingFaction(name string) string {
	if name == FactionLoyalists {
		return FactionChaos
	}
	return FactionLoyalists
}
