// Package regions maps raw region codes to coarse region groups and orders
// candidate server groups by a weighted latency cost model.
package regions

import (
	_ "embed"
	"encoding/json"
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Recognized region groups. EU, RU and US form one connectivity island,
// EA forms its own; there is no defined distance across islands.
const (
	GroupEU = "EU"
	GroupRU = "RU"
	GroupUS = "US"
	GroupEA = "EA"
)

// ErrUnknownGroup is returned when a group belongs to no island.
var ErrUnknownGroup = errors.New("unknown region group")

//go:embed region_groups.json
var regionGroupsJSON []byte

var regionGroups = mustLoadGroups()

func mustLoadGroups() map[string]string {
	m := make(map[string]string)
	if err := json.Unmarshal(regionGroupsJSON, &m); err != nil {
		panic("regions: bad embedded region_groups.json: " + err.Error())
	}
	return m
}

// DistanceMap is a pairwise region-group cost table. Entries are stored once
// per unordered pair under (min(a,b), max(a,b)).
type DistanceMap map[string]map[string]float64

// euIsland covers EU, RU and US; intra-group distances are zero.
var euIsland = DistanceMap{
	GroupEU: {GroupEU: 0, GroupRU: 1.0, GroupUS: 1.1},
	GroupRU: {GroupRU: 0, GroupUS: 1.2},
	GroupUS: {GroupUS: 0},
}

var eaIsland = DistanceMap{
	GroupEA: {GroupEA: 0},
}

// Group maps a raw region code to its region group.
// Unknown codes fall back to EU.
func Group(code string) string {
	if g, ok := regionGroups[strings.ToUpper(code)]; ok {
		return g
	}
	return GroupEU
}

// GroupDistanceMap returns the distance table for the island containing the
// given group.
func GroupDistanceMap(group string) (DistanceMap, error) {
	switch strings.ToUpper(group) {
	case GroupEU, GroupRU, GroupUS:
		return euIsland, nil
	case GroupEA:
		return eaIsland, nil
	default:
		return nil, ErrUnknownGroup
	}
}

// Distance looks up the cost between two groups. The second return is false
// when the pair has no defined distance (cross-island).
func (m DistanceMap) Distance(a, b string) (float64, bool) {
	lo, hi := strings.ToUpper(a), strings.ToUpper(b)
	if lo > hi {
		lo, hi = hi, lo
	}
	d, ok := m[lo][hi]
	return d, ok
}

// OrderServerGroups ranks the available server groups by the summed cost of
// serving the given player population: for each available group the cost is
// sum over player groups of count * distance. Groups with no defined distance
// to any player group are excluded entirely; a zero distance still counts as
// defined, so a same-group server is always eligible.
func OrderServerGroups(playerGroupCounts map[string]int, availableGroups []string, dm DistanceMap) []string {
	sums := make(map[string]float64)
	for _, a := range availableGroups {
		a = strings.ToUpper(a)
		for r, c := range playerGroupCounts {
			d, ok := dm.Distance(a, r)
			if !ok {
				continue
			}
			if _, seen := sums[a]; !seen {
				sums[a] = 0
			}
			sums[a] += d * float64(c)
		}
	}

	if os.Getenv("DEBUG_REGION_DISTANCES") != "" {
		log.Debug().Interface("distanceSums", sums).Msg("Region group distance sums")
	}

	ordered := make([]string, 0, len(sums))
	for g := range sums {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if sums[ordered[i]] != sums[ordered[j]] {
			return sums[ordered[i]] < sums[ordered[j]]
		}
		return ordered[i] < ordered[j]
	})
	return ordered
}
