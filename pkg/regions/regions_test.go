package regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup(t *testing.T) {
	assert.Equal(t, "EU", Group("eu"))
	assert.Equal(t, "US", Group("us"))
	assert.Equal(t, "RU", Group("ru"))
	assert.Equal(t, "RU", Group("kz"))
	assert.Equal(t, "EA", Group("cn"))
	assert.Equal(t, "EA", Group("hk"))
	assert.Equal(t, "EA", Group("tw"))

	// Uppercase input
	assert.Equal(t, "RU", Group("RU"))

	// Unknown codes default to EU
	assert.Equal(t, "EU", Group("zz"))
	assert.Equal(t, "EU", Group(""))
}

func TestGroupDistanceMap(t *testing.T) {
	for _, g := range []string{"EU", "RU", "US", "ea", "ru"} {
		_, err := GroupDistanceMap(g)
		require.NoError(t, err, g)
	}

	_, err := GroupDistanceMap("ANTARCTICA")
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestDistanceSymmetry(t *testing.T) {
	dm, err := GroupDistanceMap("EU")
	require.NoError(t, err)

	groups := []string{"EU", "RU", "US"}
	for _, a := range groups {
		for _, b := range groups {
			dab, okab := dm.Distance(a, b)
			dba, okba := dm.Distance(b, a)
			require.Equal(t, okab, okba, "%s-%s", a, b)
			assert.Equal(t, dab, dba, "%s-%s", a, b)
		}
	}

	// Cross-island pairs are undefined in both directions.
	_, ok := dm.Distance("EU", "EA")
	assert.False(t, ok)
	_, ok = dm.Distance("EA", "EU")
	assert.False(t, ok)
}

func TestOrderServerGroups(t *testing.T) {
	dm, err := GroupDistanceMap("EU")
	require.NoError(t, err)

	// EU cost 12*1.0 + 11*1.1 = 24.1 beats RU cost 12*1.0 + 11*1.2 = 25.2.
	got := OrderServerGroups(map[string]int{"RU": 12, "EU": 12, "US": 11}, []string{"ru", "eu"}, dm)
	assert.Equal(t, []string{"EU", "RU"}, got)

	// More players on RU than EU.
	got = OrderServerGroups(map[string]int{"RU": 13, "EU": 12}, []string{"ru", "eu"}, dm)
	assert.Equal(t, []string{"RU", "EU"}, got)

	// US server joins the pool.
	got = OrderServerGroups(map[string]int{"RU": 13, "EU": 15, "US": 15}, []string{"ru", "eu", "us"}, dm)
	assert.Equal(t, []string{"EU", "US", "RU"}, got)

	// No players in the available group: it still carries a defined cost.
	got = OrderServerGroups(map[string]int{"EU": 5}, []string{"RU"}, dm)
	assert.Equal(t, []string{"RU"}, got)

	// A same-group-only population keeps its own server eligible at cost 0.
	got = OrderServerGroups(map[string]int{"RU": 1}, []string{"RU"}, dm)
	assert.Equal(t, []string{"RU"}, got)

	// Cross-island servers have undefined cost and are excluded.
	got = OrderServerGroups(map[string]int{"EU": 5}, []string{"EA"}, dm)
	assert.Empty(t, got)
}

func TestOrderServerGroupsTransitive(t *testing.T) {
	dm, err := GroupDistanceMap("EU")
	require.NoError(t, err)

	counts := map[string]int{"EU": 7, "RU": 3, "US": 2}
	ordered := OrderServerGroups(counts, []string{"EU", "RU", "US"}, dm)
	require.Len(t, ordered, 3)

	cost := func(a string) float64 {
		var sum float64
		for r, c := range counts {
			if d, ok := dm.Distance(a, r); ok {
				sum += d * float64(c)
			}
		}
		return sum
	}
	for i := 1; i < len(ordered); i++ {
		assert.LessOrEqual(t, cost(ordered[i-1]), cost(ordered[i]))
	}
}
