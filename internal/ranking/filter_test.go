// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

var allSampleVenues = set("SOSP", "FAST", "SIGMOD", "VLDB", "ICDE", "PLDI", "POPL", "OSDI")
var allSampleAreas = set("operating_systems", "databases", "programming_languages")

func TestFilterRecomputesAggregates(t *testing.T) {
	out := Filter(loadSample(t), allSampleVenues, allSampleAreas, 2000, 2025)

	wisc := out["university of wisconsin-madison"]
	require.NotNil(t, wisc)
	assert.Equal(t, 40, wisc.AuthorCount)

	// ICDE 1999 falls outside the range.
	assert.InDelta(t, 6.5, wisc.AreaScores["operating_systems"], 1e-9)
	assert.InDelta(t, 5.0, wisc.AreaScores["databases"], 1e-9)
	assert.Equal(t, 6, wisc.AreaPaperCounts["operating_systems"])
	assert.Equal(t, 3, wisc.AreaPaperCounts["databases"])
	assert.InDelta(t, 11.5, wisc.TotalScore, 1e-9)

	// Stale stored aggregates are ignored.
	remzi := findAuthor(t, wisc, "Remzi Arpaci-Dusseau 0001")
	assert.InDelta(t, 6.5, remzi.Areas["operating_systems"].AdjustedScore, 1e-9)
	assert.Equal(t, 6, remzi.Areas["operating_systems"].PaperCount)
	assert.InDelta(t, 6.5, remzi.Scores["operating_systems"], 1e-9)
	assert.Equal(t, 7, remzi.PaperCount)
	assert.Equal(t, "https://dblp.org/pid/00/1", remzi.DBLPLink)
}

func TestFilterLeafSumInvariant(t *testing.T) {
	ds := loadSample(t)
	selections := []struct {
		venues    map[string]bool
		areas     map[string]bool
		low, high int
	}{
		{allSampleVenues, allSampleAreas, 1970, 2026},
		{set("SOSP", "VLDB"), set("operating_systems", "databases"), 2018, 2020},
		{set("PLDI"), set("programming_languages"), 2020, 2020},
		{set("OSDI", "FAST"), set("operating_systems"), 2016, 2030},
	}
	for _, sel := range selections {
		out := Filter(ds, sel.venues, sel.areas, sel.low, sel.high)
		for name, inst := range out {
			leafSums := make(map[string]float64)
			leafCounts := make(map[string]int)
			for _, a := range inst.Authors {
				for area, rec := range a.Areas {
					for _, buckets := range rec.Venues {
						for year, leaf := range buckets {
							assert.True(t, year >= sel.low && year <= sel.high, "%s: year %d out of range", name, year)
							leafSums[area] += leaf.Score
							leafCounts[area] += leaf.YearPaperCount
						}
					}
				}
			}
			require.Len(t, inst.AreaScores, len(leafSums), name)
			var total float64
			for area, sum := range leafSums {
				assert.InDelta(t, sum, inst.AreaScores[area], 1e-9, "%s/%s", name, area)
				assert.Equal(t, leafCounts[area], inst.AreaPaperCounts[area], "%s/%s", name, area)
				total += sum
			}
			assert.InDelta(t, total, inst.TotalScore, 1e-9, name)
		}
	}
}

func TestFilterYearBoundsInclusive(t *testing.T) {
	out := Filter(loadSample(t), set("SOSP"), set("operating_systems"), 2018, 2021)
	remzi := findAuthor(t, out["university of wisconsin-madison"], "Remzi Arpaci-Dusseau 0001")
	assert.Len(t, remzi.Areas["operating_systems"].Venues["SOSP"], 2)

	out = Filter(loadSample(t), set("SOSP"), set("operating_systems"), 2019, 2020)
	remzi = findAuthor(t, out["university of wisconsin-madison"], "Remzi Arpaci-Dusseau 0001")
	assert.Empty(t, remzi.Areas)
}

func TestFilterDropsEmptyAreasKeepsAuthors(t *testing.T) {
	out := Filter(loadSample(t), set("PLDI"), set("programming_languages"), 1970, 2026)

	wisc := out["university of wisconsin-madison"]
	require.Len(t, wisc.Authors, 3)
	for _, a := range wisc.Authors {
		assert.Equal(t, 0, a.PaperCount, a.Name)
		assert.Empty(t, a.Areas, a.Name)
		assert.Empty(t, a.Scores, a.Name)
	}
	assert.Empty(t, wisc.AreaScores)
	assert.Zero(t, wisc.TotalScore)

	cmu := out["carnegie mellon university"]
	smith := findAuthor(t, cmu, "Alex Smith")
	assert.NotContains(t, smith.Areas, "operating_systems")
	assert.Equal(t, 1, smith.PaperCount)
}

func TestFilterVenueOutsideSelectedAreaIgnored(t *testing.T) {
	// OSDI is selected but operating_systems is not.
	out := Filter(loadSample(t), set("OSDI", "PLDI"), set("programming_languages"), 1970, 2026)
	smith := findAuthor(t, out["carnegie mellon university"], "Alex Smith")
	assert.Equal(t, []string{"programming_languages"}, keys(smith.Scores))
}

func TestFilterVenueMatchIgnoresCase(t *testing.T) {
	out := Filter(loadSample(t), set("pldi"), set("programming_languages"), 1970, 2026)
	assert.InDelta(t, 3.0, out["carnegie mellon university"].TotalScore, 1e-9)
}

func TestFilterEmptyInstitution(t *testing.T) {
	out := Filter(loadSample(t), allSampleVenues, allSampleAreas, 1970, 2026)
	empty := out["empty college"]
	require.NotNil(t, empty)
	assert.Equal(t, 3, empty.AuthorCount)
	assert.Empty(t, empty.Authors)
	assert.NotNil(t, empty.AreaScores)
	assert.Zero(t, empty.TotalScore)
}

func TestFilterNilRecords(t *testing.T) {
	ds := types.Dataset{
		"nil institution": nil,
		"nil author":      {AuthorCount: 1, Authors: map[string]*types.AuthorRecord{"X": nil}},
	}
	out := Filter(ds, allSampleVenues, allSampleAreas, 1970, 2026)
	assert.Zero(t, out["nil institution"].AuthorCount)
	require.Len(t, out["nil author"].Authors, 1)
	assert.Equal(t, 0, out["nil author"].Authors[0].PaperCount)
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	ds := loadSample(t)
	Filter(ds, set("PLDI"), set("programming_languages"), 2020, 2020)
	rec := ds["university of wisconsin-madison"].Authors["Remzi Arpaci-Dusseau 0001"].Areas["operating_systems"]
	assert.Len(t, rec.Venues, 2)
	assert.InDelta(t, 12.5, rec.AdjustedScore, 1e-9)
}

func findAuthor(t *testing.T, inst *types.RankedInstitution, name string) types.RankedAuthor {
	t.Helper()
	require.NotNil(t, inst)
	a, ok := inst.Author(name)
	require.True(t, ok, "author %q not found", name)
	return a
}

func keys[V any](m map[string]V) []string {
	return sortedKeys(m)
}
