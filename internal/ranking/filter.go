// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"sort"
	"strings"

	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// Filtered maps a raw institution name to its filtered record. Authors keep
// their raw names and ascending raw-name order until formatting.
type Filtered map[string]*types.RankedInstitution

// Filter keeps only the selected venues and areas and the year buckets in
// [yearLow, yearHigh], then recomputes every aggregate from the retained
// leaves. Venue matching ignores case. Areas left without venue data are
// dropped; authors are never dropped, only emptied. AuthorCount is copied
// from the raw record.
func Filter(ds types.Dataset, selectedVenues, selectedAreas map[string]bool, yearLow, yearHigh int) Filtered {
	venues := make(map[string]bool, len(selectedVenues))
	for v, ok := range selectedVenues {
		if ok {
			venues[strings.ToLower(v)] = true
		}
	}

	out := make(Filtered, len(ds))
	for name, rec := range ds {
		out[name] = filterInstitution(name, rec, venues, selectedAreas, yearLow, yearHigh)
	}
	return out
}

func filterInstitution(name string, rec *types.InstitutionRecord, venues, areas map[string]bool, low, high int) *types.RankedInstitution {
	inst := &types.RankedInstitution{
		Name:            name,
		AreaScores:      make(map[string]float64),
		AreaPaperCounts: make(map[string]int),
	}
	if rec == nil {
		return inst
	}
	inst.AuthorCount = rec.AuthorCount

	for _, authorName := range sortedKeys(rec.Authors) {
		author := filterAuthor(authorName, rec.Authors[authorName], venues, areas, low, high)
		for _, area := range sortedKeys(author.Areas) {
			inst.AreaScores[area] += author.Scores[area]
			inst.AreaPaperCounts[area] += author.Areas[area].PaperCount
		}
		inst.Authors = append(inst.Authors, author)
	}
	inst.TotalScore = sumScores(inst.AreaScores)
	return inst
}

func filterAuthor(name string, rec *types.AuthorRecord, venues, areas map[string]bool, low, high int) types.RankedAuthor {
	author := types.RankedAuthor{
		Name:   name,
		Areas:  make(map[string]*types.AreaRecord),
		Scores: make(map[string]float64),
	}
	if rec == nil {
		return author
	}
	author.DBLPLink = rec.DBLPLink

	for _, area := range sortedKeys(rec.Areas) {
		if !areas[area] {
			continue
		}
		filtered := filterArea(rec.Areas[area], venues, low, high)
		if filtered == nil {
			continue
		}
		author.Areas[area] = filtered
		author.Scores[area] = filtered.AdjustedScore
		author.PaperCount += filtered.PaperCount
	}
	return author
}

// filterArea returns nil when no venue data survives.
func filterArea(rec *types.AreaRecord, venues map[string]bool, low, high int) *types.AreaRecord {
	if rec == nil {
		return nil
	}
	out := &types.AreaRecord{Venues: make(map[string]types.YearBuckets)}
	for _, venue := range sortedKeys(rec.Venues) {
		if !venues[strings.ToLower(venue)] {
			continue
		}
		buckets := rec.Venues[venue]
		kept := make(types.YearBuckets)
		for _, year := range sortedYears(buckets) {
			if year < low || year > high {
				continue
			}
			leaf := buckets[year]
			kept[year] = leaf
			out.AdjustedScore += leaf.Score
			out.PaperCount += leaf.YearPaperCount
		}
		if len(kept) > 0 {
			out.Venues[venue] = kept
		}
	}
	if len(out.Venues) == 0 {
		return nil
	}
	return out
}

func sumScores(scores map[string]float64) float64 {
	var total float64
	for _, k := range sortedKeys(scores) {
		total += scores[k]
	}
	return total
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedYears(b types.YearBuckets) []int {
	years := make([]int, 0, len(b))
	for y := range b {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
