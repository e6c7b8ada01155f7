// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"math"
	"sort"

	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// AverageCount returns the n-th root of the product of (score+1) over the n
// area scores, or 0 when there are none. The +1 shift keeps a zero score
// from collapsing the product.
func AverageCount(scores []float64) float64 {
	n := len(scores)
	if n == 0 {
		return 0
	}
	product := 1.0
	for _, s := range scores {
		product *= s + 1
	}
	if math.IsInf(product, 0) {
		var logSum float64
		for _, s := range scores {
			logSum += math.Log(s + 1)
		}
		return math.Exp(logSum / float64(n))
	}
	return math.Pow(product, 1/float64(n))
}

// InstitutionAverageCount applies AverageCount to the institution's area
// scores in ascending area-name order.
func InstitutionAverageCount(inst types.RankedInstitution) float64 {
	keys := sortedKeys(inst.AreaScores)
	scores := make([]float64, len(keys))
	for i, area := range keys {
		scores[i] = inst.AreaScores[area]
	}
	return AverageCount(scores)
}

// RankInstitutions orders institutions by average count, highest first,
// breaking ties by name.
func RankInstitutions(insts []types.RankedInstitution) {
	sort.SliceStable(insts, func(i, j int) bool {
		if insts[i].AverageCount != insts[j].AverageCount {
			return insts[i].AverageCount > insts[j].AverageCount
		}
		return insts[i].Name < insts[j].Name
	})
}

// RankAuthors orders an institution's authors by the sum of their area
// scores, highest first, breaking ties by name.
func RankAuthors(inst *types.RankedInstitution) {
	sort.SliceStable(inst.Authors, func(i, j int) bool {
		ti, tj := inst.Authors[i].TotalScore(), inst.Authors[j].TotalScore()
		if ti != tj {
			return ti > tj
		}
		return inst.Authors[i].Name < inst.Authors[j].Name
	})
}

// FormatInstitutions converts filtered records to display names.
// Institutions whose formatted names collide are merged, and their sums
// recomputed. An author whose formatted name is already taken inside the
// institution keeps the raw name; identical raw names are merged.
func FormatInstitutions(filtered Filtered) []types.RankedInstitution {
	merged := make(map[string]*types.RankedInstitution)
	var order []string

	for _, rawName := range sortedKeys(filtered) {
		src := filtered[rawName]
		name := FormatInstitutionName(rawName)
		dst, ok := merged[name]
		if !ok {
			dst = &types.RankedInstitution{
				Name:            name,
				AreaScores:      make(map[string]float64),
				AreaPaperCounts: make(map[string]int),
			}
			merged[name] = dst
			order = append(order, name)
		}
		dst.AuthorCount += src.AuthorCount
		for _, area := range sortedKeys(src.AreaScores) {
			dst.AreaScores[area] += src.AreaScores[area]
		}
		for area, n := range src.AreaPaperCounts {
			dst.AreaPaperCounts[area] += n
		}
		for _, a := range src.Authors {
			addAuthor(dst, a)
		}
	}

	out := make([]types.RankedInstitution, 0, len(order))
	for _, name := range order {
		inst := merged[name]
		inst.TotalScore = sumScores(inst.AreaScores)
		out = append(out, *inst)
	}
	return out
}

func addAuthor(inst *types.RankedInstitution, a types.RankedAuthor) {
	rawName := a.Name
	a.Name = FormatAuthorName(rawName)
	if a.Name == "" {
		a.Name = rawName
	}
	idx := authorIndex(inst, a.Name)
	if idx < 0 {
		inst.Authors = append(inst.Authors, a)
		return
	}
	if a.Name != rawName {
		a.Name = rawName
		if idx = authorIndex(inst, rawName); idx < 0 {
			inst.Authors = append(inst.Authors, a)
			return
		}
	}
	mergeAuthor(&inst.Authors[idx], a)
}

func authorIndex(inst *types.RankedInstitution, name string) int {
	for i := range inst.Authors {
		if inst.Authors[i].Name == name {
			return i
		}
	}
	return -1
}

func mergeAuthor(dst *types.RankedAuthor, src types.RankedAuthor) {
	if dst.DBLPLink == "" {
		dst.DBLPLink = src.DBLPLink
	}
	for _, area := range sortedKeys(src.Areas) {
		s := src.Areas[area]
		d, ok := dst.Areas[area]
		if !ok {
			d = &types.AreaRecord{Venues: make(map[string]types.YearBuckets)}
			dst.Areas[area] = d
		}
		for venue, buckets := range s.Venues {
			if d.Venues[venue] == nil {
				d.Venues[venue] = make(types.YearBuckets)
			}
			for year, leaf := range buckets {
				cur := d.Venues[venue][year]
				cur.Score += leaf.Score
				cur.YearPaperCount += leaf.YearPaperCount
				d.Venues[venue][year] = cur
			}
		}
		d.AdjustedScore += s.AdjustedScore
		d.PaperCount += s.PaperCount
		dst.Scores[area] = d.AdjustedScore
	}
	dst.PaperCount += src.PaperCount
}
