// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// Keys of a ranked author record that are bookkeeping, not area scores.
const (
	KeyPaperCount      = "paper_count"
	KeyAreaPaperCounts = "area_paper_counts"
	KeyDBLPLink        = "dblp_link"
	KeyTopAreas        = "top_areas"
)

// IsBookkeepingKey reports whether key names an author field that never
// counts toward the author's score.
func IsBookkeepingKey(key string) bool {
	switch key {
	case KeyPaperCount, KeyAreaPaperCounts, KeyDBLPLink, KeyTopAreas,
		KeyAreaAdjustedScore, KeyAreaPaperCount:
		return true
	}
	return false
}

// RankedAuthor is one author in the display-ready ranking.
type RankedAuthor struct {
	// Name is the formatted display name.
	Name string

	// DBLPLink is carried through from the raw record.
	DBLPLink string

	// PaperCount is the sum of area paper counts over retained areas.
	PaperCount int

	// Areas holds the filtered area records, keyed by area name.
	Areas map[string]*AreaRecord

	// Scores maps area name to the area's adjusted score. Serialized as
	// sibling keys of the bookkeeping fields.
	Scores map[string]float64

	// TopAreas lists the areas at or near the author's maximum score.
	TopAreas []string
}

// TotalScore returns the sum of the author's per-area scores.
func (a RankedAuthor) TotalScore() float64 {
	var total float64
	for _, area := range sortedKeys(a.Scores) {
		total += a.Scores[area]
	}
	return total
}

// MarshalJSON flattens per-area scores next to the bookkeeping fields.
func (a RankedAuthor) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field(KeyPaperCount, a.PaperCount)
	areas := a.Areas
	if areas == nil {
		areas = map[string]*AreaRecord{}
	}
	w.field(KeyAreaPaperCounts, areas)
	topAreas := a.TopAreas
	if topAreas == nil {
		topAreas = []string{}
	}
	w.field(KeyTopAreas, topAreas)
	if a.DBLPLink != "" {
		w.field(KeyDBLPLink, a.DBLPLink)
	}
	for _, area := range sortedKeys(a.Scores) {
		if IsBookkeepingKey(area) {
			continue
		}
		w.field(area, a.Scores[area])
	}
	return w.bytes()
}

// RankedInstitution is one institution in the display-ready ranking.
type RankedInstitution struct {
	Name            string
	AuthorCount     int
	TotalScore      float64
	AverageCount    float64
	AreaScores      map[string]float64
	AreaPaperCounts map[string]int

	// Authors is ordered by total score, highest first.
	Authors []RankedAuthor
}

// Author returns the named author, if present.
func (inst RankedInstitution) Author(name string) (RankedAuthor, bool) {
	for _, a := range inst.Authors {
		if a.Name == name {
			return a, true
		}
	}
	return RankedAuthor{}, false
}

// MarshalJSON writes the authors as an object keyed by name, in rank order.
func (inst RankedInstitution) MarshalJSON() ([]byte, error) {
	areaScores := inst.AreaScores
	if areaScores == nil {
		areaScores = map[string]float64{}
	}
	areaPaperCounts := inst.AreaPaperCounts
	if areaPaperCounts == nil {
		areaPaperCounts = map[string]int{}
	}

	var authors objectWriter
	for _, a := range inst.Authors {
		authors.field(a.Name, a)
	}
	authorsJSON, err := authors.bytes()
	if err != nil {
		return nil, err
	}

	var w objectWriter
	w.field("author_count", inst.AuthorCount)
	w.field("total_score", inst.TotalScore)
	w.field("average_count", inst.AverageCount)
	w.field("area_scores", areaScores)
	w.field("area_paper_counts", areaPaperCounts)
	w.field("authors", json.RawMessage(authorsJSON))
	return w.bytes()
}

// Ranking is the ordered result of a pipeline run, best institution first.
type Ranking []RankedInstitution

// Institution returns the named institution, if present.
func (r Ranking) Institution(name string) (RankedInstitution, bool) {
	for _, inst := range r {
		if inst.Name == name {
			return inst, true
		}
	}
	return RankedInstitution{}, false
}

// MarshalJSON writes the ranking as an object keyed by institution name,
// preserving rank order.
func (r Ranking) MarshalJSON() ([]byte, error) {
	var w objectWriter
	for _, inst := range r {
		w.field(inst.Name, inst)
	}
	return w.bytes()
}
