// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the rankings pipeline:
// the raw per-institution publication dataset, the ranked output, and the
// configuration structs for every stage.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Bookkeeping keys stored alongside venue data in an area record.
const (
	KeyAreaAdjustedScore = "area_adjusted_score"
	KeyAreaPaperCount    = "area_paper_count"
)

var (
	// ErrMalformedLeaf reports a venue-year leaf with a missing, non-numeric,
	// or negative field.
	ErrMalformedLeaf = errors.New("malformed leaf record")

	// ErrMalformedYear reports a year bucket key that is not an integer.
	ErrMalformedYear = errors.New("malformed year key")
)

// Leaf is the publication record of one author at one venue in one year.
// Leaves are the only source of truth; every aggregate is a sum over them.
type Leaf struct {
	Score          float64 `json:"score" yaml:"score"`
	YearPaperCount int     `json:"year_paper_count" yaml:"year_paper_count"`
}

// UnmarshalJSON requires both fields to be present and non-negative.
func (l *Leaf) UnmarshalJSON(data []byte) error {
	var raw struct {
		Score          *float64 `json:"score"`
		YearPaperCount *int     `json:"year_paper_count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedLeaf, err)
	}
	if raw.Score == nil {
		return fmt.Errorf("%w: missing score", ErrMalformedLeaf)
	}
	if raw.YearPaperCount == nil {
		return fmt.Errorf("%w: missing year_paper_count", ErrMalformedLeaf)
	}
	if *raw.Score < 0 || *raw.YearPaperCount < 0 {
		return fmt.Errorf("%w: negative value", ErrMalformedLeaf)
	}
	l.Score = *raw.Score
	l.YearPaperCount = *raw.YearPaperCount
	return nil
}

// YearBuckets maps a publication year to its leaf.
type YearBuckets map[int]Leaf

// AreaRecord holds one author's publications in a research area. Venues maps
// a venue identifier to its year buckets. AdjustedScore and PaperCount are
// derived from the leaves and are recomputed by every filter pass.
type AreaRecord struct {
	AdjustedScore float64
	PaperCount    int
	Venues        map[string]YearBuckets
}

// UnmarshalJSON decodes the flattened on-disk shape in which the bookkeeping
// keys sit next to the venue keys.
func (a *AreaRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: area record: %v", ErrMalformedLeaf, err)
	}

	a.Venues = make(map[string]YearBuckets, len(fields))
	for key, raw := range fields {
		switch key {
		case KeyAreaAdjustedScore:
			if err := json.Unmarshal(raw, &a.AdjustedScore); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrMalformedLeaf, key, err)
			}
		case KeyAreaPaperCount:
			var n float64
			if err := json.Unmarshal(raw, &n); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrMalformedLeaf, key, err)
			}
			a.PaperCount = int(n)
		default:
			var years map[string]Leaf
			if err := json.Unmarshal(raw, &years); err != nil {
				if errors.Is(err, ErrMalformedLeaf) {
					return fmt.Errorf("venue %s: %w", key, err)
				}
				return fmt.Errorf("venue %s: %w: %v", key, ErrMalformedLeaf, err)
			}
			buckets := make(YearBuckets, len(years))
			for y, leaf := range years {
				year, err := strconv.Atoi(strings.TrimSpace(y))
				if err != nil {
					return fmt.Errorf("venue %s: %w: %q", key, ErrMalformedYear, y)
				}
				buckets[year] = leaf
			}
			a.Venues[key] = buckets
		}
	}
	return nil
}

// MarshalJSON writes the bookkeeping keys first, then venues in name order.
func (a AreaRecord) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field(KeyAreaAdjustedScore, a.AdjustedScore)
	w.field(KeyAreaPaperCount, a.PaperCount)
	for _, venue := range sortedKeys(a.Venues) {
		w.field(venue, a.Venues[venue])
	}
	return w.bytes()
}

// AuthorRecord is one author's raw publication record.
type AuthorRecord struct {
	DBLPLink string                 `json:"dblp_link,omitempty" yaml:"dblp_link,omitempty"`
	Areas    map[string]*AreaRecord `json:"area_paper_counts" yaml:"area_paper_counts"`
}

// UnmarshalJSON skips the author-level bookkeeping totals stored among the
// area records; they are derived and recomputed on every filter pass.
func (a *AuthorRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		DBLPLink string                     `json:"dblp_link"`
		Areas    map[string]json.RawMessage `json:"area_paper_counts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: author record: %v", ErrMalformedLeaf, err)
	}
	a.DBLPLink = raw.DBLPLink
	a.Areas = make(map[string]*AreaRecord, len(raw.Areas))
	for area, body := range raw.Areas {
		if area == KeyAreaAdjustedScore || area == KeyAreaPaperCount {
			continue
		}
		var rec AreaRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			return fmt.Errorf("area %s: %w", area, err)
		}
		a.Areas[area] = &rec
	}
	return nil
}

// InstitutionRecord is one institution's raw record. AuthorCount is a
// population statistic and is never recomputed from the authors map.
type InstitutionRecord struct {
	AuthorCount int                      `json:"author_count" yaml:"author_count"`
	Authors     map[string]*AuthorRecord `json:"authors" yaml:"authors"`
}

// Dataset maps a raw institution name to its record.
type Dataset map[string]*InstitutionRecord

// InstitutionError reports an institution rejected by validation. The rest of
// the dataset remains usable.
type InstitutionError struct {
	Institution string
	Err         error
}

func (e *InstitutionError) Error() string {
	return fmt.Sprintf("institution %q: %v", e.Institution, e.Err)
}

func (e *InstitutionError) Unwrap() error { return e.Err }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
