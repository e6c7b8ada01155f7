// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"math"
	"sort"
)

// DefaultProximityPct is the top-area proximity used when none is configured.
const DefaultProximityPct = 5.0

// TopAreas returns the areas whose score is the author's maximum or lies
// within proximityPct percent below it. At most two distinct score values
// qualify: the maximum and the highest nearby value. Every area holding a
// qualifying value is returned, ordered by score then name.
func TopAreas(scores map[string]float64, proximityPct float64) []string {
	if len(scores) == 0 {
		return nil
	}

	max := math.Inf(-1)
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	threshold := max * (1 - proximityPct/100)

	// Highest score in [threshold, max), if any.
	second := math.Inf(-1)
	for _, s := range scores {
		if s >= threshold && s < max && s > second {
			second = s
		}
	}

	var out []string
	for area, s := range scores {
		if s == max || s == second {
			out = append(out, area)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := scores[out[i]], scores[out[j]]
		if si != sj {
			return si > sj
		}
		return out[i] < out[j]
	})
	return out
}
