// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// sampleDataset has two institutions across three areas and a spread of
// years, plus an institution without authors.
const sampleDataset = `{
  "university of wisconsin-madison": {
    "author_count": 40,
    "authors": {
      "Remzi Arpaci-Dusseau 0001": {
        "dblp_link": "https://dblp.org/pid/00/1",
        "area_paper_counts": {
          "area_adjusted_score": 99,
          "operating_systems": {
            "area_adjusted_score": 12.5,
            "area_paper_count": 9,
            "SOSP": {"2018": {"score": 2.0, "year_paper_count": 2}, "2021": {"score": 1.5, "year_paper_count": 1}},
            "FAST": {"2015": {"score": 3.0, "year_paper_count": 3}}
          },
          "databases": {
            "area_adjusted_score": 1,
            "SIGMOD": {"2019": {"score": 1.0, "year_paper_count": 1}}
          }
        }
      },
      "Jane Doe 142": {
        "area_paper_counts": {
          "databases": {
            "VLDB": {"2020": {"score": 4.0, "year_paper_count": 2}},
            "ICDE": {"1999": {"score": 0.5, "year_paper_count": 1}}
          }
        }
      },
      "Idle Author": {
        "area_paper_counts": {}
      }
    }
  },
  "carnegie mellon university": {
    "author_count": 80,
    "authors": {
      "Alex Smith": {
        "area_paper_counts": {
          "programming_languages": {
            "PLDI": {"2020": {"score": 3.0, "year_paper_count": 1}},
            "POPL": {"2022": {"score": 2.0, "year_paper_count": 1}}
          },
          "operating_systems": {
            "OSDI": {"2020": {"score": 2.5, "year_paper_count": 2}}
          }
        }
      }
    }
  },
  "empty college": {
    "author_count": 3,
    "authors": {}
  }
}`

func loadSample(t *testing.T) types.Dataset {
	t.Helper()
	var ds types.Dataset
	require.NoError(t, json.Unmarshal([]byte(sampleDataset), &ds))
	return ds
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
