// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/j-mckerracher/comp-sys-rankings/internal/venues"
)

// DefaultFirstYear is the lower bound of the all-time selection.
const DefaultFirstYear = 1970

// Selection holds the caller's ranking criteria. Areas expand to all of
// their venues; the union with Venues is the venue selection. Year bounds
// are inclusive.
type Selection struct {
	Venues   []string `json:"venues,omitempty" yaml:"venues,omitempty"`
	Areas    []string `json:"areas,omitempty" yaml:"areas,omitempty"`
	YearLow  int      `json:"year_low" yaml:"year_low"`
	YearHigh int      `json:"year_high" yaml:"year_high"`
}

// FullSelection selects every venue from firstYear through the year of now.
func FullSelection(c *venues.Classifier, firstYear int, now time.Time) Selection {
	return Selection{
		Venues:   c.AllVenues(),
		YearLow:  firstYear,
		YearHigh: now.Year(),
	}
}

// Resolve canonicalizes the venue selection and derives the implied areas.
// Unknown venues fail with venues.ErrUnclassifiableVenue and unknown areas
// with venues.ErrUnknownArea.
func (s Selection) Resolve(c *venues.Classifier) (selected map[string]bool, areas map[string]bool, err error) {
	selected = make(map[string]bool)
	for _, area := range s.Areas {
		list, err := c.VenuesIn(area)
		if err != nil {
			return nil, nil, err
		}
		for _, v := range list {
			selected[v] = true
		}
	}
	for _, v := range s.Venues {
		canon, err := c.Canonical(v)
		if err != nil {
			return nil, nil, err
		}
		selected[canon] = true
	}

	list := make([]string, 0, len(selected))
	for v := range selected {
		list = append(list, v)
	}
	areas, err = c.AreasFor(list)
	if err != nil {
		return nil, nil, err
	}
	return selected, areas, nil
}

// IsEmpty reports whether the selection can match nothing: no venues, no
// areas, or an inverted year range.
func (s Selection) IsEmpty() bool {
	return (len(s.Venues) == 0 && len(s.Areas) == 0) || s.YearLow > s.YearHigh
}

// IsFull reports whether the selection covers every venue of c over
// [firstYear, now.Year()].
func (s Selection) IsFull(c *venues.Classifier, firstYear int, now time.Time) bool {
	if s.YearLow != firstYear || s.YearHigh != now.Year() {
		return false
	}
	selected, _, err := s.Resolve(c)
	if err != nil {
		return false
	}
	for _, v := range c.AllVenues() {
		if !selected[v] {
			return false
		}
	}
	return true
}

// Key returns a canonical string for the selection, stable under venue
// order and case, suitable as a cache key.
func (s Selection) Key(c *venues.Classifier) (string, error) {
	selected, _, err := s.Resolve(c)
	if err != nil {
		return "", err
	}
	list := make([]string, 0, len(selected))
	for v := range selected {
		list = append(list, strings.ToLower(v))
	}
	sort.Strings(list)
	return fmt.Sprintf("%d-%d:%s", s.YearLow, s.YearHigh, strings.Join(list, ",")), nil
}
