// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package venues classifies publication venues into research areas.
// The table is a static YAML document embedded in the binary; callers may
// load an alternative table with Parse.
package venues

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

var (
	// ErrUnclassifiableVenue reports a venue that belongs to no known area.
	ErrUnclassifiableVenue = errors.New("unclassifiable venue")

	// ErrUnknownArea reports an area name absent from the venue table.
	ErrUnknownArea = errors.New("unknown area")
)

//go:embed venues.yaml
var defaultTable []byte

// Classifier maps venue identifiers to research areas. It is immutable
// after construction and safe for concurrent use.
type Classifier struct {
	byVenue map[string]string   // lower-cased venue → area
	canon   map[string]string   // lower-cased venue → identifier as listed
	byArea  map[string][]string // area → venues in table order
	areas   []string
}

// Default returns the classifier built from the embedded venue table.
func Default() *Classifier {
	c, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("venues: embedded table: %v", err))
	}
	return c
}

// Parse builds a classifier from a YAML mapping of area name to venue list.
// A venue listed under two areas is an error.
func Parse(data []byte) (*Classifier, error) {
	var table map[string][]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing venue table: %w", err)
	}

	c := &Classifier{
		byVenue: make(map[string]string),
		canon:   make(map[string]string),
		byArea:  make(map[string][]string, len(table)),
	}
	for area, list := range table {
		area = strings.TrimSpace(area)
		if area == "" {
			return nil, fmt.Errorf("venue table: empty area name")
		}
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if prev, ok := c.byVenue[key]; ok && prev != area {
				return nil, fmt.Errorf("venue table: %s listed under %s and %s", v, prev, area)
			}
			c.byVenue[key] = area
			c.canon[key] = v
			c.byArea[area] = append(c.byArea[area], v)
		}
		c.areas = append(c.areas, area)
	}
	sort.Strings(c.areas)
	return c, nil
}

// Categorize returns the area of venue. Matching ignores case and
// surrounding whitespace.
func (c *Classifier) Categorize(venue string) (string, error) {
	area, ok := c.byVenue[strings.ToLower(strings.TrimSpace(venue))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnclassifiableVenue, venue)
	}
	return area, nil
}

// Canonical returns the venue identifier as spelled in the table.
func (c *Classifier) Canonical(venue string) (string, error) {
	v, ok := c.canon[strings.ToLower(strings.TrimSpace(venue))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnclassifiableVenue, venue)
	}
	return v, nil
}

// Areas returns every area name in ascending order.
func (c *Classifier) Areas() []string {
	out := make([]string, len(c.areas))
	copy(out, c.areas)
	return out
}

// VenuesIn returns the venues of area in table order.
func (c *Classifier) VenuesIn(area string) ([]string, error) {
	list, ok := c.byArea[strings.TrimSpace(area)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArea, area)
	}
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

// AllVenues returns every venue, grouped by area in ascending area order.
func (c *Classifier) AllVenues() []string {
	var out []string
	for _, area := range c.areas {
		out = append(out, c.byArea[area]...)
	}
	return out
}

// AreasFor classifies every venue and returns the set of implied areas.
// The first unclassifiable venue aborts with ErrUnclassifiableVenue.
func (c *Classifier) AreasFor(venues []string) (map[string]bool, error) {
	areas := make(map[string]bool)
	for _, v := range venues {
		area, err := c.Categorize(v)
		if err != nil {
			return nil, err
		}
		areas[area] = true
	}
	return areas, nil
}
