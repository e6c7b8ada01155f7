// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-mckerracher/comp-sys-rankings/internal/venues"
)

func TestSelectionResolve(t *testing.T) {
	c := venues.Default()
	sel := Selection{Venues: []string{"pldi"}, Areas: []string{"measurement_and_performance_analysis"}}

	selected, areas, err := sel.Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"PLDI": true, "IMC": true, "Sigmetrics": true}, selected)
	assert.Equal(t, map[string]bool{"programming_languages": true, "measurement_and_performance_analysis": true}, areas)
}

func TestSelectionResolveUnknown(t *testing.T) {
	c := venues.Default()

	_, _, err := Selection{Venues: []string{"NotAVenue"}}.Resolve(c)
	assert.ErrorIs(t, err, venues.ErrUnclassifiableVenue)

	_, _, err = Selection{Areas: []string{"astrology"}}.Resolve(c)
	assert.ErrorIs(t, err, venues.ErrUnknownArea)
}

func TestSelectionIsEmpty(t *testing.T) {
	assert.True(t, Selection{YearLow: 2000, YearHigh: 2020}.IsEmpty())
	assert.True(t, Selection{Venues: []string{"PLDI"}, YearLow: 2021, YearHigh: 2020}.IsEmpty())
	assert.False(t, Selection{Venues: []string{"PLDI"}, YearLow: 2020, YearHigh: 2020}.IsEmpty())
}

func TestSelectionIsFull(t *testing.T) {
	c := venues.Default()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	full := FullSelection(c, DefaultFirstYear, now)
	assert.True(t, full.IsFull(c, DefaultFirstYear, now))

	byArea := Selection{Areas: c.Areas(), YearLow: DefaultFirstYear, YearHigh: 2024}
	assert.True(t, byArea.IsFull(c, DefaultFirstYear, now))

	narrowed := full
	narrowed.YearLow = 2000
	assert.False(t, narrowed.IsFull(c, DefaultFirstYear, now))

	partial := Selection{Venues: []string{"PLDI"}, YearLow: DefaultFirstYear, YearHigh: 2024}
	assert.False(t, partial.IsFull(c, DefaultFirstYear, now))
}

func TestSelectionKeyIsCanonical(t *testing.T) {
	c := venues.Default()

	a, err := Selection{Venues: []string{"PLDI", "sosp"}, YearLow: 2010, YearHigh: 2020}.Key(c)
	require.NoError(t, err)
	b, err := Selection{Venues: []string{"SOSP", "pldi", "PLDI"}, YearLow: 2010, YearHigh: 2020}.Key(c)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "2010-2020:pldi,sosp", a)

	other, err := Selection{Venues: []string{"PLDI", "SOSP"}, YearLow: 2011, YearHigh: 2020}.Key(c)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}
