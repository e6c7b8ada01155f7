// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	c := Default()
	assert.Len(t, c.Areas(), 13)
	assert.Len(t, c.AllVenues(), 53)
	assert.Equal(t, "computer_architecture", c.Areas()[0])
}

func TestCategorize(t *testing.T) {
	c := Default()
	tests := []struct {
		venue string
		want  string
	}{
		{"SOSP", "operating_systems"},
		{"sosp", "operating_systems"},
		{" PLDI ", "programming_languages"},
		{"RTTSS", "embedded_and_real_time"},
		{"ACM-Conference-on-Computer-and-Communications-Security", "computer_security"},
		{"sigmetrics", "measurement_and_performance_analysis"},
	}
	for _, tt := range tests {
		t.Run(tt.venue, func(t *testing.T) {
			got, err := c.Categorize(tt.venue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategorizeUnknown(t *testing.T) {
	_, err := Default().Categorize("Nature")
	assert.ErrorIs(t, err, ErrUnclassifiableVenue)
}

func TestCanonical(t *testing.T) {
	c := Default()
	got, err := c.Canonical("mobisys")
	require.NoError(t, err)
	assert.Equal(t, "MobiSys", got)

	_, err = c.Canonical("")
	assert.ErrorIs(t, err, ErrUnclassifiableVenue)
}

func TestVenuesIn(t *testing.T) {
	c := Default()
	got, err := c.VenuesIn("embedded_and_real_time")
	require.NoError(t, err)
	assert.Equal(t, []string{"RTSS", "RTAS", "RTTSS"}, got)

	got[0] = "changed"
	again, _ := c.VenuesIn("embedded_and_real_time")
	assert.Equal(t, "RTSS", again[0])

	_, err = c.VenuesIn("astrology")
	assert.ErrorIs(t, err, ErrUnknownArea)
}

func TestAreasFor(t *testing.T) {
	c := Default()
	got, err := c.AreasFor([]string{"SOSP", "OSDI", "VLDB"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"operating_systems": true, "databases": true}, got)

	_, err = c.AreasFor([]string{"SOSP", "Nature"})
	assert.ErrorIs(t, err, ErrUnclassifiableVenue)
}

func TestEveryVenueClassifiesToItsArea(t *testing.T) {
	c := Default()
	for _, area := range c.Areas() {
		list, err := c.VenuesIn(area)
		require.NoError(t, err)
		for _, v := range list {
			got, err := c.Categorize(v)
			require.NoError(t, err)
			assert.Equal(t, area, got, v)
		}
	}
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte("systems:\n  - A\n  - b\nother:\n  - C\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"other", "systems"}, c.Areas())
	assert.Equal(t, []string{"C", "A", "b"}, c.AllVenues())

	_, err = Parse([]byte("one:\n  - X\ntwo:\n  - x\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("not: [valid"))
	assert.Error(t, err)
}
