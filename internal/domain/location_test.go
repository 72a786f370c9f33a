package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minneapolisSite = "http://www2.minneapolismn.gov/snow/index.htm"

func ptr(s string) *string { return &s }

func testTable() *CityTable {
	return NewCityTable(map[string]LocationRecord{
		"minneapolis": {
			Site:         minneapolisSite,
			YesCondition: []string{"a snow emergency has been declared"},
			NoCondition:  []string{"no snow emergency"},
			Policy:       "Minneapolis declares snow emergencies after significant snowfall.",
		},
		"brooklynpark": {
			Site:   "https://www.brooklynpark.org/snow",
			Policy: "Brooklyn Park plows all streets after 2 inches of snow.",
		},
		"Saint Paul": {
			Site: "https://www.stpaul.gov/departments/public-works/street-maintenance/snow-emergency-update",
		},
	})
}

func TestCityTable_DirectLookup(t *testing.T) {
	rec, recombined, ok := testTable().Resolve(ptr("minneapolis"), nil)
	require.True(t, ok)
	assert.False(t, recombined)
	assert.Equal(t, minneapolisSite, rec.Site)
}

func TestCityTable_UnknownCity(t *testing.T) {
	_, recombined, ok := testTable().Resolve(ptr("fargo"), ptr("fargond"))
	assert.False(t, ok)
	assert.False(t, recombined)
}

func TestCityTable_RecombinedLookup(t *testing.T) {
	rec, recombined, ok := testTable().Resolve(ptr("brooklyn"), ptr("brooklyn park"))
	require.True(t, ok)
	assert.True(t, recombined)
	assert.Equal(t, "https://www.brooklynpark.org/snow", rec.Site)
}

func TestCityTable_DirectWinsOverRecombined(t *testing.T) {
	rec, recombined, ok := testTable().Resolve(ptr("minneapolis"), ptr("brooklynpark"))
	require.True(t, ok)
	assert.False(t, recombined)
	assert.Equal(t, minneapolisSite, rec.Site)
}

func TestCityTable_NilKey(t *testing.T) {
	_, _, ok := testTable().Resolve(nil, ptr("brooklynpark"))
	assert.False(t, ok)
}

func TestCityTable_KeysNormalizedAndSorted(t *testing.T) {
	table := testTable()
	assert.Equal(t, []string{"brooklynpark", "minneapolis", "saintpaul"}, table.Keys())
	assert.Equal(t, 3, table.Len())

	_, ok := table.Lookup("saintpaul")
	assert.True(t, ok)
}

func TestCityTable_NilTable(t *testing.T) {
	var table *CityTable
	_, ok := table.Lookup("minneapolis")
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.Keys())
}

func TestLocationRecord_PageFormatDefault(t *testing.T) {
	assert.Equal(t, FormatHTML, LocationRecord{}.PageFormat())
	assert.Equal(t, FormatNotices, LocationRecord{Format: FormatNotices}.PageFormat())
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Minneapolis", "minneapolis"},
		{"Saint Paul", "saintpaul"},
		{"brooklyn park", "brooklynpark"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"saint paul", "Saint Paul"},
		{"MINNEAPOLIS", "Minneapolis"},
		{"  brooklyn   park ", "Brooklyn Park"},
		{"st. louis park", "St. Louis Park"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.in))
		})
	}
}
