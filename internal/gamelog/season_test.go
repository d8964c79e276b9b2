package gamelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonStartYear(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected int
	}{
		{name: "october opens the season", date: time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), expected: 2024},
		{name: "spring belongs to prior year", date: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), expected: 2024},
		{name: "september is still last season", date: time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC), expected: 2023},
		{name: "december", date: time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC), expected: 2024},
		{name: "june finals", date: time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), expected: 2024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SeasonStartYear(tt.date))
		})
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
	}{
		{in: "34:30", expected: 34.5},
		{in: "34", expected: 34},
		{in: "0:00", expected: 0},
		{in: "", expected: 0},
		{in: "DNP", expected: 0},
		{in: "-5", expected: 0},
		{in: " 12:15 ", expected: 12.25},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, ParseMinutes(tt.in), 1e-9, "input %q", tt.in)
	}
}

func TestParseRowRejectsUnplayableRows(t *testing.T) {
	valid := RawRow{
		GameID:       101,
		GameDate:     "2024-11-02",
		Minutes:      "30:00",
		TeamAbbr:     "bos",
		HomeTeamAbbr: "BOS",
		AwayTeamAbbr: "MIA",
		Stats:        map[string]float64{"pts": 25},
	}

	rec, ok := ParseRow(valid)
	assert.True(t, ok)
	assert.Equal(t, "BOS", rec.TeamAbbr)
	assert.Equal(t, "MIA", rec.OpponentAbbr)
	assert.InDelta(t, 30.0, rec.MinutesPlayed, 1e-9)

	noDate := valid
	noDate.GameDate = ""
	_, ok = ParseRow(noDate)
	assert.False(t, ok)

	badDate := valid
	badDate.GameDate = "soon"
	_, ok = ParseRow(badDate)
	assert.False(t, ok)

	noID := valid
	noID.GameID = 0
	_, ok = ParseRow(noID)
	assert.False(t, ok)

	// Missing participants is not fatal at parse time; the opponent-derived
	// predicates exclude such records later.
	noTeams := valid
	noTeams.HomeTeamAbbr = ""
	noTeams.AwayTeamAbbr = ""
	rec, ok = ParseRow(noTeams)
	assert.True(t, ok)
	assert.Empty(t, rec.OpponentAbbr)
}

func TestStatValueCombinedMarkets(t *testing.T) {
	rec := GameRecord{
		MinutesPlayed: 36,
		Stats:         map[string]float64{"pts": 30, "reb": 10, "ast": 5},
	}

	v, ok := rec.StatValue("pra")
	assert.True(t, ok)
	assert.InDelta(t, 45, v, 1e-9)

	v, ok = rec.StatValue("pr")
	assert.True(t, ok)
	assert.InDelta(t, 40, v, 1e-9)

	v, ok = rec.StatValue("min")
	assert.True(t, ok)
	assert.InDelta(t, 36, v, 1e-9)

	_, ok = rec.StatValue("stl")
	assert.False(t, ok)
}
