package gamelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func game(id int, date time.Time, team, home, away string, minutes float64) GameRecord {
	return GameRecord{
		GameID:        id,
		GameDate:      date,
		TeamAbbr:      team,
		MinutesPlayed: minutes,
		HomeTeamAbbr:  home,
		AwayTeamAbbr:  away,
		Stats:         map[string]float64{"pts": 20},
	}
}

func TestOpponentFilterDerivesFromParticipants(t *testing.T) {
	rec := game(1, day(2025, time.January, 10), "BOS", "BOS", "MIA", 30)

	// MIA is a participant, so the game counts against a MIA opponent filter.
	assert.True(t, opponentFilter(rec, "BOS", "MIA"))
	// LAL was not in this game.
	assert.False(t, opponentFilter(rec, "BOS", "LAL"))

	// The record's own team field is stale for traded players; derivation
	// still works because it only consults the participants.
	stale := rec
	stale.TeamAbbr = "DAL"
	assert.True(t, opponentFilter(stale, "BOS", "MIA"))
	assert.False(t, opponentFilter(stale, "BOS", "LAL"))

	// A subject is never its own opponent.
	assert.False(t, opponentFilter(rec, "BOS", "BOS"))

	// Missing participant identities exclude the record.
	missing := rec
	missing.HomeTeamAbbr = ""
	assert.False(t, opponentFilter(missing, "BOS", "MIA"))

	// Sentinel matches everything.
	assert.True(t, opponentFilter(rec, "BOS", "ALL"))
	assert.True(t, opponentFilter(rec, "BOS", ""))
}

func TestVenueFilter(t *testing.T) {
	homeGame := game(1, day(2025, time.January, 10), "BOS", "BOS", "MIA", 30)
	awayGame := game(2, day(2025, time.January, 12), "BOS", "MIA", "BOS", 30)

	assert.True(t, venueFilter(homeGame, "BOS", VenueHome))
	assert.False(t, venueFilter(homeGame, "BOS", VenueAway))
	assert.True(t, venueFilter(awayGame, "BOS", VenueAway))
	assert.True(t, venueFilter(homeGame, "BOS", VenueAll))
	assert.True(t, venueFilter(homeGame, "", VenueAll))

	// Unknown subject excludes under a specific venue.
	assert.False(t, venueFilter(homeGame, "", VenueHome))
}

func TestBlowoutBoundary(t *testing.T) {
	rec := game(1, day(2025, time.January, 10), "BOS", "BOS", "MIA", 30)

	rec.HomeScore, rec.AwayScore = 120, 100 // margin 20 stays in
	assert.True(t, blowoutFilter(rec, true))

	rec.HomeScore, rec.AwayScore = 121, 100 // margin 21 is out
	assert.False(t, blowoutFilter(rec, true))

	// Inactive filter keeps everything.
	assert.True(t, blowoutFilter(rec, false))
}

func TestBackToBackBoundary(t *testing.T) {
	records := []GameRecord{
		game(1, day(2025, time.January, 10), "BOS", "BOS", "MIA", 30),
		game(2, day(2025, time.January, 11), "BOS", "BOS", "NYK", 30), // exactly 1.0 day later
		game(3, day(2025, time.January, 13), "BOS", "BOS", "PHI", 30), // 2.0 days later
	}

	second := backToBackGameIDs(records)
	assert.True(t, second[2], "game one day after the previous is the second of a back-to-back")
	assert.False(t, second[3], "a two-day gap is not a back-to-back")
	assert.False(t, second[1])
}

func TestTeammateFilterModes(t *testing.T) {
	rec := game(7, day(2025, time.January, 10), "BOS", "BOS", "MIA", 30)
	participation := map[int]bool{7: true}

	with := &TeammateFilter{Mode: TeammateWith, PlayedGameIDs: participation}
	without := &TeammateFilter{Mode: TeammateWithout, PlayedGameIDs: participation}

	assert.True(t, teammateFilter(rec, with))
	assert.False(t, teammateFilter(rec, without))

	other := game(8, day(2025, time.January, 12), "BOS", "BOS", "NYK", 30)
	assert.False(t, teammateFilter(other, with))
	assert.True(t, teammateFilter(other, without))

	assert.True(t, teammateFilter(rec, nil))
}

func TestPlayedFilterTradedZeroMinutesRetention(t *testing.T) {
	// A traded player's game against the former team shows zero minutes but
	// carries participant teams the roster context knows about.
	zeroMin := game(9, day(2024, time.December, 1), "", "BOS", "DAL", 0)

	roster := &RosterContext{TeamsBySeason: map[int]map[string]bool{
		2024: {"BOS": true},
	}}

	assert.False(t, playedFilter(zeroMin, false, roster), "retention only applies under the last-season timeframe")
	assert.True(t, playedFilter(zeroMin, true, roster))

	// No roster evidence for either participant: drop it.
	unknown := game(10, day(2024, time.December, 3), "", "LAL", "PHX", 0)
	assert.False(t, playedFilter(unknown, true, roster))

	// Real minutes always pass.
	played := game(11, day(2024, time.December, 5), "BOS", "BOS", "MIA", 22)
	assert.True(t, playedFilter(played, false, nil))
}

func TestRosterFromRecords(t *testing.T) {
	records := []GameRecord{
		game(1, day(2024, time.November, 1), "DAL", "DAL", "MIA", 30),
		game(2, day(2025, time.February, 1), "BOS", "BOS", "NYK", 28), // traded mid-season
		game(3, day(2025, time.February, 3), "", "BOS", "DAL", 0),     // placeholder row contributes nothing
	}

	roster := RosterFromRecords(records)
	require.NotNil(t, roster)
	assert.True(t, roster.employedBy(2024, "DAL"))
	assert.True(t, roster.employedBy(2024, "BOS"))
	assert.False(t, roster.employedBy(2024, "MIA"))
	assert.False(t, roster.employedBy(2023, "DAL"))
}

func TestApplyFiltersComposesAndNeverMutates(t *testing.T) {
	records := []GameRecord{
		game(1, day(2025, time.January, 10), "BOS", "BOS", "MIA", 30),
		game(2, day(2025, time.January, 11), "BOS", "MIA", "BOS", 30), // second of back-to-back, away
		game(3, day(2025, time.January, 14), "BOS", "BOS", "LAL", 0),  // DNP
	}
	records[0].HomeScore, records[0].AwayScore = 130, 100 // blowout

	snapshot := make([]GameRecord, len(records))
	copy(snapshot, records)

	out := ApplyFilters(records, Filters{
		SubjectTeam:        "BOS",
		Venue:              VenueAll,
		ExcludeBlowouts:    true,
		ExcludeBackToBacks: true,
	}, nil, false)

	assert.Empty(t, out, "blowout, back-to-back and DNP all excluded")
	assert.Equal(t, snapshot, records, "input slice must not be modified")

	out = ApplyFilters(records, Filters{SubjectTeam: "BOS"}, nil, false)
	assert.Len(t, out, 2)
}
