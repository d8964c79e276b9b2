package gamelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredGame(id int, date time.Time, team, home, away string, minutes, pts float64, homeScore, awayScore int) GameRecord {
	rec := game(id, date, team, home, away, minutes)
	rec.Stats = map[string]float64{"pts": pts, "reb": 5, "ast": 4}
	rec.HomeScore = homeScore
	rec.AwayScore = awayScore
	return rec
}

func TestRunDeterministic(t *testing.T) {
	records := []GameRecord{
		scoredGame(1, day(2025, time.January, 2), "BOS", "BOS", "MIA", 34, 28, 110, 104),
		scoredGame(2, day(2025, time.January, 5), "BOS", "NYK", "BOS", 31, 22, 99, 101),
		scoredGame(3, day(2024, time.December, 28), "BOS", "BOS", "LAL", 36, 31, 120, 112),
	}
	line := 24.5
	req := Request{
		StatKey:   "pts",
		Line:      &line,
		Timeframe: Timeframe{Kind: TimeframeLastN, N: 10},
		Filters:   Filters{SubjectTeam: "BOS"},
		Now:       testNow,
	}

	first := Run(records, req)
	second := Run(records, req)
	assert.Equal(t, first, second, "identical inputs must produce identical output")

	require.Len(t, first.Points, 3)
	assert.Equal(t, 2, first.Hits)
	assert.InDelta(t, 2.0/3.0, first.HitRate, 1e-9)
	assert.InDelta(t, (28.0+22.0+31.0)/3.0, first.Average, 1e-9)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	records := []GameRecord{
		scoredGame(2, day(2025, time.January, 5), "BOS", "NYK", "BOS", 31, 22, 99, 101),
		scoredGame(1, day(2025, time.January, 2), "BOS", "BOS", "MIA", 34, 28, 110, 104),
		scoredGame(1, day(2025, time.January, 2), "BOS", "BOS", "MIA", 34, 28, 110, 104), // duplicate row
	}
	snapshot := make([]GameRecord, len(records))
	copy(snapshot, records)

	_ = Run(records, Request{
		StatKey:   "pts",
		Timeframe: Timeframe{Kind: TimeframeAll},
		Filters:   Filters{SubjectTeam: "BOS", ExcludeBackToBacks: true},
		Now:       testNow,
	})

	assert.Equal(t, snapshot, records)
}

func TestRunDedupesAndOrdersAscending(t *testing.T) {
	records := []GameRecord{
		scoredGame(2, day(2025, time.January, 5), "BOS", "NYK", "BOS", 31, 22, 99, 101),
		scoredGame(1, day(2025, time.January, 2), "BOS", "BOS", "MIA", 34, 28, 110, 104),
		scoredGame(1, day(2025, time.January, 2), "BOS", "BOS", "MIA", 34, 28, 110, 104),
	}

	result := Run(records, Request{
		StatKey:   "pts",
		Timeframe: Timeframe{Kind: TimeframeAll},
		Filters:   Filters{SubjectTeam: "BOS"},
		Now:       testNow,
	})

	require.Len(t, result.Points, 2)
	assert.Equal(t, 1, result.Points[0].GameID)
	assert.Equal(t, 2, result.Points[1].GameID)
	assert.Equal(t, "MIA", result.Points[0].Opponent)
	assert.Equal(t, "NYK", result.Points[1].Opponent)
	assert.Equal(t, 2024, result.Points[0].SeasonYear)
}

// Two seasons of games with a zero-minute placeholder and a blowout in the
// eligible pool: the placeholder and the blowout drop out, the shortfall
// backfills from the prior season, and the output is ascending.
func TestRunTwoSeasonScenario(t *testing.T) {
	var records []GameRecord

	// 8 current-season games, one of which is a zero-minute placeholder with
	// no usable team match.
	for i := 0; i < 7; i++ {
		records = append(records, scoredGame(500+i, day(2024, time.November, 2+i*3), "BOS", "BOS", "MIA", 30, 20+float64(i), 108, 100))
	}
	placeholder := scoredGame(590, day(2024, time.December, 1), "", "", "", 0, 0, 0, 0)
	placeholder.HomeTeamAbbr, placeholder.AwayTeamAbbr = "LAL", "PHX"
	records = append(records, placeholder)

	// 4 prior-season games, two decided by 25.
	records = append(records,
		scoredGame(600, day(2024, time.March, 1), "BOS", "BOS", "NYK", 31, 18, 125, 100),
		scoredGame(601, day(2024, time.March, 3), "BOS", "NYK", "BOS", 33, 26, 100, 125),
		scoredGame(602, day(2024, time.March, 5), "BOS", "BOS", "PHI", 35, 24, 110, 102),
		scoredGame(603, day(2024, time.March, 7), "BOS", "PHI", "BOS", 29, 22, 99, 104),
	)

	line := 21.5
	result := Run(records, Request{
		StatKey:   "pts",
		Line:      &line,
		Timeframe: Timeframe{Kind: TimeframeLastN, N: 10},
		Filters:   Filters{SubjectTeam: "BOS", ExcludeBlowouts: true},
		Now:       testNow,
	})

	// 7 played current-season games plus the 2 non-blowout prior games.
	require.Len(t, result.Games, 9)
	for i := 1; i < len(result.Games); i++ {
		assert.True(t, result.Games[i].GameDate.After(result.Games[i-1].GameDate), "ascending order")
	}

	ids := make([]int, 0, len(result.Games))
	for _, rec := range result.Games {
		ids = append(ids, rec.GameID)
	}
	assert.NotContains(t, ids, 590, "zero-minute placeholder excluded")
	assert.NotContains(t, ids, 600, "blowout excluded")
	assert.NotContains(t, ids, 601, "blowout excluded")
	assert.Contains(t, ids, 602)
	assert.Contains(t, ids, 603)
}

func TestRunEmptyInput(t *testing.T) {
	result := Run(nil, Request{StatKey: "pts", Timeframe: Timeframe{Kind: TimeframeLastN, N: 5}, Now: testNow})
	assert.Empty(t, result.Games)
	assert.Empty(t, result.Points)
	assert.Zero(t, result.Average)
}
