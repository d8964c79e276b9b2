package gamelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// now inside the 2024-25 season for all timeframe tests
var testNow = time.Date(2025, time.January, 20, 12, 0, 0, 0, time.UTC)

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		in       string
		expected Timeframe
	}{
		{in: "last5", expected: Timeframe{Kind: TimeframeLastN, N: 5}},
		{in: "LAST20", expected: Timeframe{Kind: TimeframeLastN, N: 20}},
		{in: "season", expected: Timeframe{Kind: TimeframeThisSeason}},
		{in: "lastseason", expected: Timeframe{Kind: TimeframeLastSeason}},
		{in: "h2h", expected: Timeframe{Kind: TimeframeHeadToHead}},
		{in: "all", expected: Timeframe{Kind: TimeframeAll}},
		{in: "", expected: Timeframe{Kind: TimeframeAll}},
		// Non-positive or unparsable counts degrade to All rather than failing.
		{in: "last0", expected: Timeframe{Kind: TimeframeAll}},
		{in: "last-3", expected: Timeframe{Kind: TimeframeAll}},
		{in: "lastfew", expected: Timeframe{Kind: TimeframeAll}},
		{in: "garbage", expected: Timeframe{Kind: TimeframeAll}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseTimeframe(tt.in), "input %q", tt.in)
	}
}

func TestDedupeByGameIDIdempotent(t *testing.T) {
	records := []GameRecord{
		game(1, day(2025, time.January, 10), "BOS", "BOS", "MIA", 30),
		game(1, day(2025, time.January, 10), "BOS", "BOS", "MIA", 30),
		game(2, day(2025, time.January, 12), "BOS", "MIA", "BOS", 31),
	}

	once := DedupeByGameID(records)
	require.Len(t, once, 2)

	twice := DedupeByGameID(once)
	assert.Equal(t, once, twice)
}

func TestSelectTimeframeLastNBackfill(t *testing.T) {
	// 3 current-season games and 10 prior-season games.
	var records []GameRecord
	for i := 0; i < 3; i++ {
		records = append(records, game(100+i, day(2025, time.January, 2+i*2), "BOS", "BOS", "MIA", 30))
	}
	for i := 0; i < 10; i++ {
		records = append(records, game(200+i, day(2024, time.March, 1+i*2), "BOS", "BOS", "NYK", 30))
	}

	sorted := DedupeByGameID(SortByDateDesc(records))
	out := SelectTimeframe(sorted, Timeframe{Kind: TimeframeLastN, N: 5}, testNow, "BOS", "")

	require.Len(t, out, 5)

	// The 3 current-season games plus the 2 most recent prior-season ones.
	ids := make([]int, 0, len(out))
	for _, rec := range out {
		ids = append(ids, rec.GameID)
	}
	assert.ElementsMatch(t, []int{100, 101, 102, 208, 209}, ids)

	// Ascending chronological order for charting.
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i].GameDate.After(out[i-1].GameDate))
	}
}

func TestSelectTimeframeSeasons(t *testing.T) {
	records := []GameRecord{
		game(1, day(2025, time.January, 10), "BOS", "BOS", "MIA", 30), // this season
		game(2, day(2024, time.March, 10), "BOS", "BOS", "MIA", 30),   // last season
		game(3, day(2023, time.January, 10), "BOS", "BOS", "MIA", 30), // two seasons back
	}
	sorted := SortByDateDesc(records)

	this := SelectTimeframe(sorted, Timeframe{Kind: TimeframeThisSeason}, testNow, "BOS", "")
	require.Len(t, this, 1)
	assert.Equal(t, 1, this[0].GameID)

	last := SelectTimeframe(sorted, Timeframe{Kind: TimeframeLastSeason}, testNow, "BOS", "")
	require.Len(t, last, 1)
	assert.Equal(t, 2, last[0].GameID)

	all := SelectTimeframe(sorted, Timeframe{Kind: TimeframeAll}, testNow, "BOS", "")
	assert.Len(t, all, 3)
}

func TestSelectTimeframeHeadToHeadCap(t *testing.T) {
	var records []GameRecord
	for i := 0; i < 8; i++ {
		records = append(records, game(300+i, day(2024, time.November, 1+i*3), "BOS", "BOS", "MIA", 30))
	}
	records = append(records, game(400, day(2024, time.December, 30), "BOS", "BOS", "NYK", 30))
	sorted := SortByDateDesc(records)

	out := SelectTimeframe(sorted, Timeframe{Kind: TimeframeHeadToHead}, testNow, "BOS", "MIA")
	require.Len(t, out, 6, "head-to-head is capped at the 6 most recent meetings")
	for _, rec := range out {
		assert.Equal(t, "MIA", rec.AwayTeamAbbr)
	}

	// The cap keeps the most recent meetings.
	assert.Equal(t, 307, out[len(out)-1].GameID)
}

func TestSelectTimeframeEmptyInput(t *testing.T) {
	assert.Empty(t, SelectTimeframe(nil, Timeframe{Kind: TimeframeLastN, N: 5}, testNow, "BOS", ""))
	assert.Empty(t, SelectTimeframe([]GameRecord{}, Timeframe{Kind: TimeframeAll}, testNow, "BOS", ""))
}
