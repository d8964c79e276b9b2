package odds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quote(book string, line float64, alternate bool) Quote {
	return Quote{
		Bookmaker:   book,
		StatKey:     "points",
		Line:        line,
		OverPrice:   -110,
		UnderPrice:  -110,
		IsAlternate: alternate,
	}
}

func TestResolveConsensusLine(t *testing.T) {
	quotes := []Quote{
		quote("draftkings", 24.5, false),
		quote("fanduel", 24.5, false),
		quote("betmgm", 25.5, false),
	}

	line, ok := ResolveConsensusLine(quotes, "points")
	require.True(t, ok)
	assert.Equal(t, 24.5, line)
}

func TestResolveConsensusLineExcludesAlternates(t *testing.T) {
	quotes := []Quote{
		quote("draftkings", 24.5, true),
		quote("fanduel", 25.5, false),
	}

	line, ok := ResolveConsensusLine(quotes, "points")
	require.True(t, ok)
	assert.Equal(t, 25.5, line)
}

func TestResolveConsensusLineTieBreaksLow(t *testing.T) {
	quotes := []Quote{
		quote("draftkings", 24.5, false),
		quote("fanduel", 25.5, false),
	}

	line, ok := ResolveConsensusLine(quotes, "points")
	require.True(t, ok)
	assert.Equal(t, 24.5, line, "frequency ties resolve to the smallest line")
}

func TestResolveConsensusLineBucketsToHalf(t *testing.T) {
	quotes := []Quote{
		quote("draftkings", 24.4, false),
		quote("fanduel", 24.6, false),
		quote("betmgm", 26.5, false),
	}

	line, ok := ResolveConsensusLine(quotes, "points")
	require.True(t, ok)
	assert.Equal(t, 24.5, line, "24.4 and 24.6 bucket to the same half-point line")
}

func TestResolveConsensusLineMalformedAndEmpty(t *testing.T) {
	_, ok := ResolveConsensusLine(nil, "points")
	assert.False(t, ok)

	quotes := []Quote{
		quote("draftkings", math.NaN(), false),
		quote("fanduel", math.Inf(1), false),
		{Bookmaker: "betmgm", StatKey: "rebounds", Line: 8.5},
	}
	_, ok = ResolveConsensusLine(quotes, "points")
	assert.False(t, ok, "malformed lines and other stats never qualify")
}

func TestBestLine(t *testing.T) {
	quotes := []Quote{
		quote("draftkings", 24.5, false),
		quote("fanduel", 23.5, false),
		quote("betmgm", 22.5, true), // alternates excluded from best line too
	}

	line, ok := BestLine(quotes, "points")
	require.True(t, ok)
	assert.Equal(t, 23.5, line)

	_, ok = BestLine(nil, "points")
	assert.False(t, ok)
}

func TestQuotesAtLine(t *testing.T) {
	quotes := []Quote{
		quote("draftkings", 24.5, false),
		quote("fanduel", 24.4, false),
		quote("betmgm", 25.5, false),
		quote("caesars", 24.5, true),
	}

	at := QuotesAtLine(quotes, "points", 24.5)
	require.Len(t, at, 2)
	assert.Equal(t, "draftkings", at[0].Bookmaker)
	assert.Equal(t, "fanduel", at[1].Bookmaker)
}
