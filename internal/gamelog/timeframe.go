package gamelog

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeframeKind tags the window of games a chart request covers.
type TimeframeKind string

const (
	TimeframeAll        TimeframeKind = "all"
	TimeframeLastN      TimeframeKind = "lastN"
	TimeframeThisSeason TimeframeKind = "season"
	TimeframeLastSeason TimeframeKind = "lastseason"
	TimeframeHeadToHead TimeframeKind = "h2h"
)

// headToHeadCap bounds head-to-head results to the most recent meetings.
const headToHeadCap = 6

// Timeframe is a request-time window specifier.
type Timeframe struct {
	Kind TimeframeKind `json:"kind"`
	N    int           `json:"n,omitempty"`
}

// ParseTimeframe maps the client's timeframe strings ("last10", "season",
// "h2h", ...) to a Timeframe. Unknown tags and non-positive counts degrade to
// All rather than failing the request.
func ParseTimeframe(s string) Timeframe {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "all":
		return Timeframe{Kind: TimeframeAll}
	case "season", "thisseason", "this_season":
		return Timeframe{Kind: TimeframeThisSeason}
	case "lastseason", "last_season":
		return Timeframe{Kind: TimeframeLastSeason}
	case "h2h", "headtohead", "head_to_head":
		return Timeframe{Kind: TimeframeHeadToHead}
	}

	if rest, ok := strings.CutPrefix(s, "last"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return Timeframe{Kind: TimeframeAll}
		}
		return Timeframe{Kind: TimeframeLastN, N: n}
	}

	return Timeframe{Kind: TimeframeAll}
}

// SortByDateDesc returns a new slice sorted by game date, newest first.
// Ties keep their input order; the pipeline never mutates its input.
func SortByDateDesc(records []GameRecord) []GameRecord {
	sorted := make([]GameRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GameDate.After(sorted[j].GameDate)
	})
	return sorted
}

// DedupeByGameID drops repeated game IDs, keeping the first occurrence.
// The provider occasionally returns duplicate rows for the same game; after a
// descending date sort whichever duplicate comes first wins.
func DedupeByGameID(records []GameRecord) []GameRecord {
	seen := make(map[int]bool, len(records))
	out := make([]GameRecord, 0, len(records))
	for _, rec := range records {
		if seen[rec.GameID] {
			continue
		}
		seen[rec.GameID] = true
		out = append(out, rec)
	}
	return out
}

// SelectTimeframe bounds a deduplicated, date-descending game list to the
// requested window and returns it in ascending chronological order for
// charting. It never fails: an empty input or an exhausted window yields an
// empty output.
//
//   - LastN takes up to N games from the current season, then backfills the
//     remainder from older seasons, most recent first.
//   - ThisSeason / LastSeason filter on the season classifier relative to now.
//   - HeadToHead keeps the most recent meetings with the tracked opponent,
//     capped at 6.
//   - All applies no bound beyond dedup/sort.
func SelectTimeframe(records []GameRecord, tf Timeframe, now time.Time, subjectTeam, opponent string) []GameRecord {
	if len(records) == 0 {
		return nil
	}

	currentSeason := SeasonStartYear(now)

	var selected []GameRecord
	switch tf.Kind {
	case TimeframeLastN:
		if tf.N <= 0 {
			selected = records
			break
		}
		var current, older []GameRecord
		for _, rec := range records {
			if SeasonOf(rec) == currentSeason {
				current = append(current, rec)
			} else {
				older = append(older, rec)
			}
		}
		if len(current) > tf.N {
			current = current[:tf.N]
		}
		selected = current
		for _, rec := range older {
			if len(selected) >= tf.N {
				break
			}
			selected = append(selected, rec)
		}

	case TimeframeThisSeason:
		for _, rec := range records {
			if SeasonOf(rec) == currentSeason {
				selected = append(selected, rec)
			}
		}

	case TimeframeLastSeason:
		for _, rec := range records {
			if SeasonOf(rec) == currentSeason-1 {
				selected = append(selected, rec)
			}
		}

	case TimeframeHeadToHead:
		subject := strings.ToUpper(strings.TrimSpace(subjectTeam))
		for _, rec := range records {
			if opponentFilter(rec, subject, opponent) && opponent != "" && !strings.EqualFold(opponent, "ALL") {
				selected = append(selected, rec)
			}
		}
		if len(selected) > headToHeadCap {
			selected = selected[:headToHeadCap]
		}

	default: // TimeframeAll and anything unrecognized
		selected = records
	}

	// Re-reverse to ascending chronological order for charting.
	out := make([]GameRecord, len(selected))
	for i, rec := range selected {
		out[len(selected)-1-i] = rec
	}
	return out
}
