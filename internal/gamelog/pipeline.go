package gamelog

import (
	"strings"
	"time"
)

// Request carries everything a single pipeline run needs. The caller supplies
// already-fetched records; the pipeline performs no I/O.
type Request struct {
	StatKey   string
	Line      *float64 // betting line for hit-rate; nil skips hit metrics
	Timeframe Timeframe
	Filters   Filters
	Roster    *RosterContext
	Now       time.Time // zero value means time.Now
}

// Point is one chart-ready data point.
type Point struct {
	GameID     int       `json:"game_id"`
	GameDate   time.Time `json:"game_date"`
	Opponent   string    `json:"opponent,omitempty"`
	Value      float64   `json:"value"`
	SeasonYear int       `json:"season_year"`
}

// Result is the pipeline output: the bounded game sequence in ascending
// chronological order plus the derived metrics the dashboard renders.
type Result struct {
	Games   []GameRecord `json:"games"`
	Points  []Point      `json:"points"`
	Average float64      `json:"average"`
	Hits    int          `json:"hits,omitempty"`
	HitRate float64      `json:"hit_rate,omitempty"`
	Line    *float64     `json:"line,omitempty"`
}

// Run executes the full derivation pipeline over a snapshot of records:
// sort descending, dedupe by game ID, apply the filter predicates, bound to
// the timeframe, then extract per-game stat values and hit metrics. The same
// inputs always produce the same output, and the input slice is never
// modified.
func Run(records []GameRecord, req Request) Result {
	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	roster := req.Roster
	if roster == nil {
		roster = RosterFromRecords(records)
	}

	deduped := DedupeByGameID(SortByDateDesc(records))

	allowTradedZeroMinutes := req.Timeframe.Kind == TimeframeLastSeason
	filtered := ApplyFilters(deduped, req.Filters, roster, allowTradedZeroMinutes)

	subject := strings.ToUpper(strings.TrimSpace(req.Filters.SubjectTeam))
	games := SelectTimeframe(filtered, req.Timeframe, now, subject, req.Filters.Opponent)

	result := Result{Games: games, Line: req.Line}

	var total float64
	counted := 0
	for _, rec := range games {
		value, ok := rec.StatValue(req.StatKey)
		if !ok {
			continue
		}

		opponent := rec.OpponentAbbr
		if derived, found := rec.OpponentOf(subject); found {
			opponent = derived
		}

		result.Points = append(result.Points, Point{
			GameID:     rec.GameID,
			GameDate:   rec.GameDate,
			Opponent:   opponent,
			Value:      value,
			SeasonYear: SeasonOf(rec),
		})

		total += value
		counted++
		if req.Line != nil && value > *req.Line {
			result.Hits++
		}
	}

	if counted > 0 {
		result.Average = total / float64(counted)
		if req.Line != nil {
			result.HitRate = float64(result.Hits) / float64(counted)
		}
	}

	return result
}
