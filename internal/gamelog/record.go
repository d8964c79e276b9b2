// Package gamelog implements the game-log derivation pipeline: it turns raw
// provider rows into validated records, filters them by venue, opponent,
// blowout, back-to-back and teammate participation, bounds them to a
// timeframe, and produces chart points and hit-rate metrics.
//
// The pipeline is pure: it never mutates its inputs, never performs I/O, and
// never returns errors for data-quality problems. Bad rows shrink the result
// set instead of failing the request.
package gamelog

import (
	"strconv"
	"strings"
	"time"
)

// GameRecord is one validated player-game statistical line.
type GameRecord struct {
	GameID        int                `json:"game_id"`
	GameDate      time.Time          `json:"game_date"`
	TeamAbbr      string             `json:"team_abbr"`
	OpponentAbbr  string             `json:"opponent_abbr,omitempty"`
	MinutesPlayed float64            `json:"minutes_played"`
	Stats         map[string]float64 `json:"stats"`
	HomeTeamAbbr  string             `json:"home_team_abbr"`
	AwayTeamAbbr  string             `json:"away_team_abbr"`
	HomeScore     int                `json:"home_score"`
	AwayScore     int                `json:"away_score"`
}

// RawRow is the loosely-typed row shape delivered by the stats provider.
// ParseRow is the single place where partial or malformed rows are rejected;
// everything downstream can assume a playable date and game identity.
type RawRow struct {
	GameID       int                `json:"game_id"`
	GameDate     string             `json:"game_date"`
	Minutes      string             `json:"minutes"`
	TeamAbbr     string             `json:"team_abbr"`
	HomeTeamAbbr string             `json:"home_team_abbr"`
	AwayTeamAbbr string             `json:"away_team_abbr"`
	HomeScore    int                `json:"home_score"`
	AwayScore    int                `json:"away_score"`
	Stats        map[string]float64 `json:"stats"`
}

// dateLayouts covers the formats the stats provider has been observed to use.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
}

// ParseRow validates a raw provider row. A row without a resolvable date or a
// positive game ID is rejected; records are treated as unplayed placeholders
// upstream and must not reach the filters.
func ParseRow(raw RawRow) (GameRecord, bool) {
	if raw.GameID <= 0 {
		return GameRecord{}, false
	}

	date, ok := parseDate(raw.GameDate)
	if !ok {
		return GameRecord{}, false
	}

	stats := make(map[string]float64, len(raw.Stats))
	for k, v := range raw.Stats {
		stats[k] = v
	}

	rec := GameRecord{
		GameID:        raw.GameID,
		GameDate:      date,
		TeamAbbr:      strings.ToUpper(strings.TrimSpace(raw.TeamAbbr)),
		MinutesPlayed: ParseMinutes(raw.Minutes),
		Stats:         stats,
		HomeTeamAbbr:  strings.ToUpper(strings.TrimSpace(raw.HomeTeamAbbr)),
		AwayTeamAbbr:  strings.ToUpper(strings.TrimSpace(raw.AwayTeamAbbr)),
		HomeScore:     raw.HomeScore,
		AwayScore:     raw.AwayScore,
	}
	rec.OpponentAbbr, _ = rec.OpponentOf(rec.TeamAbbr)

	return rec, true
}

// ParseRows validates a batch of raw rows, returning the accepted records and
// the number of rejected rows.
func ParseRows(raws []RawRow) ([]GameRecord, int) {
	records := make([]GameRecord, 0, len(raws))
	rejected := 0
	for _, raw := range raws {
		rec, ok := ParseRow(raw)
		if !ok {
			rejected++
			continue
		}
		records = append(records, rec)
	}
	return records, rejected
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseMinutes converts a provider minutes field to fractional minutes.
// Accepts "MM:SS" and plain integers; anything unparsable counts as 0.
func ParseMinutes(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if mm, ss, found := strings.Cut(s, ":"); found {
		minutes, err := strconv.Atoi(mm)
		if err != nil || minutes < 0 {
			return 0
		}
		seconds, err := strconv.Atoi(ss)
		if err != nil || seconds < 0 {
			return float64(minutes)
		}
		return float64(minutes) + float64(seconds)/60.0
	}

	minutes, err := strconv.ParseFloat(s, 64)
	if err != nil || minutes < 0 {
		return 0
	}
	return minutes
}

// OpponentOf derives the opposing team for a subject playing on subjectTeam.
// It only trusts the game's participant identities, never the record's own
// team field, which is unreliable for traded players. Returns false when the
// participants are missing or the subject is not one of them.
func (r GameRecord) OpponentOf(subjectTeam string) (string, bool) {
	if r.HomeTeamAbbr == "" || r.AwayTeamAbbr == "" {
		return "", false
	}
	switch subjectTeam {
	case r.HomeTeamAbbr:
		return r.AwayTeamAbbr, true
	case r.AwayTeamAbbr:
		return r.HomeTeamAbbr, true
	}
	return "", false
}

// StatValue extracts a statistic by key, supporting the combined markets the
// dashboard charts (points+rebounds+assists and their pairs).
func (r GameRecord) StatValue(key string) (float64, bool) {
	switch strings.ToLower(key) {
	case "pra":
		return r.sumStats("pts", "reb", "ast")
	case "pr":
		return r.sumStats("pts", "reb")
	case "pa":
		return r.sumStats("pts", "ast")
	case "ra":
		return r.sumStats("reb", "ast")
	case "min":
		return r.MinutesPlayed, true
	}
	v, ok := r.Stats[strings.ToLower(key)]
	return v, ok
}

func (r GameRecord) sumStats(keys ...string) (float64, bool) {
	total := 0.0
	for _, k := range keys {
		v, ok := r.Stats[k]
		if !ok {
			return 0, false
		}
		total += v
	}
	return total, true
}
