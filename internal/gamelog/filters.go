package gamelog

import (
	"math"
	"sort"
	"strings"
)

// Venue restricts games to home or away.
type Venue string

const (
	VenueAll  Venue = "ALL"
	VenueHome Venue = "HOME"
	VenueAway Venue = "AWAY"
)

// TeammateMode selects games where a named teammate did or did not play.
type TeammateMode string

const (
	TeammateWith    TeammateMode = "with"
	TeammateWithout TeammateMode = "without"
)

// blowoutMargin is the score margin at which a game stops counting as
// meaningful-minutes evidence. 20 stays in, 21 is out.
const blowoutMargin = 21

// Back-to-back window: a game is the second of a back-to-back when the
// subject's previous game is between half a day and a day and a half earlier.
const (
	backToBackMinDays = 0.5
	backToBackMaxDays = 1.5
)

// TeammateFilter gates games on whether the teammate logged minutes in them.
// PlayedGameIDs is the participation set supplied by the roster collaborator.
type TeammateFilter struct {
	Mode          TeammateMode
	PlayedGameIDs map[int]bool
}

// Filters is the AND-composed predicate set applied to every record.
type Filters struct {
	SubjectTeam        string
	Venue              Venue
	Opponent           string // "" or "ALL" matches any opponent
	ExcludeBlowouts    bool
	ExcludeBackToBacks bool
	Teammate           *TeammateFilter
}

// RosterContext maps season start year to the set of team abbreviations the
// subject was rostered on that season. It backs the traded-player retention
// special case in playedFilter.
type RosterContext struct {
	TeamsBySeason map[int]map[string]bool
}

// RosterFromRecords derives a roster context from the subject's own played
// games. A team counts for a season once the subject logged minutes for it.
func RosterFromRecords(records []GameRecord) *RosterContext {
	ctx := &RosterContext{TeamsBySeason: make(map[int]map[string]bool)}
	for _, rec := range records {
		if rec.MinutesPlayed <= 0 || rec.TeamAbbr == "" {
			continue
		}
		season := SeasonOf(rec)
		if ctx.TeamsBySeason[season] == nil {
			ctx.TeamsBySeason[season] = make(map[string]bool)
		}
		ctx.TeamsBySeason[season][rec.TeamAbbr] = true
	}
	return ctx
}

func (ctx *RosterContext) employedBy(season int, team string) bool {
	if ctx == nil || team == "" {
		return false
	}
	return ctx.TeamsBySeason[season][team]
}

// playedFilter keeps records with real minutes. Under the LastSeason
// timeframe a zero-minute record is retained when the game's participant
// teams include a team the roster context lists for the subject that season:
// the provider reports a traded player's games against their former team with
// zero minutes, and dropping those holes the season silently.
func playedFilter(rec GameRecord, allowTradedZeroMinutes bool, roster *RosterContext) bool {
	if rec.MinutesPlayed > 0 {
		return true
	}
	if !allowTradedZeroMinutes {
		return false
	}
	season := SeasonOf(rec)
	return roster.employedBy(season, rec.HomeTeamAbbr) || roster.employedBy(season, rec.AwayTeamAbbr)
}

// venueFilter matches the requested venue against the subject's side of the
// game. Records without participant identities are excluded when a specific
// venue is requested.
func venueFilter(rec GameRecord, subjectTeam string, venue Venue) bool {
	switch venue {
	case "", VenueAll:
		return true
	case VenueHome:
		return subjectTeam != "" && rec.HomeTeamAbbr == subjectTeam
	case VenueAway:
		return subjectTeam != "" && rec.AwayTeamAbbr == subjectTeam
	}
	return false
}

// opponentFilter matches a target opponent against the game's participant
// teams. Identity is derived from the participants rather than the record's
// own team field, so games a traded player logged for a former team still
// match. A subject can never be its own opponent.
func opponentFilter(rec GameRecord, subjectTeam, target string) bool {
	if target == "" || strings.EqualFold(target, "ALL") {
		return true
	}
	if rec.HomeTeamAbbr == "" || rec.AwayTeamAbbr == "" {
		return false
	}
	target = strings.ToUpper(target)
	if target == subjectTeam {
		return false
	}
	return rec.HomeTeamAbbr == target || rec.AwayTeamAbbr == target
}

func blowoutFilter(rec GameRecord, exclude bool) bool {
	if !exclude {
		return true
	}
	margin := math.Abs(float64(rec.HomeScore - rec.AwayScore))
	return margin < blowoutMargin
}

func teammateFilter(rec GameRecord, tf *TeammateFilter) bool {
	if tf == nil {
		return true
	}
	played := tf.PlayedGameIDs[rec.GameID]
	if tf.Mode == TeammateWithout {
		return !played
	}
	return played
}

// backToBackGameIDs returns the IDs of games that are the second game of a
// back-to-back, computed from the subject's own prior-game dates.
func backToBackGameIDs(records []GameRecord) map[int]bool {
	if len(records) < 2 {
		return nil
	}

	sorted := make([]GameRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GameDate.Before(sorted[j].GameDate)
	})

	second := make(map[int]bool)
	for i := 1; i < len(sorted); i++ {
		days := sorted[i].GameDate.Sub(sorted[i-1].GameDate).Hours() / 24.0
		if days >= backToBackMinDays && days <= backToBackMaxDays {
			second[sorted[i].GameID] = true
		}
	}
	return second
}

// ApplyFilters runs the predicate set over the records and returns the
// survivors in a new slice. allowTradedZeroMinutes carries the LastSeason
// special case from the timeframe into the played predicate.
func ApplyFilters(records []GameRecord, f Filters, roster *RosterContext, allowTradedZeroMinutes bool) []GameRecord {
	secondOfBackToBack := map[int]bool{}
	if f.ExcludeBackToBacks {
		secondOfBackToBack = backToBackGameIDs(records)
	}

	subject := strings.ToUpper(strings.TrimSpace(f.SubjectTeam))

	out := make([]GameRecord, 0, len(records))
	for _, rec := range records {
		if !playedFilter(rec, allowTradedZeroMinutes, roster) {
			continue
		}
		if !venueFilter(rec, subject, f.Venue) {
			continue
		}
		if !opponentFilter(rec, subject, f.Opponent) {
			continue
		}
		if !blowoutFilter(rec, f.ExcludeBlowouts) {
			continue
		}
		if f.ExcludeBackToBacks && secondOfBackToBack[rec.GameID] {
			continue
		}
		if !teammateFilter(rec, f.Teammate) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
