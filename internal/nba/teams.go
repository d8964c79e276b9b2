// Package nba carries static NBA reference data: team identity mappings and
// player-name normalization for cross-provider matching.
package nba

import (
	"regexp"
	"strings"
)

// NBA team abbreviation to full name mappings
var teamNames = map[string]string{
	"ATL": "Atlanta Hawks",
	"BOS": "Boston Celtics",
	"BKN": "Brooklyn Nets",
	"CHA": "Charlotte Hornets",
	"CHI": "Chicago Bulls",
	"CLE": "Cleveland Cavaliers",
	"DAL": "Dallas Mavericks",
	"DEN": "Denver Nuggets",
	"DET": "Detroit Pistons",
	"GSW": "Golden State Warriors",
	"HOU": "Houston Rockets",
	"IND": "Indiana Pacers",
	"LAC": "Los Angeles Clippers",
	"LAL": "Los Angeles Lakers",
	"MEM": "Memphis Grizzlies",
	"MIA": "Miami Heat",
	"MIL": "Milwaukee Bucks",
	"MIN": "Minnesota Timberwolves",
	"NOP": "New Orleans Pelicans",
	"NYK": "New York Knicks",
	"OKC": "Oklahoma City Thunder",
	"ORL": "Orlando Magic",
	"PHI": "Philadelphia 76ers",
	"PHX": "Phoenix Suns",
	"POR": "Portland Trail Blazers",
	"SAC": "Sacramento Kings",
	"SAS": "San Antonio Spurs",
	"TOR": "Toronto Raptors",
	"UTA": "Utah Jazz",
	"WAS": "Washington Wizards",
}

// Reverse mapping for lookups
var teamAbbreviations = map[string]string{}

func init() {
	for abbr, name := range teamNames {
		teamAbbreviations[name] = abbr
	}
}

// TeamName returns the full team name for an abbreviation, or the input
// unchanged when the abbreviation is unknown.
func TeamName(abbr string) string {
	if name, ok := teamNames[strings.ToUpper(abbr)]; ok {
		return name
	}
	return abbr
}

// TeamAbbreviation returns the abbreviation for a full team name, or the
// input unchanged when the name is unknown.
func TeamAbbreviation(fullName string) string {
	if abbr, ok := teamAbbreviations[fullName]; ok {
		return abbr
	}
	return fullName
}

// IsKnownTeam reports whether the abbreviation identifies an NBA team.
func IsKnownTeam(abbr string) bool {
	_, ok := teamNames[strings.ToUpper(abbr)]
	return ok
}

// TeamNames returns a copy of the abbreviation-to-name table.
func TeamNames() map[string]string {
	out := make(map[string]string, len(teamNames))
	for abbr, name := range teamNames {
		out[abbr] = name
	}
	return out
}

// Abbreviations returns every known team abbreviation.
func Abbreviations() []string {
	abbrs := make([]string, 0, len(teamNames))
	for abbr := range teamNames {
		abbrs = append(abbrs, abbr)
	}
	return abbrs
}

var (
	nonLetters   = regexp.MustCompile(`[^a-z\s]`)
	nameSuffixes = regexp.MustCompile(`\b(jr|sr|ii|iii|iv)\b`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// NormalizeName canonicalizes a player name for cross-provider matching:
// lowercase, punctuation stripped, generational suffixes removed.
// "Jaren Jackson Jr." and "jaren jackson" normalize identically.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = nonLetters.ReplaceAllString(s, " ")
	s = nameSuffixes.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
