package gamelog

import "time"

// SeasonStartYear classifies a game date into the NBA season it belongs to,
// keyed by the calendar year the season started in. A season runs October
// through the following spring, so October onward maps to the same year and
// everything earlier maps to the previous year.
func SeasonStartYear(date time.Time) int {
	if date.Month() >= time.October {
		return date.Year()
	}
	return date.Year() - 1
}

// SeasonOf is SeasonStartYear applied to a record's game date.
func SeasonOf(rec GameRecord) int {
	return SeasonStartYear(rec.GameDate)
}
