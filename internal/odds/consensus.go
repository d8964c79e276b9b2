package odds

import "math"

// roundToHalf snaps a line to the nearest 0.5, the grid books quote on.
func roundToHalf(line float64) float64 {
	return math.Round(line*2) / 2
}

// ResolveConsensusLine returns the most frequently quoted primary line for a
// stat across bookmakers. Lines are bucketed to the nearest 0.5 before
// counting. Frequency ties resolve to the numerically smallest line so the
// result is deterministic. Returns false when no qualifying quotes exist.
func ResolveConsensusLine(quotes []Quote, statKey string) (float64, bool) {
	counts := make(map[float64]int)
	for _, q := range quotes {
		if !q.usable(statKey) {
			continue
		}
		counts[roundToHalf(q.Line)]++
	}
	if len(counts) == 0 {
		return 0, false
	}

	best := 0.0
	bestCount := 0
	for line, count := range counts {
		if count > bestCount || (count == bestCount && line < best) {
			best = line
			bestCount = count
		}
	}
	return best, true
}

// BestLine returns the minimum qualifying primary line across bookmakers,
// the lowest threshold available for an over bet. Not to be confused with
// the consensus line.
func BestLine(quotes []Quote, statKey string) (float64, bool) {
	found := false
	best := math.Inf(1)
	for _, q := range quotes {
		if !q.usable(statKey) {
			continue
		}
		if q.Line < best {
			best = q.Line
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return best, true
}

// QuotesAtLine returns the primary quotes for a stat whose line buckets to
// the given 0.5-rounded value, e.g. every book quoting the consensus number.
func QuotesAtLine(quotes []Quote, statKey string, line float64) []Quote {
	target := roundToHalf(line)
	var out []Quote
	for _, q := range quotes {
		if !q.usable(statKey) {
			continue
		}
		if roundToHalf(q.Line) == target {
			out = append(out, q)
		}
	}
	return out
}
