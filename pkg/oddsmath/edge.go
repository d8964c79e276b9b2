package oddsmath

import "fmt"

// EdgeAnalysis contains the result of comparing an offered price against an
// estimated true probability.
type EdgeAnalysis struct {
	OfferedOdds        int     `json:"offered_odds"`
	OfferedProbability float64 `json:"offered_probability"`
	FairProbability    float64 `json:"fair_probability"`
	FairOdds           int     `json:"fair_odds"`
	Edge               float64 `json:"edge"`
	IsPositiveEV       bool    `json:"is_positive_ev"`
}

// Edge returns the percentage advantage of a bet priced at impliedProbability
// when the true probability is fairProbability.
//
// fair 0.50 vs implied 0.476 → 0.05 (5% edge)
func Edge(fairProbability, impliedProbability float64) (float64, error) {
	if fairProbability <= 0 || fairProbability >= 1 {
		return 0, fmt.Errorf("fair probability must be between 0 and 1")
	}
	if impliedProbability <= 0 || impliedProbability >= 1 {
		return 0, fmt.Errorf("implied probability must be between 0 and 1")
	}

	return (fairProbability / impliedProbability) - 1.0, nil
}

// AnalyzeOffer compares offered American odds to a fair probability estimate.
func AnalyzeOffer(offeredOdds int, fairProbability float64) (*EdgeAnalysis, error) {
	offeredProb, err := AmericanToImpliedProbability(offeredOdds)
	if err != nil {
		return nil, fmt.Errorf("invalid offered odds: %w", err)
	}

	edge, err := Edge(fairProbability, offeredProb)
	if err != nil {
		return nil, fmt.Errorf("error calculating edge: %w", err)
	}

	fairOdds, err := ProbabilityToAmerican(fairProbability)
	if err != nil {
		return nil, fmt.Errorf("error converting fair probability to odds: %w", err)
	}

	return &EdgeAnalysis{
		OfferedOdds:        offeredOdds,
		OfferedProbability: offeredProb,
		FairProbability:    fairProbability,
		FairOdds:           fairOdds,
		Edge:               edge,
		IsPositiveEV:       edge > 0,
	}, nil
}
