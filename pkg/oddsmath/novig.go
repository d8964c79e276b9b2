package oddsmath

import "fmt"

// RemoveVigMultiplicative removes the bookmaker margin from a two-way market
// by normalizing both implied probabilities so they sum to 1.0.
//
// Over -110 (52.38%) / Under -110 (52.38%) → 50% / 50%
func RemoveVigMultiplicative(prob1, prob2 float64) (fair1, fair2 float64, err error) {
	if prob1 <= 0 || prob1 >= 1 || prob2 <= 0 || prob2 >= 1 {
		return 0, 0, fmt.Errorf("probabilities must be between 0 and 1")
	}

	totalProb := prob1 + prob2
	if totalProb <= 1.0 {
		return 0, 0, fmt.Errorf("no vig detected: probabilities sum to <= 1.0")
	}

	fair1 = prob1 / totalProb
	fair2 = prob2 / totalProb

	return fair1, fair2, nil
}

// VigPercentage returns the overround in a market as a percentage.
// 52.38% + 52.38% → 4.76
func VigPercentage(probabilities []float64) (float64, error) {
	if len(probabilities) == 0 {
		return 0, fmt.Errorf("no probabilities provided")
	}

	totalProb := 0.0
	for _, prob := range probabilities {
		if prob <= 0 || prob >= 1 {
			return 0, fmt.Errorf("all probabilities must be between 0 and 1")
		}
		totalProb += prob
	}

	if totalProb <= 1.0 {
		return 0, nil
	}

	return (totalProb - 1.0) * 100.0, nil
}

// FairProbabilityFromPrices devigs a two-way market quoted in American odds
// and returns the fair probability of the first outcome.
func FairProbabilityFromPrices(price1, price2 int) (float64, error) {
	prob1, err := AmericanToImpliedProbability(price1)
	if err != nil {
		return 0, fmt.Errorf("invalid first price: %w", err)
	}
	prob2, err := AmericanToImpliedProbability(price2)
	if err != nil {
		return 0, fmt.Errorf("invalid second price: %w", err)
	}

	fair1, _, err := RemoveVigMultiplicative(prob1, prob2)
	if err != nil {
		return 0, err
	}
	return fair1, nil
}
