package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Stattrackrr/stattrackr-sub000/internal/odds"
	"github.com/Stattrackrr/stattrackr-sub000/internal/providers"
	"github.com/Stattrackrr/stattrackr-sub000/pkg/oddsmath"
)

// OddsService turns raw bookmaker quotes into the board the dashboard
// renders: a consensus line, the best available line, and per-book prices
// with implied probabilities.
type OddsService struct {
	statsProvider providers.GameLogProvider
	oddsProvider  providers.OddsProvider
	cache         *CacheService
	logger        *logrus.Logger
}

func NewOddsService(statsProvider providers.GameLogProvider, oddsProvider providers.OddsProvider, cache *CacheService, logger *logrus.Logger) *OddsService {
	return &OddsService{
		statsProvider: statsProvider,
		oddsProvider:  oddsProvider,
		cache:         cache,
		logger:        logger,
	}
}

// BookQuote is one bookmaker's price pair with implied probabilities.
type BookQuote struct {
	Bookmaker   string    `json:"bookmaker"`
	Line        float64   `json:"line"`
	OverPrice   int       `json:"over_price"`
	UnderPrice  int       `json:"under_price"`
	OverImplied float64   `json:"over_implied,omitempty"`
	IsAlternate bool      `json:"is_alternate,omitempty"`
	LastUpdate  time.Time `json:"last_update,omitempty"`
}

// Board is the odds view for one player and market.
type Board struct {
	PlayerID      int         `json:"player_id"`
	PlayerName    string      `json:"player_name"`
	StatKey       string      `json:"stat_key"`
	ConsensusLine *float64    `json:"consensus_line,omitempty"`
	BestLine      *float64    `json:"best_line,omitempty"`
	Quotes        []BookQuote `json:"quotes"`
}

// EdgeReport compares the market's fair probability at the target line
// against the best offered over price.
type EdgeReport struct {
	PlayerID      int                    `json:"player_id"`
	StatKey       string                 `json:"stat_key"`
	Line          float64                `json:"line"`
	FairOverProb  float64                `json:"fair_over_prob"`
	Books         int                    `json:"books"`
	BestOverPrice int                    `json:"best_over_price"`
	BestOverBook  string                 `json:"best_over_book"`
	Analysis      *oddsmath.EdgeAnalysis `json:"analysis,omitempty"`
}

// GetBoard resolves a player's name and assembles the quote board for one
// stat market.
func (s *OddsService) GetBoard(ctx context.Context, playerID int, statKey string) (*Board, error) {
	if statKey == "" {
		statKey = "pts"
	}

	cacheKey := OddsBoardCacheKey(playerID, statKey)
	if s.cache != nil {
		var cached Board
		if err := s.cache.GetSimple(cacheKey, &cached); err == nil && len(cached.Quotes) > 0 {
			return &cached, nil
		}
	}

	player, err := s.resolvePlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	quotes, err := s.oddsProvider.GetPlayerQuotes(ctx, player.Name, statKey)
	if err != nil {
		return nil, fmt.Errorf("quote fetch failed: %w", err)
	}

	board := &Board{
		PlayerID:   playerID,
		PlayerName: player.Name,
		StatKey:    statKey,
		Quotes:     make([]BookQuote, 0, len(quotes)),
	}

	if line, ok := odds.ResolveConsensusLine(quotes, statKey); ok {
		board.ConsensusLine = &line
	}
	if line, ok := odds.BestLine(quotes, statKey); ok {
		board.BestLine = &line
	}

	for _, q := range quotes {
		bq := BookQuote{
			Bookmaker:   q.Bookmaker,
			Line:        q.Line,
			OverPrice:   q.OverPrice,
			UnderPrice:  q.UnderPrice,
			IsAlternate: q.IsAlternate,
			LastUpdate:  q.LastUpdate,
		}
		if implied, err := oddsmath.AmericanToImpliedProbability(q.OverPrice); err == nil {
			bq.OverImplied = implied
		}
		board.Quotes = append(board.Quotes, bq)
	}
	sort.Slice(board.Quotes, func(i, j int) bool {
		if board.Quotes[i].Bookmaker != board.Quotes[j].Bookmaker {
			return board.Quotes[i].Bookmaker < board.Quotes[j].Bookmaker
		}
		return board.Quotes[i].Line < board.Quotes[j].Line
	})

	if s.cache != nil && len(board.Quotes) > 0 {
		if err := s.cache.SetSimple(cacheKey, board, 2*time.Minute); err != nil {
			s.logger.WithError(err).Warn("Failed to cache odds board")
		}
	}
	return board, nil
}

// GetEdge devigs every book quoting the target line, averages the fair over
// probabilities, and scores the best offered over price against that fair
// probability. The target line defaults to the consensus line; a non-nil
// lineOverride pins it instead.
func (s *OddsService) GetEdge(ctx context.Context, playerID int, statKey string, lineOverride *float64) (*EdgeReport, error) {
	if statKey == "" {
		statKey = "pts"
	}

	player, err := s.resolvePlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	quotes, err := s.oddsProvider.GetPlayerQuotes(ctx, player.Name, statKey)
	if err != nil {
		return nil, fmt.Errorf("quote fetch failed: %w", err)
	}

	var line float64
	if lineOverride != nil {
		line = *lineOverride
	} else {
		consensus, ok := odds.ResolveConsensusLine(quotes, statKey)
		if !ok {
			return nil, fmt.Errorf("no consensus line available for %s %s", player.Name, statKey)
		}
		line = consensus
	}

	atLine := odds.QuotesAtLine(quotes, statKey, line)

	var fairSum float64
	books := 0
	bestPrice := 0
	bestBook := ""
	for _, q := range atLine {
		fair, err := oddsmath.FairProbabilityFromPrices(q.OverPrice, q.UnderPrice)
		if err != nil {
			continue
		}
		fairSum += fair
		books++
		if bestBook == "" || betterAmerican(q.OverPrice, bestPrice) {
			bestPrice = q.OverPrice
			bestBook = q.Bookmaker
		}
	}
	if books == 0 {
		return nil, fmt.Errorf("no priceable quotes at line %.1f for %s %s", line, player.Name, statKey)
	}

	report := &EdgeReport{
		PlayerID:      playerID,
		StatKey:       statKey,
		Line:          line,
		FairOverProb:  fairSum / float64(books),
		Books:         books,
		BestOverPrice: bestPrice,
		BestOverBook:  bestBook,
	}

	analysis, err := oddsmath.AnalyzeOffer(bestPrice, report.FairOverProb)
	if err != nil {
		s.logger.WithError(err).Warn("Edge analysis failed")
	} else {
		report.Analysis = analysis
	}
	return report, nil
}

// resolvePlayer maps a stats-provider player ID to its display name, which
// keys the odds provider's quote lookup.
func (s *OddsService) resolvePlayer(ctx context.Context, playerID int) (*providers.PlayerInfo, error) {
	if playerID <= 0 {
		return nil, fmt.Errorf("invalid player id: %d", playerID)
	}
	player, err := s.statsProvider.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("player lookup failed: %w", err)
	}
	return player, nil
}

// betterAmerican reports whether price a pays more than price b for the
// bettor. Positive beats negative; among positives bigger is better; among
// negatives closer to zero is better.
func betterAmerican(a, b int) bool {
	da, errA := oddsmath.AmericanToDecimal(a)
	db, errB := oddsmath.AmericanToDecimal(b)
	if errA != nil {
		return false
	}
	if errB != nil {
		return true
	}
	return da > db
}
