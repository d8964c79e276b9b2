package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Stattrackrr/stattrackr-sub000/internal/gamelog"
	"github.com/Stattrackrr/stattrackr-sub000/internal/nba"
	"github.com/Stattrackrr/stattrackr-sub000/internal/providers"
)

// StatsService orchestrates player search, game-log retrieval and the chart
// derivation pipeline. All external I/O goes through the stats provider; the
// pipeline itself runs on in-memory snapshots.
type StatsService struct {
	provider    providers.GameLogProvider
	cache       *CacheService
	logger      *logrus.Logger
	seasonsBack int
}

func NewStatsService(provider providers.GameLogProvider, cache *CacheService, logger *logrus.Logger, seasonsBack int) *StatsService {
	if seasonsBack <= 0 {
		seasonsBack = 1
	}
	return &StatsService{
		provider:    provider,
		cache:       cache,
		logger:      logger,
		seasonsBack: seasonsBack,
	}
}

// ChartRequest is the parsed query for one chart render.
type ChartRequest struct {
	PlayerID           int
	StatKey            string
	Line               *float64
	Timeframe          string
	HomeAway           string
	Opponent           string
	ExcludeBlowouts    bool
	ExcludeBackToBacks bool
	TeammateID         int
	TeammateMode       string
	Now                time.Time
}

// ChartResponse pairs the derivation result with its request context.
type ChartResponse struct {
	PlayerID    int            `json:"player_id"`
	SubjectTeam string         `json:"subject_team"`
	StatKey     string         `json:"stat_key"`
	Timeframe   string         `json:"timeframe"`
	Result      gamelog.Result `json:"result"`
}

// TeamDefense summarizes how many points a team concedes per game.
type TeamDefense struct {
	TeamAbbr      string  `json:"team_abbr"`
	TeamName      string  `json:"team_name"`
	Games         int     `json:"games"`
	PointsAllowed int     `json:"points_allowed"`
	PointsPerGame float64 `json:"points_per_game"`
	Rank          int     `json:"rank"`
}

// SearchPlayers proxies the provider's player search.
func (s *StatsService) SearchPlayers(ctx context.Context, query string) ([]providers.PlayerInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	players, err := s.provider.SearchPlayers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("player search failed: %w", err)
	}
	return players, nil
}

// GetGameLog fetches and validates the player's game log across the
// configured season window. Rows the parser rejects are dropped and counted,
// never surfaced as errors.
func (s *StatsService) GetGameLog(ctx context.Context, playerID int, now time.Time) ([]gamelog.GameRecord, error) {
	if playerID <= 0 {
		return nil, fmt.Errorf("invalid player id: %d", playerID)
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rows, err := s.provider.GetPlayerGameLog(ctx, playerID, s.seasonWindow(now))
	if err != nil {
		return nil, fmt.Errorf("game log fetch failed: %w", err)
	}

	records, rejected := gamelog.ParseRows(rows)
	if rejected > 0 {
		s.logger.WithFields(logrus.Fields{
			"player_id": playerID,
			"rejected":  rejected,
			"accepted":  len(records),
		}).Warn("Dropped malformed game log rows")
	}
	return records, nil
}

// BuildChart runs the full derivation for one chart request: fetch the log,
// derive the subject's team and roster context, resolve teammate
// participation when requested, then execute the pipeline.
func (s *StatsService) BuildChart(ctx context.Context, req ChartRequest) (*ChartResponse, error) {
	if req.StatKey == "" {
		req.StatKey = "pts"
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	records, err := s.GetGameLog(ctx, req.PlayerID, now)
	if err != nil {
		return nil, err
	}

	subject := currentTeam(records)
	filters := gamelog.Filters{
		SubjectTeam:        subject,
		Venue:              parseVenue(req.HomeAway),
		Opponent:           strings.ToUpper(strings.TrimSpace(req.Opponent)),
		ExcludeBlowouts:    req.ExcludeBlowouts,
		ExcludeBackToBacks: req.ExcludeBackToBacks,
	}

	if req.TeammateID > 0 {
		played, err := s.teammateParticipation(ctx, req.TeammateID, records)
		if err != nil {
			// A failed teammate lookup degrades to an unfiltered chart
			// rather than failing the whole request.
			s.logger.WithError(err).WithField("teammate_id", req.TeammateID).
				Warn("Teammate participation lookup failed, skipping teammate filter")
		} else {
			mode := gamelog.TeammateWith
			if strings.EqualFold(req.TeammateMode, string(gamelog.TeammateWithout)) {
				mode = gamelog.TeammateWithout
			}
			filters.Teammate = &gamelog.TeammateFilter{Mode: mode, PlayedGameIDs: played}
		}
	}

	result := gamelog.Run(records, gamelog.Request{
		StatKey:   req.StatKey,
		Line:      req.Line,
		Timeframe: gamelog.ParseTimeframe(req.Timeframe),
		Filters:   filters,
		Now:       now,
	})

	return &ChartResponse{
		PlayerID:    req.PlayerID,
		SubjectTeam: subject,
		StatKey:     req.StatKey,
		Timeframe:   req.Timeframe,
		Result:      result,
	}, nil
}

// TeamDefenseBoard computes points allowed per game for every team in the
// current season, ranked from stingiest to most generous.
func (s *StatsService) TeamDefenseBoard(ctx context.Context, now time.Time) ([]TeamDefense, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	season := gamelog.SeasonStartYear(now)

	cacheKey := TeamDefenseCacheKey("ALL", season)
	if s.cache != nil {
		var cached []TeamDefense
		if err := s.cache.GetSimple(cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	games, err := s.provider.GetSeasonGames(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("season games fetch failed: %w", err)
	}

	type tally struct {
		games   int
		allowed int
	}
	tallies := make(map[string]*tally)
	add := func(team string, allowed int) {
		if !nba.IsKnownTeam(team) {
			return
		}
		t := tallies[team]
		if t == nil {
			t = &tally{}
			tallies[team] = t
		}
		t.games++
		t.allowed += allowed
	}
	for _, g := range games {
		if g.HomeScore == 0 && g.AwayScore == 0 {
			continue // unplayed
		}
		add(g.HomeAbbr, g.AwayScore)
		add(g.AwayAbbr, g.HomeScore)
	}

	board := make([]TeamDefense, 0, len(tallies))
	for abbr, t := range tallies {
		entry := TeamDefense{
			TeamAbbr:      abbr,
			TeamName:      nba.TeamName(abbr),
			Games:         t.games,
			PointsAllowed: t.allowed,
		}
		if t.games > 0 {
			entry.PointsPerGame = float64(t.allowed) / float64(t.games)
		}
		board = append(board, entry)
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].PointsPerGame != board[j].PointsPerGame {
			return board[i].PointsPerGame < board[j].PointsPerGame
		}
		return board[i].TeamAbbr < board[j].TeamAbbr
	})
	for i := range board {
		board[i].Rank = i + 1
	}

	// The board costs a full season of paginated game fetches, so a failed
	// cache write is worth retrying before giving up.
	if s.cache != nil && len(board) > 0 {
		if err := s.cache.SetWithRetry(ctx, cacheKey, board, time.Hour, 3); err != nil {
			s.logger.WithError(err).Warn("Failed to cache team defense board")
		}
	}
	return board, nil
}

func (s *StatsService) teammateParticipation(ctx context.Context, teammateID int, records []gamelog.GameRecord) (map[int]bool, error) {
	gameIDs := make([]int, 0, len(records))
	seen := make(map[int]bool, len(records))
	for _, rec := range records {
		if !seen[rec.GameID] {
			seen[rec.GameID] = true
			gameIDs = append(gameIDs, rec.GameID)
		}
	}
	return s.provider.GetTeammateParticipation(ctx, teammateID, gameIDs)
}

// seasonWindow lists the seasons to fetch, newest first.
func (s *StatsService) seasonWindow(now time.Time) []int {
	current := gamelog.SeasonStartYear(now)
	seasons := make([]int, 0, s.seasonsBack+1)
	for i := 0; i <= s.seasonsBack; i++ {
		seasons = append(seasons, current-i)
	}
	return seasons
}

// currentTeam is the team the subject most recently logged minutes for.
func currentTeam(records []gamelog.GameRecord) string {
	sorted := gamelog.SortByDateDesc(records)
	for _, rec := range sorted {
		if rec.MinutesPlayed > 0 && rec.TeamAbbr != "" {
			return rec.TeamAbbr
		}
	}
	if len(sorted) > 0 {
		return sorted[0].TeamAbbr
	}
	return ""
}

func parseVenue(homeAway string) gamelog.Venue {
	switch strings.ToUpper(strings.TrimSpace(homeAway)) {
	case string(gamelog.VenueHome):
		return gamelog.VenueHome
	case string(gamelog.VenueAway):
		return gamelog.VenueAway
	default:
		return gamelog.VenueAll
	}
}
