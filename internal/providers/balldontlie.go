package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Stattrackrr/stattrackr-sub000/internal/gamelog"
)

// BallDontLieClient fetches NBA players, game logs and game results from the
// balldontlie API.
type BallDontLieClient struct {
	httpClient *http.Client
	cache      CacheProvider
	logger     *logrus.Logger
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// NewBallDontLieClient creates a new balldontlie API client.
func NewBallDontLieClient(apiKey, baseURL string, rateLimit, breakerThreshold int, timeout time.Duration, cache CacheProvider, logger *logrus.Logger) *BallDontLieClient {
	if baseURL == "" {
		baseURL = "https://api.balldontlie.io/v1"
	}
	if rateLimit <= 0 {
		rateLimit = 10
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "balldontlie",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(breakerThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &BallDontLieClient{
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger,
		apiKey:     apiKey,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		breaker:    breaker,
	}
}

// balldontlie API response structures
type bdlMeta struct {
	NextCursor *int `json:"next_cursor"`
	PerPage    int  `json:"per_page"`
}

type bdlTeam struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"full_name"`
}

type bdlPlayer struct {
	ID        int     `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Position  string  `json:"position"`
	Team      bdlTeam `json:"team"`
}

type bdlGame struct {
	ID               int    `json:"id"`
	Date             string `json:"date"`
	Season           int    `json:"season"`
	HomeTeamID       int    `json:"home_team_id"`
	VisitorTeamID    int    `json:"visitor_team_id"`
	HomeTeamScore    int    `json:"home_team_score"`
	VisitorTeamScore int    `json:"visitor_team_score"`
	HomeTeam         *bdlTeam `json:"home_team,omitempty"`
	VisitorTeam      *bdlTeam `json:"visitor_team,omitempty"`
}

type bdlStatRow struct {
	ID       int     `json:"id"`
	Min      string  `json:"min"`
	Pts      float64 `json:"pts"`
	Reb      float64 `json:"reb"`
	Ast      float64 `json:"ast"`
	Stl      float64 `json:"stl"`
	Blk      float64 `json:"blk"`
	Turnover float64 `json:"turnover"`
	Fg3m     float64 `json:"fg3m"`
	Fgm      float64 `json:"fgm"`
	Fga      float64 `json:"fga"`
	Ftm      float64 `json:"ftm"`
	Game     bdlGame   `json:"game"`
	Team     bdlTeam   `json:"team"`
	Player   bdlPlayer `json:"player"`
}

type bdlStatsResponse struct {
	Data []bdlStatRow `json:"data"`
	Meta bdlMeta      `json:"meta"`
}

type bdlPlayersResponse struct {
	Data []bdlPlayer `json:"data"`
	Meta bdlMeta     `json:"meta"`
}

type bdlPlayerResponse struct {
	Data bdlPlayer `json:"data"`
}

type bdlGamesResponse struct {
	Data []bdlGame `json:"data"`
	Meta bdlMeta   `json:"meta"`
}

// SearchPlayers finds players by name fragment.
func (c *BallDontLieClient) SearchPlayers(ctx context.Context, query string) ([]PlayerInfo, error) {
	cacheKey := fmt.Sprintf("bdl:players:search:%s", query)

	var cached []PlayerInfo
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("search", query)
	params.Set("per_page", "25")

	var resp bdlPlayersResponse
	if err := c.makeRequest(ctx, c.baseURL+"/players?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}

	players := make([]PlayerInfo, 0, len(resp.Data))
	for _, p := range resp.Data {
		players = append(players, PlayerInfo{
			ID:       p.ID,
			Name:     p.FirstName + " " + p.LastName,
			TeamAbbr: p.Team.Abbreviation,
			Position: p.Position,
		})
	}

	if len(players) > 0 {
		c.cache.SetSimple(cacheKey, players, 1*time.Hour)
	}

	return players, nil
}

// GetPlayer looks up one player by provider ID.
func (c *BallDontLieClient) GetPlayer(ctx context.Context, playerID int) (*PlayerInfo, error) {
	cacheKey := fmt.Sprintf("bdl:player:%d", playerID)

	var cached PlayerInfo
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil && cached.ID == playerID {
		return &cached, nil
	}

	var resp bdlPlayerResponse
	if err := c.makeRequest(ctx, fmt.Sprintf("%s/players/%d", c.baseURL, playerID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch player %d: %w", playerID, err)
	}
	if resp.Data.ID == 0 {
		return nil, fmt.Errorf("player %d not found", playerID)
	}

	player := PlayerInfo{
		ID:       resp.Data.ID,
		Name:     resp.Data.FirstName + " " + resp.Data.LastName,
		TeamAbbr: resp.Data.Team.Abbreviation,
		Position: resp.Data.Position,
	}
	c.cache.SetSimple(cacheKey, player, 1*time.Hour)

	return &player, nil
}

// GetPlayerGameLog fetches a player's per-game rows for the given seasons,
// following pagination cursors until exhausted.
func (c *BallDontLieClient) GetPlayerGameLog(ctx context.Context, playerID int, seasons []int) ([]gamelog.RawRow, error) {
	cacheKey := fmt.Sprintf("bdl:gamelog:%d:%s", playerID, seasonsKey(seasons))

	var cached []gamelog.RawRow
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("player_ids[]", strconv.Itoa(playerID))
	params.Set("per_page", "100")
	for _, season := range seasons {
		params.Add("seasons[]", strconv.Itoa(season))
	}

	rows, err := c.fetchStatPages(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game log for player %d: %w", playerID, err)
	}

	raws := make([]gamelog.RawRow, 0, len(rows))
	for _, row := range rows {
		raws = append(raws, statRowToRaw(row))
	}

	// Cache for 15 minutes
	if len(raws) > 0 {
		c.cache.SetSimple(cacheKey, raws, 15*time.Minute)
	}

	return raws, nil
}

// GetTeammateParticipation returns the subset of gameIDs the teammate logged
// minutes in.
func (c *BallDontLieClient) GetTeammateParticipation(ctx context.Context, teammateID int, gameIDs []int) (map[int]bool, error) {
	if len(gameIDs) == 0 {
		return map[int]bool{}, nil
	}

	cacheKey := fmt.Sprintf("bdl:participation:%d:%s", teammateID, idsKey(gameIDs))

	var cached map[int]bool
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("player_ids[]", strconv.Itoa(teammateID))
	params.Set("per_page", "100")
	for _, id := range gameIDs {
		params.Add("game_ids[]", strconv.Itoa(id))
	}

	rows, err := c.fetchStatPages(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participation for player %d: %w", teammateID, err)
	}

	played := make(map[int]bool, len(rows))
	for _, row := range rows {
		if gamelog.ParseMinutes(row.Min) > 0 {
			played[row.Game.ID] = true
		}
	}

	c.cache.SetSimple(cacheKey, played, 15*time.Minute)

	return played, nil
}

// GetSeasonGames fetches all game results for a season. Paginated and heavy;
// callers cache the derived summaries.
func (c *BallDontLieClient) GetSeasonGames(ctx context.Context, season int) ([]TeamGame, error) {
	cacheKey := fmt.Sprintf("bdl:games:%d", season)

	var cached []TeamGame
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("seasons[]", strconv.Itoa(season))
	params.Set("per_page", "100")

	var games []TeamGame
	cursor := ""
	for {
		pageParams, _ := url.ParseQuery(params.Encode())
		if cursor != "" {
			pageParams.Set("cursor", cursor)
		}

		var resp bdlGamesResponse
		if err := c.makeRequest(ctx, c.baseURL+"/games?"+pageParams.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch games for season %d: %w", season, err)
		}

		for _, g := range resp.Data {
			date, err := time.Parse("2006-01-02", g.Date)
			if err != nil {
				continue
			}
			tg := TeamGame{
				GameID:    g.ID,
				GameDate:  date,
				HomeScore: g.HomeTeamScore,
				AwayScore: g.VisitorTeamScore,
			}
			if g.HomeTeam != nil {
				tg.HomeAbbr = g.HomeTeam.Abbreviation
			}
			if g.VisitorTeam != nil {
				tg.AwayAbbr = g.VisitorTeam.Abbreviation
			}
			games = append(games, tg)
		}

		if resp.Meta.NextCursor == nil {
			break
		}
		cursor = strconv.Itoa(*resp.Meta.NextCursor)
	}

	if len(games) > 0 {
		c.cache.SetSimple(cacheKey, games, 1*time.Hour)
	}

	return games, nil
}

// fetchStatPages walks the cursor pagination of the /stats endpoint.
func (c *BallDontLieClient) fetchStatPages(ctx context.Context, params url.Values) ([]bdlStatRow, error) {
	var rows []bdlStatRow
	cursor := ""
	for {
		pageParams, _ := url.ParseQuery(params.Encode())
		if cursor != "" {
			pageParams.Set("cursor", cursor)
		}

		var resp bdlStatsResponse
		if err := c.makeRequest(ctx, c.baseURL+"/stats?"+pageParams.Encode(), &resp); err != nil {
			return nil, err
		}

		rows = append(rows, resp.Data...)

		if resp.Meta.NextCursor == nil {
			break
		}
		cursor = strconv.Itoa(*resp.Meta.NextCursor)
	}
	return rows, nil
}

// statRowToRaw maps a provider stats row to the loosely-typed row shape the
// pipeline validates. Team identity comes from the row's team field; the
// participant identities come from the embedded game, via the team objects
// when present.
func statRowToRaw(row bdlStatRow) gamelog.RawRow {
	raw := gamelog.RawRow{
		GameID:    row.Game.ID,
		GameDate:  row.Game.Date,
		Minutes:   row.Min,
		TeamAbbr:  row.Team.Abbreviation,
		HomeScore: row.Game.HomeTeamScore,
		AwayScore: row.Game.VisitorTeamScore,
		Stats: map[string]float64{
			"pts":      row.Pts,
			"reb":      row.Reb,
			"ast":      row.Ast,
			"stl":      row.Stl,
			"blk":      row.Blk,
			"turnover": row.Turnover,
			"fg3m":     row.Fg3m,
			"fgm":      row.Fgm,
			"fga":      row.Fga,
			"ftm":      row.Ftm,
		},
	}

	if row.Game.HomeTeam != nil {
		raw.HomeTeamAbbr = row.Game.HomeTeam.Abbreviation
	} else if row.Game.HomeTeamID == row.Team.ID {
		raw.HomeTeamAbbr = row.Team.Abbreviation
	}
	if row.Game.VisitorTeam != nil {
		raw.AwayTeamAbbr = row.Game.VisitorTeam.Abbreviation
	} else if row.Game.VisitorTeamID == row.Team.ID {
		raw.AwayTeamAbbr = row.Team.Abbreviation
	}

	return raw
}

// makeRequest performs a rate-limited, breaker-guarded GET with exponential
// backoff and decodes the JSON response into target.
func (c *BallDontLieClient) makeRequest(ctx context.Context, requestURL string, target interface{}) error {
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter interrupted: %w", err)
		}

		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.doRequest(ctx, requestURL, target)
		})
		if err == nil {
			return nil
		}
		lastErr = err

		if err == gobreaker.ErrOpenState || ctx.Err() != nil {
			return fmt.Errorf("request aborted: %w", err)
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
		c.logger.Warnf("Request failed (attempt %d), waiting %v: %v", attempt+1, waitTime, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return fmt.Errorf("request failed after retries: %w", lastErr)
}

func (c *BallDontLieClient) doRequest(ctx context.Context, requestURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(target)
}

func seasonsKey(seasons []int) string {
	key := ""
	for i, s := range seasons {
		if i > 0 {
			key += ","
		}
		key += strconv.Itoa(s)
	}
	return key
}

// idsKey digests a game-ID set into a cache key component. The digest covers
// every ID, order-insensitively, so distinct sets never share a key.
func idsKey(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	h := fnv.New64a()
	for _, id := range sorted {
		fmt.Fprintf(h, "%d,", id)
	}
	return fmt.Sprintf("%d-%x", len(sorted), h.Sum64())
}
