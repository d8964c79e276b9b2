// Package providers contains the HTTP clients for the external stats and
// odds APIs. Clients are read-through cached, rate limited and wrapped in a
// circuit breaker; callers receive loosely-typed rows and validate them at
// the pipeline boundary.
package providers

import (
	"context"
	"time"

	"github.com/Stattrackrr/stattrackr-sub000/internal/gamelog"
	"github.com/Stattrackrr/stattrackr-sub000/internal/odds"
)

// PlayerInfo identifies a player in the stats provider's namespace.
type PlayerInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	TeamAbbr string `json:"team_abbr"`
	Position string `json:"position,omitempty"`
}

// TeamGame is one game result used for team defensive summaries.
type TeamGame struct {
	GameID    int       `json:"game_id"`
	GameDate  time.Time `json:"game_date"`
	HomeAbbr  string    `json:"home_abbr"`
	AwayAbbr  string    `json:"away_abbr"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
}

// GameLogProvider supplies raw game-log rows and roster participation.
type GameLogProvider interface {
	SearchPlayers(ctx context.Context, query string) ([]PlayerInfo, error)
	GetPlayer(ctx context.Context, playerID int) (*PlayerInfo, error)
	GetPlayerGameLog(ctx context.Context, playerID int, seasons []int) ([]gamelog.RawRow, error)
	GetTeammateParticipation(ctx context.Context, teammateID int, gameIDs []int) (map[int]bool, error)
	GetSeasonGames(ctx context.Context, season int) ([]TeamGame, error)
}

// OddsProvider supplies bookmaker prop quotes for a player and market.
type OddsProvider interface {
	GetPlayerQuotes(ctx context.Context, playerName, statKey string) ([]odds.Quote, error)
}

// CacheProvider is the cache surface the clients need.
type CacheProvider interface {
	SetSimple(key string, value interface{}, expiration time.Duration) error
	GetSimple(key string, dest interface{}) error
}
