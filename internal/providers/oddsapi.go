package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Stattrackrr/stattrackr-sub000/internal/nba"
	"github.com/Stattrackrr/stattrackr-sub000/internal/odds"
)

const oddsSportKey = "basketball_nba"

// statMarkets maps internal stat keys to the odds API's player-prop market
// keys. Each market has an "_alternate" variant carrying alternate lines.
var statMarkets = map[string]string{
	"pts":  "player_points",
	"reb":  "player_rebounds",
	"ast":  "player_assists",
	"fg3m": "player_threes",
	"pra":  "player_points_rebounds_assists",
	"pr":   "player_points_rebounds",
	"pa":   "player_points_assists",
	"ra":   "player_rebounds_assists",
}

// OddsAPIClient fetches player-prop quotes from the odds aggregator.
type OddsAPIClient struct {
	httpClient *http.Client
	cache      CacheProvider
	logger     *logrus.Logger
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// NewOddsAPIClient creates a new odds aggregator client.
func NewOddsAPIClient(apiKey, baseURL string, rateLimit, breakerThreshold int, timeout time.Duration, cache CacheProvider, logger *logrus.Logger) *OddsAPIClient {
	if baseURL == "" {
		baseURL = "https://api.the-odds-api.com/v4"
	}
	if rateLimit <= 0 {
		rateLimit = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "oddsapi",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(breakerThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &OddsAPIClient{
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger,
		apiKey:     apiKey,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		breaker:    breaker,
	}
}

// odds API response structures
type oddsEvent struct {
	ID           string `json:"id"`
	CommenceTime string `json:"commence_time"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
}

type oddsOutcome struct {
	Name        string  `json:"name"`        // "Over" / "Under"
	Description string  `json:"description"` // player name
	Price       float64 `json:"price"`       // American odds
	Point       float64 `json:"point"`
}

type oddsMarket struct {
	Key        string        `json:"key"`
	LastUpdate string        `json:"last_update"`
	Outcomes   []oddsOutcome `json:"outcomes"`
}

type oddsBookmaker struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []oddsMarket `json:"markets"`
}

type oddsEventOdds struct {
	ID         string          `json:"id"`
	HomeTeam   string          `json:"home_team"`
	AwayTeam   string          `json:"away_team"`
	Bookmakers []oddsBookmaker `json:"bookmakers"`
}

// GetPlayerQuotes fetches every bookmaker's primary and alternate quotes for
// a player and stat across upcoming events. Quotes go stale fast, so the
// cache TTL is short.
func (c *OddsAPIClient) GetPlayerQuotes(ctx context.Context, playerName, statKey string) ([]odds.Quote, error) {
	market, ok := statMarkets[strings.ToLower(statKey)]
	if !ok {
		return nil, fmt.Errorf("no odds market for stat %q", statKey)
	}

	normalized := nba.NormalizeName(playerName)
	cacheKey := fmt.Sprintf("odds:quotes:%s:%s", normalized, market)

	var cached []odds.Quote
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	events, err := c.getEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var quotes []odds.Quote
	for _, event := range events {
		eventQuotes, err := c.getEventQuotes(ctx, event.ID, market, statKey, normalized)
		if err != nil {
			c.logger.Warnf("Failed to fetch odds for event %s: %v", event.ID, err)
			continue
		}
		quotes = append(quotes, eventQuotes...)
		if len(eventQuotes) > 0 {
			// A player props in exactly one upcoming event.
			break
		}
	}

	if len(quotes) > 0 {
		c.cache.SetSimple(cacheKey, quotes, 2*time.Minute)
	}

	return quotes, nil
}

func (c *OddsAPIClient) getEvents(ctx context.Context) ([]oddsEvent, error) {
	cacheKey := "odds:events"

	var cached []oddsEvent
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)

	var events []oddsEvent
	requestURL := fmt.Sprintf("%s/sports/%s/events?%s", c.baseURL, oddsSportKey, params.Encode())
	if err := c.makeRequest(ctx, requestURL, &events); err != nil {
		return nil, err
	}

	if len(events) > 0 {
		c.cache.SetSimple(cacheKey, events, 5*time.Minute)
	}

	return events, nil
}

// getEventQuotes fetches the primary and alternate markets for one event and
// pairs each bookmaker's Over/Under outcomes into quotes for the player.
func (c *OddsAPIClient) getEventQuotes(ctx context.Context, eventID, market, statKey, normalizedPlayer string) ([]odds.Quote, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", "us")
	params.Set("oddsFormat", "american")
	params.Set("markets", market+","+market+"_alternate")

	var eventOdds oddsEventOdds
	requestURL := fmt.Sprintf("%s/sports/%s/events/%s/odds?%s", c.baseURL, oddsSportKey, eventID, params.Encode())
	if err := c.makeRequest(ctx, requestURL, &eventOdds); err != nil {
		return nil, err
	}

	var quotes []odds.Quote
	for _, book := range eventOdds.Bookmakers {
		for _, m := range book.Markets {
			isAlternate := strings.HasSuffix(m.Key, "_alternate")

			lastUpdate, _ := time.Parse(time.RFC3339, m.LastUpdate)

			// Pair Over/Under outcomes by line.
			type side struct {
				over, under *oddsOutcome
			}
			byLine := make(map[float64]*side)
			for i := range m.Outcomes {
				outcome := m.Outcomes[i]
				if nba.NormalizeName(outcome.Description) != normalizedPlayer {
					continue
				}
				if math.IsNaN(outcome.Point) || math.IsInf(outcome.Point, 0) {
					continue
				}
				s := byLine[outcome.Point]
				if s == nil {
					s = &side{}
					byLine[outcome.Point] = s
				}
				switch outcome.Name {
				case "Over":
					s.over = &m.Outcomes[i]
				case "Under":
					s.under = &m.Outcomes[i]
				}
			}

			for line, s := range byLine {
				q := odds.Quote{
					Bookmaker:   book.Key,
					StatKey:     statKey,
					Line:        line,
					IsAlternate: isAlternate,
					LastUpdate:  lastUpdate,
				}
				if isAlternate {
					q.VariantLabel = m.Key
				}
				if s.over != nil {
					q.OverPrice = int(s.over.Price)
				}
				if s.under != nil {
					q.UnderPrice = int(s.under.Price)
				}
				quotes = append(quotes, q)
			}
		}
	}

	return quotes, nil
}

// makeRequest performs a rate-limited, breaker-guarded GET with exponential
// backoff and decodes the JSON response into target.
func (c *OddsAPIClient) makeRequest(ctx context.Context, requestURL string, target interface{}) error {
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

func (c *OddsAPIClient) doRequest(ctx context.Context, requestURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
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
