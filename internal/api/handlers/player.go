package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Stattrackrr/stattrackr-sub000/internal/services"
	"github.com/Stattrackrr/stattrackr-sub000/pkg/utils"
)

// PlayerHandler serves player search, game logs and chart derivations.
type PlayerHandler struct {
	stats     *services.StatsService
	refresher *services.Refresher
	logger    *logrus.Logger
}

func NewPlayerHandler(stats *services.StatsService, refresher *services.Refresher, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{
		stats:     stats,
		refresher: refresher,
		logger:    logger,
	}
}

// SearchPlayers handles GET /players/search?q=
func (h *PlayerHandler) SearchPlayers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.SendValidationError(c, "Missing search query", "q parameter is required")
		return
	}

	players, err := h.stats.SearchPlayers(c.Request.Context(), query)
	if err != nil {
		h.logger.WithError(err).Warn("Player search failed")
		utils.SendUpstreamError(c, "Player search is unavailable")
		return
	}

	utils.SendSuccess(c, players)
}

// GetGameLog handles GET /players/:id/gamelog
func (h *PlayerHandler) GetGameLog(c *gin.Context) {
	playerID, ok := playerIDParam(c)
	if !ok {
		return
	}

	records, err := h.stats.GetGameLog(c.Request.Context(), playerID, time.Time{})
	if err != nil {
		h.logger.WithError(err).WithField("player_id", playerID).Warn("Game log fetch failed")
		utils.SendUpstreamError(c, "Game log is unavailable")
		return
	}

	utils.SendSuccess(c, records)
}

// GetChart handles GET /players/:id/chart with the full filter query surface.
func (h *PlayerHandler) GetChart(c *gin.Context) {
	playerID, ok := playerIDParam(c)
	if !ok {
		return
	}

	req := services.ChartRequest{
		PlayerID:           playerID,
		StatKey:            c.DefaultQuery("stat", "pts"),
		Timeframe:          c.DefaultQuery("timeframe", "all"),
		HomeAway:           c.Query("homeAway"),
		Opponent:           c.Query("opponent"),
		ExcludeBlowouts:    boolQuery(c, "excludeBlowouts"),
		ExcludeBackToBacks: boolQuery(c, "excludeBackToBacks"),
		TeammateMode:       c.Query("teammateMode"),
	}

	if raw := c.Query("line"); raw != "" {
		line, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.SendValidationError(c, "Invalid line", "line must be a number")
			return
		}
		req.Line = &line
	}

	if raw := c.Query("teammateId"); raw != "" {
		teammateID, err := strconv.Atoi(raw)
		if err != nil || teammateID <= 0 {
			utils.SendValidationError(c, "Invalid teammate id", "teammateId must be a positive integer")
			return
		}
		req.TeammateID = teammateID
	}

	chart, err := h.stats.BuildChart(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithField("player_id", playerID).Warn("Chart build failed")
		utils.SendUpstreamError(c, "Chart data is unavailable")
		return
	}

	utils.SendSuccess(c, chart)
}

// RefreshPlayer handles POST /players/:id/refresh
func (h *PlayerHandler) RefreshPlayer(c *gin.Context) {
	playerID, ok := playerIDParam(c)
	if !ok {
		return
	}

	if err := h.refresher.FetchOnDemand(c.Request.Context(), playerID); err != nil {
		h.logger.WithError(err).WithField("player_id", playerID).Warn("On-demand refresh failed")
		utils.SendUpstreamError(c, "Refresh failed")
		return
	}

	utils.SendSuccess(c, gin.H{"refreshed": true, "player_id": playerID})
}

// RefreshStatus handles GET /refresh/status
func (h *PlayerHandler) RefreshStatus(c *gin.Context) {
	utils.SendSuccess(c, h.refresher.Status())
}

func playerIDParam(c *gin.Context) (int, bool) {
	playerID, err := strconv.Atoi(c.Param("id"))
	if err != nil || playerID <= 0 {
		utils.SendValidationError(c, "Invalid player id", "id must be a positive integer")
		return 0, false
	}
	return playerID, true
}

func boolQuery(c *gin.Context, key string) bool {
	v := strings.ToLower(c.Query(key))
	return v == "true" || v == "1"
}
