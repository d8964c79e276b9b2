package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Stattrackrr/stattrackr-sub000/internal/services"
	"github.com/Stattrackrr/stattrackr-sub000/pkg/utils"
)

// OddsHandler serves bookmaker line boards and edge reports.
type OddsHandler struct {
	odds   *services.OddsService
	logger *logrus.Logger
}

func NewOddsHandler(odds *services.OddsService, logger *logrus.Logger) *OddsHandler {
	return &OddsHandler{
		odds:   odds,
		logger: logger,
	}
}

// GetBoard handles GET /odds/:playerId?stat=
func (h *OddsHandler) GetBoard(c *gin.Context) {
	playerID, ok := oddsPlayerIDParam(c)
	if !ok {
		return
	}

	board, err := h.odds.GetBoard(c.Request.Context(), playerID, c.DefaultQuery("stat", "pts"))
	if err != nil {
		h.logger.WithError(err).WithField("player_id", playerID).Warn("Odds board fetch failed")
		utils.SendUpstreamError(c, "Odds are unavailable")
		return
	}

	utils.SendSuccess(c, board)
}

// GetEdge handles GET /odds/:playerId/edge?stat=
func (h *OddsHandler) GetEdge(c *gin.Context) {
	playerID, ok := oddsPlayerIDParam(c)
	if !ok {
		return
	}

	var lineOverride *float64
	if raw := c.Query("line"); raw != "" {
		line, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.SendValidationError(c, "Invalid line", "line must be a number")
			return
		}
		lineOverride = &line
	}

	report, err := h.odds.GetEdge(c.Request.Context(), playerID, c.DefaultQuery("stat", "pts"), lineOverride)
	if err != nil {
		h.logger.WithError(err).WithField("player_id", playerID).Info("Edge report unavailable")
		utils.SendNotFound(c, "No priceable market for this player and stat")
		return
	}

	utils.SendSuccess(c, report)
}

func oddsPlayerIDParam(c *gin.Context) (int, bool) {
	playerID, err := strconv.Atoi(c.Param("playerId"))
	if err != nil || playerID <= 0 {
		utils.SendValidationError(c, "Invalid player id", "playerId must be a positive integer")
		return 0, false
	}
	return playerID, true
}
