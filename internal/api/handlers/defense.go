package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Stattrackrr/stattrackr-sub000/internal/nba"
	"github.com/Stattrackrr/stattrackr-sub000/internal/services"
	"github.com/Stattrackrr/stattrackr-sub000/pkg/utils"
)

// DefenseHandler serves the team defensive summary board.
type DefenseHandler struct {
	stats  *services.StatsService
	logger *logrus.Logger
}

func NewDefenseHandler(stats *services.StatsService, logger *logrus.Logger) *DefenseHandler {
	return &DefenseHandler{
		stats:  stats,
		logger: logger,
	}
}

// GetBoard handles GET /nba/dvp?team=
func (h *DefenseHandler) GetBoard(c *gin.Context) {
	board, err := h.stats.TeamDefenseBoard(c.Request.Context(), time.Time{})
	if err != nil {
		h.logger.WithError(err).Warn("Team defense board fetch failed")
		utils.SendUpstreamError(c, "Defensive summaries are unavailable")
		return
	}

	if team := strings.ToUpper(strings.TrimSpace(c.Query("team"))); team != "" {
		if !nba.IsKnownTeam(team) {
			utils.SendValidationError(c, "Unknown team", "team must be an NBA abbreviation")
			return
		}
		for _, entry := range board {
			if entry.TeamAbbr == team {
				utils.SendSuccess(c, entry)
				return
			}
		}
		utils.SendNotFound(c, "No games recorded for team")
		return
	}

	utils.SendSuccess(c, board)
}
