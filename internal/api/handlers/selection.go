package handlers

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Stattrackrr/stattrackr-sub000/internal/api/middleware"
	"github.com/Stattrackrr/stattrackr-sub000/internal/models"
	"github.com/Stattrackrr/stattrackr-sub000/pkg/utils"
)

const maxSelectionBytes = 64 << 10

// SelectionHandler persists and restores the dashboard's selection state.
// Authenticated users are keyed by user ID; anonymous clients supply their
// own key via the X-Client-Id header.
type SelectionHandler struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewSelectionHandler(db *gorm.DB, logger *logrus.Logger) *SelectionHandler {
	return &SelectionHandler{
		db:     db,
		logger: logger,
	}
}

// GetSelection handles GET /selection
func (h *SelectionHandler) GetSelection(c *gin.Context) {
	ownerKey, ok := h.ownerKey(c)
	if !ok {
		return
	}

	state, err := models.GetSelectionByOwner(h.db, ownerKey)
	if err == gorm.ErrRecordNotFound {
		utils.SendNotFound(c, "No saved selection")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Selection load failed")
		utils.SendInternalError(c, "Failed to load selection")
		return
	}

	utils.SendSuccess(c, gin.H{
		"owner_key":  state.OwnerKey,
		"payload":    json.RawMessage(state.Payload),
		"updated_at": state.UpdatedAt,
	})
}

// PutSelection handles PUT /selection with a JSON payload body.
func (h *SelectionHandler) PutSelection(c *gin.Context) {
	ownerKey, ok := h.ownerKey(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSelectionBytes+1))
	if err != nil {
		utils.SendValidationError(c, "Unreadable body", err.Error())
		return
	}
	if len(body) == 0 {
		utils.SendValidationError(c, "Empty payload", "request body is required")
		return
	}
	if len(body) > maxSelectionBytes {
		utils.SendValidationError(c, "Payload too large", "selection payload exceeds 64KB")
		return
	}
	if !json.Valid(body) {
		utils.SendValidationError(c, "Invalid payload", "body must be valid JSON")
		return
	}

	state, err := models.UpsertSelection(h.db, ownerKey, datatypes.JSON(body))
	if err != nil {
		h.logger.WithError(err).Error("Selection save failed")
		utils.SendInternalError(c, "Failed to save selection")
		return
	}

	utils.SendSuccess(c, gin.H{
		"owner_key":  state.OwnerKey,
		"updated_at": state.UpdatedAt,
	})
}

func (h *SelectionHandler) ownerKey(c *gin.Context) (string, bool) {
	if middleware.IsAuthenticated(c) {
		if userID, err := middleware.GetUserIDFromContext(c); err == nil {
			return "user:" + userID.String(), true
		}
	}

	clientID := strings.TrimSpace(c.GetHeader("X-Client-Id"))
	if clientID == "" || len(clientID) > 96 {
		utils.SendValidationError(c, "Missing client id", "X-Client-Id header is required for anonymous selections")
		return "", false
	}
	return "client:" + clientID, true
}
