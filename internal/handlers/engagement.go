package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/ranking"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// EngagementHandler serves S3 append_engagement and S4 reset_engagements.
type EngagementHandler struct {
	logger       *logrus.Logger
	orchestrator *ranking.Orchestrator
	validator    *validator.Validate
}

func NewEngagementHandler(logger *logrus.Logger, orchestrator *ranking.Orchestrator) *EngagementHandler {
	return &EngagementHandler{
		logger:       logger,
		orchestrator: orchestrator,
		validator:    validator.New(),
	}
}

// Append handles POST /api/v1/engagements.
func (h *EngagementHandler) Append(c *gin.Context) {
	var req models.AppendEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to bind append engagement request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "INVALID_REQUEST", "message": "Invalid request format", "details": err.Error()},
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.WithError(err).Error("Validation failed for append engagement request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "VALIDATION_FAILED", "message": err.Error()},
		})
		return
	}

	if err := h.orchestrator.AppendEngagement(c.Request.Context(), req); err != nil {
		h.logger.WithError(err).Error("Failed to append engagement")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": "APPEND_ENGAGEMENT_FAILED", "message": "Failed to record engagement"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Reset handles POST /api/v1/users/:userId/engagements/reset.
func (h *EngagementHandler) Reset(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "INVALID_USER_ID", "message": "Invalid user ID format"},
		})
		return
	}

	if err := h.orchestrator.ResetEngagements(c.Request.Context(), userID); err != nil {
		h.logger.WithError(err).Error("Failed to reset engagements")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": "RESET_ENGAGEMENTS_FAILED", "message": "Failed to reset engagements"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
