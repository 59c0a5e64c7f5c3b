package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/ranking"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// SessionHandler serves S1 create_session and S2 load_more.
type SessionHandler struct {
	logger       *logrus.Logger
	orchestrator *ranking.Orchestrator
	validator    *validator.Validate
}

func NewSessionHandler(logger *logrus.Logger, orchestrator *ranking.Orchestrator) *SessionHandler {
	return &SessionHandler{
		logger:       logger,
		orchestrator: orchestrator,
		validator:    validator.New(),
	}
}

// Create handles POST /api/v1/sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to bind create session request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "INVALID_REQUEST", "message": "Invalid request format", "details": err.Error()},
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.WithError(err).Error("Validation failed for create session request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "VALIDATION_FAILED", "message": err.Error()},
		})
		return
	}

	resp, err := h.orchestrator.CreateSession(c.Request.Context(), req, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ranking.ErrConfigMissing):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{"code": "config_missing", "message": "catalog is not ready"},
			})
		case errors.Is(err, ranking.ErrDeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": gin.H{"code": "deadline_exceeded", "message": "create_session exceeded its configured budget"},
			})
		default:
			h.logger.WithError(err).Error("Failed to create session")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"code": "CREATE_SESSION_FAILED", "message": "Failed to create session"},
			})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// LoadMore handles GET /api/v1/sessions/:sessionId/more.
func (h *SessionHandler) LoadMore(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "INVALID_SESSION_ID", "message": "Invalid session ID format"},
		})
		return
	}

	n := 0
	if nStr := c.Query("n"); nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil && parsed > 0 {
			n = parsed
		}
	}

	var cursor *int
	if cursorStr := c.Query("cursor"); cursorStr != "" {
		if parsed, err := strconv.Atoi(cursorStr); err == nil && parsed >= 0 {
			cursor = &parsed
		}
	}

	resp, err := h.orchestrator.LoadMore(models.LoadMoreRequest{SessionID: sessionID, N: n, Cursor: cursor})
	if err != nil {
		if errors.Is(err, ranking.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{"code": "session_not_found", "message": "Session unknown or expired"},
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load more episodes")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": "LOAD_MORE_FAILED", "message": "Failed to load more episodes"},
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
