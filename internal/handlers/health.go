package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/catalog"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// HealthHandler serves S7 health. A catalog with zero episodes is
// "degraded" rather than failing the check outright: the check still
// answers 200 with catalog_ready false, while create_session fails with
// config_missing until the catalog has episodes.
type HealthHandler struct {
	logger  *logrus.Logger
	catalog *catalog.Catalog
}

func NewHealthHandler(logger *logrus.Logger, cat *catalog.Catalog) *HealthHandler {
	return &HealthHandler{logger: logger, catalog: cat}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ready := h.catalog.Ready()

	status := models.HealthResponse{
		CatalogReady: ready,
		EpisodeCount: h.catalog.Len(),
		CheckedAt:    time.Now(),
	}

	httpStatus := http.StatusOK
	if ready {
		status.Status = "healthy"
	} else {
		status.Status = "degraded"
	}

	c.JSON(httpStatus, status)
}
