package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/catalog"
	"github.com/rohankatakam/foryou-podcast-core/internal/explain"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

const defaultRelatedEpisodeLimit = 5

// CatalogHandler serves S5 get_categories and S6 episode lookup.
type CatalogHandler struct {
	logger  *logrus.Logger
	catalog *catalog.Catalog
	explain *explain.Service
}

func NewCatalogHandler(logger *logrus.Logger, cat *catalog.Catalog, exp *explain.Service) *CatalogHandler {
	return &CatalogHandler{logger: logger, catalog: cat, explain: exp}
}

// Categories handles GET /api/v1/categories.
func (h *CatalogHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, models.CategoriesResponse{Categories: h.catalog.Categories()})
}

// Episode handles GET /api/v1/episodes/:episodeId.
func (h *CatalogHandler) Episode(c *gin.Context) {
	episodeID, err := uuid.Parse(c.Param("episodeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "INVALID_EPISODE_ID", "message": "Invalid episode ID format"},
		})
		return
	}

	ep, ok := h.catalog.Get(episodeID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{"code": "EPISODE_NOT_FOUND", "message": "Episode not found"},
		})
		return
	}

	view := ep.Derive(time.Now())
	resp := models.EpisodeLookupResponse{
		Episode:       ep,
		PrimaryTopic:  view.PrimaryTopic,
		PrimaryEntity: view.PrimaryEntity,
		POV:           view.POV,
		DaysOld:       view.DaysOld,
	}

	if h.explain != nil {
		resp.RelatedEpisodes = h.explain.Related(c.Request.Context(), episodeID, defaultRelatedEpisodeLimit)
	}

	c.JSON(http.StatusOK, resp)
}
