package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/rohankatakam/foryou-podcast-core/internal/catalog"
)

func TestCatalogHandler_CategoriesOnEmptyCatalogReturnsEmptyList(t *testing.T) {
	h := NewCatalogHandler(logrus.New(), catalog.New(logrus.New()), nil)

	router := gin.New()
	router.GET("/categories", h.Categories)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":[]}`, w.Body.String())
}

func TestCatalogHandler_EpisodeRejectsMalformedID(t *testing.T) {
	h := NewCatalogHandler(logrus.New(), catalog.New(logrus.New()), nil)

	router := gin.New()
	router.GET("/episodes/:episodeId", h.Episode)

	req := httptest.NewRequest(http.MethodGet, "/episodes/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_EPISODE_ID")
}

func TestCatalogHandler_EpisodeNotFoundReturns404(t *testing.T) {
	h := NewCatalogHandler(logrus.New(), catalog.New(logrus.New()), nil)

	router := gin.New()
	router.GET("/episodes/:episodeId", h.Episode)

	req := httptest.NewRequest(http.MethodGet, "/episodes/"+"00000000-0000-0000-0000-000000000001", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "EPISODE_NOT_FOUND")
}
